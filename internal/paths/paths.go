// Package paths defines the .warntrace state layout and repo-relative path handling.
package paths

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// StateDirName is the per-repository state directory.
	StateDirName = ".warntrace"
	// ConfigFileName is the config file inside the state directory.
	ConfigFileName = "config.json"
	// ScansDBName is the scan store inside the state directory.
	ScansDBName = "scans.db"
	// CacheDirName is the fingerprint cache inside the state directory.
	CacheDirName = "cache"
)

// StateDir returns <repoRoot>/.warntrace.
func StateDir(repoRoot string) string {
	return filepath.Join(repoRoot, StateDirName)
}

// ConfigPath returns the config file path for a repository.
func ConfigPath(repoRoot string) string {
	return filepath.Join(StateDir(repoRoot), ConfigFileName)
}

// ScansDBPath returns the scan store path for a repository.
func ScansDBPath(repoRoot string) string {
	return filepath.Join(StateDir(repoRoot), ScansDBName)
}

// CachePath resolves the cache directory. A relative dir is taken relative to
// the state directory; an empty dir selects the default.
func CachePath(repoRoot, dir string) string {
	if dir == "" {
		dir = CacheDirName
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(StateDir(repoRoot), dir)
}

// EnsureStateDir creates the state directory if needed and returns its path.
func EnsureStateDir(repoRoot string) (string, error) {
	dir := StateDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// FindRepoRoot walks up from start to the first directory containing a
// .warntrace or .git entry. It returns start itself when none is found.
func FindRepoRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for dir := abs; ; dir = filepath.Dir(dir) {
		for _, marker := range []string{StateDirName, ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		if parent := filepath.Dir(dir); parent == dir {
			return abs, nil
		}
	}
}

// CanonicalizePath converts an absolute path to a repo-relative canonical path
// - Resolves symlinks to real paths
// - Makes path relative to repo root
// - Returns repo-relative path with forward slashes
func CanonicalizePath(absolutePath string, repoRoot string) (string, error) {
	resolved, err := evalOrKeep(absolutePath)
	if err != nil {
		return "", err
	}
	root, err := evalOrKeep(repoRoot)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func evalOrKeep(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return "", err
	}
	return resolved, nil
}

// IsWithinRepo checks if a path is within the repository root
func IsWithinRepo(p string, repoRoot string) bool {
	canonical, err := CanonicalizePath(p, repoRoot)
	if err != nil {
		return false
	}
	return canonical != ".." && !strings.HasPrefix(canonical, "../")
}

// NormalizePath turns a file name reported by a tool into the form used to
// group issues: forward slashes, no "." or ".." segments, no leading "./".
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "./")
}

// RelativeTo returns p relative to repoRoot when p is an absolute path inside
// the repository, and the normalized p otherwise.
func RelativeTo(p, repoRoot string) string {
	if repoRoot != "" && filepath.IsAbs(p) && IsWithinRepo(p, repoRoot) {
		if rel, err := CanonicalizePath(p, repoRoot); err == nil {
			return rel
		}
	}
	return NormalizePath(p)
}
