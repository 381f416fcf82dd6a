package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/A.java", "src/A.java"},
		{"./src/A.java", "src/A.java"},
		{`src\main\A.java`, "src/main/A.java"},
		{"src/../lib/B.go", "lib/B.go"},
		{"  a//b.py ", "a/b.py"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.in); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStateLayout(t *testing.T) {
	root := filepath.Join("repo")

	if got, want := ConfigPath(root), filepath.Join("repo", ".warntrace", "config.json"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
	if got, want := ScansDBPath(root), filepath.Join("repo", ".warntrace", "scans.db"); got != want {
		t.Errorf("ScansDBPath() = %q, want %q", got, want)
	}
	if got, want := CachePath(root, ""), filepath.Join("repo", ".warntrace", "cache"); got != want {
		t.Errorf("CachePath(\"\") = %q, want %q", got, want)
	}
	abs := filepath.Join(t.TempDir(), "fp")
	if got := CachePath(root, abs); got != abs {
		t.Errorf("CachePath(abs) = %q, want %q", got, abs)
	}
}

func TestEnsureStateDir(t *testing.T) {
	root := t.TempDir()
	dir, err := EnsureStateDir(root)
	if err != nil {
		t.Fatalf("EnsureStateDir() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("state directory not created: %v", err)
	}
}

func TestFindRepoRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindRepoRoot(nested)
	if err != nil {
		t.Fatalf("FindRepoRoot() error = %v", err)
	}
	wantResolved, _ := filepath.EvalSymlinks(root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != wantResolved {
		t.Errorf("FindRepoRoot() = %q, want %q", got, root)
	}
}

func TestCanonicalizeAndRelativeTo(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "A.java")
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("class A {}"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := CanonicalizePath(file, root)
	if err != nil {
		t.Fatalf("CanonicalizePath() error = %v", err)
	}
	if got != "src/A.java" {
		t.Errorf("CanonicalizePath() = %q, want %q", got, "src/A.java")
	}

	if got := RelativeTo(file, root); got != "src/A.java" {
		t.Errorf("RelativeTo(inside) = %q, want %q", got, "src/A.java")
	}
	if got := RelativeTo("./lib/B.go", root); got != "lib/B.go" {
		t.Errorf("RelativeTo(relative) = %q, want %q", got, "lib/B.go")
	}
	if IsWithinRepo(filepath.Dir(root), root) {
		t.Error("parent directory should not be within the repo")
	}
}
