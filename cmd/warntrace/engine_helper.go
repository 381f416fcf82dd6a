package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"warntrace/internal/config"
	"warntrace/internal/errors"
	"warntrace/internal/filter"
	"warntrace/internal/fingerprint"
	"warntrace/internal/issues"
	"warntrace/internal/parsers"
	"warntrace/internal/paths"
	"warntrace/internal/report"
	"warntrace/internal/slogutil"
	"warntrace/internal/storage"
	"warntrace/internal/syntax"
)

// session bundles what every command needs: the repository root, its
// configuration and a logger.
type session struct {
	repoRoot string
	cfg      *config.Config
	logger   *slog.Logger
}

func newSession() (*session, error) {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return nil, errors.New(errors.InternalError, "Failed to resolve repository root", err)
	}

	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "Failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "Invalid configuration", err)
	}

	return &session{
		repoRoot: repoRoot,
		cfg:      cfg,
		logger:   newLogger(cfg),
	}, nil
}

// getRepoRoot returns --repo when given, otherwise the nearest parent of the
// working directory that holds .warntrace or .git.
func getRepoRoot() (string, error) {
	if repoFlag != "" {
		return paths.FindRepoRoot(repoFlag)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return paths.FindRepoRoot(cwd)
}

// newLogger writes to stderr. -v/-q take precedence over the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if verboseFlag > 0 || quietFlag {
		level = slogutil.LevelFromVerbosity(verboseFlag, quietFlag)
	}
	return slogutil.NewLoggerWithFormat(os.Stderr, level, slogutil.Format(cfg.Logging.Format))
}

// newContext creates a context cancelled on SIGINT/SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newEngine builds a fingerprint engine reading sources under sourceRoot.
func (s *session) newEngine(sourceRoot string) (*fingerprint.Engine, error) {
	rules, err := s.cfg.ScopeRules(s.repoRoot)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "Failed to load scope declarations", err)
	}
	hasher, err := fingerprint.NewHasher(s.cfg.Fingerprint.Algorithm)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "Invalid fingerprint algorithm", err)
	}

	var cache *fingerprint.DiskCache
	if dir := s.cfg.CacheDir(s.repoRoot); dir != "" {
		cache, err = fingerprint.OpenDiskCache(dir)
		if err != nil {
			s.logger.Warn("Fingerprint cache disabled", "dir", dir, "error", err.Error())
			cache = nil
		}
	}

	if !syntax.IsAvailable() {
		s.logger.Warn("Built without tree-sitter; every file will be reported as unparsable")
	}

	return fingerprint.NewEngine(fingerprint.Options{
		Provider:      syntax.NewTreeSitter(),
		Source:        fingerprint.DirSource{Root: sourceRoot},
		Rules:         rules,
		Hasher:        hasher,
		Encoding:      s.cfg.Fingerprint.Encoding,
		IncludeModule: s.cfg.Fingerprint.IncludeModule,
		Workers:       s.cfg.Fingerprint.Workers,
		Cache:         cache,
		Logger:        s.logger,
	})
}

// newFilter merges the configured rules with extra patterns from flags.
func (s *session) newFilter(extra *filter.Rules) (*filter.Filter, error) {
	rules, err := s.cfg.FilterRules(s.repoRoot)
	if err != nil {
		if errors.Is(err, errors.ConfigInvalid) {
			return nil, err
		}
		return nil, errors.New(errors.ConfigInvalid, "Failed to load filter rules", err)
	}
	return rules.Merge(extra).Build()
}

func (s *session) openStore() (*storage.DB, error) {
	db, err := storage.Open(s.repoRoot, s.logger)
	if err != nil {
		return nil, errors.New(errors.InternalError, "Failed to open scan store", err)
	}
	return db, nil
}

// readReport parses a tool report. "-" reads stdin. File names are made
// relative to repoRoot when they point inside it.
func (s *session) readReport(ctx context.Context, path, parserName, repoRoot string) (issues.Collection, error) {
	p, err := parsers.Default(s.logger).Get(parserName)
	if err != nil {
		return nil, err
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open report: %w", err)
		}
		defer f.Close()
		r = f
	}

	parsed, err := p.Parse(ctx, r)
	if err != nil {
		return nil, err
	}
	for i := range parsed {
		parsed[i].FileName = paths.RelativeTo(parsed[i].FileName, repoRoot)
	}
	return parsed, nil
}

// fingerprintReport reads, filters and fingerprints one report.
func (s *session) fingerprintReport(ctx context.Context, path, parserName, sourceRoot string, f *filter.Filter) (*fingerprint.Outcome, error) {
	parsed, err := s.readReport(ctx, path, parserName, sourceRoot)
	if err != nil {
		return nil, err
	}
	kept := f.Apply(parsed)
	s.logger.Info("Report parsed", "path", path, "issues", len(parsed), "kept", len(kept))

	engine, err := s.newEngine(sourceRoot)
	if err != nil {
		return nil, err
	}
	out, err := engine.Assign(ctx, kept)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Fingerprints assigned",
		"files", out.Stats.Files,
		"parsed", out.Stats.Parsed,
		"cached", out.Stats.CachedFiles,
		"unmatchable", out.Stats.Unmatchable,
	)
	return out, nil
}

func outputFormat() (report.Format, error) {
	return report.ParseFormat(formatFlag)
}

func renderOptions(diags []fingerprint.FileDiagnostic) report.Options {
	return report.Options{
		NoColor:     noColorFlag,
		Verbose:     verboseFlag > 0,
		Diagnostics: diags,
	}
}

// openOutput returns stdout for "" or "-", otherwise creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
