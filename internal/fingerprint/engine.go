package fingerprint

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"warntrace/internal/canon"
	"warntrace/internal/errors"
	"warntrace/internal/issues"
	"warntrace/internal/scope"
	"warntrace/internal/slogutil"
	"warntrace/internal/syntax"
)

// DefaultEncoding is the source encoding discriminator used when none is configured.
const DefaultEncoding = "UTF-8"

// Options configures an Engine.
type Options struct {
	Provider syntax.Provider
	Source   SourceReader
	Rules    *scope.Rules
	Hasher   *Hasher

	// Encoding is mixed into every fingerprint.
	Encoding string
	// IncludeModule mixes the issue's module name into its fingerprint.
	IncludeModule bool
	// Workers bounds the number of files processed at once; <= 0 means GOMAXPROCS.
	Workers int

	Cache  *DiskCache
	Logger *slog.Logger
}

// Engine assigns fingerprints to issue collections.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

// NewEngine validates opts and fills in defaults.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("fingerprint engine requires a syntax provider")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("fingerprint engine requires a source reader")
	}
	if opts.Rules == nil {
		opts.Rules = scope.DefaultRules()
	}
	if opts.Hasher == nil {
		opts.Hasher = &Hasher{Algorithm: SHA256}
	}
	if opts.Encoding == "" {
		opts.Encoding = DefaultEncoding
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Engine{opts: opts, logger: logger}, nil
}

// FileDiagnostic reports a file whose issues could not be fingerprinted at all.
type FileDiagnostic struct {
	FileName string           `json:"fileName"`
	Code     errors.ErrorCode `json:"code"`
	Message  string           `json:"message"`
	Issues   int              `json:"issues"`
}

// Stats summarizes one Assign call.
type Stats struct {
	Files       int `json:"files"`
	Parsed      int `json:"parsed"`
	CachedFiles int `json:"cachedFiles"`
	Unmatchable int `json:"unmatchable"`
}

// Outcome is the result of Assign. Issues has the same length and order as
// the input collection.
type Outcome struct {
	Issues      issues.Collection `json:"issues"`
	Diagnostics []FileDiagnostic  `json:"diagnostics,omitempty"`
	Stats       Stats             `json:"stats"`
}

type fileJob struct {
	name    string
	indexes []int
}

type fileResult struct {
	diag   *FileDiagnostic
	parsed bool
	cached bool
}

// Assign computes a fingerprint for every issue. Files are processed in
// parallel; the issues of one file share a single parsed tree.
//
// Failures never drop an issue: it is returned unmatchable with the failure
// code. Only context cancellation aborts the batch.
func (e *Engine) Assign(ctx context.Context, in issues.Collection) (*Outcome, error) {
	out := in.Clone()
	jobs := groupByFile(in)
	results := make([]fileResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(e.opts.Workers, len(jobs))))

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.assignFile(gctx, job, out)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	outcome := &Outcome{Issues: out, Stats: Stats{Files: len(jobs)}}
	for _, res := range results {
		if res.diag != nil {
			outcome.Diagnostics = append(outcome.Diagnostics, *res.diag)
		}
		if res.parsed {
			outcome.Stats.Parsed++
		}
		if res.cached {
			outcome.Stats.CachedFiles++
		}
	}
	outcome.Stats.Unmatchable = len(out) - out.CountMatchable()

	e.logger.Debug("Fingerprints assigned",
		"issues", len(out),
		"files", outcome.Stats.Files,
		"parsed", outcome.Stats.Parsed,
		"cached", outcome.Stats.CachedFiles,
		"unmatchable", outcome.Stats.Unmatchable,
	)
	return outcome, nil
}

// groupByFile groups issue indexes by file name in first-seen order.
func groupByFile(in issues.Collection) []fileJob {
	var jobs []fileJob
	pos := make(map[string]int)
	for i, issue := range in {
		j, ok := pos[issue.FileName]
		if !ok {
			j = len(jobs)
			pos[issue.FileName] = j
			jobs = append(jobs, fileJob{name: issue.FileName})
		}
		jobs[j].indexes = append(jobs[j].indexes, i)
	}
	return jobs
}

// assignFile writes the issues of one file into out. Each job owns a
// disjoint set of indexes. The returned error is non-nil only on cancellation.
func (e *Engine) assignFile(ctx context.Context, job fileJob, out issues.Collection) (fileResult, error) {
	fail := func(err error) (fileResult, error) {
		if ctx.Err() != nil {
			return fileResult{}, ctx.Err()
		}
		code := errors.CodeOf(err)
		for _, i := range job.indexes {
			out[i] = out[i].Unmatchable(code)
		}
		e.logger.Warn("Cannot fingerprint file",
			"file", job.name,
			"code", string(code),
			"issues", len(job.indexes),
			"error", err.Error(),
		)
		return fileResult{diag: &FileDiagnostic{
			FileName: job.name,
			Code:     code,
			Message:  err.Error(),
			Issues:   len(job.indexes),
		}}, nil
	}

	lang, ok := syntax.LanguageFromPath(job.name)
	if !ok {
		return fail(errors.New(errors.UnsupportedLanguage, "no grammar for "+job.name, nil))
	}
	source, err := e.opts.Source.ReadSource(ctx, job.name)
	if err != nil {
		if !errors.Is(err, errors.SourceUnavailable) && ctx.Err() == nil {
			err = errors.New(errors.SourceUnavailable, "cannot read "+job.name, err)
		}
		return fail(err)
	}

	digest := ""
	keys := make([]string, len(job.indexes))
	for n, i := range job.indexes {
		keys[n] = e.cacheKey(out[i])
	}
	if e.opts.Cache != nil {
		digest = ContentDigest(source)
		if cached, hit := e.lookup(digest, keys); hit {
			for n, i := range job.indexes {
				out[i] = e.restore(out[i], cached[keys[n]])
			}
			return fileResult{cached: true}, nil
		}
	}

	tree, err := e.opts.Provider.Parse(ctx, source, lang)
	if err != nil {
		if errors.CodeOf(err) == errors.InternalError {
			err = errors.New(errors.ParseError, "cannot parse "+job.name, err)
		}
		return fail(err)
	}

	fresh := make(map[string]string, len(job.indexes))
	for n, i := range job.indexes {
		out[i] = e.assignIssue(tree, out[i])
		fresh[keys[n]] = e.store(out[i])
	}

	if e.opts.Cache != nil {
		if err := e.opts.Cache.Put(digest, fresh); err != nil {
			e.logger.Warn("Failed to write fingerprint cache", "file", job.name, "error", err.Error())
		}
	}
	return fileResult{parsed: true}, nil
}

// assignIssue fingerprints one issue against the parsed tree of its file.
func (e *Engine) assignIssue(tree *syntax.Tree, issue issues.Issue) issues.Issue {
	kind := e.opts.Rules.KindFor(issue.Category)
	frag, err := scope.Select(tree, issue.Line, kind)
	if err != nil {
		e.logger.Debug("Issue is unmatchable",
			"location", issue.Location(),
			"category", issue.Category,
			"code", string(errors.CodeOf(err)),
		)
		return issue.Unmatchable(errors.CodeOf(err))
	}
	if frag.Degraded() {
		e.logger.Debug("Scope degraded",
			"location", issue.Location(),
			"requested", string(frag.Requested),
			"effective", string(frag.Effective),
		)
	}
	stream := canon.Canonicalize(frag)
	return issue.WithFingerprint(e.opts.Hasher.Sum(stream.String(), e.discriminators(kind, issue)...))
}

// discriminators returns the context mixed into a fingerprint, in fixed order.
func (e *Engine) discriminators(kind scope.Kind, issue issues.Issue) []string {
	d := []string{string(kind), e.opts.Encoding}
	if e.opts.IncludeModule {
		d = append(d, issue.ModuleName)
	}
	return d
}

func (e *Engine) cacheKey(issue issues.Issue) string {
	kind := e.opts.Rules.KindFor(issue.Category)
	parts := append([]string{string(e.opts.Hasher.Algorithm), fmt.Sprint(issue.Line)},
		e.discriminators(kind, issue)...)
	return strings.Join(parts, discriminatorSeparator)
}

// lookup returns the cached entries for digest when every key is present.
func (e *Engine) lookup(digest string, keys []string) (map[string]string, bool) {
	cached, ok, err := e.opts.Cache.Get(digest)
	if err != nil {
		e.logger.Warn("Failed to read fingerprint cache", "digest", digest, "error", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	for _, k := range keys {
		if _, found := cached[k]; !found {
			return nil, false
		}
	}
	return cached, true
}

// Cache values hold either a fingerprint or "!" followed by a scope error code.
const unmatchablePrefix = "!"

func (e *Engine) store(issue issues.Issue) string {
	if issue.Matchable() {
		return issue.Fingerprint
	}
	return unmatchablePrefix + string(issue.ScopeError)
}

func (e *Engine) restore(issue issues.Issue, value string) issues.Issue {
	if code, ok := strings.CutPrefix(value, unmatchablePrefix); ok {
		return issue.Unmatchable(errors.ErrorCode(code))
	}
	return issue.WithFingerprint(value)
}
