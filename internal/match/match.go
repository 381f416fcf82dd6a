// Package match classifies the issues of two scans as new, outstanding or fixed.
//
// Issues are only paired within the same (file, category) group, so matches
// never cross a file rename: the issues of a moved file show up as new in the
// current scan and fixed in the reference.
package match

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"warntrace/internal/issues"
	"warntrace/internal/paths"
	"warntrace/internal/slogutil"
)

// Status is the classification of one issue.
type Status string

const (
	StatusNew         Status = "NEW"
	StatusOutstanding Status = "OUTSTANDING"
	StatusFixed       Status = "FIXED"
)

// Entry is one classified issue. For OUTSTANDING entries Issue is the current
// issue and Pair the reference issue it was matched with. FIXED entries hold
// the reference issue.
type Entry struct {
	Status Status        `json:"status"`
	Issue  issues.Issue  `json:"issue"`
	Pair   *issues.Issue `json:"pair,omitempty"`
}

// Summary counts entries per status.
type Summary struct {
	New         int `json:"new"`
	Outstanding int `json:"outstanding"`
	Fixed       int `json:"fixed"`
}

// Result lists current issues in input order followed by fixed reference
// issues in reference order.
type Result struct {
	Entries []Entry `json:"entries"`
}

func (r *Result) filter(s Status) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Status == s {
			out = append(out, e)
		}
	}
	return out
}

// New returns the NEW entries.
func (r *Result) New() []Entry { return r.filter(StatusNew) }

// Outstanding returns the OUTSTANDING entries.
func (r *Result) Outstanding() []Entry { return r.filter(StatusOutstanding) }

// Fixed returns the FIXED entries.
func (r *Result) Fixed() []Entry { return r.filter(StatusFixed) }

// Summary counts the entries per status.
func (r *Result) Summary() Summary {
	var s Summary
	for _, e := range r.Entries {
		switch e.Status {
		case StatusNew:
			s.New++
		case StatusOutstanding:
			s.Outstanding++
		case StatusFixed:
			s.Fixed++
		}
	}
	return s
}

// Options configures a Matcher.
type Options struct {
	// Workers bounds the number of groups matched at once; <= 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Matcher pairs current issues with reference issues by fingerprint.
type Matcher struct {
	workers int
	logger  *slog.Logger
}

// NewMatcher creates a matcher.
func NewMatcher(opts Options) *Matcher {
	m := &Matcher{workers: opts.Workers, logger: opts.Logger}
	if m.workers <= 0 {
		m.workers = runtime.GOMAXPROCS(0)
	}
	if m.logger == nil {
		m.logger = slogutil.NewDiscardLogger()
	}
	return m
}

// Classify classifies with default options.
func Classify(ctx context.Context, reference, current issues.Collection) (*Result, error) {
	return NewMatcher(Options{}).Classify(ctx, reference, current)
}

// groupKey restricts matching to one file and category.
type groupKey struct {
	file     string
	category string
}

type group struct {
	ref []int
	cur []int
}

func keyOf(i issues.Issue) groupKey {
	return groupKey{file: paths.NormalizePath(i.FileName), category: i.Category}
}

// Classify matches every current issue against the reference issues of the
// same file and category. The first unconsumed reference issue with an equal
// fingerprint wins. Unmatchable issues never pair: current ones are NEW and
// reference ones FIXED.
func (m *Matcher) Classify(ctx context.Context, reference, current issues.Collection) (*Result, error) {
	var groups []*group
	index := make(map[groupKey]*group)
	lookup := func(i issues.Issue) *group {
		k := keyOf(i)
		g, ok := index[k]
		if !ok {
			g = &group{}
			index[k] = g
			groups = append(groups, g)
		}
		return g
	}
	for i, issue := range reference {
		if issue.Matchable() {
			g := lookup(issue)
			g.ref = append(g.ref, i)
		}
	}
	for i, issue := range current {
		if issue.Matchable() {
			g := lookup(issue)
			g.cur = append(g.cur, i)
		}
	}

	// pairOf[i] is the reference index matched by current issue i, or -1.
	pairOf := make([]int, len(current))
	for i := range pairOf {
		pairOf[i] = -1
	}
	consumed := make([]bool, len(reference))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(m.workers)
	for _, g := range groups {
		if len(g.ref) == 0 || len(g.cur) == 0 {
			continue
		}
		eg.Go(func() error {
			if err := ectx.Err(); err != nil {
				return err
			}
			matchGroup(g, reference, current, pairOf, consumed)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Entries: make([]Entry, 0, len(current)+len(reference))}
	for i, issue := range current {
		if j := pairOf[i]; j >= 0 {
			pair := reference[j]
			result.Entries = append(result.Entries, Entry{Status: StatusOutstanding, Issue: issue, Pair: &pair})
		} else {
			result.Entries = append(result.Entries, Entry{Status: StatusNew, Issue: issue})
		}
	}
	for j, issue := range reference {
		if !consumed[j] {
			result.Entries = append(result.Entries, Entry{Status: StatusFixed, Issue: issue})
		}
	}

	s := result.Summary()
	m.logger.Debug("Issues classified",
		"reference", len(reference),
		"current", len(current),
		"groups", len(groups),
		"new", s.New,
		"outstanding", s.Outstanding,
		"fixed", s.Fixed,
	)
	return result, nil
}

// matchGroup pairs the issues of one group sequentially. Groups own disjoint
// indexes of pairOf and consumed.
func matchGroup(g *group, reference, current issues.Collection, pairOf []int, consumed []bool) {
	queues := make(map[string][]int, len(g.ref))
	for _, j := range g.ref {
		fp := reference[j].Fingerprint
		queues[fp] = append(queues[fp], j)
	}
	for _, i := range g.cur {
		fp := current[i].Fingerprint
		q := queues[fp]
		if len(q) == 0 {
			continue
		}
		pairOf[i] = q[0]
		consumed[q[0]] = true
		queues[fp] = q[1:]
	}
}
