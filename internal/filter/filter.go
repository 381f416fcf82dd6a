// Package filter keeps or drops issues by anchored regular expressions over
// their properties.
package filter

import (
	"fmt"
	"regexp"

	"warntrace/internal/errors"
	"warntrace/internal/issues"
)

// Rule is one compiled pattern bound to an issue property.
type Rule struct {
	Property issues.Property
	Pattern  string
	re       *regexp.Regexp
}

// Matches reports whether the whole property value matches the pattern.
func (r Rule) Matches(i issues.Issue) bool {
	return r.re.MatchString(r.Property.Value(i))
}

func (r Rule) String() string {
	return fmt.Sprintf("%s=~%s", r.Property, r.Pattern)
}

// Filter is an immutable include/exclude predicate.
type Filter struct {
	include []Rule
	exclude []Rule
}

// Keep reports whether an issue passes: no include rules or any include
// rule matches, and no exclude rule matches.
func (f *Filter) Keep(i issues.Issue) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 && !anyMatch(f.include, i) {
		return false
	}
	return !anyMatch(f.exclude, i)
}

func anyMatch(rules []Rule, i issues.Issue) bool {
	for _, r := range rules {
		if r.Matches(i) {
			return true
		}
	}
	return false
}

// Apply returns the issues that pass, in their original order. The input is
// not modified.
func (f *Filter) Apply(in issues.Collection) issues.Collection {
	out := make(issues.Collection, 0, len(in))
	for _, i := range in {
		if f.Keep(i) {
			out = append(out, i)
		}
	}
	return out
}

// Empty reports whether the filter keeps every issue.
func (f *Filter) Empty() bool {
	return f == nil || len(f.include) == 0 && len(f.exclude) == 0
}

// Includes returns the include rules.
func (f *Filter) Includes() []Rule { return append([]Rule(nil), f.include...) }

// Excludes returns the exclude rules.
func (f *Filter) Excludes() []Rule { return append([]Rule(nil), f.exclude...) }

type pending struct {
	property issues.Property
	pattern  string
}

// Builder collects patterns; nothing is compiled until Build.
type Builder struct {
	include []pending
	exclude []pending
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Include adds include patterns for a property.
func (b *Builder) Include(p issues.Property, patterns ...string) *Builder {
	for _, re := range patterns {
		b.include = append(b.include, pending{p, re})
	}
	return b
}

// Exclude adds exclude patterns for a property.
func (b *Builder) Exclude(p issues.Property, patterns ...string) *Builder {
	for _, re := range patterns {
		b.exclude = append(b.exclude, pending{p, re})
	}
	return b
}

// Build compiles every pattern anchored to the whole value. The first invalid
// pattern fails the build with MALFORMED_FILTER_REGEX.
func (b *Builder) Build() (*Filter, error) {
	include, err := compile(b.include)
	if err != nil {
		return nil, err
	}
	exclude, err := compile(b.exclude)
	if err != nil {
		return nil, err
	}
	return &Filter{include: include, exclude: exclude}, nil
}

func compile(list []pending) ([]Rule, error) {
	rules := make([]Rule, 0, len(list))
	for _, p := range list {
		// The bare pattern must compile on its own, otherwise an unbalanced
		// ')' could close the anchoring group.
		if _, err := regexp.Compile(p.pattern); err != nil {
			return nil, malformed(p, err)
		}
		re, err := regexp.Compile(`^(?:` + p.pattern + `)$`)
		if err != nil {
			return nil, malformed(p, err)
		}
		rules = append(rules, Rule{Property: p.property, Pattern: p.pattern, re: re})
	}
	return rules, nil
}

func malformed(p pending, err error) error {
	return errors.New(errors.MalformedFilterRegex,
		fmt.Sprintf("invalid %s pattern %q", p.property, p.pattern), err).
		WithDetails(map[string]string{"property": string(p.property), "pattern": p.pattern})
}
