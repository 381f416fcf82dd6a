package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"warntrace/internal/issues"
	"warntrace/internal/match"
)

type palette struct {
	new         *color.Color
	outstanding *color.Color
	fixed       *color.Color
	dim         *color.Color
	unmatchable *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		new:         color.New(color.FgRed, color.Bold),
		outstanding: color.New(color.FgYellow),
		fixed:       color.New(color.FgGreen),
		dim:         color.New(color.Faint),
		unmatchable: color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range []*color.Color{p.new, p.outstanding, p.fixed, p.dim, p.unmatchable} {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) status(s match.Status) *color.Color {
	switch s {
	case match.StatusNew:
		return p.new
	case match.StatusFixed:
		return p.fixed
	default:
		return p.outstanding
	}
}

func renderResultHuman(w io.Writer, r *match.Result, opts Options) error {
	p := newPalette(opts.NoColor)
	for _, e := range r.Entries {
		label := p.status(e.Status).Sprintf("%-11s", e.Status)
		if _, err := fmt.Fprintf(w, "%s %s\n", label, issueLine(e.Issue, p, opts.Verbose)); err != nil {
			return err
		}
	}

	s := r.Summary()
	_, err := fmt.Fprintf(w, "\n%s, %s, %s\n",
		p.new.Sprintf("%d new", s.New),
		p.outstanding.Sprintf("%d outstanding", s.Outstanding),
		p.fixed.Sprintf("%d fixed", s.Fixed),
	)
	if err != nil {
		return err
	}
	return renderDiagnosticsHuman(w, p, opts)
}

func renderIssuesHuman(w io.Writer, c issues.Collection, opts Options) error {
	p := newPalette(opts.NoColor)
	for _, i := range c {
		if _, err := fmt.Fprintln(w, issueLine(i, p, opts.Verbose)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\n%d issues, %d fingerprinted\n", len(c), c.CountMatchable())
	if err != nil {
		return err
	}
	return renderDiagnosticsHuman(w, p, opts)
}

func issueLine(i issues.Issue, p palette, verbose bool) string {
	line := fmt.Sprintf("%s [%s] %s", i.Location(), i.Category, i.Message)
	if !verbose {
		return line
	}
	if i.Matchable() {
		return line + " " + p.dim.Sprintf("(%s)", shortFingerprint(i.Fingerprint))
	}
	if i.ScopeError != "" {
		return line + " " + p.unmatchable.Sprintf("(%s)", i.ScopeError)
	}
	return line
}

func renderDiagnosticsHuman(w io.Writer, p palette, opts Options) error {
	for _, d := range opts.Diagnostics {
		_, err := fmt.Fprintf(w, "%s %s: %s (%d issues)\n",
			p.unmatchable.Sprint("skipped"), d.FileName, d.Code, d.Issues)
		if err != nil {
			return err
		}
	}
	return nil
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
