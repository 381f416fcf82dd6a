package parsers

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"warntrace/internal/issues"
	"warntrace/internal/slogutil"
)

// CheckstyleType is the issue type of checkstyle warnings.
const CheckstyleType = "checkstyle"

type checkstyleReport struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Files   []checkstyleFile `xml:"file"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line     string `xml:"line,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

// CheckstyleParser reads checkstyle XML reports.
type CheckstyleParser struct {
	logger *slog.Logger
}

// NewCheckstyleParser creates a checkstyle parser.
func NewCheckstyleParser(logger *slog.Logger) *CheckstyleParser {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &CheckstyleParser{logger: logger}
}

// Name implements Parser.
func (p *CheckstyleParser) Name() string { return "checkstyle" }

// Parse implements Parser.
func (p *CheckstyleParser) Parse(ctx context.Context, r io.Reader) (issues.Collection, error) {
	var report checkstyleReport
	if err := xml.NewDecoder(r).Decode(&report); err != nil {
		return nil, fmt.Errorf("parse checkstyle report: %w", err)
	}

	var out issues.Collection
	for _, f := range report.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, e := range f.Errors {
			line := p.line(f.Name, e)
			out = append(out, issues.Issue{
				FileName: f.Name,
				Category: CheckstyleCategory(e.Source),
				Type:     CheckstyleType,
				Line:     line,
				Message:  e.Message,
				Severity: checkstyleSeverity(e.Severity),
			}.Normalize())
		}
	}
	return out, nil
}

// line parses the line attribute. A missing or malformed value yields 0,
// which the engine later reports as an invalid anchor.
func (p *CheckstyleParser) line(file string, e checkstyleError) int {
	raw := strings.TrimSpace(e.Line)
	if raw == "" {
		p.logger.Debug("Checkstyle error without line", "file", file, "source", e.Source)
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.logger.Debug("Malformed checkstyle line attribute",
			"file", file,
			"source", e.Source,
			"line", raw,
		)
		return 0
	}
	return n
}

// CheckstyleCategory derives the category from a check's class name:
// "com.puppycrawl.tools.checkstyle.checks.naming.MethodNameCheck" -> "MethodName".
func CheckstyleCategory(source string) string {
	name := source
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Check")
}

func checkstyleSeverity(label string) issues.Severity {
	switch strings.ToLower(label) {
	case "error":
		return issues.SeverityHigh
	case "warning":
		return issues.SeverityNormal
	default:
		return issues.SeverityLow
	}
}
