package parsers

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"warntrace/internal/issues"
)

const (
	// DoxygenCategory is the category of every doxygen warning.
	DoxygenCategory = "Doxygen warning"
	// DoxygenType is the issue type of doxygen warnings.
	DoxygenType = "doxygen"
)

// doxygenPattern matches file warnings (absolute path, line, mandatory
// Warning|Error), function warnings (<name>:line, optional label) and global
// messages. Local messages continue on following lines that do not look like
// the start of another path or function warning.
var doxygenPattern = regexp.MustCompile(
	`(?m)^(?:(?:((?:/|[A-Za-z]:).+?):(-?\d+): (Warning|Error)|<.+>:-?\d+(?:: (Warning|Error))?): (.+(?:\n[^/<\n][^:\n][^/\n].+)*)|(Notice|Warning|Error): (.+))$`)

const (
	doxFileName = 1 + iota
	doxFileLine
	doxFileType
	doxFuncType
	doxLocalMessage
	doxGlobalType
	doxGlobalMessage
)

// DoxygenParser reads doxygen console output.
type DoxygenParser struct{}

// NewDoxygenParser creates a doxygen parser.
func NewDoxygenParser() *DoxygenParser {
	return &DoxygenParser{}
}

// Name implements Parser.
func (p *DoxygenParser) Name() string { return "doxygen" }

// Parse implements Parser.
func (p *DoxygenParser) Parse(ctx context.Context, r io.Reader) (issues.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read doxygen output: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var out issues.Collection
	for _, m := range doxygenPattern.FindAllStringSubmatch(text, -1) {
		out = append(out, doxygenIssue(m))
	}
	return out, nil
}

func doxygenIssue(m []string) issues.Issue {
	issue := issues.Issue{Category: DoxygenCategory, Type: DoxygenType}

	switch {
	case strings.TrimSpace(m[doxLocalMessage]) != "":
		issue.Message = m[doxLocalMessage]
		if strings.TrimSpace(m[doxFileName]) != "" {
			issue.FileName = m[doxFileName]
			issue.Line = doxygenLine(m[doxFileLine])
			issue.Severity = issues.ParseSeverity(m[doxFileType])
		} else {
			issue.Severity = issues.ParseSeverity(m[doxFuncType])
		}
	case strings.TrimSpace(m[doxGlobalMessage]) != "":
		issue.Message = m[doxGlobalMessage]
		issue.Severity = issues.ParseSeverity(m[doxGlobalType])
	default:
		issue.Message = "Unknown doxygen error."
		issue.Severity = issues.SeverityHigh
	}
	return issue
}

// doxygenLine maps unparsable and negative line numbers to 0.
func doxygenLine(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
