package report

import (
	"io"

	"warntrace/internal/issues"
	"warntrace/internal/match"
)

// SARIF 2.1.0 schema types
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

const (
	sarifSchema  = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	sarifVersion = "2.1.0"

	// FingerprintKey names warntrace fingerprints in SARIF results.
	FingerprintKey = "warntrace/v1"
)

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool    SARIFTool     `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the primary analysis component.
type SARIFDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []SARIFRule `json:"rules,omitempty"`
}

// SARIFRule describes a rule that detected an issue.
type SARIFRule struct {
	ID               string                 `json:"id"`
	ShortDescription *SARIFMessage          `json:"shortDescription,omitempty"`
	Properties       map[string]interface{} `json:"properties,omitempty"`
}

// SARIFResult represents a single finding.
type SARIFResult struct {
	RuleID        string                 `json:"ruleId"`
	RuleIndex     int                    `json:"ruleIndex"`
	Level         string                 `json:"level,omitempty"`
	Message       SARIFMessage           `json:"message"`
	Locations     []SARIFLocation        `json:"locations,omitempty"`
	Fingerprints  map[string]string      `json:"fingerprints,omitempty"`
	BaselineState string                 `json:"baselineState,omitempty"`
	Properties    map[string]interface{} `json:"properties,omitempty"`
}

// SARIFMessage contains text.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion identifies a region within a file.
type SARIFRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

// sarifBuilder deduplicates rules while results are added.
type sarifBuilder struct {
	opts      Options
	rules     []SARIFRule
	ruleIndex map[string]int
	results   []SARIFResult
}

func newSARIFBuilder(opts Options) *sarifBuilder {
	return &sarifBuilder{opts: opts, ruleIndex: make(map[string]int)}
}

func (b *sarifBuilder) add(i issues.Issue, baseline string) {
	ruleID := i.Category
	if ruleID == "" {
		ruleID = "unknown"
	}
	idx, ok := b.ruleIndex[ruleID]
	if !ok {
		idx = len(b.rules)
		b.ruleIndex[ruleID] = idx
		rule := SARIFRule{ID: ruleID, ShortDescription: &SARIFMessage{Text: ruleID}}
		if i.Type != "" {
			rule.Properties = map[string]interface{}{"tool": i.Type}
		}
		b.rules = append(b.rules, rule)
	}

	result := SARIFResult{
		RuleID:        ruleID,
		RuleIndex:     idx,
		Level:         severityToSARIFLevel(i.Severity),
		Message:       SARIFMessage{Text: i.Message},
		BaselineState: baseline,
	}
	if result.Message.Text == "" {
		result.Message.Text = ruleID
	}
	if i.FileName != "" {
		loc := &SARIFPhysicalLocation{
			ArtifactLocation: &SARIFArtifactLocation{URI: i.FileName, URIBaseID: "%SRCROOT%"},
		}
		if i.Line > 0 {
			loc.Region = &SARIFRegion{StartLine: i.Line}
		}
		result.Locations = []SARIFLocation{{PhysicalLocation: loc}}
	}
	if i.Matchable() {
		result.Fingerprints = map[string]string{FingerprintKey: i.Fingerprint}
	} else if i.ScopeError != "" {
		result.Properties = map[string]interface{}{"scopeError": string(i.ScopeError)}
	}
	b.results = append(b.results, result)
}

func (b *sarifBuilder) write(w io.Writer) error {
	results := b.results
	if results == nil {
		results = []SARIFResult{}
	}
	return encodeJSON(w, SARIFReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []SARIFRun{{
			Tool: SARIFTool{Driver: SARIFDriver{
				Name:    b.opts.ToolName,
				Version: b.opts.ToolVersion,
				Rules:   b.rules,
			}},
			Results: results,
		}},
	})
}

func renderResultSARIF(w io.Writer, r *match.Result, opts Options) error {
	b := newSARIFBuilder(opts)
	for _, e := range r.Entries {
		b.add(e.Issue, baselineState(e.Status))
	}
	return b.write(w)
}

func renderIssuesSARIF(w io.Writer, c issues.Collection, opts Options) error {
	b := newSARIFBuilder(opts)
	for _, i := range c {
		b.add(i, "")
	}
	return b.write(w)
}

func baselineState(s match.Status) string {
	switch s {
	case match.StatusNew:
		return "new"
	case match.StatusOutstanding:
		return "unchanged"
	case match.StatusFixed:
		return "absent"
	default:
		return ""
	}
}

func severityToSARIFLevel(s issues.Severity) string {
	switch s {
	case issues.SeverityHigh:
		return "error"
	case issues.SeverityNormal:
		return "warning"
	case issues.SeverityLow:
		return "note"
	default:
		return "warning"
	}
}
