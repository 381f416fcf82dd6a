package parsers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"warntrace/internal/issues"
)

// JSONParser reads issue lists written by warntrace itself: either a bare
// array of issues or an object with an "issues" array.
type JSONParser struct{}

// NewJSONParser creates a JSON parser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

// Name implements Parser.
func (p *JSONParser) Name() string { return "json" }

// Parse implements Parser. Fingerprints present in the input are kept.
func (p *JSONParser) Parse(ctx context.Context, r io.Reader) (issues.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read issues: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	var list issues.Collection
	if len(data) > 0 && data[0] == '{' {
		var doc struct {
			Issues issues.Collection `json:"issues"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse issues: %w", err)
		}
		list = doc.Issues
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse issues: %w", err)
		}
	}

	out := make(issues.Collection, len(list))
	for i, issue := range list {
		out[i] = issue.Normalize()
	}
	return out, nil
}
