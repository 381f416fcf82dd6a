package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"warntrace/internal/errors"
	"warntrace/internal/issues"
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// splitFilterFlag parses "property=regex". The regex may itself contain '='.
func splitFilterFlag(v string) (string, string, error) {
	prop, pattern, ok := strings.Cut(v, "=")
	if !ok {
		return "", "", errors.Newf(errors.ConfigInvalid, "filter %q must have the form property=regex", v)
	}
	p, err := issues.ParseProperty(prop)
	if err != nil {
		return "", "", errors.New(errors.ConfigInvalid, "invalid filter property", err)
	}
	return string(p), pattern, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
