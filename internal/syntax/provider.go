package syntax

import "context"

// Provider turns source text into a syntax tree.
// Implementations return a PARSE_ERROR TraceError for malformed input.
type Provider interface {
	Parse(ctx context.Context, source []byte, lang Language) (*Tree, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, source []byte, lang Language) (*Tree, error)

// Parse calls f.
func (f ProviderFunc) Parse(ctx context.Context, source []byte, lang Language) (*Tree, error) {
	return f(ctx, source, lang)
}
