package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"warntrace/internal/errors"
	"warntrace/internal/issues"
)

// Rules is the serializable form of a filter: property name -> patterns.
type Rules struct {
	Include map[string][]string `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty" mapstructure:"include"`
	Exclude map[string][]string `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty" mapstructure:"exclude"`
}

// LoadRules reads a rule file. The format follows the extension:
// .yaml/.yml, .toml or .json.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filter rules: %w", err)
	}

	var r Rules
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &r)
	case ".toml":
		_, err = toml.Decode(string(data), &r)
	case ".json":
		err = json.Unmarshal(data, &r)
	default:
		return nil, errors.Newf(errors.ConfigInvalid, "unsupported filter rule format %q", ext)
	}
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid, "parse filter rules "+filepath.Base(path), err)
	}
	return &r, nil
}

// Merge returns the union of r and other.
func (r *Rules) Merge(other *Rules) *Rules {
	out := &Rules{Include: map[string][]string{}, Exclude: map[string][]string{}}
	for _, src := range []*Rules{r, other} {
		if src == nil {
			continue
		}
		for k, v := range src.Include {
			out.Include[k] = append(out.Include[k], v...)
		}
		for k, v := range src.Exclude {
			out.Exclude[k] = append(out.Exclude[k], v...)
		}
	}
	return out
}

// Builder translates the rules into a filter builder. Property names are
// resolved with issues.ParseProperty and visited in sorted order so that
// errors are reported deterministically.
func (r *Rules) Builder() (*Builder, error) {
	b := NewBuilder()
	if r == nil {
		return b, nil
	}
	add := func(m map[string][]string, fn func(issues.Property, ...string) *Builder) error {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p, err := issues.ParseProperty(name)
			if err != nil {
				return errors.New(errors.ConfigInvalid, "invalid filter property", err).
					WithDetails(map[string]interface{}{"property": name, "valid": issues.AllProperties()})
			}
			fn(p, m[name]...)
		}
		return nil
	}
	if err := add(r.Include, b.Include); err != nil {
		return nil, err
	}
	if err := add(r.Exclude, b.Exclude); err != nil {
		return nil, err
	}
	return b, nil
}

// Build compiles the rules into a filter.
func (r *Rules) Build() (*Filter, error) {
	b, err := r.Builder()
	if err != nil {
		return nil, err
	}
	return b.Build()
}
