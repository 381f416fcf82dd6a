package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"warntrace/internal/errors"
	"warntrace/internal/issues"
)

func sample() issues.Collection {
	return issues.Collection{
		{FileName: "src/main/Foo.java", PackageName: "com.acme.core", ModuleName: "core", Category: "MethodName", Type: "checkstyle", Line: 1},
		{FileName: "src/main/Bar.java", PackageName: "com.acme.web", ModuleName: "web", Category: "FinalClass", Type: "checkstyle", Line: 2},
		{FileName: "src/test/FooTest.java", PackageName: "com.acme.core", ModuleName: "core", Category: "MagicNumber", Type: "pmd", Line: 3},
		{FileName: "docs/Main.dox", PackageName: "", ModuleName: "docs", Category: "Doxygen warning", Type: "doxygen", Line: 4},
	}
}

func lines(c issues.Collection) []int {
	out := make([]int, len(c))
	for i, issue := range c {
		out[i] = issue.Line
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name  string
		build func(*Builder) *Builder
		want  []int
	}{
		{
			name:  "no rules keeps everything",
			build: func(b *Builder) *Builder { return b },
			want:  []int{1, 2, 3, 4},
		},
		{
			name: "include by category",
			build: func(b *Builder) *Builder {
				return b.Include(issues.PropertyCategory, "MethodName")
			},
			want: []int{1},
		},
		{
			name: "includes are alternatives",
			build: func(b *Builder) *Builder {
				return b.Include(issues.PropertyCategory, "MethodName").Include(issues.PropertyType, "doxygen")
			},
			want: []int{1, 4},
		},
		{
			name: "exclude only",
			build: func(b *Builder) *Builder {
				return b.Exclude(issues.PropertyFileName, "src/test/.*")
			},
			want: []int{1, 2, 4},
		},
		{
			name: "exclude wins over include",
			build: func(b *Builder) *Builder {
				return b.Include(issues.PropertyPackageName, `com\.acme\..*`).Exclude(issues.PropertyModuleName, "web")
			},
			want: []int{1, 3},
		},
		{
			name: "patterns are anchored",
			build: func(b *Builder) *Builder {
				return b.Include(issues.PropertyCategory, "Method")
			},
			want: []int{},
		},
		{
			name: "empty value matches empty pattern",
			build: func(b *Builder) *Builder {
				return b.Include(issues.PropertyPackageName, "")
			},
			want: []int{4},
		},
		{
			name: "alternation stays anchored",
			build: func(b *Builder) *Builder {
				return b.Include(issues.PropertyModuleName, "core|web")
			},
			want: []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.build(NewBuilder()).Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got := lines(f.Apply(sample())); !equalInts(got, tt.want) {
				t.Errorf("Apply() lines = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter_ApplyIsSubsetAndIdempotent(t *testing.T) {
	f, err := NewBuilder().
		Include(issues.PropertyModuleName, "core").
		Exclude(issues.PropertyType, "pmd").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	in := sample()
	before := lines(in)
	once := f.Apply(in)
	twice := f.Apply(once)

	if !equalInts(lines(in), before) {
		t.Error("Apply() modified its input")
	}
	if !equalInts(lines(once), lines(twice)) {
		t.Errorf("Apply() not idempotent: %v then %v", lines(once), lines(twice))
	}
	if !equalInts(lines(once), []int{1}) {
		t.Errorf("Apply() lines = %v, want [1]", lines(once))
	}
}

func TestFilter_NilKeepsEverything(t *testing.T) {
	var f *Filter
	if !f.Empty() {
		t.Error("nil filter should be empty")
	}
	if got := len(f.Apply(sample())); got != 4 {
		t.Errorf("nil Apply() = %d issues, want 4", got)
	}
}

func TestBuild_MalformedRegex(t *testing.T) {
	tests := []struct {
		name     string
		property issues.Property
		pattern  string
	}{
		{"unclosed group", issues.PropertyFileName, "src/(unclosed"},
		{"group closed early", issues.PropertyCategory, "Need)|(Braces"},
		{"stray close", issues.PropertyCategory, "Magic)"},
		{"trailing backslash", issues.PropertyType, `checkstyle\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().
				Include(issues.PropertyCategory, "ok").
				Exclude(tt.property, tt.pattern).
				Build()
			if err == nil {
				t.Fatalf("Build() with pattern %q should fail", tt.pattern)
			}
			if !errors.Is(err, errors.MalformedFilterRegex) {
				t.Errorf("CodeOf(err) = %s, want %s", errors.CodeOf(err), errors.MalformedFilterRegex)
			}
			for _, part := range []string{string(tt.property), tt.pattern} {
				if !strings.Contains(err.Error(), part) {
					t.Errorf("error %q does not name %q", err.Error(), part)
				}
			}
		})
	}
}

func TestBuild_AlternationStaysAnchored(t *testing.T) {
	f, err := NewBuilder().Include(issues.PropertyCategory, "Need|Braces").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	in := issues.Collection{
		{FileName: "A.java", Category: "NeedlessThing", Line: 1},
		{FileName: "A.java", Category: "XBraces", Line: 2},
		{FileName: "A.java", Category: "Braces", Line: 3},
	}
	if got := lines(f.Apply(in)); !equalInts(got, []int{3}) {
		t.Errorf("Apply() lines = %v, want [3]", got)
	}
}

func TestLoadRules(t *testing.T) {
	files := map[string]string{
		"rules.yaml": "include:\n  category: [MethodName, FinalClass]\nexclude:\n  file: ['src/test/.*']\n",
		"rules.toml": "[include]\ncategory = [\"MethodName\", \"FinalClass\"]\n[exclude]\nfile = [\"src/test/.*\"]\n",
		"rules.json": `{"include":{"category":["MethodName","FinalClass"]},"exclude":{"file":["src/test/.*"]}}`,
	}

	dir := t.TempDir()
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			r, err := LoadRules(path)
			if err != nil {
				t.Fatalf("LoadRules() error = %v", err)
			}
			f, err := r.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if got := lines(f.Apply(sample())); !equalInts(got, []int{1, 2}) {
				t.Errorf("Apply() lines = %v, want [1 2]", got)
			}
		})
	}
}

func TestLoadRules_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadRules(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadRules() on missing file should fail")
	}

	ini := filepath.Join(dir, "rules.ini")
	if err := os.WriteFile(ini, []byte("x=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(ini); !errors.Is(err, errors.ConfigInvalid) {
		t.Errorf("LoadRules(.ini) error = %v, want %s", err, errors.ConfigInvalid)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRules(bad); !errors.Is(err, errors.ConfigInvalid) {
		t.Errorf("LoadRules(bad json) error = %v, want %s", err, errors.ConfigInvalid)
	}
}

func TestRules_UnknownProperty(t *testing.T) {
	r := &Rules{Include: map[string][]string{"severity": {"HIGH"}}}
	if _, err := r.Build(); !errors.Is(err, errors.ConfigInvalid) {
		t.Errorf("Build() error = %v, want %s", err, errors.ConfigInvalid)
	}
}

func TestRules_Merge(t *testing.T) {
	a := &Rules{Include: map[string][]string{"category": {"MethodName"}}}
	b := &Rules{
		Include: map[string][]string{"category": {"FinalClass"}},
		Exclude: map[string][]string{"module": {"web"}},
	}

	f, err := a.Merge(b).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := lines(f.Apply(sample())); !equalInts(got, []int{1}) {
		t.Errorf("Apply() lines = %v, want [1]", got)
	}

	var nilRules *Rules
	if got := nilRules.Merge(nil); len(got.Include) != 0 || len(got.Exclude) != 0 {
		t.Errorf("nil Merge() = %+v, want empty", got)
	}
}
