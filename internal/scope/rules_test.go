package scope

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRules_KindFor(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		category string
		want     Kind
	}{
		{"FinalClass", KindClass},
		{"HideUtilityClassConstructor", KindClass},
		{"NeedBraces", KindEnvironment},
		{"EmptyBlock", KindEnvironment},
		{"InterfaceIsType", KindFile},
		{"FileLength", KindFile},
		{"ExplicitInitialization", KindInstanceVariable},
		{"VisibilityModifier", KindInstanceVariable},
		{"MethodName", KindMethod},
		{"MethodLength", KindMethod},
		{"RedundantModifier", KindMethodOrClass},
		{"JavadocStyle", KindMethodOrClass},
		{"PackageName", KindNamePackage},
		{"SomethingNew", KindMethodOrClass},
		{"finalclass", KindMethodOrClass},
	}

	for _, tt := range tests {
		if got := r.KindFor(tt.category); got != tt.want {
			t.Errorf("KindFor(%q) = %s, want %s", tt.category, got, tt.want)
		}
	}
}

func TestRules_NilAndMerge(t *testing.T) {
	var nilRules *Rules
	if got := nilRules.KindFor("FinalClass"); got != KindMethodOrClass {
		t.Errorf("nil KindFor() = %s, want %s", got, KindMethodOrClass)
	}

	base := DefaultRules()
	merged := base.Merge(&Rules{
		Default:    KindFile,
		Categories: map[string]Kind{"FinalClass": KindMethod},
	})

	if got := merged.KindFor("FinalClass"); got != KindMethod {
		t.Errorf("merged KindFor(FinalClass) = %s, want %s", got, KindMethod)
	}
	if got := merged.KindFor("Unknown"); got != KindFile {
		t.Errorf("merged KindFor(Unknown) = %s, want %s", got, KindFile)
	}
	if got := base.KindFor("FinalClass"); got != KindClass {
		t.Errorf("Merge() mutated base: KindFor(FinalClass) = %s", got)
	}
}

func TestDeclarationFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DeclarationFile)

	want := &Rules{
		Default: KindClass,
		Categories: map[string]Kind{
			"CustomCheck": KindEnvironment,
			"OtherCheck":  KindEnvironment,
			"PackageName": KindFile,
		},
	}
	if err := WriteDeclarationFile(path, want); err != nil {
		t.Fatalf("WriteDeclarationFile() error = %v", err)
	}

	got, err := ParseDeclarationFile(path)
	if err != nil {
		t.Fatalf("ParseDeclarationFile() error = %v", err)
	}
	if got.Default != want.Default {
		t.Errorf("Default = %s, want %s", got.Default, want.Default)
	}
	for c, k := range want.Categories {
		if got.Categories[c] != k {
			t.Errorf("Categories[%q] = %s, want %s", c, got.Categories[c], k)
		}
	}
}

func TestLoadDeclaredRules(t *testing.T) {
	dir := t.TempDir()

	r, err := LoadDeclaredRules(dir, "")
	if err != nil {
		t.Fatalf("LoadDeclaredRules() without file error = %v", err)
	}
	if got := r.KindFor("NeedBraces"); got != KindEnvironment {
		t.Errorf("KindFor(NeedBraces) = %s, want %s", got, KindEnvironment)
	}

	content := `version = 1

[[scope]]
kind = "file"
categories = ["NeedBraces", "MyCheck"]
`
	if err := os.WriteFile(filepath.Join(dir, DeclarationFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	r, err = LoadDeclaredRules(dir, "")
	if err != nil {
		t.Fatalf("LoadDeclaredRules() error = %v", err)
	}
	if got := r.KindFor("NeedBraces"); got != KindFile {
		t.Errorf("KindFor(NeedBraces) = %s, want %s", got, KindFile)
	}
	if got := r.KindFor("MyCheck"); got != KindFile {
		t.Errorf("KindFor(MyCheck) = %s, want %s", got, KindFile)
	}
	if got := r.KindFor("FinalClass"); got != KindClass {
		t.Errorf("KindFor(FinalClass) = %s, want %s", got, KindClass)
	}
}

func TestParseDeclarationFile_InvalidKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), DeclarationFile)
	content := "version = 1\n\n[[scope]]\nkind = \"statement\"\ncategories = [\"X\"]\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ParseDeclarationFile(path); err == nil {
		t.Error("expected error for unknown scope kind")
	}
}
