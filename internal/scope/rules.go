package scope

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

// DeclarationFile is the default filename for category scope declarations.
const DeclarationFile = "SCOPES.toml"

// Rules maps warning categories to selector variants. Category lookup is
// exact and case-sensitive.
type Rules struct {
	Default    Kind
	Categories map[string]Kind
}

// DefaultRules returns the built-in checkstyle category table.
func DefaultRules() *Rules {
	r := &Rules{Default: KindMethodOrClass, Categories: make(map[string]Kind)}
	for kind, categories := range defaultCategories {
		for _, c := range categories {
			r.Categories[c] = kind
		}
	}
	return r
}

var defaultCategories = map[Kind][]string{
	KindClass: {
		"FinalClass", "HideUtilityClassConstructor", "DesignForExtension",
		"ClassDataAbstractionCoupling", "ClassFanOutComplexity", "MutableException",
		"ThrowsCount", "InnerTypeLast", "OneTopLevelClass", "OuterTypeNumber",
		"AbstractClassName", "ClassTypeParameterName", "TypeName",
	},
	KindEnvironment: {
		"NeedBraces", "EmptyBlock", "AvoidNestedBlocks", "LeftCurly", "RightCurly",
		"EmptyStatement", "EqualsAvoidNull", "InnerAssignment", "MagicNumber",
		"MissingSwitchDefault", "ModifiedControlVariable", "MultipleStringLiterals",
		"NestedForDepth", "NestedIfDepth", "NestedTryDepth", "OneStatementPerLine",
		"SimplifyBooleanExpression", "SimplifyBooleanReturn", "StringLiteralEquality",
		"DefaultComesLast", "FallThrough", "IllegalCatch", "IllegalThrows",
		"BooleanExpressionComplexity", "AvoidInlineConditionals", "WhitespaceAround",
		"WhitespaceAfter", "OperatorWrap", "ParenPad", "NoWhitespaceBefore",
		"NoWhitespaceAfter", "MethodParamPad", "TypecastParenPad", "LineLength",
	},
	KindFile: {
		"InterfaceIsType", "FileLength", "NewlineAtEndOfFile", "FileTabCharacter",
		"RegexpSingleline", "RegexpMultiline", "AvoidStarImport", "IllegalImport",
		"RedundantImport", "UnusedImports", "ImportOrder", "CustomImportOrder",
		"AvoidStaticImport", "JavadocPackage", "Header", "RegexpHeader",
		"UniqueProperties", "Translation",
	},
	KindInstanceVariable: {
		"ExplicitInitialization", "VisibilityModifier", "DeclarationOrder",
		"MemberName", "StaticVariableName", "ConstantName", "HiddenField",
		"MultipleVariableDeclarations", "JavadocVariable", "ArrayTypeStyle",
		"IllegalType",
	},
	KindMethod: {
		"MethodName", "MethodLength", "ParameterNumber", "ParameterName",
		"CyclomaticComplexity", "NPathComplexity", "JavaNCSS", "ReturnCount",
		"ExecutableStatementCount", "FinalParameters", "FinalLocalVariable",
		"LocalFinalVariableName", "LocalVariableName", "ParameterAssignment",
		"CovariantEquals", "EqualsHashCode", "MethodTypeParameterName",
		"JavadocMethod",
	},
	KindMethodOrClass: {
		"RedundantModifier", "JavadocStyle", "JavadocType", "ModifierOrder",
		"RedundantThrows", "TodoComment", "TrailingComment", "UncommentedMain",
		"AnnotationUseStyle", "MissingDeprecated", "MissingOverride",
	},
	KindNamePackage: {
		"PackageName", "PackageDeclaration",
	},
}

// KindFor returns the variant for a category, or the default for unknown ones.
func (r *Rules) KindFor(category string) Kind {
	if r == nil {
		return KindMethodOrClass
	}
	if k, ok := r.Categories[category]; ok {
		return k
	}
	if r.Default != "" {
		return r.Default
	}
	return KindMethodOrClass
}

// Merge returns a copy of r with the categories of other layered on top.
func (r *Rules) Merge(other *Rules) *Rules {
	out := &Rules{Default: r.Default, Categories: make(map[string]Kind, len(r.Categories))}
	for c, k := range r.Categories {
		out.Categories[c] = k
	}
	if other == nil {
		return out
	}
	if other.Default != "" {
		out.Default = other.Default
	}
	for c, k := range other.Categories {
		out.Categories[c] = k
	}
	return out
}

// ScopeDeclaration lists the categories handled by one variant in SCOPES.toml.
type ScopeDeclaration struct {
	Kind       string   `toml:"kind"`
	Categories []string `toml:"categories"`
}

// DeclarationsFile is the root structure of SCOPES.toml.
type DeclarationsFile struct {
	Version int                `toml:"version"`
	Default string             `toml:"default,omitempty"`
	Scopes  []ScopeDeclaration `toml:"scope"`
}

// ParseDeclarationFile parses a SCOPES.toml file into rules.
func ParseDeclarationFile(filePath string) (*Rules, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(filePath), err)
	}

	var file DeclarationsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filePath), err)
	}

	r := &Rules{Categories: make(map[string]Kind)}
	if file.Default != "" {
		k, err := ParseKind(file.Default)
		if err != nil {
			return nil, fmt.Errorf("invalid default scope: %w", err)
		}
		r.Default = k
	}
	for _, decl := range file.Scopes {
		k, err := ParseKind(decl.Kind)
		if err != nil {
			return nil, err
		}
		for _, c := range decl.Categories {
			r.Categories[c] = k
		}
	}
	return r, nil
}

// LoadDeclaredRules layers the declaration file under repoRoot, when present,
// on top of the built-in rules.
func LoadDeclaredRules(repoRoot, declarationFile string) (*Rules, error) {
	if declarationFile == "" {
		declarationFile = DeclarationFile
	}
	filePath := declarationFile
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(repoRoot, declarationFile)
	}

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return DefaultRules(), nil
	}

	declared, err := ParseDeclarationFile(filePath)
	if err != nil {
		return nil, err
	}
	return DefaultRules().Merge(declared), nil
}

// WriteDeclarationFile writes rules to filePath in SCOPES.toml form, one
// [[scope]] table per variant with sorted categories.
func WriteDeclarationFile(filePath string, r *Rules) error {
	byKind := make(map[Kind][]string)
	for c, k := range r.Categories {
		byKind[k] = append(byKind[k], c)
	}

	file := DeclarationsFile{Version: 1, Default: string(r.Default)}
	for _, k := range AllKinds() {
		categories := byKind[k]
		if len(categories) == 0 {
			continue
		}
		sort.Strings(categories)
		file.Scopes = append(file.Scopes, ScopeDeclaration{Kind: string(k), Categories: categories})
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(filePath), err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(filePath), err)
	}
	return nil
}
