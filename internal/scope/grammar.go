package scope

import "warntrace/internal/syntax"

// Grammar groups the node kinds a language uses for each structural role.
type Grammar struct {
	Packages  []string
	Imports   []string
	Types     []string
	TypeBody  []string
	Methods   []string
	Fields    []string
	Blocks    []string
	Controls  []string
	kindIndex map[string]role
}

type role uint16

const (
	rolePackage role = 1 << iota
	roleImport
	roleType
	roleTypeBody
	roleMethod
	roleField
	roleBlock
	roleControl
)

func (g *Grammar) index() {
	g.kindIndex = make(map[string]role)
	add := func(r role, kinds []string) {
		for _, k := range kinds {
			g.kindIndex[k] |= r
		}
	}
	add(rolePackage, g.Packages)
	add(roleImport, g.Imports)
	add(roleType, g.Types)
	add(roleTypeBody, g.TypeBody)
	add(roleMethod, g.Methods)
	add(roleField, g.Fields)
	add(roleBlock, g.Blocks)
	add(roleControl, g.Controls)
}

func (g *Grammar) is(kind string, r role) bool {
	return g.kindIndex[kind]&r != 0
}

// IsPackage reports whether kind declares a package or namespace.
func (g *Grammar) IsPackage(kind string) bool { return g.is(kind, rolePackage) }

// IsType reports whether kind declares a type.
func (g *Grammar) IsType(kind string) bool { return g.is(kind, roleType) }

// IsTypeBody reports whether kind is the member block of a type.
func (g *Grammar) IsTypeBody(kind string) bool { return g.is(kind, roleTypeBody) }

// IsMethod reports whether kind declares a method, function or constructor.
func (g *Grammar) IsMethod(kind string) bool { return g.is(kind, roleMethod) }

// IsField reports whether kind declares a field inside a type body.
func (g *Grammar) IsField(kind string) bool { return g.is(kind, roleField) }

// IsBlock reports whether kind is a compound statement.
func (g *Grammar) IsBlock(kind string) bool { return g.is(kind, roleBlock) }

// IsControl reports whether kind is a conditional or loop statement.
func (g *Grammar) IsControl(kind string) bool { return g.is(kind, roleControl) }

var grammars = map[syntax.Language]*Grammar{
	syntax.LangJava: {
		Packages: []string{"package_declaration"},
		Imports:  []string{"import_declaration"},
		Types: []string{
			"class_declaration", "interface_declaration", "enum_declaration",
			"record_declaration", "annotation_type_declaration",
		},
		TypeBody: []string{"class_body", "interface_body", "enum_body", "annotation_type_body"},
		Methods:  []string{"method_declaration", "constructor_declaration", "compact_constructor_declaration"},
		Fields:   []string{"field_declaration", "constant_declaration"},
		Blocks:   []string{"block", "constructor_body", "switch_block"},
		Controls: []string{
			"if_statement", "for_statement", "enhanced_for_statement", "while_statement",
			"do_statement", "try_statement", "switch_expression", "synchronized_statement",
			"catch_clause",
		},
	},
	syntax.LangGo: {
		Packages: []string{"package_clause"},
		Imports:  []string{"import_declaration"},
		Types:    []string{"type_declaration"},
		TypeBody: []string{"field_declaration_list", "method_spec_list"},
		Methods:  []string{"function_declaration", "method_declaration"},
		Fields:   []string{"field_declaration", "method_spec"},
		Blocks:   []string{"block"},
		Controls: []string{
			"if_statement", "for_statement", "expression_switch_statement",
			"type_switch_statement", "select_statement",
		},
	},
	syntax.LangPython: {
		Imports:  []string{"import_statement", "import_from_statement"},
		Types:    []string{"class_definition"},
		TypeBody: []string{"block"},
		Methods:  []string{"function_definition"},
		Fields:   []string{"expression_statement"},
		Blocks:   []string{"block"},
		Controls: []string{
			"if_statement", "for_statement", "while_statement", "try_statement",
			"with_statement", "match_statement",
		},
	},
	syntax.LangKotlin: {
		Packages: []string{"package_header"},
		Imports:  []string{"import_list", "import_header"},
		Types:    []string{"class_declaration", "object_declaration"},
		TypeBody: []string{"class_body", "enum_class_body"},
		Methods:  []string{"function_declaration", "secondary_constructor"},
		Fields:   []string{"property_declaration"},
		Blocks:   []string{"statements", "function_body"},
		Controls: []string{
			"if_expression", "for_statement", "while_statement", "do_while_statement",
			"when_expression", "try_expression",
		},
	},
	syntax.LangRust: {
		Imports:  []string{"use_declaration"},
		Types:    []string{"struct_item", "enum_item", "trait_item", "impl_item"},
		TypeBody: []string{"field_declaration_list", "declaration_list", "enum_variant_list"},
		Methods:  []string{"function_item"},
		Fields:   []string{"field_declaration", "enum_variant"},
		Blocks:   []string{"block"},
		Controls: []string{
			"if_expression", "for_expression", "while_expression", "loop_expression",
			"match_expression",
		},
	},
}

func init() {
	js := &Grammar{
		Imports: []string{"import_statement"},
		Types: []string{
			"class_declaration", "class", "abstract_class_declaration",
			"interface_declaration", "enum_declaration",
		},
		TypeBody: []string{"class_body", "interface_body", "object_type", "enum_body"},
		// function_expression and arrow_function are anonymous and resolve
		// to the enclosing named function.
		Methods: []string{
			"method_definition", "function_declaration", "generator_function_declaration",
		},
		Fields:   []string{"field_definition", "public_field_definition", "property_signature"},
		Blocks:   []string{"statement_block"},
		Controls: []string{
			"if_statement", "for_statement", "for_in_statement", "while_statement",
			"do_statement", "try_statement", "switch_statement",
		},
	}
	grammars[syntax.LangJavaScript] = js
	grammars[syntax.LangTypeScript] = js
	grammars[syntax.LangTSX] = js

	for _, g := range grammars {
		g.index()
	}
}

// GrammarFor returns the node kind table for lang. Unknown languages get a
// table merged from every supported grammar.
func GrammarFor(lang syntax.Language) *Grammar {
	if g, ok := grammars[lang]; ok {
		return g
	}
	return mergedGrammar
}

var mergedGrammar = func() *Grammar {
	g := &Grammar{}
	for _, lang := range []syntax.Language{
		syntax.LangJava, syntax.LangGo, syntax.LangPython, syntax.LangKotlin, syntax.LangRust,
	} {
		src := grammars[lang]
		g.Packages = append(g.Packages, src.Packages...)
		g.Imports = append(g.Imports, src.Imports...)
		g.Types = append(g.Types, src.Types...)
		g.TypeBody = append(g.TypeBody, src.TypeBody...)
		g.Methods = append(g.Methods, src.Methods...)
		g.Fields = append(g.Fields, src.Fields...)
		g.Blocks = append(g.Blocks, src.Blocks...)
		g.Controls = append(g.Controls, src.Controls...)
	}
	g.index()
	return g
}()
