package fingerprint

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"warntrace/internal/errors"
	"warntrace/internal/syntax"
)

type ns = syntax.NodeSpec

// toyProvider parses a brace-delimited mini language into Java node kinds:
//
//	package p;            package_declaration
//	import q;             import_declaration
//	class A {             class_declaration > identifier, class_body
//	  int x;              field_declaration (inside a class body)
//	  void m() {          method_declaration > void_type, identifier, formal_parameters, block
//	    if (c) {          if_statement > parenthesized_expression, block
//	    return x;         return_statement
//	    call();           expression_statement
//
// Blank lines and // comments produce no nodes. Every parse is counted.
type toyProvider struct {
	parses atomic.Int32
}

func (p *toyProvider) Parse(ctx context.Context, source []byte, lang syntax.Language) (*syntax.Tree, error) {
	p.parses.Add(1)
	tp := &toyParser{lines: strings.Split(string(source), "\n")}
	children, err := tp.items(false)
	if err == nil && tp.pos < len(tp.lines) {
		err = fmt.Errorf("unbalanced brace at line %d", tp.pos+1)
	}
	if err != nil {
		return nil, errors.New(errors.ParseError, err.Error(), nil)
	}
	n := syntax.CountLines(source)
	return syntax.FromSpec(lang, n, ns{Kind: "program", StartLine: 1, EndLine: n, Children: children})
}

type toyParser struct {
	lines []string
	pos   int
}

func (p *toyParser) items(inClass bool) ([]ns, error) {
	var out []ns
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		at := p.pos + 1
		switch {
		case line == "" || strings.HasPrefix(line, "//"):
			p.pos++
		case line == "}":
			return out, nil
		case strings.HasSuffix(line, "{"):
			p.pos++
			head := strings.Fields(strings.TrimSuffix(line, "{"))
			isClass := len(head) > 0 && head[0] == "class"
			body, err := p.items(isClass)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.lines) {
				return nil, fmt.Errorf("unclosed block at line %d", at)
			}
			end := p.pos + 1
			p.pos++
			out = append(out, container(head, at, end, body))
		case strings.HasSuffix(line, ";"):
			p.pos++
			out = append(out, statement(line, at, inClass))
		default:
			return nil, fmt.Errorf("syntax error at line %d", at)
		}
	}
	return out, nil
}

func container(head []string, start, end int, body []ns) ns {
	leaf := func(kind, text string) ns {
		return ns{Kind: kind, Text: text, StartLine: start, EndLine: start}
	}
	name := ""
	if len(head) > 1 {
		name = head[1]
	}
	switch head[0] {
	case "class":
		return ns{Kind: "class_declaration", StartLine: start, EndLine: end, Children: []ns{
			leaf("identifier", name),
			{Kind: "class_body", StartLine: start, EndLine: end, Children: body},
		}}
	case "if", "while":
		return ns{Kind: head[0] + "_statement", StartLine: start, EndLine: end, Children: []ns{
			leaf("parenthesized_expression", strings.Join(head[1:], " ")),
			{Kind: "block", StartLine: start, EndLine: end, Children: body},
		}}
	default:
		return ns{Kind: "method_declaration", StartLine: start, EndLine: end, Children: []ns{
			leaf("void_type", head[0]),
			leaf("identifier", strings.TrimSuffix(name, "()")),
			leaf("formal_parameters", "()"),
			{Kind: "block", StartLine: start, EndLine: end, Children: body},
		}}
	}
}

func statement(line string, at int, inClass bool) ns {
	leaf := func(kind, text string) ns {
		return ns{Kind: kind, Text: text, StartLine: at, EndLine: at}
	}
	node := func(kind string, children ...ns) ns {
		return ns{Kind: kind, StartLine: at, EndLine: at, Children: children}
	}
	fields := strings.Fields(strings.TrimSuffix(line, ";"))
	last := fields[len(fields)-1]

	switch fields[0] {
	case "package":
		return node("package_declaration", leaf("identifier", last))
	case "import":
		return node("import_declaration", leaf("identifier", last))
	case "return":
		return node("return_statement", leaf("identifier", last))
	case "int":
		kind := "local_variable_declaration"
		if inClass {
			kind = "field_declaration"
		}
		return node(kind, leaf("integral_type", "int"), node("variable_declarator", leaf("identifier", last)))
	default:
		return node("expression_statement", leaf("identifier", strings.TrimSuffix(last, "()")))
	}
}
