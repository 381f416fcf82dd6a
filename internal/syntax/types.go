// Package syntax provides read-only syntax trees for source files via tree-sitter.
//
// Trees are stored as arenas of nodes addressed by NodeID, so a parsed tree has
// no pointer cycles and can be shared by concurrent readers once built.
package syntax

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
)

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return LangGo, true
	case ".js", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".jsx":
		return LangJavaScript, true // JSX uses JS parser
	case ".py", ".pyw":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".java":
		return LangJava, true
	case ".kt", ".kts":
		return LangKotlin, true
	default:
		return "", false
	}
}

// LanguageFromPath detects the language from a file name.
func LanguageFromPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}

// CountLines returns the number of lines in source. A trailing newline does
// not start a new line; empty input has zero lines.
func CountLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}

// commentKinds are dropped while building trees so comments never affect
// canonical token streams.
var commentKinds = map[string]bool{
	"comment":           true,
	"line_comment":      true,
	"block_comment":     true,
	"multiline_comment": true,
}

// IsCommentKind reports whether kind is a comment node kind in any supported grammar.
func IsCommentKind(kind string) bool {
	return commentKinds[kind]
}
