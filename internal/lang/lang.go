// Package lang classifies files by language so the splitter knows which
// grammar, if any, to apply.
package lang

import (
	"os"
	"path/filepath"
	"strings"
)

// Language is the closed set of languages trueflow understands structurally.
// Anything else falls back to paragraph-based text splitting.
type Language string

const (
	Rust       Language = "rust"
	Elisp      Language = "elisp"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	Python     Language = "python"
	Shell      Language = "shell"
	Markdown   Language = "markdown"
	Toml       Language = "toml"
	Nix        Language = "nix"
	Just       Language = "just"
	Text       Language = "text"
	Unknown    Language = "unknown"
)

// UsesTextFallback reports whether a language is split by blank-line
// paragraph breaks instead of a grammar.
func (l Language) UsesTextFallback() bool {
	switch l {
	case Text, Toml, Nix, Just:
		return true
	default:
		return false
	}
}

var extensionTable = map[string]Language{
	"rs":       Rust,
	"el":       Elisp,
	"js":       JavaScript,
	"ts":       TypeScript,
	"py":       Python,
	"sh":       Shell,
	"md":       Markdown,
	"markdown": Markdown,
	"toml":     Toml,
	"nix":      Nix,
	"just":     Just,
	"org":      Text,
	"txt":      Text,
}

// FromExtension maps a bare file extension (no leading dot) to a Language.
// The bool result is false when the extension carries no language identity
// at all (as opposed to Unknown, which still means "some kind of file").
func FromExtension(ext string) (Language, bool) {
	l, ok := extensionTable[ext]
	return l, ok
}

// FileKind distinguishes the coarse treatment a file receives from the
// scanner before language-specific splitting kicks in.
type FileKind int

const (
	KindCode FileKind = iota
	KindMarkup
	KindBinary
	KindText
)

// FileType is the result of classifying a file: its coarse FileKind plus,
// for code files, the resolved Language.
type FileType struct {
	Kind     FileKind
	Language Language
}

// AnalyzeFile classifies path by extension first, then falls back to a
// binary-content sniff (first 1KB, NUL-byte heuristic) for extensionless or
// unrecognized files.
func AnalyzeFile(path string) FileType {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext != "" {
		if language, ok := FromExtension(ext); ok {
			return FileType{Kind: KindCode, Language: language}
		}
	}

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		buf := make([]byte, 1024)
		n, _ := f.Read(buf)
		for _, b := range buf[:n] {
			if b == 0 {
				return FileType{Kind: KindBinary}
			}
		}
	}

	return FileType{Kind: KindText}
}
