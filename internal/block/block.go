// Package block defines the unit of review: a content-addressed span of a
// file, tagged with a semantic kind, plus the FileState that groups a
// file's blocks under its own Merkle root.
package block

import (
	"fmt"
	"strings"

	"github.com/trueflow-dev/trueflow/internal/hashing"
	"github.com/trueflow-dev/trueflow/internal/lang"
)

// Kind is the closed set of semantic tags a Block can carry. New kinds are
// never added lightly: the set is serialized into every review record ever
// written, and coverage resolution and policy filtering both switch on it
// exhaustively.
type Kind string

const (
	KindTextBlock         Kind = "TextBlock"
	KindCode              Kind = "code"
	KindGap               Kind = "gap"
	KindComment           Kind = "comment"
	KindSection           Kind = "Section"
	KindPreamble          Kind = "Preamble"
	KindFunction          Kind = "function"
	KindStruct            Kind = "struct"
	KindEnum              Kind = "enum"
	KindImpl              Kind = "impl"
	KindModule            Kind = "module"
	KindImport            Kind = "import"
	KindConst             Kind = "const"
	KindStatic            Kind = "static"
	KindMacro             Kind = "macro"
	KindClass             Kind = "class"
	KindExport            Kind = "export"
	KindVariable          Kind = "variable"
	KindDecorator         Kind = "decorator"
	KindInterface         Kind = "interface"
	KindType              Kind = "type"
	KindMethod            Kind = "method"
	KindCommand           Kind = "command"
	KindCodeParagraph     Kind = "CodeParagraph"
	KindHeader            Kind = "Header"
	KindParagraph         Kind = "Paragraph"
	KindCodeBlock         Kind = "CodeBlock"
	KindList              Kind = "List"
	KindListItem          Kind = "ListItem"
	KindQuote             Kind = "Quote"
	KindElement           Kind = "Element"
	KindContent           Kind = "Content"
	KindSentence          Kind = "Sentence"
	KindImports           Kind = "Imports"
	KindSignature         Kind = "Signature"
	KindFunctionSignature Kind = "FunctionSignature"
	KindTest              Kind = "test"
	KindUnknown           Kind = "unknown"
)

// allKinds enumerates the closed set for validation and policy iteration.
var allKinds = []Kind{
	KindTextBlock, KindCode, KindGap, KindComment, KindSection, KindPreamble,
	KindFunction, KindStruct, KindEnum, KindImpl, KindModule, KindImport,
	KindConst, KindStatic, KindMacro, KindClass, KindExport, KindVariable,
	KindDecorator, KindInterface, KindType, KindMethod, KindCommand,
	KindCodeParagraph, KindHeader, KindParagraph, KindCodeBlock, KindList,
	KindListItem, KindQuote, KindElement, KindContent, KindSentence,
	KindImports, KindSignature, KindFunctionSignature, KindTest, KindUnknown,
}

// String satisfies fmt.Stringer; the string value is also what gets
// serialized to JSON.
func (k Kind) String() string {
	return string(k)
}

// normalizeKindName mirrors the original's loose parser: case-insensitive,
// with underscores and dashes stripped, so "code_paragraph", "code-paragraph"
// and "CodeParagraph" all resolve the same way.
func normalizeKindName(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.NewReplacer("_", "", "-", "").Replace(value)
	return value
}

// ParseKind resolves a loosely-formatted string (CLI flags, config files,
// legacy records) into a Kind. Unknown input is an error, not KindUnknown,
// so callers can tell "explicitly unknown" apart from "bad input".
func ParseKind(value string) (Kind, error) {
	normalized := normalizeKindName(value)
	for _, k := range allKinds {
		if normalizeKindName(string(k)) == normalized {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown block kind: %s", value)
}

// IsImportLike reports whether a block represents an import/use declaration
// (or the coalesced Imports block the optimizer produces).
func (k Kind) IsImportLike() bool {
	return k == KindImport || k == KindImports
}

// Block is a single content-addressed span of a file.
type Block struct {
	// Hash is the content-addressable identity of this block: HashStr(Content).
	Hash string `json:"hash"`
	// Content is the exact source text of the span.
	Content string `json:"content"`
	// Kind is the semantic tag assigned by the splitter or optimizer.
	Kind Kind `json:"kind"`
	// Tags are free-form labels threaded down from the parent block during
	// sub-splitting (currently unused at the top level, reserved for
	// policy/complexity annotation pass-through).
	Tags []string `json:"tags,omitempty"`
	// Complexity is the cyclomatic-complexity annotation for
	// Function/Method/Impl blocks; zero for everything else.
	Complexity int `json:"complexity,omitempty"`
	// StartLine is the 0-indexed, inclusive start line.
	StartLine int `json:"start_line"`
	// EndLine is the 0-indexed, exclusive end line.
	EndLine int `json:"end_line"`
}

// New constructs a Block, computing its content hash.
func New(content string, kind Kind, startLine, endLine int) Block {
	return Block{
		Hash:      hashing.HashStr(content),
		Content:   content,
		Kind:      kind,
		StartLine: startLine,
		EndLine:   endLine,
	}
}

// FileState groups a file's decomposed blocks under the file's own Merkle
// root (FileHash).
type FileState struct {
	Path     string      `json:"path"`
	Language lang.Language `json:"language"`
	FileHash string      `json:"file_hash"`
	Blocks   []Block     `json:"blocks"`
}
