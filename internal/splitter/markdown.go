package splitter

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/linemap"
	"github.com/trueflow-dev/trueflow/internal/mdspan"
)

// splitMarkdown partitions a Markdown document by heading level: everything
// before the first heading is a Preamble, and each heading starts a new
// Section that runs until the next heading of equal or lesser level (or
// end of document). Sub-headings nest inside their parent's section rather
// than starting their own top-level block; the sub-splitter is responsible
// for descending into a Section's internal structure.
func splitMarkdown(content string) []block.Block {
	source := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	type heading struct {
		level int
		start int
	}
	var headings []heading

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		if start, _, ok := mdspan.ByteRange(n); ok {
			// A heading's text segment starts after its "#" marker; the
			// section starts at the beginning of the heading's line.
			start = strings.LastIndex(content[:start], "\n") + 1
			headings = append(headings, heading{level: h.Level, start: start})
		}
	}

	if len(headings) == 0 {
		if strings.TrimSpace(content) == "" {
			return nil
		}
		startLine, endLine := linemap.ByteRangeToLines(content, 0, len(content))
		return []block.Block{block.New(content, block.KindPreamble, startLine, endLine)}
	}

	var blocks []block.Block

	if headings[0].start > 0 {
		preamble := content[:headings[0].start]
		if strings.TrimSpace(preamble) != "" {
			startLine, endLine := linemap.ByteRangeToLines(content, 0, headings[0].start)
			blocks = append(blocks, block.New(preamble, block.KindPreamble, startLine, endLine))
		}
	}

	// Only a heading at or below the currently open section's level starts a
	// new Section; a deeper heading is a sub-heading and stays absorbed into
	// the section already open, so its own span must not be emitted.
	var sections []heading
	currentLevel := 0
	for _, h := range headings {
		if len(sections) == 0 || h.level <= currentLevel {
			sections = append(sections, h)
			currentLevel = h.level
		}
	}

	for i, h := range sections {
		end := len(content)
		if i+1 < len(sections) {
			end = sections[i+1].start
		}
		section := content[h.start:end]
		startLine, endLine := linemap.ByteRangeToLines(content, h.start, end)
		blocks = append(blocks, block.New(section, block.KindSection, startLine, endLine))
	}

	return blocks
}
