// Package textsplit implements the blank-line paragraph/gap splitting shared
// by the top-level block splitter, the sub-splitter's generic code path, and
// the scanner's parse-failure fallback.
package textsplit

import "regexp"

// ParagraphBreak matches a blank line (possibly containing only
// whitespace) separating two paragraphs.
var ParagraphBreak = regexp.MustCompile(`\n\s*\n`)

// MakeBlockFunc builds a caller-defined block from a chunk of content,
// its byte offsets within the original text, and whether the chunk is the
// paragraph-break gap itself (as opposed to paragraph content).
type MakeBlockFunc[T any] func(chunk string, start, end int, isGap bool) T

// SplitByParagraphBreaks splits content on ParagraphBreak, emitting a
// caller-typed block for every non-empty paragraph and every gap in
// between. Concatenating the returned blocks' original spans reconstructs
// content exactly.
func SplitByParagraphBreaks[T any](content string, makeBlock MakeBlockFunc[T]) []T {
	var out []T
	startOffset := 0

	for _, loc := range ParagraphBreak.FindAllStringIndex(content, -1) {
		matchStart, matchEnd := loc[0], loc[1]

		if startOffset < matchStart {
			chunk := content[startOffset:matchStart]
			if chunk != "" {
				out = append(out, makeBlock(chunk, startOffset, matchStart, false))
			}
		}

		gapChunk := content[matchStart:matchEnd]
		out = append(out, makeBlock(gapChunk, matchStart, matchEnd, true))

		startOffset = matchEnd
	}

	if startOffset < len(content) {
		chunk := content[startOffset:]
		if chunk != "" {
			out = append(out, makeBlock(chunk, startOffset, len(content), false))
		}
	}

	return out
}
