// Package linemap converts byte offsets within a source text into the
// 0-indexed [start, end) line ranges the block model stores, shared by the
// top-level splitter, the sub-splitter, and the scanner's fallback path.
package linemap

import "strings"

// ByteRangeToLines converts a byte range [startByte, endByte) within content
// into a 0-indexed, end-exclusive line range. The end line is the line
// containing endByte, plus one, unless endByte falls exactly on a line
// boundary immediately after a newline, in which case that trailing empty
// line is not counted.
func ByteRangeToLines(content string, startByte, endByte int) (startLine, endLine int) {
	if startByte < 0 {
		startByte = 0
	}
	if endByte > len(content) {
		endByte = len(content)
	}
	if endByte < startByte {
		endByte = startByte
	}

	startLine = strings.Count(content[:startByte], "\n")

	span := content[startByte:endByte]
	lineSpan := strings.Count(span, "\n")
	if endByte > startByte && strings.HasSuffix(span, "\n") {
		lineSpan--
	}
	endLine = startLine + lineSpan + 1

	return startLine, endLine
}
