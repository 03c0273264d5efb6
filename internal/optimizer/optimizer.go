// Package optimizer coalesces the splitter's raw block sequence into a more
// reviewable one: consecutive imports merge into a single Imports block, and
// small adjacent CodeParagraph blocks merge up to a line budget.
package optimizer

import "github.com/trueflow-dev/trueflow/internal/block"

// codeParagraphMergeLineBudget bounds how many source lines a merged run of
// CodeParagraph blocks may span. It is a pinned magic constant: changing it
// changes block hashes for every file with multi-paragraph functions, which
// would silently invalidate existing review records.
const codeParagraphMergeLineBudget = 8

// Optimize runs the import-coalescing pass followed by the code-paragraph
// merge pass.
func Optimize(blocks []block.Block) []block.Block {
	return optimizeCodeParagraphs(optimizeImports(blocks))
}

type decision int

const (
	decisionBuffer decision = iota
	decisionFlushAndBuffer
	decisionFlushAndEmit
)

func optimizeImports(blocks []block.Block) []block.Block {
	decide := func(b block.Block, buffer []block.Block) decision {
		if b.Kind == block.KindImport || (b.Kind == block.KindGap && len(buffer) > 0) {
			return decisionBuffer
		}
		return decisionFlushAndEmit
	}
	flush := func(buffer []block.Block) []block.Block {
		return flushBlocks(buffer, block.KindImport, block.KindImports, "\n", true)
	}
	return optimizeSequence(blocks, decide, flush)
}

func optimizeCodeParagraphs(blocks []block.Block) []block.Block {
	decide := func(b block.Block, buffer []block.Block) decision {
		if b.Kind != block.KindCodeParagraph && b.Kind != block.KindGap {
			return decisionFlushAndEmit
		}
		if b.Kind == block.KindGap {
			return decisionBuffer
		}

		startLine := b.StartLine
		for _, buffered := range buffer {
			if buffered.Kind == block.KindCodeParagraph {
				startLine = buffered.StartLine
				break
			}
		}
		endLine := b.EndLine
		size := endLine - startLine
		if size < 0 {
			size = 0
		}

		if size > codeParagraphMergeLineBudget {
			return decisionFlushAndBuffer
		}
		return decisionBuffer
	}
	flush := func(buffer []block.Block) []block.Block {
		return flushBlocks(buffer, block.KindCodeParagraph, block.KindCodeParagraph, "", false)
	}
	return optimizeSequence(blocks, decide, flush)
}

func optimizeSequence(blocks []block.Block, decide func(block.Block, []block.Block) decision, flush func([]block.Block) []block.Block) []block.Block {
	optimized := make([]block.Block, 0, len(blocks))
	var buffer []block.Block

	for _, b := range blocks {
		switch decide(b, buffer) {
		case decisionBuffer:
			buffer = append(buffer, b)
		case decisionFlushAndBuffer:
			if len(buffer) > 0 {
				optimized = append(optimized, flush(buffer)...)
				buffer = nil
			}
			buffer = append(buffer, b)
		case decisionFlushAndEmit:
			if len(buffer) > 0 {
				optimized = append(optimized, flush(buffer)...)
				buffer = nil
			}
			optimized = append(optimized, b)
		}
	}

	if len(buffer) > 0 {
		optimized = append(optimized, flush(buffer)...)
	}

	return optimized
}

// flushBlocks merges the contiguous run of targetKind blocks within buffer
// (plus any interleaved Gap blocks inside that run) into a single block of
// mergedKind, provided at least two targetKind blocks are present. Leading
// and trailing blocks outside the run pass through unchanged.
func flushBlocks(buffer []block.Block, targetKind, mergedKind block.Kind, separator string, useSeparator bool) []block.Block {
	targetCount := 0
	firstIdx, lastIdx := -1, -1
	for i, b := range buffer {
		if b.Kind == targetKind {
			targetCount++
			if firstIdx == -1 {
				firstIdx = i
			}
			lastIdx = i
		}
	}
	if targetCount < 2 {
		return buffer
	}

	result := make([]block.Block, 0, len(buffer))
	result = append(result, buffer[:firstIdx]...)

	rangeBlocks := buffer[firstIdx : lastIdx+1]
	startLine := rangeBlocks[0].StartLine
	endLine := rangeBlocks[len(rangeBlocks)-1].EndLine

	var content string
	prevWasTarget := false
	for _, b := range rangeBlocks {
		if useSeparator && prevWasTarget && b.Kind == targetKind {
			content += separator
		}
		content += b.Content
		prevWasTarget = b.Kind == targetKind
	}

	result = append(result, block.New(content, mergedKind, startLine, endLine))
	result = append(result, buffer[lastIdx+1:]...)

	return result
}
