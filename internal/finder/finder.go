// Package finder resolves a block by an unambiguous hash prefix (used by
// the inspect command) or by a fuzzy identifier/content match
// (FuzzyFindBlock, which no command calls).
package finder

import (
	"errors"
	"strings"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/subsplitter"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("block not found")

// ErrAmbiguous is returned when a lookup matches more than one block; the
// caller should ask for a longer prefix or a more specific query.
var ErrAmbiguous = errors.New("multiple blocks matched; use a longer prefix")

// Match pairs a resolved block with the file path it came from.
type Match struct {
	Block block.Block
	Path  string
}

// FindByHashPrefix resolves prefix against every top-level block across
// files first; only if that yields zero matches does it descend into each
// block's sub-blocks.
func FindByHashPrefix(files []block.FileState, prefix string) (Match, error) {
	var matches []Match
	for _, fs := range files {
		for _, b := range fs.Blocks {
			if strings.HasPrefix(b.Hash, prefix) {
				matches = append(matches, Match{Block: b, Path: fs.Path})
			}
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return Match{}, ErrAmbiguous
	}

	for _, fs := range files {
		for _, b := range fs.Blocks {
			subBlocks, err := subsplitter.Split(b, fs.Language)
			if err != nil {
				continue
			}
			for _, sb := range subBlocks {
				if strings.HasPrefix(sb.Hash, prefix) {
					matches = append(matches, Match{Block: sb, Path: fs.Path})
				}
			}
		}
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return Match{}, ErrAmbiguous
	}

	return Match{}, ErrNotFound
}

// FuzzyFindBlock searches every top-level block's content for query,
// preferring Function/Method matches over any other kind; it errors if
// zero or more than one block matches within the preferred tier.
func FuzzyFindBlock(files []block.FileState, query string) (Match, error) {
	var funcMatches []Match
	var anyMatches []Match

	for _, fs := range files {
		for _, b := range fs.Blocks {
			if !strings.Contains(b.Content, query) {
				continue
			}
			m := Match{Block: b, Path: fs.Path}
			anyMatches = append(anyMatches, m)
			if b.Kind == block.KindFunction || b.Kind == block.KindMethod {
				funcMatches = append(funcMatches, m)
			}
		}
	}

	candidates := funcMatches
	if len(candidates) == 0 {
		candidates = anyMatches
	}
	if len(candidates) == 0 {
		return Match{}, ErrNotFound
	}
	if len(candidates) > 1 {
		return Match{}, ErrAmbiguous
	}
	return candidates[0], nil
}
