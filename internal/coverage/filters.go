package coverage

import "github.com/trueflow-dev/trueflow/internal/block"

// BlockFilters narrows review/feedback scope to a set of block kinds,
// resolved from CLI --only/--exclude flags.
type BlockFilters struct {
	Only    []block.Kind
	Exclude []block.Kind
}

// OnlyContains reports whether kind was explicitly named in an --only
// filter (used to override the default import/impl skip policy).
func (f BlockFilters) OnlyContains(kind block.Kind) bool {
	for _, k := range f.Only {
		if k == kind {
			return true
		}
	}
	return false
}

func (f BlockFilters) excludeContains(kind block.Kind) bool {
	for _, k := range f.Exclude {
		if k == kind {
			return true
		}
	}
	return false
}

// AllowsBlock applies --only/--exclude plus the default import/impl skip
// policy to decide whether blk at path should be surfaced for review.
func (f BlockFilters) AllowsBlock(blk block.Block, path string) bool {
	if len(f.Only) > 0 {
		return f.OnlyContains(blk.Kind)
	}
	if f.excludeContains(blk.Kind) {
		return false
	}
	if ShouldSkipImportsByDefault(blk.Kind, path, f.OnlyContains(blk.Kind)) {
		return false
	}
	if ShouldSkipImplByDefault(blk.Kind, f.OnlyContains(blk.Kind)) {
		return false
	}
	return true
}
