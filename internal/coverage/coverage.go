// Package coverage resolves which block fingerprints are considered
// reviewed: directly, by an explicit Approved verdict, or implicitly, by
// an approved ancestor in the Merkle tree or by every one of a block's
// own sub-blocks already being approved.
package coverage

import (
	"path/filepath"
	"sort"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/lang"
	"github.com/trueflow-dev/trueflow/internal/merkletree"
	"github.com/trueflow-dev/trueflow/internal/reviewlog"
	"github.com/trueflow-dev/trueflow/internal/subsplitter"
)

// ApprovalMap maps a fingerprint to whether its latest review verdict was
// Approved.
type ApprovalMap map[string]bool

// ResolveLatestVerdicts computes the last-write-wins verdict per
// fingerprint, restricted to check == "review".
func ResolveLatestVerdicts(records []reviewlog.Record) map[string]reviewlog.Verdict {
	latest := map[string]reviewlog.Record{}
	for _, r := range records {
		if r.Check != "review" {
			continue
		}
		existing, ok := latest[r.Fingerprint]
		if !ok || r.Timestamp >= existing.Timestamp {
			latest[r.Fingerprint] = r
		}
	}

	verdicts := make(map[string]reviewlog.Verdict, len(latest))
	for fingerprint, r := range latest {
		verdicts[fingerprint] = r.Verdict
	}
	return verdicts
}

// ResolveApprovals computes the last-write-wins verdict per fingerprint,
// restricted to check == "review", and reduces it to an approve/not-approve
// map.
func ResolveApprovals(records []reviewlog.Record) ApprovalMap {
	approvals := make(ApprovalMap)
	for fingerprint, v := range ResolveLatestVerdicts(records) {
		approvals[fingerprint] = v == reviewlog.VerdictApproved
	}
	return approvals
}

// IsApproved reports a direct approval only (no implicit coverage).
func (a ApprovalMap) IsApproved(fingerprint string) bool {
	return a[fingerprint]
}

// IsImplicitlyApproved reports whether blk, though not itself approved,
// should be treated as reviewed because every one of its non-Gap
// sub-blocks already carries an Approved verdict. A block with no
// sub-blocks (the sub-splitter has nothing to say about it) is never
// implicitly approved this way.
func IsImplicitlyApproved(blk block.Block, language lang.Language, approvals ApprovalMap) bool {
	subBlocks, err := subsplitter.Split(blk, language)
	if err != nil || len(subBlocks) == 0 {
		return false
	}
	sawReviewable := false
	for _, sb := range subBlocks {
		if sb.Kind == block.KindGap {
			continue
		}
		sawReviewable = true
		if !approvals.IsApproved(sb.Hash) {
			return false
		}
	}
	return sawReviewable
}

// IsLibRs reports whether path is a Rust crate root module, the one place
// import statements are reviewable by default.
func IsLibRs(path string) bool {
	return filepath.Base(path) == "lib.rs"
}

// ShouldSkipImportsByDefault reports whether an import-like block should
// be hidden from review by default: it's import-like, the file isn't
// lib.rs, and it wasn't explicitly requested via an "only" filter.
func ShouldSkipImportsByDefault(kind block.Kind, path string, explicitlyRequested bool) bool {
	return kind.IsImportLike() && !IsLibRs(path) && !explicitlyRequested
}

// ShouldSkipImplByDefault reports whether an Impl block should be hidden
// from review by default, unless explicitly requested.
func ShouldSkipImplByDefault(kind block.Kind, explicitlyRequested bool) bool {
	return kind == block.KindImpl && !explicitlyRequested
}

// KindRank orders block kinds for review listing: imports/signatures first,
// then declarations, implementations, functions, tests, and finally
// Gap/Comment noise.
func KindRank(kind block.Kind) int {
	switch kind {
	case block.KindImports, block.KindImport, block.KindSignature, block.KindFunctionSignature, block.KindModule:
		return 0
	case block.KindConst, block.KindStatic:
		return 10
	case block.KindStruct, block.KindEnum, block.KindType, block.KindInterface:
		return 20
	case block.KindImpl:
		return 30
	case block.KindFunction, block.KindMethod:
		return 40
	case block.KindTest:
		return 90
	case block.KindGap, block.KindComment:
		return 95
	default:
		return 50
	}
}

// ReviewItem is one unreviewed block surfaced by ResolveUnreviewed, paired
// with the file path it came from.
type ReviewItem struct {
	Path  string
	Block block.Block
}

// ResolveUnreviewed walks every block node in tree, dropping anything a
// BlockFilters excludes, anything directly or ancestor-covered by an
// approval, and anything implicitly approved through its own sub-blocks.
// The remaining items are ordered per spec: within a file by kind rank then
// start line, files by their minimum-rank block then by path.
func ResolveUnreviewed(tree *merkletree.Tree, files []block.FileState, approvals ApprovalMap, filters BlockFilters) []ReviewItem {
	languageByPath := make(map[string]lang.Language, len(files))
	for _, fs := range files {
		languageByPath[fs.Path] = fs.Language
	}

	approvedHashes := make(map[string]bool, len(approvals))
	for hash, ok := range approvals {
		if ok {
			approvedHashes[hash] = true
		}
	}

	byPath := map[string][]ReviewItem{}
	for i := range tree.Nodes {
		n := &tree.Nodes[i]
		if n.Kind != merkletree.KindBlock || n.Block == nil {
			continue
		}
		path := fileForBlockNode(tree, n.Parent)
		if path == "" {
			continue
		}
		if !filters.AllowsBlock(*n.Block, path) {
			continue
		}
		if tree.IsNodeCovered(n.ID, approvedHashes) {
			continue
		}
		if IsImplicitlyApproved(*n.Block, languageByPath[path], approvals) {
			continue
		}
		byPath[path] = append(byPath[path], ReviewItem{Path: path, Block: *n.Block})
	}

	paths := make([]string, 0, len(byPath))
	minRank := map[string]int{}
	for path, items := range byPath {
		sort.Slice(items, func(i, j int) bool {
			ri, rj := KindRank(items[i].Block.Kind), KindRank(items[j].Block.Kind)
			if ri != rj {
				return ri < rj
			}
			return items[i].Block.StartLine < items[j].Block.StartLine
		})
		byPath[path] = items

		rank := KindRank(items[0].Block.Kind)
		for _, it := range items[1:] {
			if r := KindRank(it.Block.Kind); r < rank {
				rank = r
			}
		}
		minRank[path] = rank
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool {
		if minRank[paths[i]] != minRank[paths[j]] {
			return minRank[paths[i]] < minRank[paths[j]]
		}
		return paths[i] < paths[j]
	})

	var out []ReviewItem
	for _, p := range paths {
		out = append(out, byPath[p]...)
	}
	return out
}

func fileForBlockNode(tree *merkletree.Tree, id merkletree.NodeID) string {
	for cur := id; cur != merkletree.NoNode; cur = tree.Nodes[cur].Parent {
		if tree.Nodes[cur].Kind == merkletree.KindFile {
			return tree.Nodes[cur].Path
		}
	}
	return ""
}
