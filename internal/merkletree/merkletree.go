// Package merkletree builds the directory/file/block tree whose hashes
// roll up from each file's block sequence to a single repository root:
// a directory's hash is the hash of its sorted children's "kind:name:hash"
// entries (Directory and File children only; Block children never
// contribute to their parent directory's hash directly, only through the
// file's own FileHash), which makes the tree invariant to filesystem
// iteration order.
package merkletree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/hashing"
)

// NodeKind is the closed set of tree node kinds.
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindDirectory
	KindFile
	KindBlock
)

// NodeID indexes into Tree.Nodes. The root is added first, so it has ID 0
// (also available as Tree.RootID); NoNode represents "no parent"/"not found".
type NodeID int

// NoNode is the sentinel for "no such node".
const NoNode NodeID = -1

// Node is one entry in the tree: a Root, a Directory, a File, or a Block.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Name     string
	Path     string
	Hash     string
	Parent   NodeID
	Children []NodeID
	Block    *block.Block
}

// Tree is the finalized, hash-computed node set.
type Tree struct {
	Nodes  []Node
	RootID NodeID
}

// Builder assembles a Tree incrementally; call Finalize once all
// directories/files/blocks have been added.
type Builder struct {
	nodes []Node
	dirs  map[string]NodeID
}

// NewBuilder creates a Builder with a single Root node.
func NewBuilder() *Builder {
	b := &Builder{dirs: map[string]NodeID{}}
	b.nodes = append(b.nodes, Node{ID: 0, Kind: KindRoot, Name: "", Parent: NoNode})
	b.dirs[""] = 0
	return b
}

func (b *Builder) add(n Node) NodeID {
	n.ID = NodeID(len(b.nodes))
	b.nodes = append(b.nodes, n)
	if n.Parent != NoNode {
		parent := &b.nodes[n.Parent]
		parent.Children = append(parent.Children, n.ID)
	}
	return n.ID
}

// AddDir adds (or returns the existing) Directory node for path, creating
// any missing ancestor directories along the way.
func (b *Builder) AddDir(path string) NodeID {
	if id, ok := b.dirs[path]; ok {
		return id
	}
	parentPath, name := splitPath(path)
	parentID := b.AddDir(parentPath)
	id := b.add(Node{Kind: KindDirectory, Name: name, Path: path, Parent: parentID})
	b.dirs[path] = id
	return id
}

// AddFile adds a File node with its pre-computed FileHash under path's
// parent directory.
func (b *Builder) AddFile(path, fileHash string) NodeID {
	parentPath, name := splitPath(path)
	parentID := b.AddDir(parentPath)
	return b.add(Node{Kind: KindFile, Name: name, Path: path, Hash: fileHash, Parent: parentID})
}

// AddBlock adds a Block node under parent, labeled "{kind}:L{start}-L{end}"
// (1-indexed start line).
func (b *Builder) AddBlock(parent NodeID, blk block.Block) NodeID {
	name := blockLabel(blk)
	return b.add(Node{Kind: KindBlock, Name: name, Hash: blk.Hash, Parent: parent, Block: &blk})
}

func blockLabel(blk block.Block) string {
	return fmt.Sprintf("%s:L%d-L%d", blk.Kind, blk.StartLine+1, blk.EndLine)
}

func splitPath(path string) (parent, name string) {
	idx := strings.LastIndex(path, "/")
	if idx == -1 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// shouldSortChildren reports whether a node kind's children are sorted
// before hashing (Root and Directory only; File/Block children preserve
// parse order).
func shouldSortChildren(kind NodeKind) bool {
	return kind == KindRoot || kind == KindDirectory
}

// isHashEntry reports whether a node kind contributes a "kind:name:hash"
// entry to its parent's hash (Directory and File only; Block never does).
func isHashEntry(kind NodeKind) bool {
	return kind == KindDirectory || kind == KindFile
}

func entryPrefix(kind NodeKind) string {
	switch kind {
	case KindDirectory:
		return "dir"
	case KindFile:
		return "file"
	default:
		return ""
	}
}

// Finalize sorts Root/Directory children by name and computes every
// Directory/Root node's hash bottom-up, then returns the immutable Tree.
func (b *Builder) Finalize() *Tree {
	for i := range b.nodes {
		if shouldSortChildren(b.nodes[i].Kind) {
			children := b.nodes[i].Children
			sort.Slice(children, func(x, y int) bool {
				return b.nodes[children[x]].Name < b.nodes[children[y]].Name
			})
		}
	}

	var computeHash func(id NodeID) string
	computeHash = func(id NodeID) string {
		n := &b.nodes[id]
		for _, c := range n.Children {
			computeHash(c)
		}
		if n.Kind != KindRoot && n.Kind != KindDirectory {
			return n.Hash
		}

		var entries []string
		for _, c := range n.Children {
			child := &b.nodes[c]
			if !isHashEntry(child.Kind) {
				continue
			}
			entries = append(entries, fmt.Sprintf("%s:%s:%s|", entryPrefix(child.Kind), child.Name, child.Hash))
		}
		sort.Strings(entries)
		n.Hash = hashing.HashStr(strings.Join(entries, ""))
		return n.Hash
	}
	computeHash(0)

	return &Tree{Nodes: b.nodes, RootID: 0}
}

// BuildTreeFromFiles builds a complete Tree from a set of scanned files,
// attaching nested blocks under their enclosing Impl/Interface block (not
// directly under the File node) wherever one contains the other by line
// range.
func BuildTreeFromFiles(files []block.FileState) *Tree {
	b := NewBuilder()

	for _, fs := range files {
		fileID := b.AddFile(fs.Path, fs.FileHash)

		type frame struct {
			id         NodeID
			start, end int
		}
		var stack []frame

		for _, blk := range fs.Blocks {
			for len(stack) > 0 && stack[len(stack)-1].end < blk.StartLine {
				stack = stack[:len(stack)-1]
			}

			parent := fileID
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].start <= blk.StartLine && blk.EndLine <= stack[i].end {
					parent = stack[i].id
					break
				}
			}

			nodeID := b.AddBlock(parent, blk)

			if blk.Kind == block.KindImpl || blk.Kind == block.KindInterface {
				stack = append(stack, frame{id: nodeID, start: blk.StartLine, end: blk.EndLine})
			}
		}
	}

	return b.Finalize()
}

// FindByPath returns the Directory or File node at path, if any.
func (t *Tree) FindByPath(path string) (*Node, bool) {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if (n.Kind == KindDirectory || n.Kind == KindFile) && n.Path == path {
			return n, true
		}
	}
	return nil, false
}

// Ancestors returns id's ancestor chain, nearest first, root last.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for cur := t.Nodes[id].Parent; cur != NoNode; cur = t.Nodes[cur].Parent {
		out = append(out, cur)
	}
	return out
}

// IsNodeCovered reports whether id or any of its ancestors has a hash in
// approvedHashes: an approval on a directory or file implicitly covers
// everything beneath it.
func (t *Tree) IsNodeCovered(id NodeID, approvedHashes map[string]bool) bool {
	if approvedHashes[t.Nodes[id].Hash] {
		return true
	}
	for _, a := range t.Ancestors(id) {
		if approvedHashes[t.Nodes[a].Hash] {
			return true
		}
	}
	return false
}

// NodeByPathAndHash finds the Directory/File node at path whose current
// hash equals hash (used to detect stale approvals against a moved or
// rewritten path).
func (t *Tree) NodeByPathAndHash(path, hash string) (*Node, bool) {
	n, ok := t.FindByPath(path)
	if !ok || n.Hash != hash {
		return nil, false
	}
	return n, true
}

// FindBlockNode returns every Block node whose hash starts with
// hashPrefix.
func (t *Tree) FindBlockNode(hashPrefix string) []*Node {
	var out []*Node
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Kind == KindBlock && strings.HasPrefix(n.Hash, hashPrefix) {
			out = append(out, n)
		}
	}
	return out
}

// FilePaths returns the path of every File node in the tree.
func (t *Tree) FilePaths() []string {
	var out []string
	for i := range t.Nodes {
		if t.Nodes[i].Kind == KindFile {
			out = append(out, t.Nodes[i].Path)
		}
	}
	return out
}
