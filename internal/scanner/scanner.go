// Package scanner walks a directory tree into a slice of block.FileState,
// dispatching each file to the grammar splitter (with optimizer pass) or a
// blank-line fallback, and caches the result on disk keyed by repository
// revision plus a digest of the file listing so unchanged trees skip
// re-parsing entirely.
package scanner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"lukechampine.com/blake3"

	"github.com/trueflow-dev/trueflow/internal/block"
	"github.com/trueflow-dev/trueflow/internal/complexity"
	"github.com/trueflow-dev/trueflow/internal/hashing"
	"github.com/trueflow-dev/trueflow/internal/lang"
	"github.com/trueflow-dev/trueflow/internal/linemap"
	"github.com/trueflow-dev/trueflow/internal/optimizer"
	"github.com/trueflow-dev/trueflow/internal/splitter"
	"github.com/trueflow-dev/trueflow/internal/textsplit"
)

const binarySkippedHash = "binary_skipped"

var ignoredNames = map[string]bool{
	"target":       true,
	"node_modules": true,
}

// isIgnored reports whether a directory entry should be skipped during the
// walk. Dotfiles and dot-directories are ignored except the root itself.
func isIgnored(name string, isRoot bool) bool {
	if isRoot {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	return ignoredNames[name]
}

// listFiles returns every non-ignored regular file under root, as paths
// relative to root, in a deterministic (sorted) order.
func listFiles(root string) ([]string, error) {
	var out []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		isRoot := rel == "."

		if d.IsDir() {
			if isIgnored(d.Name(), isRoot) {
				return filepath.SkipDir
			}
			return nil
		}
		if isIgnored(d.Name(), false) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(out)
	return out, nil
}

// rootDigest summarizes a file listing (paths + sizes) into a stable
// digest used purely as a cache-integrity key; it carries no review
// semantics and is deliberately a different algorithm (BLAKE3) from the
// SHA-256 content hashes so the two can never be confused in a cache file.
func rootDigest(root string, relPaths []string) string {
	h := blake3.New(32, nil)
	for _, rel := range relPaths {
		info, err := os.Stat(filepath.Join(root, rel))
		size := int64(-1)
		if err == nil {
			size = info.Size()
		}
		fmt.Fprintf(h, "%s:%d\n", rel, size)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// ScanDirectory walks root and returns one FileState per non-ignored file.
// repoRevision scopes the on-disk cache to the current checkout; pass ""
// outside a VCS context to disable cross-invocation persistence semantics
// tied to a revision (the cache is still written/read, just keyed to the
// empty revision).
func ScanDirectory(root, repoRevision string) ([]block.FileState, error) {
	relPaths, err := listFiles(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	digest := rootDigest(root, relPaths)

	cp, cpErr := cachePath(root)
	var cache cacheDocument
	if cpErr == nil {
		if loaded, loadErr := loadCache(cp); loadErr == nil &&
			loaded.RepoRevision == repoRevision && loaded.RootHash == digest {
			cache = loaded
		}
	}
	if cache.Files == nil {
		cache.Files = map[string]cacheEntry{}
	}

	newFiles := make(map[string]cacheEntry, len(relPaths))
	states := make([]block.FileState, 0, len(relPaths))

	for _, rel := range relPaths {
		abs := filepath.Join(root, rel)
		info, statErr := os.Stat(abs)
		if statErr != nil {
			continue
		}
		modTime := info.ModTime().Unix()
		size := info.Size()

		if entry, ok := cache.Files[rel]; ok && entry.ModTime == modTime && entry.Size == size {
			newFiles[rel] = entry
			states = append(states, entry.FileState)
			continue
		}

		fs := processFile(abs, rel)
		entry := cacheEntry{ModTime: modTime, Size: size, FileState: fs}
		newFiles[rel] = entry
		states = append(states, fs)
	}

	if cpErr == nil {
		_ = writeCache(cp, cacheDocument{RepoRevision: repoRevision, RootHash: digest, Files: newFiles})
	}

	return states, nil
}

// processFile dispatches a single file to the appropriate splitter path
// and assembles its FileState, including the file-level Merkle hash over
// its ordered block hashes.
func processFile(absPath, relPath string) block.FileState {
	ft := lang.AnalyzeFile(absPath)

	if ft.Kind == lang.KindBinary {
		return block.FileState{Path: relPath, Language: ft.Language, FileHash: binarySkippedHash}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return block.FileState{Path: relPath, Language: ft.Language, FileHash: binarySkippedHash}
	}
	if !utf8.Valid(data) {
		log.Warn().Str("path", relPath).Msg("skipping non-UTF-8 file")
		return block.FileState{Path: relPath, Language: ft.Language, FileHash: binarySkippedHash}
	}
	content := string(data)

	var blocks []block.Block
	if ft.Kind == lang.KindCode {
		split, splitErr := splitter.Split(content, ft.Language)
		if splitErr == nil && len(split) > 0 {
			blocks = optimizer.Optimize(split)
		}
	}
	if len(blocks) == 0 {
		blocks = fallbackSplitBlocks(content)
	}

	for i := range blocks {
		switch blocks[i].Kind {
		case block.KindFunction, block.KindMethod, block.KindImpl:
			blocks[i].Complexity = complexity.Calculate(blocks[i].Content, ft.Language)
		}
	}

	hashes := make([]string, len(blocks))
	for i, b := range blocks {
		hashes[i] = b.Hash
	}

	return block.FileState{
		Path:     relPath,
		Language: ft.Language,
		FileHash: hashing.FileHash(hashes),
		Blocks:   blocks,
	}
}

// fallbackSplitBlocks is used for files the grammar splitter can't handle
// (Text/Markup classification, or a failed/empty parse): plain paragraph
// chunks, tagged Comment when every non-blank line looks like a comment.
func fallbackSplitBlocks(content string) []block.Block {
	return textsplit.SplitByParagraphBreaks(content, func(chunk string, start, end int, isGap bool) block.Block {
		kind := block.KindGap
		if !isGap {
			kind = classifyFallbackChunk(chunk)
		}
		startLine, endLine := linemap.ByteRangeToLines(content, start, end)
		return block.New(chunk, kind, startLine, endLine)
	})
}

func classifyFallbackChunk(content string) block.Kind {
	if isBraceOrSemicolonOnly(content) {
		return block.KindGap
	}
	lines := strings.Split(content, "\n")
	allComment := true
	sawNonEmpty := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		sawNonEmpty = true
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "#") &&
			!strings.HasPrefix(trimmed, "/*") && !strings.HasPrefix(trimmed, "*") {
			allComment = false
			break
		}
	}
	if sawNonEmpty && allComment {
		return block.KindComment
	}
	return block.KindTextBlock
}

// isBraceOrSemicolonOnly reports whether content, once trimmed, consists
// solely of "}" and/or ";" characters.
func isBraceOrSemicolonOnly(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r != '}' && r != ';' && !strings.ContainsRune(" \t\r\n", r) {
			return false
		}
	}
	return true
}

// --- on-disk cache ---

type cacheEntry struct {
	ModTime   int64           `json:"mod_time"`
	Size      int64           `json:"size"`
	FileState block.FileState `json:"file_state"`
}

type cacheDocument struct {
	RepoRevision string                `json:"repo_revision"`
	RootHash     string                `json:"root_hash"`
	Files        map[string]cacheEntry `json:"files"`
}

func cachePath(root string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	repoName := filepath.Base(abs)
	digest := blake3.Sum256([]byte(abs))
	return filepath.Join(home, ".trueflow", "cache", fmt.Sprintf("scan-%s-%x.json", repoName, digest[:8])), nil
}

func loadCache(path string) (cacheDocument, error) {
	var doc cacheDocument
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func writeCache(path string, doc cacheDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
