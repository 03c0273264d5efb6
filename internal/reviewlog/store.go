package reviewlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog/log"
)

const dbDirName = ".trueflow"
const dbFileName = "reviews.jsonl"

// FileStore is an append-only, newline-delimited-JSON review log rooted
// at a repository's .trueflow directory.
type FileStore struct {
	root string
}

// NewFileStore resolves the repository root, preferring a git worktree
// root; failing that, the nearest ancestor that already contains a
// .trueflow directory; failing that, startDir itself.
func NewFileStore(startDir string) (*FileStore, error) {
	root, err := resolveRoot(startDir)
	if err != nil {
		return nil, err
	}
	return &FileStore{root: root}, nil
}

func resolveRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	if repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true}); err == nil {
		if wt, err := repo.Worktree(); err == nil {
			return wt.Filesystem.Root(), nil
		}
	}

	for dir := abs; ; {
		if info, err := os.Stat(filepath.Join(dir, dbDirName)); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return abs, nil
}

// Root returns the resolved repository root.
func (s *FileStore) Root() string { return s.root }

// DBPath returns the path to the review log file.
func (s *FileStore) DBPath() string {
	return filepath.Join(s.root, dbDirName, dbFileName)
}

// IndexPath returns the path to the bbolt last-write-wins cache.
func (s *FileStore) IndexPath() string {
	return filepath.Join(s.root, dbDirName, "index.db")
}

// RefreshIndex rebuilds the on-disk fingerprint->latest-verdict cache from
// records. Callers treat failures as non-fatal: the cache only ever
// accelerates lookups the JSONL log can always recompute from scratch.
func (s *FileStore) RefreshIndex(records []Record) error {
	if err := os.MkdirAll(filepath.Join(s.root, dbDirName), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dbDirName, err)
	}
	idx, err := OpenIndex(s.IndexPath())
	if err != nil {
		return err
	}
	defer idx.Close()
	return idx.Rebuild(records)
}

// ReadHistory reads every record in the log, in file order. A malformed
// line is logged and skipped rather than failing the whole read: an
// append that was interrupted mid-write should not make the rest of the
// history unreadable.
func (s *FileStore) ReadHistory() ([]Record, error) {
	f, err := os.Open(s.DBPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open review log: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			log.Warn().Int("line", lineNo).Err(err).Msg("skipping malformed review log line")
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read review log: %w", err)
	}
	return records, nil
}

// Append writes one record as a single JSON line, creating the log (and
// its .trueflow directory) if necessary.
func (s *FileStore) Append(r Record) error {
	if err := os.MkdirAll(filepath.Join(s.root, dbDirName), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dbDirName, err)
	}

	f, err := os.OpenFile(s.DBPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open review log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}
