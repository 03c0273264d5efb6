package reviewlog

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var latestBucket = []byte("latest_by_fingerprint")

// Index is a bbolt-backed, non-authoritative cache mapping a fingerprint
// to its latest review record, refreshed from the log whenever the CLI
// reads approvals. Coverage resolution does not read it; the JSONL log is
// always the source of truth and Rebuild can reconstruct the index from it
// at any time.
type Index struct {
	db *bolt.DB
}

// OpenIndex opens (creating if necessary) the bbolt index file at path.
func OpenIndex(path string) (*Index, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(latestBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init index buckets: %w", err)
	}
	return &Index{db: db}, nil
}

// Close releases the underlying file lock.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Rebuild replaces the index contents with the last-write-wins record per
// fingerprint, restricted to check == "review", computed from records
// (which callers pass in file order).
func (idx *Index) Rebuild(records []Record) error {
	latest := map[string]Record{}
	for _, r := range records {
		if r.Check != "review" {
			continue
		}
		existing, ok := latest[r.Fingerprint]
		if !ok || r.Timestamp >= existing.Timestamp {
			latest[r.Fingerprint] = r
		}
	}

	return idx.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(latestBucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		bucket, err := tx.CreateBucket(latestBucket)
		if err != nil {
			return err
		}
		for fingerprint, r := range latest {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(fingerprint), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LatestVerdict returns the most recent review verdict recorded for
// fingerprint, if any.
func (idx *Index) LatestVerdict(fingerprint string) (Verdict, bool, error) {
	var record Record
	found := false
	err := idx.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(latestBucket).Get([]byte(fingerprint))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return "", false, fmt.Errorf("read index: %w", err)
	}
	if !found {
		return "", false, nil
	}
	return record.Verdict, true, nil
}
