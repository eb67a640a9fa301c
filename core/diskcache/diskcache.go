// Package diskcache memoises a parsed AK-Link Table (C5, spec.md §4.5)
// across runs: walking a large archive's A-link/K-link B-trees is the
// single most expensive fixed cost in discovery, and it is pure given an
// archive's bytes, so its result can be cached keyed by a fingerprint of
// the archive file rather than its (possibly multi-megabyte) content.
//
// Grounded on the teacher's builder/cache.Manager: a single bbolt
// database as the store, blake3 for the content-addressed key
// (builder/cache/types.go's blake3.Sum256, builder/cache/cache.go's
// bolt.Open). The teacher also keeps a separate sharded-file Store
// alongside its bolt.DB for large binary blobs; a decoded keyword map is
// small structured data, so it's kept directly as a bolt value, the same
// way the teacher's own Manager stores its other (non-blob) cache
// entries straight in bolt buckets.
package diskcache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"

	"chmweb/core/model"
)

var bucketName = []byte("aklink")

// Cache is a bbolt-backed, blake3-keyed store of decoded A-link/K-link
// keyword maps.
type Cache struct {
	db *bolt.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("diskcache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("diskcache: init schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// Key derives the cache key for an archive from its path, size, and
// modification time: a cheap stat-based fingerprint rather than hashing
// the archive body itself, since any change to either invalidates a
// previously-decoded table just as reliably.
func Key(archivePath string, size int64, modTime time.Time) []byte {
	h := blake3.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d", archivePath, size, modTime.UnixNano())
	return h.Sum(nil)
}

type entry struct {
	ALinks model.KeywordMap
	KLinks model.KeywordMap
}

// Get returns the cached keyword maps for key, if present.
func (c *Cache) Get(key []byte) (alinks, klinks model.KeywordMap, ok bool) {
	var e entry
	err := c.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketName).Get(key)
		if data == nil {
			return nil
		}
		if uerr := msgpack.Unmarshal(data, &e); uerr != nil {
			return uerr
		}
		ok = true
		return nil
	})
	if err != nil || !ok {
		return nil, nil, false
	}
	return e.ALinks, e.KLinks, true
}

// Put stores the decoded keyword maps for key, overwriting any previous
// entry.
func (c *Cache) Put(key []byte, alinks, klinks model.KeywordMap) error {
	data, err := msgpack.Marshal(entry{ALinks: alinks, KLinks: klinks})
	if err != nil {
		return fmt.Errorf("diskcache: encode: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, data)
	})
}
