package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const expiryValueBytes = 8

var (
	publishedBucket = []byte("published_summaries")
	errNoBucket     = errors.New("published bucket missing")
)

// boltStore keeps published keys in a single bucket. Values hold the expiry as unix seconds.
type boltStore struct {
	db              *bolt.DB
	now             func() time.Time
	ttl             time.Duration
	cleanupInterval time.Duration

	mu          sync.Mutex
	lastCleanup time.Time
}

func openBolt(path string, opts Options, now func() time.Time) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(publishedBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:              db,
		now:             now,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		lastCleanup:     now(),
	}, nil
}

// Close closes the database file.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Published reports whether key was marked and has not expired yet. Expired keys are dropped.
func (b *boltStore) Published(key string) (bool, error) {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return false, err
	}

	var live bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(publishedBucket)
		if bucket == nil {
			return errNoBucket
		}
		value := bucket.Get([]byte(key))
		if value == nil {
			return nil
		}
		if expiry, ok := decodeExpiry(value); ok && expiry.After(now) {
			live = true
			return nil
		}
		return bucket.Delete([]byte(key))
	})
	return live, err
}

// MarkPublished stores key until now+TTL.
func (b *boltStore) MarkPublished(key string) error {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(publishedBucket)
		if bucket == nil {
			return errNoBucket
		}
		return bucket.Put([]byte(key), encodeExpiry(now.Add(b.ttl)))
	})
}

// sweep deletes expired keys at most once per cleanup interval.
func (b *boltStore) sweep(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now.Sub(b.lastCleanup) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(publishedBucket)
		if bucket == nil {
			return errNoBucket
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if expiry, ok := decodeExpiry(v); !ok || !expiry.After(now) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup = now
	}
	return err
}

// count returns the number of stored keys, expired or not.
func (b *boltStore) count() (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(publishedBucket)
		if bucket == nil {
			return errNoBucket
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, expiryValueBytes)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
