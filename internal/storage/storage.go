// Package storage remembers which summaries were already published so repeated
// searches do not emit duplicate events.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Backend names for the storage_type config key.
const (
	TypeNone  = "none"
	TypeBBolt = "bbolt"
)

// Store records published summary keys with a retention window.
type Store interface {
	Close() error
	Published(key string) (bool, error)
	MarkPublished(key string) error
}

// Options controls retention for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts, time.Now)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore never remembers anything, so every summary counts as new.
type noopStore struct{}

func (noopStore) Close() error                   { return nil }
func (noopStore) Published(string) (bool, error) { return false, nil }
func (noopStore) MarkPublished(string) error     { return nil }
