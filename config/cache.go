package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"humres/render"

	"github.com/sirupsen/logrus"
)

const defaultCacheMaxEntries = 1024

type DocumentCacheEntry struct {
	Key         string
	FetchedAt   time.Time
	Content     []byte
	ContentType string
}

// DocumentCache keeps rendered documents for a limited time, keyed by
// everything that influences their content. It holds at most maxEntries
// documents; expired ones are swept on every save, and the oldest is
// evicted when the cache is still full.
type DocumentCache struct {
	ttl        time.Duration
	maxEntries int
	noCache    bool
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*DocumentCacheEntry
}

func NewDocumentCache(ttl time.Duration, maxEntries int, noCache bool) *DocumentCache {
	return &DocumentCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		noCache:    noCache || ttl == 0 || maxEntries <= 0,
		now:        time.Now,
		entries:    make(map[string]*DocumentCacheEntry),
	}
}

// NewDocumentCache returns a cache following the config's settings.
func (c *Config) NewDocumentCache() *DocumentCache {
	return NewDocumentCache(c.CacheTtl(), c.CacheMaxEntries, c.NoCache)
}

// DocumentCacheKey identifies a rendered document. The comment is hashed so
// that keys stay small.
func DocumentCacheKey(format string, opts render.Options, comment string) string {
	sum := sha256.Sum256([]byte(comment))
	return fmt.Sprintf("%s|%g|%g|%g|%s", format, opts.Width, opts.Height, opts.PenWidth, hex.EncodeToString(sum[:]))
}

func (d *DocumentCache) Probe(key string) (*DocumentCacheEntry, bool) {
	if d.noCache {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[key]
	if ok && d.expired(entry) {
		delete(d.entries, key)
		return nil, false
	}
	if ok {
		logrus.WithField("action", "probe_cache").WithField("size", len(entry.Content)).Debug("Returned from cache")
	}
	return entry, ok
}

func (d *DocumentCache) MbSave(key string, content []byte, contentType string) {
	if d.noCache {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweepLocked()
	if _, ok := d.entries[key]; !ok && len(d.entries) >= d.maxEntries {
		d.evictOldestLocked()
	}

	d.entries[key] = &DocumentCacheEntry{
		Key:         key,
		FetchedAt:   d.now(),
		Content:     content,
		ContentType: contentType,
	}

	logrus.WithField("action", "save_to_cache").WithField("size", len(content)).Debug("Saved to cache")
}

// Len returns the number of documents that have not expired yet.
func (d *DocumentCache) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweepLocked()
	return len(d.entries)
}

func (d *DocumentCache) expired(entry *DocumentCacheEntry) bool {
	return d.now().Sub(entry.FetchedAt) > d.ttl
}

func (d *DocumentCache) sweepLocked() {
	for key, entry := range d.entries {
		if d.expired(entry) {
			delete(d.entries, key)
		}
	}
}

func (d *DocumentCache) evictOldestLocked() {
	var oldest *DocumentCacheEntry
	for _, entry := range d.entries {
		if oldest == nil || entry.FetchedAt.Before(oldest.FetchedAt) {
			oldest = entry
		}
	}
	if oldest != nil {
		delete(d.entries, oldest.Key)
	}
}
