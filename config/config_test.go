package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"humres/encoding"
	"humres/render"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "humres.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		c, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		require.NoError(t, err)
		require.Equal(t, defaultListen, c.Listen)
		require.Equal(t, render.DefaultOptions(), c.Render)
		require.Equal(t, defaultCacheTtl, c.CacheTtl())
	})

	t.Run("Overrides", func(t *testing.T) {
		c, err := Load(writeConfig(t, `{
			"listen": "127.0.0.1:9000",
			"compression": "gzip",
			"strict": true,
			"cache_ttl_seconds": 30,
			"render": {"width": -500}
		}`))
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1:9000", c.Listen)
		require.Equal(t, 30*time.Second, c.CacheTtl())
		require.Equal(t, render.Options{Width: 500, Height: render.DefaultHeight, PenWidth: render.DefaultPenWidth}, c.Render)

		codec, err := c.Codec()
		require.NoError(t, err)
		require.True(t, codec.Strict)
		require.Equal(t, encoding.GzipEncoderDecoder{}, codec.Compression)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"compression": "lzma", "log_level": "loud", "cache_ttl_seconds": -1, "cache_max_entries": -2}`))
		require.ErrorContains(t, err, "compression: unknown encoding: lzma")
		require.ErrorContains(t, err, "log_level")
		require.ErrorContains(t, err, "cache_ttl_seconds is negative")
		require.ErrorContains(t, err, "cache_max_entries is negative: -2")
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := Load(writeConfig(t, `{"listen": `))
		require.ErrorContains(t, err, "error decoding config file")
	})
}

func TestDocumentCache(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cache := NewDocumentCache(time.Minute, 16, false)
	cache.now = func() time.Time { return now }

	key := DocumentCacheKey("svg", render.DefaultOptions(), "eJz;")
	_, ok := cache.Probe(key)
	require.False(t, ok)

	cache.MbSave(key, []byte("<svg/>"), "image/svg+xml")
	entry, ok := cache.Probe(key)
	require.True(t, ok)
	require.Equal(t, []byte("<svg/>"), entry.Content)
	require.Equal(t, "image/svg+xml", entry.ContentType)

	_, ok = cache.Probe(DocumentCacheKey("eps", render.DefaultOptions(), "eJz;"))
	require.False(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = cache.Probe(key)
	require.False(t, ok)
	require.Zero(t, cache.Len())
}

func TestDocumentCacheDisabled(t *testing.T) {
	for _, cache := range []*DocumentCache{
		NewDocumentCache(time.Minute, 16, true),
		NewDocumentCache(0, 16, false),
		NewDocumentCache(time.Minute, 0, false),
	} {
		cache.MbSave("key", []byte("x"), "text/plain")
		_, ok := cache.Probe("key")
		require.False(t, ok)
		require.Zero(t, cache.Len())
	}
}

func TestDocumentCacheExpiresWithoutProbe(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cache := NewDocumentCache(time.Minute, 1024, false)
	cache.now = func() time.Time { return now }

	for width := 1; width <= 500; width++ {
		opts := render.Options{Width: float64(width), Height: 256, PenWidth: 23}
		cache.MbSave(DocumentCacheKey("svg", opts, "eJz;"), []byte("<svg/>"), "image/svg+xml")
	}
	require.Equal(t, 500, cache.Len())

	now = now.Add(2 * time.Minute)
	require.Zero(t, cache.Len())

	// Saving sweeps as well.
	for width := 1; width <= 10; width++ {
		opts := render.Options{Width: float64(width), Height: 256, PenWidth: 23}
		cache.MbSave(DocumentCacheKey("svg", opts, "eJz;"), []byte("<svg/>"), "image/svg+xml")
	}
	now = now.Add(2 * time.Minute)
	cache.MbSave("fresh", []byte("x"), "text/plain")
	require.Len(t, cache.entries, 1)
}

func TestDocumentCacheBounded(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cache := NewDocumentCache(time.Hour, 3, false)
	cache.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c", "d"} {
		cache.MbSave(key, []byte(key), "text/plain")
		now = now.Add(time.Second)
	}
	require.Equal(t, 3, cache.Len())
	_, ok := cache.Probe("a")
	require.False(t, ok)
	_, ok = cache.Probe("d")
	require.True(t, ok)

	// Replacing an existing key does not evict anything else.
	cache.MbSave("b", []byte("B"), "text/plain")
	require.Equal(t, 3, cache.Len())
	_, ok = cache.Probe("c")
	require.True(t, ok)
}

func TestDocumentCacheKeySize(t *testing.T) {
	key := DocumentCacheKey("svg", render.DefaultOptions(), strings.Repeat("A", 64<<10))
	require.Less(t, len(key), 128)
	require.NotEqual(t, key, DocumentCacheKey("svg", render.DefaultOptions(), strings.Repeat("A", 64<<10-1)))
}
