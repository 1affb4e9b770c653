// Package cache caches rendered images and built color ramps for the HTTP
// server.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/phanxgames/tempmap"
)

// Config contains cache configuration.
type Config struct {
	ImageCacheSizeMB int
	ImageTTL         time.Duration
	RampCacheSize    int
}

// Manager manages the encoded image and color ramp caches.
type Manager struct {
	images *bigcache.BigCache
	ramps  *lru.Cache[string, *tempmap.ColorRamp]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	imageCacheConfig := bigcache.Config{
		Shards:             16,
		LifeWindow:         cfg.ImageTTL,
		CleanWindow:        cfg.ImageTTL / 2,
		MaxEntriesInWindow: 256,
		MaxEntrySize:       64 * 1024, // initial sizing only
		HardMaxCacheSize:   cfg.ImageCacheSizeMB,
		Verbose:            false,
	}

	images, err := bigcache.New(context.Background(), imageCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	ramps, err := lru.New[string, *tempmap.ColorRamp](cfg.RampCacheSize)
	if err != nil {
		images.Close()
		return nil, fmt.Errorf("failed to create ramp cache: %w", err)
	}

	return &Manager{images: images, ramps: ramps}, nil
}

// GetImage retrieves an encoded image from cache.
func (m *Manager) GetImage(key string) ([]byte, bool) {
	data, err := m.images.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetImage stores an encoded image in cache.
func (m *Manager) SetImage(key string, data []byte) error {
	return m.images.Set(key, data)
}

// Ramp returns the cached ramp for the breakpoints and mode, building and
// caching it on a miss. Ramps are immutable, so cached values are shared.
func (m *Manager) Ramp(bps []tempmap.HexBreakpoint, mode tempmap.RampMode) (*tempmap.ColorRamp, error) {
	key := RampKey(bps, mode)
	if r, ok := m.ramps.Get(key); ok {
		return r, nil
	}
	r, err := tempmap.NewColorRampHex(bps, mode)
	if err != nil {
		return nil, err
	}
	m.ramps.Add(key, r)
	return r, nil
}

// RenderKey generates a cache key for a render request body.
func RenderKey(kind string, body []byte) string {
	sum := sha256.Sum256(body)
	return kind + ":" + hex.EncodeToString(sum[:])[:32]
}

// RampKey generates a cache key for a ramp definition.
func RampKey(bps []tempmap.HexBreakpoint, mode tempmap.RampMode) string {
	h := sha256.New()
	h.Write([]byte(mode.String()))
	for _, b := range bps {
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(b.Threshold, 'g', -1, 64)))
		h.Write([]byte{'='})
		h.Write([]byte(b.Hex))
	}
	return "ramp:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]any {
	s := m.images.Stats()
	return map[string]any{
		"image_cache_len":    m.images.Len(),
		"image_cache_cap":    m.images.Capacity(),
		"image_cache_hits":   s.Hits,
		"image_cache_misses": s.Misses,
		"ramp_cache_len":     m.ramps.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.images.Close()
}
