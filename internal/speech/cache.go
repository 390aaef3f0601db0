package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

// DefaultCacheEntries bounds the in-memory layer of a ClipCache.
const DefaultCacheEntries = 256

// ClipCache keeps synthesized clips so repeated replies ("The light has
// been turned on.") are not sent to Azure twice. Clips are keyed by
// sha256(voice + ":" + text), so switching voices misses cleanly.
//
// The memory layer evicts oldest-first once it holds max entries. The disk
// layer, when dir is set, is always read; it is written only when persist
// is true.
type ClipCache struct {
	mu      sync.Mutex
	clips   map[string][]byte
	order   []string
	max     int
	voice   string
	dir     string
	persist bool
	log     *logger.Logger
	hits    int64
	misses  int64
}

// NewClipCache creates a cache for clips spoken with voice.
func NewClipCache(voice, dir string, persist bool, log *logger.Logger) *ClipCache {
	c := &ClipCache{
		clips:   make(map[string][]byte),
		max:     DefaultCacheEntries,
		voice:   voice,
		dir:     dir,
		persist: persist,
		log:     log,
	}
	if dir != "" && persist {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("clip cache: creating %s: %v", dir, err)
		}
	}
	return c
}

// Get returns the clip for text, promoting disk hits into memory.
func (c *ClipCache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.Lock()
	if clip, ok := c.clips[key]; ok {
		c.hits++
		c.mu.Unlock()
		return clip, true
	}
	c.mu.Unlock()

	if c.dir != "" {
		if clip, err := os.ReadFile(c.path(key)); err == nil {
			c.mu.Lock()
			c.storeLocked(key, clip)
			c.hits++
			c.mu.Unlock()
			c.log.Debug("clip cache: disk hit %s", key[:12])
			return clip, true
		}
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return nil, false
}

// Put stores a clip in memory and, when persisting, on disk.
func (c *ClipCache) Put(text string, clip []byte) {
	key := c.key(text)

	c.mu.Lock()
	c.storeLocked(key, clip)
	c.mu.Unlock()

	if c.dir == "" || !c.persist {
		return
	}
	if err := os.WriteFile(c.path(key), clip, 0o644); err != nil {
		c.log.Error("clip cache: writing %s: %v", key[:12], err)
	}
}

// Has reports whether a clip for text is cached in either layer.
func (c *ClipCache) Has(text string) bool {
	key := c.key(text)
	c.mu.Lock()
	_, ok := c.clips[key]
	c.mu.Unlock()
	if ok {
		return true
	}
	if c.dir == "" {
		return false
	}
	_, err := os.Stat(c.path(key))
	return err == nil
}

// Len returns the number of clips held in memory.
func (c *ClipCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clips)
}

// Stats returns hit and miss counts.
func (c *ClipCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *ClipCache) storeLocked(key string, clip []byte) {
	if _, ok := c.clips[key]; !ok {
		c.order = append(c.order, key)
	}
	c.clips[key] = clip
	for len(c.order) > c.max {
		delete(c.clips, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *ClipCache) key(text string) string {
	sum := sha256.Sum256([]byte(c.voice + ":" + text))
	return hex.EncodeToString(sum[:])
}

func (c *ClipCache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}
