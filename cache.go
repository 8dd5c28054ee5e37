package timemap

import (
	"sync"
	"time"

	"github.com/tphakala/go-clip-timemap/buffer"
)

// groupKey identifies a slow-motion repeat group.
type groupKey struct {
	start    int // first output frame of the group
	source   int
	den      int
	reversed bool
}

type cacheEntry struct {
	audio   *buffer.Buffer
	created time.Time
	seq     uint64
}

// audioCache holds the stretched audio of active repeat groups. An entry
// lives from the first frame of its group until the last one is served,
// or until it is evicted to make room for a newer group.
type audioCache struct {
	mu      sync.Mutex
	entries map[groupKey]cacheEntry
	limit   int
	seq     uint64
	now     func() time.Time
}

func newAudioCache(limit int) *audioCache {
	return &audioCache{
		entries: make(map[groupKey]cacheEntry),
		limit:   limit,
		now:     time.Now,
	}
}

// get returns the audio of a group and when it was stored.
func (c *audioCache) get(key groupKey) (*buffer.Buffer, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return e.audio, e.created, ok
}

// put stores the audio of a group, replacing an older entry for the same
// group. When full, the oldest entry is evicted. It reports the evicted
// key, if any.
func (c *audioCache) put(key groupKey, audio *buffer.Buffer) (evicted groupKey, didEvict bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.limit {
		var oldest uint64
		for k, e := range c.entries {
			if !didEvict || e.seq < oldest {
				evicted, oldest, didEvict = k, e.seq, true
			}
		}
		delete(c.entries, evicted)
	}

	c.seq++
	c.entries[key] = cacheEntry{audio: audio, created: c.now(), seq: c.seq}
	return evicted, didEvict
}

// expire drops a group after its last frame.
func (c *audioCache) expire(key groupKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// reset drops all groups.
func (c *audioCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
}

func (c *audioCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
