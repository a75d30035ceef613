// Package cache stores compressor-processed audio so clips are only
// processed once per settings signature: a capacity-bounded in-memory LRU
// backed by a WAV file cache on disk.
package cache

import (
	"container/list"
	"sync"

	"github.com/gopxl/beep/v2"
)

// Key identifies a processed clip: the library clip key plus the compressor
// settings signature it was processed under.
type Key struct {
	Clip      string
	Signature string
}

// LRU is a thread-safe least-recently-used cache of processed audio buffers.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recent
	items    map[Key]*list.Element
}

type lruEntry struct {
	key    Key
	buffer *beep.Buffer
}

// NewLRU creates a cache holding at most capacity buffers (minimum 1).
func NewLRU(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[Key]*list.Element),
	}
}

// Get returns the cached buffer for key and marks it most recently used.
func (c *LRU) Get(key Key) (*beep.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).buffer, true
}

// Put stores a buffer under key, evicting the least recently used entries
// when over capacity.
func (c *LRU) Put(key Key, buffer *beep.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).buffer = buffer
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&lruEntry{key: key, buffer: buffer})
	c.items[key] = el
	c.evictLocked()
}

// Len returns the number of cached buffers.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all entries.
func (c *LRU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[Key]*list.Element)
}

// SetCapacity adjusts the capacity (minimum 1), evicting as needed.
func (c *LRU) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	c.evictLocked()
}

func (c *LRU) evictLocked() {
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			return
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}
