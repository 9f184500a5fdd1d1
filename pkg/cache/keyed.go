package cache

import (
	"container/list"
	"sync"
)

// Keyed is a thread-safe cache with at-most-once construction per key,
// backed by an LRU eviction policy. It exists for expensive-to-construct
// values shared across concurrent requests, e.g. detection engines keyed
// by the parameter tuple that affects their construction.
//
// Readers of a cached value never block on a concurrent construction of a
// different key; two concurrent first-uses of the same key share a single
// construction.
type Keyed[K comparable, V any] struct {
	capacity int
	mu       sync.Mutex
	items    map[K]*list.Element
	eviction *list.List
	building map[K]*buildCall[V]
}

type keyedEntry[K comparable, V any] struct {
	key   K
	value V
}

type buildCall[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// NewKeyed creates a keyed cache holding at most capacity values. Panics
// on non-positive capacity to fail fast on misconfiguration.
func NewKeyed[K comparable, V any](capacity int) *Keyed[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	return &Keyed[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
		building: make(map[K]*buildCall[V]),
	}
}

// Get retrieves a cached value and marks it recently used.
func (c *Keyed[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		return elem.Value.(*keyedEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// GetOrBuild returns the cached value for key, constructing it with build
// if absent. Concurrent callers for the same key wait for one shared
// construction; a failed construction is not cached, so the next caller
// retries.
func (c *Keyed[K, V]) GetOrBuild(key K, build func() (V, error)) (V, error) {
	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		value := elem.Value.(*keyedEntry[K, V]).value
		c.mu.Unlock()
		return value, nil
	}
	if call, ok := c.building[key]; ok {
		c.mu.Unlock()
		<-call.done
		return call.value, call.err
	}

	call := &buildCall[V]{done: make(chan struct{})}
	c.building[key] = call
	c.mu.Unlock()

	call.value, call.err = build()
	close(call.done)

	c.mu.Lock()
	delete(c.building, key)
	if call.err == nil {
		c.insert(key, call.value)
	}
	c.mu.Unlock()

	return call.value, call.err
}

// Len reports the number of cached values, excluding in-flight builds.
func (c *Keyed[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// insert assumes c.mu is held.
func (c *Keyed[K, V]) insert(key K, value V) {
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		elem.Value.(*keyedEntry[K, V]).value = value
		return
	}
	elem := c.eviction.PushFront(&keyedEntry[K, V]{key: key, value: value})
	c.items[key] = elem

	if c.eviction.Len() > c.capacity {
		oldest := c.eviction.Back()
		if oldest != nil {
			c.eviction.Remove(oldest)
			delete(c.items, oldest.Value.(*keyedEntry[K, V]).key)
		}
	}
}
