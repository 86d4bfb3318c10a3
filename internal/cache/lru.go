package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// LRU is an in-process cache with TTL and size-based eviction.
type LRU struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
}

type item struct {
	key       string
	data      []byte
	expiresAt time.Time
}

func NewLRU(maxSize int, ttl time.Duration) *LRU {
	return &LRU{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

func (c *LRU) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}

	it := elem.Value.(*item)
	if c.now().After(it.expiresAt) {
		c.remove(elem)
		return nil, false
	}

	c.lru.MoveToFront(elem)

	return it.data, true
}

func (c *LRU) Set(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it := &item{key: key, data: value, expiresAt: c.now().Add(c.ttl)}

	if elem, ok := c.items[key]; ok {
		elem.Value = it
		c.lru.MoveToFront(elem)

		return
	}

	c.items[key] = c.lru.PushFront(it)

	if c.lru.Len() > c.maxSize {
		c.remove(c.lru.Back())
	}
}

func (c *LRU) DeletePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, elem := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.remove(elem)
		}
	}
}

func (c *LRU) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*item).key)
	c.lru.Remove(elem)
}

// CleanExpired drops expired entries and returns how many were removed.
func (c *LRU) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	var expired []*list.Element

	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*item).expiresAt) {
			expired = append(expired, elem)
		}
	}

	for _, elem := range expired {
		c.remove(elem)
	}

	return len(expired)
}

func (c *LRU) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
