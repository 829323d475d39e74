package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	defaultServiceCacheSize = 1000
	defaultServiceCacheTTL  = time.Hour
	// extra slots freed on a capacity eviction so a full cache does not
	// evict again on every subsequent insert
	evictionOvershoot = 100
)

// ServiceCache is a TTL-bound map from URL to resolved service name.
type ServiceCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // insertion order, oldest at the back
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

type serviceEntry struct {
	url        string
	service    string
	insertedAt time.Time
}

// NewServiceCache creates a classification cache. Non-positive capacity or
// ttl fall back to the defaults.
func NewServiceCache(capacity int, ttl time.Duration) *ServiceCache {
	if capacity <= 0 {
		capacity = defaultServiceCacheSize
	}
	if ttl <= 0 {
		ttl = defaultServiceCacheTTL
	}
	return &ServiceCache{
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached service for the URL. An entry older than the ttl is
// removed and reported as a miss.
func (c *ServiceCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[url]
	if !ok {
		return "", false
	}
	ent := elem.Value.(*serviceEntry)
	if c.now().Sub(ent.insertedAt) >= c.ttl {
		c.removeElement(elem)
		return "", false
	}
	return ent.service, true
}

// Set stores a classification result. At capacity it first drops expired
// entries, then evicts oldest-inserted entries until there is headroom.
func (c *ServiceCache) Set(url string, service string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[url]; ok {
		ent := elem.Value.(*serviceEntry)
		ent.service = service
		ent.insertedAt = c.now()
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		c.sweepExpired()
	}
	if c.order.Len() >= c.capacity {
		target := c.capacity - evictionOvershoot
		if target < 0 {
			target = 0
		}
		for c.order.Len() > target {
			c.removeElement(c.order.Back())
		}
	}

	elem := c.order.PushFront(&serviceEntry{
		url:        url,
		service:    service,
		insertedAt: c.now(),
	})
	c.items[url] = elem
}

// Len returns the current entry count.
func (c *ServiceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear drops all entries.
func (c *ServiceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

func (c *ServiceCache) sweepExpired() {
	now := c.now()
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		ent := elem.Value.(*serviceEntry)
		if now.Sub(ent.insertedAt) >= c.ttl {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *ServiceCache) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	ent := elem.Value.(*serviceEntry)
	delete(c.items, ent.url)
	c.order.Remove(elem)
}
