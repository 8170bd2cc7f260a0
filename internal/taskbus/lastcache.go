package taskbus

import (
	"container/list"
	"sync"

	"github.com/contentforge/conditioncore/pkg/models"
)

// lastStateCache is a thread-safe LRU of terminal TaskSnapshots keyed by task
// id, shaped the same way as internal/gating's conditionCache: a map plus a
// container/list for O(1) touch/evict.
type lastStateCache struct {
	capacity int
	items    map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
}

type lastStateEntry struct {
	id       string
	snapshot models.TaskSnapshot
}

func newLastStateCache(capacity int) *lastStateCache {
	if capacity <= 0 {
		capacity = 100
	}
	return &lastStateCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *lastStateCache) put(id string, snapshot models.TaskSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[id]; ok {
		c.order.MoveToFront(element)
		element.Value.(*lastStateEntry).snapshot = snapshot
		return
	}

	element := c.order.PushFront(&lastStateEntry{id: id, snapshot: snapshot})
	c.items[id] = element

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*lastStateEntry).id)
		}
	}
}

func (c *lastStateCache) get(id string) (models.TaskSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[id]
	if !ok {
		return models.TaskSnapshot{}, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*lastStateEntry).snapshot, true
}
