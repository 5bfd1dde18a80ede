package layout

import "sync"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

// cache is shared by every unit laid out with one engine.
type cache struct {
	mu     sync.RWMutex
	byType map[string]*cacheEntry
	// attrs holds the layout attributes of structs built by PaddedStruct,
	// keyed by struct tag.
	attrs map[string]Attrs
}

func newCache() *cache {
	return &cache{
		byType: make(map[string]*cacheEntry, 256),
		attrs:  make(map[string]Attrs),
	}
}

func (c *cache) setAttrs(tag string, a Attrs) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attrs[tag] = a
}

func (c *cache) attrsOf(tag string) (Attrs, bool) {
	if c == nil {
		return Attrs{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.attrs[tag]
	return a, ok
}

func (c *cache) get(key string) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byType[key]
	return e, ok
}

func (c *cache) put(key string, e *cacheEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e == nil {
		delete(c.byType, key)
		return
	}
	c.byType[key] = e
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byType)
}
