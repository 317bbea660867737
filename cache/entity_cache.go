package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dashboard-service/models"
)

// Lister is the part of a repository the cache is seeded from.
type Lister[E any] interface {
	List(ctx context.Context) ([]E, error)
}

// EntityCache holds saved entities in memory, indexed by id and by tag.
// Every read returns clones, so callers cannot modify cached values.
type EntityCache[E models.Entity[E]] struct {
	mu    sync.RWMutex
	byID  map[string]E
	byTag map[string][]E
	all   []E
}

func NewEntityCache[E models.Entity[E]]() *EntityCache[E] {
	return &EntityCache[E]{
		byID:  make(map[string]E),
		byTag: make(map[string][]E),
		all:   make([]E, 0),
	}
}

// Load replaces the cache contents with everything the lister returns.
func (c *EntityCache[E]) Load(ctx context.Context, l Lister[E]) error {
	items, err := l.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entities for cache initialization: %w", err)
	}

	byID := make(map[string]E, len(items))
	byTag := make(map[string][]E)
	all := make([]E, 0, len(items))
	for _, item := range items {
		e := item.Clone()
		byID[e.GetID()] = e
		all = append(all, e)
		for _, tag := range e.GetTags() {
			byTag[tag] = append(byTag[tag], e)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = byID
	c.byTag = byTag
	c.all = all
	return nil
}

// Set adds or replaces an entity. A new entity goes to the front, matching
// the repository's newest-first order; a replaced one keeps its position.
func (c *EntityCache[E]) Set(entity E) {
	e := entity.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, exists := c.byID[e.GetID()]; exists {
		c.removeFromTags(old)
		for i, item := range c.all {
			if item.GetID() == e.GetID() {
				c.all[i] = e
				break
			}
		}
	} else {
		c.all = append([]E{e}, c.all...)
	}
	c.byID[e.GetID()] = e
	for _, tag := range e.GetTags() {
		c.byTag[tag] = append(c.byTag[tag], e)
	}
}

// Delete removes an entity; unknown ids are ignored.
func (c *EntityCache[E]) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old, exists := c.byID[id]
	if !exists {
		return
	}
	delete(c.byID, id)
	c.removeFromTags(old)

	remaining := make([]E, 0, len(c.all))
	for _, item := range c.all {
		if item.GetID() != id {
			remaining = append(remaining, item)
		}
	}
	c.all = remaining
}

// removeFromTags drops e from every tag list it is in. Caller holds the lock.
func (c *EntityCache[E]) removeFromTags(e E) {
	for _, tag := range e.GetTags() {
		items := c.byTag[tag]
		kept := make([]E, 0, len(items))
		for _, item := range items {
			if item.GetID() != e.GetID() {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			delete(c.byTag, tag)
		} else {
			c.byTag[tag] = kept
		}
	}
}

func (c *EntityCache[E]) GetByID(id string) (E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	if !ok {
		var zero E
		return zero, false
	}
	return e.Clone(), true
}

func (c *EntityCache[E]) GetAll() []E {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneAll(c.all)
}

// GetByTag returns the entities carrying tag, and false when there are none.
func (c *EntityCache[E]) GetByTag(tag string) ([]E, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.byTag[models.NormalizeTag(tag)]
	if !ok || len(items) == 0 {
		return []E{}, false
	}
	return cloneAll(items), true
}

// Tags returns every tag in use with its entity count.
func (c *EntityCache[E]) Tags() []TagCount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]TagCount, 0, len(c.byTag))
	for tag, items := range c.byTag {
		out = append(out, TagCount{Tag: tag, Count: len(items)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

func (c *EntityCache[E]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.all)
}

// TagCount is a tag with the number of entities carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

func cloneAll[E models.Entity[E]](items []E) []E {
	out := make([]E, 0, len(items))
	for _, item := range items {
		out = append(out, item.Clone())
	}
	return out
}
