package jss

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ListFetcher performs the live "list all" query for a resource type when
// the cache has no entry.
type ListFetcher func(ctx context.Context, t ResourceType) ([]ListItem, error)

// ListCache memoizes "list all objects of type T" queries and the id→field
// maps derived from them. Each Connection owns exactly one ListCache;
// entries never expire by time and are invalidated only by explicit flushes
// or the refresh flag.
//
// All operations are safe for concurrent use. The mutex is held across the
// underlying fetch so concurrent callers observe at most one live query per
// (type, cache-empty) transition.
type ListCache struct {
	mu       sync.Mutex
	lists    map[string][]ListItem
	maps     map[string]map[int]interface{}
	extAttrs map[ExtendableKind][]ListItem
}

// NewListCache returns an empty cache.
func NewListCache() *ListCache {
	return &ListCache{
		lists:    make(map[string][]ListItem),
		maps:     make(map[string]map[int]interface{}),
		extAttrs: make(map[ExtendableKind][]ListItem),
	}
}

// List returns the cached list for t, fetching it first when refresh is set
// or no entry exists yet.
func (c *ListCache) List(ctx context.Context, t ResourceType, refresh bool, fetch ListFetcher) ([]ListItem, error) {
	if t.ListKey() == "" {
		return nil, fmt.Errorf("%w: list queries require a concrete resource type", ErrUnsupportedOperation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !refresh {
		if cached, ok := c.lists[t.ListKey()]; ok {
			return cached, nil
		}
	}

	items, err := fetch(ctx, t)
	if err != nil {
		return nil, err
	}

	c.lists[t.ListKey()] = items
	// Derived maps are rebuilt from the new list on demand.
	c.dropMapsLocked(t.ListKey())

	return items, nil
}

// IDs projects the cached list to its id column, preserving order.
func (c *ListCache) IDs(ctx context.Context, t ResourceType, refresh bool, fetch ListFetcher) ([]int, error) {
	items, err := c.List(ctx, t, refresh, fetch)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID())
	}

	return ids, nil
}

// Names projects the cached list to its name column, preserving order.
func (c *ListCache) Names(ctx context.Context, t ResourceType, refresh bool, fetch ListFetcher) ([]string, error) {
	items, err := c.List(ctx, t, refresh, fetch)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name())
	}

	return names, nil
}

// Map builds and caches an id→field mapping from the (possibly refreshed)
// list for t.
func (c *ListCache) Map(ctx context.Context, t ResourceType, field string, refresh bool, fetch ListFetcher) (map[int]interface{}, error) {
	items, err := c.List(ctx, t, refresh, fetch)
	if err != nil {
		return nil, err
	}

	key := mapKey(t.ListKey(), field)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !refresh {
		if cached, ok := c.maps[key]; ok {
			return cached, nil
		}
	}

	built := make(map[int]interface{}, len(items))
	for _, item := range items {
		built[item.ID()] = item[field]
	}

	c.maps[key] = built

	return built, nil
}

// FlushAll removes every cached list, derived map, and extension-attribute
// definition set.
func (c *ListCache) FlushAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lists = make(map[string][]ListItem)
	c.maps = make(map[string]map[int]interface{})
	c.extAttrs = make(map[ExtendableKind][]ListItem)
}

// FlushType removes the cached list for t along with every derived map in
// its namespace.
func (c *ListCache) FlushType(t ResourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.lists, t.ListKey())
	c.dropMapsLocked(t.ListKey())
}

// ExtAttrs returns the cached definitions for kind, or nil when nothing has
// been stored.
func (c *ListCache) ExtAttrs(kind ExtendableKind) []ListItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.extAttrs[kind]
}

// StoreExtAttrs caches the definitions for kind.
func (c *ListCache) StoreExtAttrs(kind ExtendableKind, defs []ListItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.extAttrs[kind] = defs
}

// FlushExtAttrs removes the definition cache for kind.
func (c *ListCache) FlushExtAttrs(kind ExtendableKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.extAttrs, kind)
}

func (c *ListCache) dropMapsLocked(listKey string) {
	prefix := listKey + "_map_"
	for key := range c.maps {
		if strings.HasPrefix(key, prefix) {
			delete(c.maps, key)
		}
	}
}

func mapKey(listKey, field string) string {
	return listKey + "_map_" + field
}
