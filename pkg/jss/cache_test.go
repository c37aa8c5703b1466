package jss_test

import (
	"context"
	"errors"
	"testing"

	"github.com/casperdev-io/jss-client/pkg/jss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetcher returns canned items and counts how often it is invoked.
type countingFetcher struct {
	items []jss.ListItem
	err   error
	calls int
}

func (f *countingFetcher) fetch(ctx context.Context, t jss.ResourceType) ([]jss.ListItem, error) {
	f.calls++

	return f.items, f.err
}

func testItems() []jss.ListItem {
	return []jss.ListItem{
		{"id": float64(1), "name": "alpha", "priority": float64(3)},
		{"id": float64(2), "name": "beta", "priority": float64(9)},
	}
}

func TestListCache_FetchesOnceUntilFlushed(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	fetcher := &countingFetcher{items: testItems()}
	ctx := context.Background()

	first, err := cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, fetcher.calls)

	second, err := cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "second read must be served from cache")

	cache.FlushType(jss.TypeCategory)

	_, err = cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls, "flush must force a fresh fetch")
}

func TestListCache_RefreshBypassesCache(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	fetcher := &countingFetcher{items: testItems()}
	ctx := context.Background()

	_, err := cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)

	_, err = cache.List(ctx, jss.TypeCategory, true, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestListCache_FetchErrorLeavesCacheEmpty(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	boom := errors.New("server unreachable")
	fetcher := &countingFetcher{err: boom}
	ctx := context.Background()

	_, err := cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.ErrorIs(t, err, boom)

	// The failed fetch must not have populated anything.
	fetcher.err = nil
	fetcher.items = testItems()

	items, err := cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, fetcher.calls)
}

func TestListCache_AbstractTypeRejected(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	fetcher := &countingFetcher{items: testItems()}

	_, err := cache.List(context.Background(), jss.BaseType, false, fetcher.fetch)
	require.ErrorIs(t, err, jss.ErrUnsupportedOperation)
	assert.Zero(t, fetcher.calls)
}

func TestListCache_Projections(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	fetcher := &countingFetcher{items: testItems()}
	ctx := context.Background()

	ids, err := cache.IDs(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	names, err := cache.Names(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	assert.Equal(t, 1, fetcher.calls, "projections share one cached list")
}

func TestListCache_DerivedMapsCachedAndDropped(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	fetcher := &countingFetcher{items: testItems()}
	ctx := context.Background()

	byPriority, err := cache.Map(ctx, jss.TypeCategory, "priority", false, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, float64(3), byPriority[1])
	assert.Equal(t, float64(9), byPriority[2])

	// Refreshing the list rebuilds derived maps from the new data.
	fetcher.items = []jss.ListItem{{"id": float64(1), "name": "alpha", "priority": float64(7)}}

	byPriority, err = cache.Map(ctx, jss.TypeCategory, "priority", true, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, float64(7), byPriority[1])
	assert.NotContains(t, byPriority, 2)
}

func TestListCache_FlushAllClearsEverything(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	fetcher := &countingFetcher{items: testItems()}
	ctx := context.Background()

	_, err := cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)

	cache.StoreExtAttrs(jss.ExtendableComputers, []jss.ListItem{{"id": float64(5), "name": "Battery"}})

	cache.FlushAll()

	assert.Nil(t, cache.ExtAttrs(jss.ExtendableComputers))

	_, err = cache.List(ctx, jss.TypeCategory, false, fetcher.fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestListCache_ExtAttrsPerKind(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()

	computerDefs := []jss.ListItem{{"id": float64(1), "name": "Battery"}}
	userDefs := []jss.ListItem{{"id": float64(2), "name": "Department"}}

	cache.StoreExtAttrs(jss.ExtendableComputers, computerDefs)
	cache.StoreExtAttrs(jss.ExtendableUsers, userDefs)

	assert.Equal(t, computerDefs, cache.ExtAttrs(jss.ExtendableComputers))
	assert.Equal(t, userDefs, cache.ExtAttrs(jss.ExtendableUsers))

	cache.FlushExtAttrs(jss.ExtendableComputers)

	assert.Nil(t, cache.ExtAttrs(jss.ExtendableComputers))
	assert.Equal(t, userDefs, cache.ExtAttrs(jss.ExtendableUsers), "flush is scoped to one kind")
}

func TestListCache_FlushTypeScopedToOneType(t *testing.T) {
	t.Parallel()

	cache := jss.NewListCache()
	categories := &countingFetcher{items: testItems()}
	users := &countingFetcher{items: []jss.ListItem{{"id": float64(9), "name": "jdoe"}}}
	ctx := context.Background()

	_, err := cache.List(ctx, jss.TypeCategory, false, categories.fetch)
	require.NoError(t, err)

	_, err = cache.List(ctx, jss.TypeUser, false, users.fetch)
	require.NoError(t, err)

	cache.FlushType(jss.TypeCategory)

	_, err = cache.List(ctx, jss.TypeUser, false, users.fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, users.calls, "flushing categories must not evict users")

	_, err = cache.List(ctx, jss.TypeCategory, false, categories.fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, categories.calls)
}
