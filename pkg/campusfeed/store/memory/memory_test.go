package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/campus-feed/pkg/campusfeed"
	"github.com/campushub/campus-feed/pkg/campusfeed/store/memory"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Put(ctx, "posts", "p1", []byte(`{"id":"p1","title":"Notice"}`)))

	doc, err := store.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","title":"Notice"}`, string(doc))

	require.NoError(t, store.Delete(ctx, "posts", "p1"))

	_, err = store.Get(ctx, "posts", "p1")
	assert.ErrorIs(t, err, campusfeed.ErrKeyNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "posts", "p1"), campusfeed.ErrKeyNotFound)
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Put(ctx, "posts", "k", []byte(`{"id":"a"}`)))
	require.NoError(t, store.Put(ctx, "news", "k", []byte(`{"id":"b"}`)))

	doc, err := store.Get(ctx, "posts", "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a"}`, string(doc))

	doc, err = store.Get(ctx, "news", "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b"}`, string(doc))
}

func TestPutStoresACopy(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	doc := []byte(`{"id":"p1"}`)
	require.NoError(t, store.Put(ctx, "posts", "p1", doc))
	doc[2] = 'X'

	got, err := store.Get(ctx, "posts", "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1"}`, string(got))
}

func TestScan(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.Put(ctx, "events", "tpo-1#e1", []byte(`{"id":"e1","owner_id":"tpo-1","visible":true}`)))
	require.NoError(t, store.Put(ctx, "events", "tpo-1#e2", []byte(`{"id":"e2","owner_id":"tpo-1","visible":false}`)))
	require.NoError(t, store.Put(ctx, "events", "tpo-2#e3", []byte(`{"id":"e3","owner_id":"tpo-2","visible":true}`)))

	t.Run("no conditions returns everything in key order", func(t *testing.T) {
		docs, err := store.Scan(ctx, "events")
		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.JSONEq(t, `{"id":"e1","owner_id":"tpo-1","visible":true}`, string(docs[0]))
	})

	t.Run("single attribute condition", func(t *testing.T) {
		docs, err := store.Scan(ctx, "events", campusfeed.Cond{Attr: "owner_id", Value: "tpo-1"})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("conditions are conjunctive", func(t *testing.T) {
		docs, err := store.Scan(ctx, "events",
			campusfeed.Cond{Attr: "owner_id", Value: "tpo-1"},
			campusfeed.Cond{Attr: "visible", Value: "true"},
		)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.JSONEq(t, `{"id":"e1","owner_id":"tpo-1","visible":true}`, string(docs[0]))
	})

	t.Run("no matches yields an empty result, not an error", func(t *testing.T) {
		docs, err := store.Scan(ctx, "events", campusfeed.Cond{Attr: "owner_id", Value: "tpo-9"})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("unknown collection yields an empty result", func(t *testing.T) {
		docs, err := store.Scan(ctx, "absent")
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}
