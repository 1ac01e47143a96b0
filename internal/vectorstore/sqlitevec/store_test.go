package sqlitevec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slicewise/crust/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "reviews.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func doc(id, content string, embedding []float32) models.Document {
	return models.Document{ID: id, Content: content, Rating: 4, Date: "2024-01-01", Embedding: embedding}
}

func TestStore_PopulatedLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	populated, err := store.Populated(ctx)
	require.NoError(t, err)
	assert.False(t, populated, "fresh store must not report populated")

	require.NoError(t, store.BulkInsert(ctx, []models.Document{
		doc("0", "Great crust", []float32{1, 0}),
	}))

	// Insert alone is not population; only the marker is.
	populated, err = store.Populated(ctx)
	require.NoError(t, err)
	assert.False(t, populated)

	require.NoError(t, store.MarkPopulated(ctx, 1))

	populated, err = store.Populated(ctx)
	require.NoError(t, err)
	assert.True(t, populated)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.Clear(ctx))

	populated, err = store.Populated(ctx)
	require.NoError(t, err)
	assert.False(t, populated, "clear must remove the marker")

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_MarkPopulatedWithZeroDocuments(t *testing.T) {
	// An empty dataset still completes population (boundary case: the second
	// run must see "already populated").
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.BulkInsert(ctx, nil))
	require.NoError(t, store.MarkPopulated(ctx, 0))

	populated, err := store.Populated(ctx)
	require.NoError(t, err)
	assert.True(t, populated)
}

func TestStore_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by decreasing cosine similarity and honors topK", func(t *testing.T) {
		store := openTestStore(t)

		require.NoError(t, store.BulkInsert(ctx, []models.Document{
			doc("0", "exact match", []float32{1, 0, 0}),
			doc("1", "close match", []float32{0.9, 0.1, 0}),
			doc("2", "orthogonal", []float32{0, 0, 1}),
			doc("3", "opposite", []float32{-1, 0, 0}),
			doc("4", "off axis", []float32{0.5, 0.5, 0}),
		}))

		results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		require.Len(t, results, 2, "exactly topK results for a larger corpus")

		assert.Equal(t, "0", results[0].Document.ID)
		assert.Equal(t, "1", results[1].Document.ID)
		assert.Greater(t, results[0].Score, results[1].Score)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	})

	t.Run("returns fewer than topK when store is smaller", func(t *testing.T) {
		store := openTestStore(t)

		require.NoError(t, store.BulkInsert(ctx, []models.Document{
			doc("0", "only row", []float32{1, 0}),
		}))

		results, err := store.Search(ctx, []float32{0, 1}, 5)
		require.NoError(t, err)
		require.Len(t, results, 1)
		// Dissimilar rows are still returned; there is no implicit cutoff.
		assert.InDelta(t, 0.0, results[0].Score, 1e-6)
	})

	t.Run("empty store yields empty result", func(t *testing.T) {
		store := openTestStore(t)

		results, err := store.Search(ctx, []float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("rejects non-positive topK", func(t *testing.T) {
		store := openTestStore(t)

		_, err := store.Search(ctx, []float32{1, 0}, 0)
		assert.Error(t, err)
	})
}

func TestStore_RoundTripMetadata(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	in := models.Document{
		ID:        "42",
		Content:   "Great crust Best thin crust in town",
		Rating:    5,
		Date:      "2024-01-01",
		Embedding: []float32{0.25, -0.5, 0.125},
	}
	require.NoError(t, store.BulkInsert(ctx, []models.Document{in}))

	results, err := store.Search(ctx, in.Embedding, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0].Document
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.Content, got.Content)
	assert.InDelta(t, in.Rating, got.Rating, 1e-9)
	assert.Equal(t, in.Date, got.Date)
	assert.Equal(t, in.Embedding, got.Embedding)
}

func TestStore_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.BulkInsert(ctx, []models.Document{doc("0", "first", []float32{1})}))

	err := store.BulkInsert(ctx, []models.Document{doc("0", "second", []float32{1})})
	assert.Error(t, err, "ids are never reused or reassigned")
}

func TestEmbeddingEncoding(t *testing.T) {
	in := []float32{0, 1, -1, 3.14159, -2.5e-3}

	decoded, err := decodeEmbedding(encodeEmbedding(in))
	require.NoError(t, err)
	assert.Equal(t, in, decoded)

	_, err = decodeEmbedding([]byte{1, 2, 3})
	assert.Error(t, err)
}
