package pgvector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/slicewise/crust/internal/models"
)

const testDimensions = 3

// startTestStore launches a disposable pgvector-enabled Postgres and opens a
// store against it. Requires a local Docker daemon; skipped with -short.
func startTestStore(t *testing.T) *Store {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping pgvector integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "pgvector/pgvector:pg16",
		postgres.WithDatabase("crust_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store, err := Open(ctx, pool, testDimensions)
	require.NoError(t, err)

	return store
}

func TestStoreIntegration(t *testing.T) {
	store := startTestStore(t)
	ctx := context.Background()

	t.Run("fresh store is unpopulated and empty", func(t *testing.T) {
		populated, err := store.Populated(ctx)
		require.NoError(t, err)
		assert.False(t, populated)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("bulk insert, mark, search round trip", func(t *testing.T) {
		docs := []models.Document{
			{ID: "0", Content: "Great crust Best thin crust in town", Rating: 5, Date: "2024-01-01", Embedding: []float32{1, 0, 0}},
			{ID: "1", Content: "Average slice nothing special", Rating: 3, Date: "2024-02-02", Embedding: []float32{0, 1, 0}},
			{ID: "2", Content: "Burnt and late", Rating: 1, Date: "2024-03-03", Embedding: []float32{0, 0, 1}},
		}
		require.NoError(t, store.BulkInsert(ctx, docs))
		require.NoError(t, store.MarkPopulated(ctx, len(docs)))

		populated, err := store.Populated(ctx)
		require.NoError(t, err)
		assert.True(t, populated)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "0", results[0].Document.ID)
		assert.Equal(t, "Great crust Best thin crust in town", results[0].Document.Content)
		assert.InDelta(t, 5.0, results[0].Document.Rating, 1e-9)
		assert.Equal(t, "2024-01-01", results[0].Document.Date)
		assert.InDelta(t, 1.0, results[0].Score, 1e-3)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("dimension mismatch rejected on insert", func(t *testing.T) {
		err := store.BulkInsert(ctx, []models.Document{
			{ID: "99", Content: "bad", Rating: 1, Date: "2024-01-01", Embedding: []float32{1, 0}},
		})
		assert.Error(t, err)
	})

	t.Run("clear removes documents and marker", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))

		populated, err := store.Populated(ctx)
		require.NoError(t, err)
		assert.False(t, populated)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		results, err := store.Search(ctx, []float32{1, 0, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
