package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIndex(t *testing.T, repo *IndexRepo, vectors map[string][]float32) {
	t.Helper()

	embeddings := make([]domain.Embedding, 0, len(vectors))
	for id, v := range vectors {
		embeddings = append(embeddings, domain.Embedding{ID: id, Vector: v})
	}
	require.NoError(t, repo.Upsert(context.Background(), embeddings))
}

func TestIndexRepo_QueryRanksByCosineSimilarity(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{
		"exact":      {1, 0, 0},
		"close":      {1, 1, 0},
		"orthogonal": {0, 0, 1},
	})

	scored, err := repo.Query(context.Background(), []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, "exact", scored[0].ID)
	assert.Equal(t, "close", scored[1].ID)
	assert.Equal(t, "orthogonal", scored[2].ID)

	assert.InDelta(t, 1.0, scored[0].Score, 1e-6)
	assert.InDelta(t, 0.0, scored[2].Score, 1e-6)

	for i := 1; i < len(scored); i++ {
		assert.LessOrEqual(t, scored[i].Score, scored[i-1].Score)
	}
}

func TestIndexRepo_QueryNormalizesMagnitude(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{
		"unit":   {1, 0},
		"scaled": {100, 0},
	})

	scored, err := repo.Query(context.Background(), []float32{0.5, 0}, 2)
	require.NoError(t, err)
	require.Len(t, scored, 2)

	// Длина вектора не влияет на сходство
	assert.InDelta(t, scored[0].Score, scored[1].Score, 1e-6)
}

func TestIndexRepo_QueryTieBreaksByID(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{
		"c": {1, 0},
		"a": {1, 0},
		"b": {1, 0},
	})

	scored, err := repo.Query(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, "a", scored[0].ID)
	assert.Equal(t, "b", scored[1].ID)
	assert.Equal(t, "c", scored[2].ID)
}

func TestIndexRepo_QueryIsDeterministic(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{
		"p1": {1, 2, 3},
		"p2": {3, 2, 1},
		"p3": {2, 2, 2},
		"p4": {1, 0, 1},
	})

	first, err := repo.Query(context.Background(), []float32{1, 1, 1}, 4)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := repo.Query(context.Background(), []float32{1, 1, 1}, 4)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestIndexRepo_QueryLimitExceedsSize(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{
		"p1": {1, 0},
		"p2": {0, 1},
	})

	scored, err := repo.Query(context.Background(), []float32{1, 1}, 100)
	require.NoError(t, err)
	assert.Len(t, scored, 2)
}

func TestIndexRepo_QueryZeroLimit(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{"p1": {1, 0}})

	scored, err := repo.Query(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestIndexRepo_QueryNegativeLimit(t *testing.T) {
	repo := NewIndexRepo()

	_, err := repo.Query(context.Background(), []float32{1, 0}, -1)
	assert.ErrorIs(t, err, e.ErrInvalidLimit)
}

func TestIndexRepo_QueryEmptyVector(t *testing.T) {
	repo := NewIndexRepo()

	_, err := repo.Query(context.Background(), nil, 5)
	assert.ErrorIs(t, err, e.ErrEmptyVector)

	_, err = repo.Query(context.Background(), []float32{0, 0, 0}, 5)
	assert.ErrorIs(t, err, e.ErrEmptyVector)
}

func TestIndexRepo_QueryDimensionMismatch(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{"p1": {1, 0, 0}})

	_, err := repo.Query(context.Background(), []float32{1, 0}, 5)
	assert.ErrorIs(t, err, e.ErrVectorSizeMismatch)
}

func TestIndexRepo_UpsertReplacesExisting(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{"p1": {1, 0}})
	seedIndex(t, repo, map[string][]float32{"p1": {0, 1}})

	assert.Equal(t, 1, repo.Len())

	vector, err := repo.GetVector(context.Background(), "p1")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, vector[0], 1e-6)
	assert.InDelta(t, 1.0, vector[1], 1e-6)
}

func TestIndexRepo_GetVectorUnknownID(t *testing.T) {
	repo := NewIndexRepo()

	_, err := repo.GetVector(context.Background(), "missing")
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestIndexRepo_GetVectorReturnsCopy(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{"p1": {1, 0}})

	vector, err := repo.GetVector(context.Background(), "p1")
	require.NoError(t, err)
	vector[0] = 42

	again, err := repo.GetVector(context.Background(), "p1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, again[0], 1e-6)
}

func TestIndexRepo_Delete(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{
		"p1": {1, 0},
		"p2": {0, 1},
	})

	require.NoError(t, repo.Delete(context.Background(), []string{"p1", "missing"}))

	assert.Equal(t, 1, repo.Len())
	_, err := repo.GetVector(context.Background(), "p1")
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestIndexRepo_ConcurrentReadsAndWrites(t *testing.T) {
	repo := NewIndexRepo()
	seedIndex(t, repo, map[string][]float32{
		"p1": {1, 0},
		"p2": {0, 1},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := repo.Query(context.Background(), []float32{1, 1}, 2)
				assert.NoError(t, err)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				err := repo.Upsert(context.Background(), []domain.Embedding{{ID: "p1", Vector: []float32{1, 0}}})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, repo.Len())
}
