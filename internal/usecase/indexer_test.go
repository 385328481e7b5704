package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/internal/repository/memory"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_IndexesWholeCatalog(t *testing.T) {
	catalog := newStubCatalog(testProducts()...)
	index := memory.NewIndexRepo()
	embedder := &stubEmbedder{vectors: map[string][]float32{}}

	indexer := NewCatalogIndexer(catalog, embedder, index, nil, nopLogger{})

	count, err := indexer.BuildIndex(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, count)
	assert.Equal(t, 3, index.Len())

	for _, p := range testProducts() {
		_, err := index.GetVector(context.Background(), p.ID)
		assert.NoError(t, err)
	}
}

func TestBuildIndex_EmptyCatalog(t *testing.T) {
	indexer := NewCatalogIndexer(newStubCatalog(), &stubEmbedder{}, memory.NewIndexRepo(), nil, nopLogger{})

	_, err := indexer.BuildIndex(context.Background())
	assert.ErrorIs(t, err, e.ErrDatasetNotLoaded)
}

func TestBuildIndex_EmbedderFailure(t *testing.T) {
	catalog := newStubCatalog(testProducts()...)
	embedder := &stubEmbedder{err: e.ErrUpstreamUnavailable}
	indexer := NewCatalogIndexer(catalog, embedder, memory.NewIndexRepo(), nil, nopLogger{})

	_, err := indexer.BuildIndex(context.Background())
	assert.ErrorIs(t, err, e.ErrUpstreamUnavailable)
}

func TestBuildIndex_PublishesIndexEvent(t *testing.T) {
	catalog := newStubCatalog(testProducts()...)
	producer := &stubProducer{}
	indexer := NewCatalogIndexer(catalog, &stubEmbedder{}, memory.NewIndexRepo(), producer, nopLogger{})

	count, err := indexer.BuildIndex(context.Background())
	require.NoError(t, err)

	require.Len(t, producer.events, 1)
	event := producer.events[0]
	assert.Equal(t, EventTypeIndexRebuilt, event.EventType)
	assert.Equal(t, count, event.ProductCount)
	assert.Equal(t, "stub-model", event.ModelVersion)
}

func TestBuildIndex_ProducerFailureDoesNotFailBuild(t *testing.T) {
	catalog := newStubCatalog(testProducts()...)
	producer := &stubProducer{err: errors.New("broker down")}
	indexer := NewCatalogIndexer(catalog, &stubEmbedder{}, memory.NewIndexRepo(), producer, nopLogger{})

	count, err := indexer.BuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestEmbeddingText_ComposesFields(t *testing.T) {
	text := EmbeddingText(&domain.Product{
		Title:       "Oak Table",
		Description: "Solid oak dining table.",
		Brand:       "Nordic",
		Material:    "Wood",
	})

	assert.Equal(t, "Oak Table Solid oak dining table. Brand: Nordic Material: Wood", text)
}

func TestEmbeddingText_SkipsEmptyFields(t *testing.T) {
	text := EmbeddingText(&domain.Product{Title: "Oak Table"})

	assert.Equal(t, "Oak Table", text)
}
