package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
)

const upsertChunkSize = 128

// EventTypeIndexRebuilt — событие полной переиндексации каталога.
const EventTypeIndexRebuilt = "catalog_index_rebuilt"

// CatalogIndexer строит индекс сходства из каталога при старте сервиса.
type CatalogIndexer struct {
	productRepo   ProductRepository
	embedder      EmbedderInfra
	embeddingRepo EmbeddingRepository
	producer      MessageProducer // nil, если Kafka отключена
	logger        logger.Logger
}

func NewCatalogIndexer(
	productRepo ProductRepository,
	embedder EmbedderInfra,
	embeddingRepo EmbeddingRepository,
	producer MessageProducer,
	logger logger.Logger,
) *CatalogIndexer {
	return &CatalogIndexer{
		productRepo:   productRepo,
		embedder:      embedder,
		embeddingRepo: embeddingRepo,
		producer:      producer,
		logger:        logger,
	}
}

// BuildIndex эмбеддит весь каталог и загружает векторы в индекс.
// Возвращает количество проиндексированных продуктов.
func (c *CatalogIndexer) BuildIndex(ctx context.Context) (int, error) {
	const op = "CatalogIndexer.BuildIndex"

	products, err := c.productRepo.List(ctx)
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	if len(products) == 0 {
		return 0, e.Wrap(op, e.ErrDatasetNotLoaded)
	}

	texts := make([]string, 0, len(products))
	for _, p := range products {
		texts = append(texts, EmbeddingText(p))
	}

	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, e.Wrap(op, err)
	}
	if len(vectors) != len(products) {
		return 0, e.Wrap(op, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(products)))
	}

	embeddings := make([]domain.Embedding, 0, len(products))
	for i, p := range products {
		if len(vectors[i]) == 0 {
			return 0, e.Wrap(op, e.ErrEmptyVector)
		}
		payload := domain.NewPayload(p.ID, p.Title, c.embedder.Model())
		embeddings = append(embeddings, *domain.NewEmbedding(p.ID, vectors[i], payload))
	}

	for start := 0; start < len(embeddings); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(embeddings) {
			end = len(embeddings)
		}
		if err := c.embeddingRepo.Upsert(ctx, embeddings[start:end]); err != nil {
			return 0, e.Wrap(op, err)
		}
	}

	c.publishIndexEvent(ctx, len(embeddings))

	return len(embeddings), nil
}

// publishIndexEvent публикует событие переиндексации в Kafka.
// Ошибка публикации не прерывает работу: событие носит наблюдательный характер.
func (c *CatalogIndexer) publishIndexEvent(ctx context.Context, count int) {
	if c.producer == nil {
		return
	}

	req := NewWriteIndexEventReq(EventTypeIndexRebuilt, count, c.embedder.Model())
	if err := c.producer.WriteIndexEvent(ctx, req); err != nil {
		c.logger.Warnf("failed to publish index event: %v", err)
	}
}

// EmbeddingText собирает текст продукта для эмбеддинга.
// Состав полей должен совпадать для индексации и для любых офлайн-скриптов,
// наполняющих тот же индекс.
func EmbeddingText(p *domain.Product) string {
	parts := make([]string, 0, 4)
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if p.Brand != "" {
		parts = append(parts, "Brand: "+p.Brand)
	}
	if p.Material != "" {
		parts = append(parts, "Material: "+p.Material)
	}

	return strings.Join(parts, " ")
}
