package usecase

import (
	"context"

	"github.com/ikarus3d/go-backend/internal/domain"
)

type ProductRepository interface {
	// GetByID возвращает продукт по идентификатору или e.ErrProductNotFound.
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

// EmbeddingRepository — индекс сходства поверх векторного хранилища.
type EmbeddingRepository interface {
	// Upsert заменяет существующие записи с теми же идентификаторами.
	Upsert(ctx context.Context, vectors []domain.Embedding) error
	// Query возвращает не более k записей по убыванию косинусного сходства.
	// Равные оценки упорядочиваются по возрастанию идентификатора.
	Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredID, error)
	// GetVector возвращает сохранённый вектор продукта или e.ErrProductNotFound.
	GetVector(ctx context.Context, id string) ([]float32, error)
	Delete(ctx context.Context, ids []string) error
}

// DescriptionCacheRepository кэширует сгенерированные описания по ID продукта.
// Промах кэша — пустая строка без ошибки.
type DescriptionCacheRepository interface {
	GetDescription(ctx context.Context, productID string) (string, error)
	SetDescription(ctx context.Context, productID string, text string) error
}
