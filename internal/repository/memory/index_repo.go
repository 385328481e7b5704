// Package memory реализует индекс сходства в памяти процесса.
// Используется как бэкенд по умолчанию и как детерминированная
// замена Qdrant в тестах.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
)

// IndexRepo хранит нормализованные векторы продуктов.
// Чтения выполняются параллельно; записи взаимно исключены и никогда
// не наблюдаются частично: запрос либо видит запись целиком, либо не видит.
type IndexRepo struct {
	mu      sync.RWMutex
	entries map[string][]float32 // id -> вектор единичной длины
}

func NewIndexRepo() *IndexRepo {
	return &IndexRepo{
		entries: make(map[string][]float32),
	}
}

// Upsert заменяет записи с существующими идентификаторами.
func (m *IndexRepo) Upsert(_ context.Context, vectors []domain.Embedding) error {
	normalized := make(map[string][]float32, len(vectors))
	for _, v := range vectors {
		unit, err := normalize(v.Vector)
		if err != nil {
			return e.Wrap("memory.Upsert", err)
		}
		normalized[v.ID] = unit
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, vector := range normalized {
		m.entries[id] = vector
	}

	return nil
}

// Query возвращает не более k записей по убыванию косинусного сходства.
// Равные оценки упорядочиваются по возрастанию идентификатора, поэтому
// повторный запрос с теми же аргументами даёт идентичный результат.
// k, превышающий размер индекса, возвращает все записи без ошибки.
func (m *IndexRepo) Query(_ context.Context, vector []float32, k int) ([]domain.ScoredID, error) {
	if k < 0 {
		return nil, e.ErrInvalidLimit
	}
	if k == 0 {
		return []domain.ScoredID{}, nil
	}

	query, err := normalize(vector)
	if err != nil {
		return nil, e.Wrap("memory.Query", err)
	}

	m.mu.RLock()
	scored := make([]domain.ScoredID, 0, len(m.entries))
	for id, entry := range m.entries {
		if len(entry) != len(query) {
			m.mu.RUnlock()
			return nil, e.ErrVectorSizeMismatch
		}
		scored = append(scored, domain.ScoredID{ID: id, Score: dot(query, entry)})
	}
	m.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	if k < len(scored) {
		scored = scored[:k]
	}

	return scored, nil
}

// GetVector возвращает сохранённый вектор продукта.
func (m *IndexRepo) GetVector(_ context.Context, id string) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	vector := make([]float32, len(entry))
	copy(vector, entry)
	return vector, nil
}

// Delete атомарно удаляет записи по идентификаторам.
func (m *IndexRepo) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.entries, id)
	}

	return nil
}

// Len возвращает текущий размер индекса.
func (m *IndexRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// normalize возвращает копию вектора единичной длины.
// Векторы хранятся нормализованными, поэтому косинусное сходство
// сводится к скалярному произведению.
func normalize(vector []float32) ([]float32, error) {
	if len(vector) == 0 {
		return nil, e.ErrEmptyVector
	}

	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return nil, e.ErrEmptyVector
	}

	norm := math.Sqrt(sum)
	unit := make([]float32, len(vector))
	for i, v := range vector {
		unit[i] = float32(float64(v) / norm)
	}

	return unit, nil
}

func dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}
