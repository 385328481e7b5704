package qdrant

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/jitter"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

const payloadProductID = "product_id"

const (
	// readAttempts — общее число попыток идемпотентного чтения, включая первую.
	readAttempts = 2
	baseJitter   = 100 * time.Millisecond
	maxJitter    = time.Second
)

// PointsClient покрывает используемые операции клиента Qdrant.
type PointsClient interface {
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Get(ctx context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Delete(ctx context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

// EmbeddingRepo реализует индекс сходства поверх коллекции Qdrant.
type EmbeddingRepo struct {
	client PointsClient
	cfg    *cfg.QdrantCfg
	logger logger.Logger
}

func NewEmbeddingRepo(client PointsClient, cfg *cfg.QdrantCfg, logger logger.Logger) *EmbeddingRepo {
	return &EmbeddingRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Upsert сохраняет или обновляет векторы продуктов в коллекции Qdrant.
// Идентификатор точки детерминированно выводится из ID продукта, поэтому
// повторная загрузка того же продукта заменяет прежнюю запись.
func (q *EmbeddingRepo) Upsert(ctx context.Context, vectors []domain.Embedding) error {
	points := make([]*qdrant.PointStruct, 0, len(vectors))
	for _, vector := range vectors {
		payload := domain.Payload{payloadProductID: vector.ID}
		for k, v := range vector.Payload {
			payload[k] = v
		}

		points = append(points, &qdrant.PointStruct{
			Id:      pointID(vector.ID),
			Vectors: qdrant.NewVectors(vector.Vector...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         points,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Query возвращает не более k ближайших продуктов по косинусному сходству.
// Коллекция создаётся с метрикой Distance_Cosine, поэтому оценка Qdrant
// уже является косинусным сходством.
func (q *EmbeddingRepo) Query(ctx context.Context, vector []float32, k int) ([]domain.ScoredID, error) {
	if k <= 0 {
		return []domain.ScoredID{}, nil
	}

	var points []*qdrant.ScoredPoint
	err := q.readWithRetry(ctx, func() error {
		var qErr error
		points, qErr = q.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: q.cfg.QdrantCollectionName,
			Query:          qdrant.NewQuery(vector...),
			Limit:          qdrant.PtrOf(uint64(k)),
			WithPayload:    qdrant.NewWithPayload(true),
		})
		return qErr
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrUpstreamUnavailable)
	}

	result := make([]domain.ScoredID, 0, len(points))
	for _, point := range points {
		id := point.GetPayload()[payloadProductID].GetStringValue()
		if id == "" {
			continue
		}
		result = append(result, domain.ScoredID{ID: id, Score: point.GetScore()})
	}

	return result, nil
}

// GetVector возвращает сохранённый вектор продукта.
func (q *EmbeddingRepo) GetVector(ctx context.Context, id string) ([]float32, error) {
	var points []*qdrant.RetrievedPoint
	err := q.readWithRetry(ctx, func() error {
		var gErr error
		points, gErr = q.client.Get(ctx, &qdrant.GetPoints{
			CollectionName: q.cfg.QdrantCollectionName,
			Ids:            []*qdrant.PointId{pointID(id)},
			WithVectors:    qdrant.NewWithVectors(true),
		})
		return gErr
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrUpstreamUnavailable)
	}

	if len(points) == 0 {
		return nil, e.ErrProductNotFound
	}

	data := points[0].GetVectors().GetVector().GetData()
	if len(data) == 0 {
		return nil, e.ErrEmptyVector
	}

	return data, nil
}

// Delete удаляет продукты из коллекции по их идентификаторам.
func (q *EmbeddingRepo) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pointIDs = append(pointIDs, pointID(id))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// readWithRetry повторяет идемпотентное чтение один раз с джиттерной
// задержкой, зеркально повторной попытке клиента эмбеддингов.
func (q *EmbeddingRepo) readWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < readAttempts; attempt++ {
		if attempt > 0 {
			sleepTime := jitter.ExponentialBackoff(baseJitter, maxJitter, attempt-1, jitter.DefaultJitter)
			q.logger.Warnf("qdrant read failed, retrying in %v: %v", sleepTime, lastErr)
			select {
			case <-time.After(sleepTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return lastErr
}

// pointID детерминированно отображает ID продукта в UUID точки Qdrant.
// Идентификаторы датасета не всегда являются корректными UUID.
func pointID(productID string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(productID)).String())
}
