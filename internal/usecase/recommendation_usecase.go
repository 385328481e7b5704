package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
)

// RecommendationUseCase реализует конвейер рекомендаций:
// эмбеддинг запроса -> поиск кандидатов -> фильтрация -> усечение.
type RecommendationUseCase struct {
	productRepo   ProductRepository
	embeddingRepo EmbeddingRepository
	embedder      EmbedderInfra
	logger        logger.Logger
	cfg           *cfg.RecommendCfg
}

func NewRecommendationUC(
	productRepo ProductRepository,
	embeddingRepo EmbeddingRepository,
	embedder EmbedderInfra,
	logger logger.Logger,
	cfg *cfg.RecommendCfg,
) *RecommendationUseCase {
	return &RecommendationUseCase{
		productRepo:   productRepo,
		embeddingRepo: embeddingRepo,
		embedder:      embedder,
		logger:        logger,
		cfg:           cfg,
	}
}

// Recommend возвращает продукты, ближайшие к текстовому запросу.
// Фильтры только вычитают кандидатов и никогда не переупорядочивают их;
// при нехватке совпадений фильтры не ослабляются, результат просто короче.
func (r *RecommendationUseCase) Recommend(ctx context.Context, req *RecommendReq) (*domain.RecommendationResult, error) {
	const op = "RecommendationUseCase.Recommend"

	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}
	if req.Limit < 0 {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, e.Wrap(op, err)
	}

	// limit == 0 — запрос пустого результата, не ошибка
	if req.Limit == 0 {
		return domain.NewRecommendationResult(req.Query, nil, 0, time.Since(start)), nil
	}

	vector, err := r.embedder.Embed(ctx, req.Query)
	if err != nil {
		r.logger.Warnf("recommendation pipeline failed at stage embed: %v", err)
		return nil, e.Wrap(op, err)
	}

	// Запрашиваем с запасом: фильтрация может отсеять часть кандидатов
	candidates, err := r.embeddingRepo.Query(ctx, vector, req.Limit*r.cfg.OversampleFactor)
	if err != nil {
		r.logger.Warnf("recommendation pipeline failed at stage query: %v", err)
		return nil, e.Wrap(op, err)
	}

	matched, err := r.filterCandidates(ctx, candidates, req.Filters)
	if err != nil {
		r.logger.Warnf("recommendation pipeline failed at stage filter: %v", err)
		return nil, e.Wrap(op, err)
	}

	items := matched
	if len(items) > req.Limit {
		items = items[:req.Limit]
	}

	return domain.NewRecommendationResult(req.Query, items, len(matched), time.Since(start)), nil
}

// SimilarProducts возвращает ближайших соседей вектора существующего продукта,
// исключая сам продукт из результата.
func (r *RecommendationUseCase) SimilarProducts(ctx context.Context, req *SimilarProductsReq) (*domain.RecommendationResult, error) {
	const op = "RecommendationUseCase.SimilarProducts"

	start := time.Now()

	if req.Limit < 0 {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	if _, err := r.productRepo.GetByID(ctx, req.ProductID); err != nil {
		return nil, e.Wrap(op, err)
	}

	if req.Limit == 0 {
		return domain.NewRecommendationResult(req.ProductID, nil, 0, time.Since(start)), nil
	}

	vector, err := r.embeddingRepo.GetVector(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// +1 — сам продукт вернётся первым кандидатом с максимальной оценкой
	candidates, err := r.embeddingRepo.Query(ctx, vector, req.Limit+1)
	if err != nil {
		r.logger.Warnf("similar products failed at stage query: %v", err)
		return nil, e.Wrap(op, err)
	}

	withoutSelf := make([]domain.ScoredID, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != req.ProductID {
			withoutSelf = append(withoutSelf, c)
		}
	}

	matched, err := r.filterCandidates(ctx, withoutSelf, nil)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	items := matched
	if len(items) > req.Limit {
		items = items[:req.Limit]
	}

	return domain.NewRecommendationResult(req.ProductID, items, len(matched), time.Since(start)), nil
}

// CategoryProducts возвращает продукты каталога, чьи метки категорий содержат запрошенную.
func (r *RecommendationUseCase) CategoryProducts(ctx context.Context, req *CategoryReq) ([]ProductInfo, error) {
	const op = "RecommendationUseCase.CategoryProducts"

	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}
	if req.Limit < 0 {
		return nil, e.Wrap(op, e.ErrInvalidLimit)
	}

	products, err := r.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	needle := strings.ToLower(category)
	result := make([]ProductInfo, 0, req.Limit)
	for _, p := range products {
		if len(result) == req.Limit {
			break
		}
		for _, label := range p.Categories {
			if strings.Contains(strings.ToLower(label), needle) {
				result = append(result, NewProductInfo(p))
				break
			}
		}
	}

	return result, nil
}

// filterCandidates превращает кандидатов индекса в продукты,
// отбрасывая не прошедшие конъюнктивный предикат. Порядок кандидатов сохраняется.
func (r *RecommendationUseCase) filterCandidates(ctx context.Context, candidates []domain.ScoredID, filters *domain.FilterCriteria) ([]domain.ScoredProduct, error) {
	matched := make([]domain.ScoredProduct, 0, len(candidates))
	for _, c := range candidates {
		product, err := r.productRepo.GetByID(ctx, c.ID)
		if err != nil {
			if errors.Is(err, e.ErrProductNotFound) {
				// Индекс может содержать записи, удалённые из каталога
				r.logger.Warnf("candidate %s not found in catalog, skipping", c.ID)
				continue
			}
			return nil, err
		}

		if !filters.Matches(product) {
			continue
		}

		matched = append(matched, domain.ScoredProduct{Product: product, Score: c.Score})
	}

	return matched, nil
}
