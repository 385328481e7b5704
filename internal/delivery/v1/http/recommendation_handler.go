package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/internal/usecase"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
)

type RecommendationHandler struct {
	recommendationUsecase usecase.RecommendationUC
	recommendCfg          *cfg.RecommendCfg
	logger                logger.Logger
}

func NewRecommendationHandler(recommendationUsecase usecase.RecommendationUC, recommendCfg *cfg.RecommendCfg, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationUsecase: recommendationUsecase,
		recommendCfg:          recommendCfg,
		logger:                logger,
	}
}

// recommend
//
//	@Summary		Рекомендации по текстовому запросу
//	@Description	Возвращает продукты, семантически близкие к запросу, с опциональными фильтрами
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recommendationRequest	true	"Запрос рекомендаций"
//	@Success		200		{object}	recommendationResponse	"Список рекомендаций"
//	@Failure		400		{object}	ErrorResponse			"Ошибка валидации"
//	@Failure		503		{object}	ErrorResponse			"Сервис эмбеддингов недоступен"
//	@Router			/recommendations [post]
func (h *RecommendationHandler) recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if req.Limit == 0 {
		req.Limit = h.recommendCfg.DefaultLimit
	}
	if req.Limit > h.recommendCfg.MaxLimit {
		req.Limit = h.recommendCfg.MaxLimit
	}

	filters, err := req.Filters.toDomain()
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	result, err := h.recommendationUsecase.Recommend(r.Context(), usecase.NewRecommendReq(req.Query, req.Limit, filters))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationResponse(result))
}

// similarProducts
//
//	@Summary		Похожие продукты
//	@Description	Возвращает продукты, похожие на заданный, по вектору из индекса
//	@Tags			recommendations
//	@Produce		json
//	@Param			product_id	path		string					true	"Идентификатор продукта"
//	@Param			limit		query		int						false	"Количество результатов"
//	@Success		200			{object}	recommendationResponse	"Список похожих продуктов"
//	@Failure		404			{object}	ErrorResponse			"Продукт не найден"
//	@Router			/recommendations/similar/{product_id} [get]
func (h *RecommendationHandler) similarProducts(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "product_id")

	limit, err := parseLimit(r, h.recommendCfg.DefaultLimit, h.recommendCfg.MaxLimit)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	result, err := h.recommendationUsecase.SimilarProducts(r.Context(), usecase.NewSimilarProductsReq(productID, limit))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationResponse(result))
}

// categoryProducts
//
//	@Summary		Продукты категории
//	@Description	Возвращает продукты, метки категорий которых содержат заданную подстроку
//	@Tags			recommendations
//	@Produce		json
//	@Param			category	path		string			true	"Метка категории"
//	@Param			limit		query		int				false	"Количество результатов"
//	@Success		200			{object}	map[string]interface{}	"Продукты категории"
//	@Router			/recommendations/category/{category} [get]
func (h *RecommendationHandler) categoryProducts(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	limit, err := parseLimit(r, h.recommendCfg.DefaultLimit, h.recommendCfg.MaxLimit)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	products, err := h.recommendationUsecase.CategoryProducts(r.Context(), usecase.NewCategoryReq(category, limit))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"products": items,
		"total":    len(items),
	})
}
