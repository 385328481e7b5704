package http

import (
	"net/http"

	"github.com/ikarus3d/go-backend/internal/usecase"
	"github.com/ikarus3d/go-backend/pkg/logger"
)

type AnalyticsHandler struct {
	analyticsUsecase usecase.AnalyticsUC
	logger           logger.Logger
}

func NewAnalyticsHandler(analyticsUsecase usecase.AnalyticsUC, logger logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsUsecase: analyticsUsecase, logger: logger}
}

type nameValueResponse struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type priceBucketResponse struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

func toNameValues(values []usecase.NameValue) []nameValueResponse {
	out := make([]nameValueResponse, 0, len(values))
	for _, v := range values {
		out = append(out, nameValueResponse{Name: v.Name, Value: v.Value})
	}

	return out
}

func toPriceBuckets(buckets []usecase.PriceBucket) []priceBucketResponse {
	out := make([]priceBucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, priceBucketResponse{Range: b.Range, Count: b.Count})
	}

	return out
}

// overview
//
//	@Summary		Обзор каталога
//	@Description	Полный набор агрегатов по статическому каталогу
//	@Tags			analytics
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Агрегаты каталога"
//	@Router			/analytics/overview [get]
func (a *AnalyticsHandler) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := a.analyticsUsecase.Overview(r.Context())
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"total_products":   ov.TotalProducts,
		"average_price":    ov.AveragePrice,
		"median_price":     ov.MedianPrice,
		"price_range":      map[string]float64{"min": ov.PriceRange.Min, "max": ov.PriceRange.Max},
		"total_brands":     ov.TotalBrands,
		"total_categories": ov.TotalCategories,
		"total_materials":  ov.TotalMaterials,
		"top_categories":   toNameValues(ov.TopCategories),
		"top_brands":       toNameValues(ov.TopBrands),
	})
}

// categories
//
//	@Summary		Распределение по категориям
//	@Tags			analytics
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Топ категорий"
//	@Router			/analytics/categories [get]
func (a *AnalyticsHandler) categories(w http.ResponseWriter, r *http.Request) {
	ov, err := a.analyticsUsecase.Overview(r.Context())
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"categories":       toNameValues(ov.TopCategories),
		"total_categories": ov.TotalCategories,
	})
}

// brands
//
//	@Summary		Распределение по брендам
//	@Tags			analytics
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Топ брендов"
//	@Router			/analytics/brands [get]
func (a *AnalyticsHandler) brands(w http.ResponseWriter, r *http.Request) {
	ov, err := a.analyticsUsecase.Overview(r.Context())
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"brands":       toNameValues(ov.TopBrands),
		"total_brands": ov.TotalBrands,
	})
}

// pricing
//
//	@Summary		Распределение цен
//	@Tags			analytics
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Ценовая статистика"
//	@Router			/analytics/pricing [get]
func (a *AnalyticsHandler) pricing(w http.ResponseWriter, r *http.Request) {
	ov, err := a.analyticsUsecase.Overview(r.Context())
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"average_price":      ov.AveragePrice,
		"median_price":       ov.MedianPrice,
		"price_range":        map[string]float64{"min": ov.PriceRange.Min, "max": ov.PriceRange.Max},
		"price_distribution": toPriceBuckets(ov.PriceDistribution),
	})
}

// summary
//
//	@Summary		Краткая сводка каталога
//	@Tags			analytics
//	@Produce		json
//	@Success		200	{object}	map[string]interface{}	"Сводка"
//	@Router			/analytics/summary [get]
func (a *AnalyticsHandler) summary(w http.ResponseWriter, r *http.Request) {
	ov, err := a.analyticsUsecase.Overview(r.Context())
	if err != nil {
		a.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"total_products":   ov.TotalProducts,
		"total_brands":     ov.TotalBrands,
		"total_categories": ov.TotalCategories,
		"average_price":    ov.AveragePrice,
	})
}
