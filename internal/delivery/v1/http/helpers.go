package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/internal/usecase"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrEmptyQuery):
		return http.StatusBadRequest, e.ErrEmptyQuery.Error()
	case errors.Is(err, e.ErrInvalidLimit):
		return http.StatusBadRequest, e.ErrInvalidLimit.Error()
	case errors.Is(err, e.ErrInvalidPriceRange):
		return http.StatusBadRequest, e.ErrInvalidPriceRange.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, e.ErrUpstreamUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// REQUEST / RESPONSE MODELS

// filterCriteriaBody — фильтры рекомендаций в теле запроса.
// Цены передаются в долларах и конвертируются в центы.
type filterCriteriaBody struct {
	Categories []string `json:"categories,omitempty"`
	Brands     []string `json:"brands,omitempty"`
	Materials  []string `json:"materials,omitempty"`
	PriceMin   *float64 `json:"price_min,omitempty"`
	PriceMax   *float64 `json:"price_max,omitempty"`
}

type recommendationRequest struct {
	Query   string              `json:"query"`
	Limit   int                 `json:"limit"`
	Filters *filterCriteriaBody `json:"filters,omitempty"`
}

type productResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Brand       string   `json:"brand"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Material    string   `json:"material"`
	Categories  []string `json:"categories"`
	Image       string   `json:"image"`
}

type recommendationItem struct {
	productResponse
	SimilarityScore float32 `json:"similarity_score"`
}

type recommendationResponse struct {
	Recommendations  []recommendationItem `json:"recommendations"`
	Query            string               `json:"query"`
	TotalFound       int                  `json:"total_found"`
	ProcessingTimeMs float64              `json:"processing_time_ms"`
}

type descriptionAttrsBody struct {
	Title       string   `json:"title"`
	Brand       string   `json:"brand"`
	Material    string   `json:"material"`
	Categories  []string `json:"categories"`
	Price       *float64 `json:"price,omitempty"`
	Description string   `json:"description"`
}

// MAPPERS

func (f *filterCriteriaBody) toDomain() (*domain.FilterCriteria, error) {
	if f == nil {
		return nil, nil
	}

	criteria := &domain.FilterCriteria{
		Categories: f.Categories,
		Brands:     f.Brands,
		Materials:  f.Materials,
	}

	var err error
	if criteria.PriceMin, err = dollarsToCents(f.PriceMin); err != nil {
		return nil, err
	}
	if criteria.PriceMax, err = dollarsToCents(f.PriceMax); err != nil {
		return nil, err
	}

	return criteria, nil
}

func (a *descriptionAttrsBody) toUseCase() *usecase.DescriptionAttrs {
	if a == nil {
		return nil
	}

	attrs := &usecase.DescriptionAttrs{
		Title:       a.Title,
		Brand:       a.Brand,
		Material:    a.Material,
		Categories:  a.Categories,
		Description: a.Description,
	}
	if a.Price != nil {
		if cents, err := dollarsToCents(a.Price); err == nil && cents != nil {
			attrs.Price = *cents
		}
	}

	return attrs
}

func toProductResponse(info usecase.ProductInfo) productResponse {
	return productResponse{
		ID:          info.ID,
		Title:       info.Title,
		Brand:       info.Brand,
		Price:       formatPrice(info.Price),
		Description: info.Description,
		Material:    info.Material,
		Categories:  info.Categories,
		Image:       info.Image,
	}
}

func toRecommendationResponse(result *domain.RecommendationResult) recommendationResponse {
	items := make([]recommendationItem, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, recommendationItem{
			productResponse: toProductResponse(usecase.NewProductInfo(item.Product)),
			SimilarityScore: item.Score,
		})
	}

	return recommendationResponse{
		Recommendations:  items,
		Query:            result.Query,
		TotalFound:       result.TotalFound,
		ProcessingTimeMs: float64(result.ProcessingTime.Microseconds()) / 1000,
	}
}

// dollarsToCents конвертирует цену в долларах в центы.
func dollarsToCents(dollars *float64) (*int64, error) {
	if dollars == nil {
		return nil, nil
	}

	d := decimal.NewFromFloat(*dollars)
	if d.LessThan(decimal.Zero) {
		return nil, e.ErrInvalidPriceRange
	}

	cents := d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return &cents, nil
}

// formatPrice форматирует цену в центах как строку вида "$24.99".
func formatPrice(cents int64) string {
	return "$" + decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// parseLimit читает query-параметр limit.
// Отсутствие параметра возвращает значение по умолчанию,
// значения выше максимума ограничиваются максимумом.
func parseLimit(r *http.Request, defaultLimit int, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, e.ErrInvalidLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	return limit, nil
}
