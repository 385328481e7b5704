package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/internal/usecase"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

// stubRecommendationUC фиксирует последний запрос и возвращает заготовленный ответ.
type stubRecommendationUC struct {
	lastRecommend *usecase.RecommendReq
	result        *domain.RecommendationResult
	err           error
}

func (s *stubRecommendationUC) Recommend(_ context.Context, req *usecase.RecommendReq) (*domain.RecommendationResult, error) {
	s.lastRecommend = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRecommendationUC) SimilarProducts(_ context.Context, _ *usecase.SimilarProductsReq) (*domain.RecommendationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubRecommendationUC) CategoryProducts(_ context.Context, _ *usecase.CategoryReq) ([]usecase.ProductInfo, error) {
	return nil, s.err
}

func testRecommendationRouter(uc usecase.RecommendationUC) *chi.Mux {
	r := chi.NewRouter()
	handler := NewRecommendationHandler(uc, &cfg.RecommendCfg{DefaultLimit: 10, MaxLimit: 50}, nopLogger{})
	registerRecommendationRoutes(r, handler)
	return r
}

func sampleResult() *domain.RecommendationResult {
	return domain.NewRecommendationResult(
		"red sofa",
		[]domain.ScoredProduct{
			{
				Product: &domain.Product{ID: "sofa-red", Title: "Red Sofa", Brand: "Acme", Price: 19900},
				Score:   0.93,
			},
		},
		1,
		3*time.Millisecond,
	)
}

func TestRecommendEndpoint_Success(t *testing.T) {
	uc := &stubRecommendationUC{result: sampleResult()}
	router := testRecommendationRouter(uc)

	body := `{"query": "red sofa", "limit": 5, "filters": {"brands": ["Acme"], "price_max": 250.0}}`
	req := httptest.NewRequest(http.MethodPost, "/recommendations/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp recommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "red sofa", resp.Query)
	assert.Equal(t, 1, resp.TotalFound)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "sofa-red", resp.Recommendations[0].ID)
	assert.Equal(t, "$199.00", resp.Recommendations[0].Price)
	assert.InDelta(t, 0.93, float64(resp.Recommendations[0].SimilarityScore), 1e-6)

	// Фильтры дошли до usecase в центах
	require.NotNil(t, uc.lastRecommend)
	assert.Equal(t, 5, uc.lastRecommend.Limit)
	require.NotNil(t, uc.lastRecommend.Filters)
	require.NotNil(t, uc.lastRecommend.Filters.PriceMax)
	assert.EqualValues(t, 25000, *uc.lastRecommend.Filters.PriceMax)
}

func TestRecommendEndpoint_DefaultAndMaxLimit(t *testing.T) {
	uc := &stubRecommendationUC{result: sampleResult()}
	router := testRecommendationRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/recommendations/", strings.NewReader(`{"query": "sofa"}`))
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 10, uc.lastRecommend.Limit)

	req = httptest.NewRequest(http.MethodPost, "/recommendations/", strings.NewReader(`{"query": "sofa", "limit": 500}`))
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 50, uc.lastRecommend.Limit)
}

func TestRecommendEndpoint_MalformedBody(t *testing.T) {
	router := testRecommendationRouter(&stubRecommendationUC{})

	req := httptest.NewRequest(http.MethodPost, "/recommendations/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpoint_EmptyQuery(t *testing.T) {
	uc := &stubRecommendationUC{err: e.Wrap("op", e.ErrEmptyQuery)}
	router := testRecommendationRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/recommendations/", strings.NewReader(`{"query": ""}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, e.ErrEmptyQuery.Error(), resp.Message)
}

func TestRecommendEndpoint_UpstreamUnavailable(t *testing.T) {
	uc := &stubRecommendationUC{err: e.Wrap("op", e.ErrUpstreamUnavailable)}
	router := testRecommendationRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/recommendations/", strings.NewReader(`{"query": "sofa"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSimilarEndpoint_NotFound(t *testing.T) {
	uc := &stubRecommendationUC{err: e.Wrap("op", e.ErrProductNotFound)}
	router := testRecommendationRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/recommendations/similar/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSimilarEndpoint_InvalidLimit(t *testing.T) {
	router := testRecommendationRouter(&stubRecommendationUC{result: sampleResult()})

	req := httptest.NewRequest(http.MethodGet, "/recommendations/similar/p1?limit=oops", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
