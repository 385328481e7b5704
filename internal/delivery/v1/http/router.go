package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/ikarus3d/go-backend/docs" // Импорт сгенерированных файлов
	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/internal/usecase"
	"github.com/ikarus3d/go-backend/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(cfg *cfg.Config, recUC usecase.RecommendationUC, prUC usecase.ProductUC, anUC usecase.AnalyticsUC) {
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Http.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Get("/", rootInfo)
	r.router.Get("/health", healthCheck)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		recHandler := NewRecommendationHandler(recUC, cfg.Recommend, r.logger)
		registerRecommendationRoutes(v1, recHandler)

		prHandler := NewProductHandler(prUC, r.logger)
		registerProductRoutes(v1, prHandler)

		anHandler := NewAnalyticsHandler(anUC, r.logger)
		registerAnalyticsRoutes(v1, anHandler)
	})
}

func registerRecommendationRoutes(router chi.Router, recHandler *RecommendationHandler) {
	router.Route("/recommendations", func(rec chi.Router) {
		rec.Post("/", recHandler.recommend)
		rec.Get("/similar/{product_id}", recHandler.similarProducts)
		rec.Get("/category/{category}", recHandler.categoryProducts)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/sample", prHandler.sampleProducts)
		pr.Get("/{product_id}", prHandler.getProduct)
		pr.Post("/{product_id}/generate-description", prHandler.generateDescription)
	})
}

func registerAnalyticsRoutes(router chi.Router, anHandler *AnalyticsHandler) {
	router.Route("/analytics", func(an chi.Router) {
		an.Get("/overview", anHandler.overview)
		an.Get("/categories", anHandler.categories)
		an.Get("/brands", anHandler.brands)
		an.Get("/pricing", anHandler.pricing)
		an.Get("/summary", anHandler.summary)
	})
}

func rootInfo(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"service": "product-recommendation-backend",
		"version": "1.0.0",
		"docs":    "/swagger/index.html",
	})
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
	})
}
