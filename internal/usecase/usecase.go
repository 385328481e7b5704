package usecase

import (
	"context"

	"github.com/ikarus3d/go-backend/internal/domain"
)

type RecommendationUC interface {
	Recommend(ctx context.Context, req *RecommendReq) (*domain.RecommendationResult, error)
	SimilarProducts(ctx context.Context, req *SimilarProductsReq) (*domain.RecommendationResult, error)
	CategoryProducts(ctx context.Context, req *CategoryReq) ([]ProductInfo, error)
}

type ProductUC interface {
	GetProduct(ctx context.Context, id string) (*ProductInfo, error)
	SampleProducts(ctx context.Context) ([]ProductInfo, error)
	GenerateDescription(ctx context.Context, req *GenerateDescriptionReq) (*GenerateDescriptionRes, error)
}

type AnalyticsUC interface {
	Overview(ctx context.Context) (*AnalyticsOverview, error)
}
