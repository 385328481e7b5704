package usecase

import "github.com/ikarus3d/go-backend/internal/domain"

// RECOMMENDATION USECASE

// RecommendReq — запрос рекомендаций по свободному текстовому запросу.
type RecommendReq struct {
	Query   string
	Limit   int
	Filters *domain.FilterCriteria
}

// SimilarProductsReq — запрос похожих продуктов для существующего продукта.
type SimilarProductsReq struct {
	ProductID string
	Limit     int
}

// CategoryReq — запрос продуктов по метке категории.
type CategoryReq struct {
	Category string
	Limit    int
}

// PRODUCT USECASE

// ProductInfo — DTO с информацией о продукте для внешнего использования.
type ProductInfo struct {
	ID          string
	Title       string
	Brand       string
	Price       int64 // в центах
	Description string
	Material    string
	Categories  []string
	Image       string
}

// DescriptionAttrs — атрибуты продукта для генерации описания.
// Если не заданы, берутся из каталога.
type DescriptionAttrs struct {
	Title       string
	Brand       string
	Material    string
	Categories  []string
	Price       int64
	Description string
}

type GenerateDescriptionReq struct {
	ProductID  string
	Attributes *DescriptionAttrs
}

type GenerateDescriptionRes struct {
	ProductID           string
	AIDescription       string
	OriginalDescription string
	Cached              bool
	GeneratedBy         string
}

// ANALYTICS USECASE

type NameValue struct {
	Name  string
	Value int
}

type PriceBucket struct {
	Range string
	Count int
}

type PriceRange struct {
	Min float64
	Max float64
}

// AnalyticsOverview — агрегаты, вычисляемые один раз по статическому каталогу.
type AnalyticsOverview struct {
	TotalProducts     int
	AveragePrice      float64
	MedianPrice       float64
	PriceRange        PriceRange
	TotalBrands       int
	TotalCategories   int
	TotalMaterials    int
	TopCategories     []NameValue
	TopBrands         []NameValue
	PriceDistribution []PriceBucket
}

// INFRASTRUCTURE

// WriteIndexEventReq — событие изменения индекса для публикации в Kafka.
type WriteIndexEventReq struct {
	EventType    string
	ProductCount int
	ModelVersion string
}

// MAPPERS

func NewProductInfo(p *domain.Product) ProductInfo {
	return ProductInfo{
		ID:          p.ID,
		Title:       p.Title,
		Brand:       p.Brand,
		Price:       p.Price,
		Description: p.Description,
		Material:    p.Material,
		Categories:  p.Categories,
		Image:       p.PrimaryImage(),
	}
}

func NewRecommendReq(query string, limit int, filters *domain.FilterCriteria) *RecommendReq {
	return &RecommendReq{
		Query:   query,
		Limit:   limit,
		Filters: filters,
	}
}

func NewSimilarProductsReq(productID string, limit int) *SimilarProductsReq {
	return &SimilarProductsReq{
		ProductID: productID,
		Limit:     limit,
	}
}

func NewCategoryReq(category string, limit int) *CategoryReq {
	return &CategoryReq{
		Category: category,
		Limit:    limit,
	}
}

func NewGenerateDescriptionReq(productID string, attrs *DescriptionAttrs) *GenerateDescriptionReq {
	return &GenerateDescriptionReq{
		ProductID:  productID,
		Attributes: attrs,
	}
}

func NewWriteIndexEventReq(eventType string, productCount int, modelVersion string) *WriteIndexEventReq {
	return &WriteIndexEventReq{
		EventType:    eventType,
		ProductCount: productCount,
		ModelVersion: modelVersion,
	}
}
