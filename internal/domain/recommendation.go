package domain

import "time"

// ScoredProduct — продукт с оценкой сходства относительно запроса.
type ScoredProduct struct {
	Product *Product
	Score   float32
}

// RecommendationResult — упорядоченный результат одного запроса рекомендаций.
// Оценки не возрастают по ходу списка; каждый элемент удовлетворяет
// критерию фильтрации, с которым результат был построен.
type RecommendationResult struct {
	Query          string
	Items          []ScoredProduct
	TotalFound     int // число кандидатов, прошедших фильтр, до усечения
	ProcessingTime time.Duration
}

func NewRecommendationResult(query string, items []ScoredProduct, totalFound int, elapsed time.Duration) *RecommendationResult {
	return &RecommendationResult{
		Query:          query,
		Items:          items,
		TotalFound:     totalFound,
		ProcessingTime: elapsed,
	}
}
