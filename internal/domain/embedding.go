package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет эмбеддинг одного продукта или запроса
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredID — идентификатор продукта с оценкой косинусного сходства.
type ScoredID struct {
	ID    string
	Score float32
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

func NewPayload(productID string, title string, modelVersion string) Payload {
	return Payload{
		"product_id":    productID,
		"title":         title,
		"created_at":    time.Now().UTC().UnixNano(),
		"model_version": modelVersion,
	}
}
