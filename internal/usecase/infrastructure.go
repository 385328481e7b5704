package usecase

import "context"

// EmbedderInfra — шлюз к внешнему сервису текстовых эмбеддингов.
// Нормализация текста (нижний регистр, схлопывание пробелов) выполняется
// внутри шлюза одинаково для индексируемых продуктов и входящих запросов.
type EmbedderInfra interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// GenAIInfra — шлюз к генеративно-текстовому API.
// Вызовы не повторяются: генерация тарифицируется за каждый запрос.
type GenAIInfra interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type MessageProducer interface {
	WriteIndexEvent(ctx context.Context, req *WriteIndexEventReq) error
}
