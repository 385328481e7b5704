package e

import "fmt"

var (
	// Ошибки валидации входных данных
	ErrEmptyQuery        = fmt.Errorf("query is empty")
	ErrInvalidLimit      = fmt.Errorf("limit must not be negative")
	ErrInvalidPrice      = fmt.Errorf("invalid price format")
	ErrPricePrecision    = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidPriceRange = fmt.Errorf("price range min must not exceed max")
	ErrMissingFields     = fmt.Errorf("missing required fields")

	// Недоступность внешних сервисов
	ErrUpstreamUnavailable = fmt.Errorf("upstream service unavailable")

	// Отсутствие сущности
	ErrProductNotFound = fmt.Errorf("product not found")

	// Внутренние ошибки с векторами
	ErrEmptyVector        = fmt.Errorf("empty vector")
	ErrVectorSizeMismatch = fmt.Errorf("vector size mismatch")
	ErrEmptyEmbeddings    = fmt.Errorf("empty embeddings")

	// Внутренние ошибки каталога
	ErrDatasetNotLoaded = fmt.Errorf("dataset not loaded")

	// 400 Bad Request
	ErrStatusBadRequest = fmt.Errorf("bad request")

	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
