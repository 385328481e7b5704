// Package embedding реализует шлюз к внешнему сервису текстовых эмбеддингов.
// Шлюз сам эмбеддинги не вычисляет: он нормализует текст и делегирует
// вычисление энкодеру по HTTP.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/jitter"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// EmbedderService клиент внешнего сервиса эмбеддингов.
type EmbedderService struct {
	httpClient *http.Client
	cfg        *cfg.EmbedderCfg
	logger     logger.Logger
}

type embedRequest struct {
	Model string   `json:"model"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings   [][]float32 `json:"embeddings"`
	ModelVersion string      `json:"model_version"`
}

func NewEmbedderService(cfg *cfg.EmbedderCfg, logger logger.Logger) *EmbedderService {
	return &EmbedderService{
		httpClient: &http.Client{},
		cfg:        cfg,
		logger:     logger,
	}
}

// Model возвращает имя модели эмбеддингов из конфигурации.
func (s *EmbedderService) Model() string {
	return s.cfg.Model
}

// Embed возвращает вектор для одного текста.
// Пустой после нормализации текст отклоняется до обращения к энкодеру.
func (s *EmbedderService) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "EmbedderService.Embed"

	normalized := NormalizeText(text)
	if normalized == "" {
		return nil, e.Wrap(op, e.ErrEmptyQuery)
	}

	vectors, err := s.embedWithRetry(ctx, []string{normalized})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return vectors[0], nil
}

// EmbedBatch эмбеддит набор текстов, разбивая его на батчи и выполняя
// их параллельно с ограничением конкурентности.
func (s *EmbedderService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	const op = "EmbedderService.EmbedBatch"

	if len(texts) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyEmbeddings)
	}

	normalized := make([]string, len(texts))
	for i, text := range texts {
		normalized[i] = NormalizeText(text)
		if normalized[i] == "" {
			return nil, e.Wrap(op, e.ErrEmptyQuery)
		}
	}

	result := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)

	for start := 0; start < len(normalized); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(normalized) {
			end = len(normalized)
		}

		g.Go(func() error {
			vectors, err := s.embedWithRetry(gctx, normalized[start:end])
			if err != nil {
				return err
			}
			copy(result[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	return result, nil
}

// embedWithRetry выполняет запрос к энкодеру с одной повторной попыткой
// при транзиентной ошибке и джиттерной задержкой между попытками.
func (s *EmbedderService) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	const (
		baseJitter = 200 * time.Millisecond
		maxJitter  = 2 * time.Second
	)

	attempts := s.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1 // как минимум одна попытка, иначе запрос вообще не уйдёт
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			sleepTime := jitter.ExponentialBackoff(baseJitter, maxJitter, attempt-1, jitter.DefaultJitter)
			s.logger.Warnf("embedding request failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, lastErr)
			select {
			case <-time.After(sleepTime):
			case <-ctx.Done():
				return nil, e.Wrap(ctx.Err().Error(), e.ErrUpstreamUnavailable)
			}
		}

		vectors, retryable, err := s.doEmbed(ctx, texts)
		if err == nil {
			return vectors, nil
		}

		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, e.Wrap(lastErr.Error(), e.ErrUpstreamUnavailable)
}

// doEmbed выполняет один HTTP-запрос к энкодеру.
// Второе возвращаемое значение сообщает, имеет ли смысл повтор.
func (s *EmbedderService) doEmbed(ctx context.Context, texts []string) ([][]float32, bool, error) {
	body, err := json.Marshal(embedRequest{Model: s.cfg.Model, Texts: texts})
	if err != nil {
		return nil, false, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.cfg.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, true, err // сетевые ошибки и таймауты считаются транзиентными
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("encoder returned status %d", resp.StatusCode)
	}

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, err
	}

	if len(decoded.Embeddings) != len(texts) {
		return nil, false, fmt.Errorf("embedding count mismatch: got %d, want %d", len(decoded.Embeddings), len(texts))
	}

	return decoded.Embeddings, false, nil
}

// NormalizeText приводит текст к нижнему регистру и схлопывает пробелы.
// Косинусное сходство осмысленно только когда индексация и запросы
// нормализованы одинаково, поэтому нормализация живёт в одном месте.
func NormalizeText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
