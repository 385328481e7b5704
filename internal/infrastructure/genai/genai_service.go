// Package genai реализует шлюз к генеративно-текстовому API.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
)

// GenAIService клиент генеративно-текстового API.
// Запросы не повторяются при ошибке: каждый вызов генерации тарифицируется,
// и повтор привёл бы к двойной оплате.
type GenAIService struct {
	httpClient *http.Client
	cfg        *cfg.GenAICfg
	logger     logger.Logger
}

type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

func NewGenAIService(cfg *cfg.GenAICfg, logger logger.Logger) *GenAIService {
	return &GenAIService{
		httpClient: &http.Client{},
		cfg:        cfg,
		logger:     logger,
	}
}

// Complete отправляет промпт и возвращает сгенерированный текст.
func (s *GenAIService) Complete(ctx context.Context, prompt string) (string, error) {
	const op = "GenAIService.Complete"

	body, err := json.Marshal(completionRequest{
		Model:     s.cfg.Model,
		Prompt:    prompt,
		MaxTokens: s.cfg.MaxTokens,
	})
	if err != nil {
		return "", e.Wrap(op, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.cfg.BaseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", e.Wrap(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.ApiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", e.Wrap(op, e.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warnf("completion API returned status %d", resp.StatusCode)
		return "", e.Wrap(op, e.ErrUpstreamUnavailable)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", e.Wrap(op, err)
	}

	if len(decoded.Choices) == 0 {
		return "", e.Wrap(op, fmt.Errorf("completion API returned no choices"))
	}

	text := strings.TrimSpace(decoded.Choices[0].Text)
	if text == "" {
		return "", e.Wrap(op, fmt.Errorf("completion API returned empty text"))
	}

	return text, nil
}
