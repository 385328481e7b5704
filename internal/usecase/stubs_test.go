package usecase

import (
	"context"
	"sync/atomic"

	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
)

// Тестовые заглушки для портов usecase-слоя.

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

// stubCatalog хранит продукты в порядке добавления.
type stubCatalog struct {
	order   []string
	byID    map[string]*domain.Product
	listErr error
}

func newStubCatalog(products ...*domain.Product) *stubCatalog {
	c := &stubCatalog{byID: make(map[string]*domain.Product)}
	for _, p := range products {
		c.order = append(c.order, p.ID)
		c.byID[p.ID] = p
	}
	return c
}

func (c *stubCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return p, nil
}

func (c *stubCatalog) List(_ context.Context) ([]*domain.Product, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	result := make([]*domain.Product, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.byID[id])
	}
	return result, nil
}

// stubEmbedder возвращает заранее заданные векторы по тексту.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   atomic.Int64
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := s.Embed(context.Background(), text)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func (s *stubEmbedder) Model() string { return "stub-model" }

// stubGenAI считает обращения к генеративному API.
type stubGenAI struct {
	text    string
	err     error
	calls   atomic.Int64
	started chan struct{} // закрывать не обязательно
	release chan struct{} // nil — отвечать сразу
}

func (s *stubGenAI) Complete(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		<-s.release
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

// stubCache — кэш описаний в памяти.
type stubCache struct {
	data   map[string]string
	getErr error
	setErr error
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string]string)}
}

func (s *stubCache) GetDescription(_ context.Context, productID string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.data[productID], nil
}

func (s *stubCache) SetDescription(_ context.Context, productID string, text string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.data[productID] = text
	return nil
}

// stubProducer записывает опубликованные события.
type stubProducer struct {
	events []*WriteIndexEventReq
	err    error
}

func (s *stubProducer) WriteIndexEvent(_ context.Context, req *WriteIndexEventReq) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, req)
	return nil
}
