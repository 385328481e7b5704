package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const descriptionGenerator = "genai-completion"

// ProductUseCase обслуживает карточки продуктов и генерацию описаний.
type ProductUseCase struct {
	productRepo ProductRepository
	genai       GenAIInfra
	cacheRepo   DescriptionCacheRepository
	logger      logger.Logger
	sampleSize  int

	// Дедупликация одновременных генераций для одного продукта:
	// второй вызов ждёт результат первого вместо дублирования платного запроса.
	group singleflight.Group
}

func NewProductUC(
	productRepo ProductRepository,
	genai GenAIInfra,
	cacheRepo DescriptionCacheRepository,
	logger logger.Logger,
	cfg *cfg.DatasetCfg,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		genai:       genai,
		cacheRepo:   cacheRepo,
		logger:      logger,
		sampleSize:  cfg.SampleSize,
	}
}

// GetProduct возвращает информацию об одном продукте.
func (p *ProductUseCase) GetProduct(ctx context.Context, id string) (*ProductInfo, error) {
	const op = "ProductUseCase.GetProduct"

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfo(product)
	return &info, nil
}

// SampleProducts возвращает небольшой срез каталога для проверки фронтенда.
func (p *ProductUseCase) SampleProducts(ctx context.Context) ([]ProductInfo, error) {
	const op = "ProductUseCase.SampleProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	n := p.sampleSize
	if n > len(products) {
		n = len(products)
	}

	result := make([]ProductInfo, 0, n)
	for _, product := range products[:n] {
		result = append(result, NewProductInfo(product))
	}

	return result, nil
}

// GenerateDescription возвращает сгенерированное описание продукта.
// Результат кэшируется по ID продукта; одновременные запросы для одного ID
// приводят максимум к одному обращению к генеративному API.
func (p *ProductUseCase) GenerateDescription(ctx context.Context, req *GenerateDescriptionReq) (*GenerateDescriptionRes, error) {
	const op = "ProductUseCase.GenerateDescription"

	attrs := req.Attributes
	if attrs == nil {
		product, err := p.productRepo.GetByID(ctx, req.ProductID)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		attrs = newDescriptionAttrs(product)
	}

	// Контекст отвязывается от первого вызывающего: его отмена
	// не должна ронять остальных ожидающих тот же результат.
	genCtx := context.WithoutCancel(ctx)
	v, err, _ := p.group.Do(req.ProductID, func() (any, error) {
		return p.generateDescription(genCtx, req.ProductID, attrs)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return v.(*GenerateDescriptionRes), nil
}

func (p *ProductUseCase) generateDescription(ctx context.Context, productID string, attrs *DescriptionAttrs) (*GenerateDescriptionRes, error) {
	cached, err := p.cacheRepo.GetDescription(ctx, productID)
	if err != nil {
		p.logger.Warnf("description cache lookup failed for %s: %v", productID, err)
	}
	if cached != "" {
		return &GenerateDescriptionRes{
			ProductID:           productID,
			AIDescription:       cached,
			OriginalDescription: attrs.Description,
			Cached:              true,
			GeneratedBy:         descriptionGenerator,
		}, nil
	}

	// Генерация не повторяется при ошибке: каждый вызов тарифицируется
	text, err := p.genai.Complete(ctx, buildDescriptionPrompt(attrs))
	if err != nil {
		p.logger.Warnf("description generation failed for %s: %v", productID, err)
		return nil, err
	}

	if err := p.cacheRepo.SetDescription(ctx, productID, text); err != nil {
		p.logger.Warnf("description cache write failed for %s: %v", productID, err)
	}

	return &GenerateDescriptionRes{
		ProductID:           productID,
		AIDescription:       text,
		OriginalDescription: attrs.Description,
		GeneratedBy:         descriptionGenerator,
	}, nil
}

// buildDescriptionPrompt собирает промпт генерации описания из атрибутов продукта.
func buildDescriptionPrompt(attrs *DescriptionAttrs) string {
	price := decimal.NewFromInt(attrs.Price).Div(decimal.NewFromInt(100)).StringFixed(2)

	var b strings.Builder
	b.WriteString("You are a creative product description writer for a furniture e-commerce platform.\n\n")
	b.WriteString("Product Details:\n")
	fmt.Fprintf(&b, "Title: %s\n", attrs.Title)
	fmt.Fprintf(&b, "Brand: %s\n", attrs.Brand)
	fmt.Fprintf(&b, "Material: %s\n", attrs.Material)
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(attrs.Categories, ", "))
	fmt.Fprintf(&b, "Price: $%s\n", price)
	fmt.Fprintf(&b, "Current Description: %s\n\n", attrs.Description)
	b.WriteString("Generate a creative, engaging product description that:\n")
	b.WriteString("1. Highlights the key features and benefits\n")
	b.WriteString("2. Appeals to potential buyers\n")
	b.WriteString("3. Uses persuasive but honest language\n")
	b.WriteString("4. Is 2-3 sentences long\n")
	b.WriteString("5. Focuses on lifestyle and functionality\n\n")
	b.WriteString("Creative Description:")

	return b.String()
}

func newDescriptionAttrs(p *domain.Product) *DescriptionAttrs {
	return &DescriptionAttrs{
		Title:       p.Title,
		Brand:       p.Brand,
		Material:    p.Material,
		Categories:  p.Categories,
		Price:       p.Price,
		Description: p.Description,
	}
}
