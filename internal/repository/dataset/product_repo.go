// Package dataset реализует каталог продуктов поверх статического CSV-файла.
// Датасет читается один раз при старте и далее не изменяется.
package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/ikarus3d/go-backend/internal/domain"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// ProductRepo хранит загруженный каталог в памяти.
// После загрузки данные только читаются, блокировки не требуются.
type ProductRepo struct {
	byID    map[string]*domain.Product
	ordered []*domain.Product
}

// NewProductRepo читает CSV-каталог и строит карту продуктов.
// Строки с пустым идентификатором или заголовком пропускаются с предупреждением.
func NewProductRepo(path string, log logger.Logger) (*ProductRepo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer f.Close()

	repo, err := load(f, log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	log.Infof("loaded %d products from %s", len(repo.ordered), path)
	return repo, nil
}

func load(r io.Reader, log logger.Logger) (*ProductRepo, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	repo := &ProductRepo{
		byID: make(map[string]*domain.Product),
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		id := field(record, "uniq_id")
		title := field(record, "title")
		if id == "" || title == "" {
			log.Warnf("skipping dataset row without id or title")
			continue
		}

		price, err := parsePriceToCents(field(record, "price"))
		if err != nil {
			log.Warnf("skipping product %s: %v", id, err)
			continue
		}

		product := &domain.Product{
			ID:                id,
			Title:             title,
			Brand:             field(record, "brand"),
			Price:             price,
			Description:       field(record, "description"),
			Images:            parseListField(field(record, "images")),
			Categories:        parseListField(field(record, "categories")),
			Material:          field(record, "material"),
			Color:             field(record, "color"),
			CountryOfOrigin:   field(record, "country_of_origin"),
			Manufacturer:      field(record, "manufacturer"),
			PackageDimensions: field(record, "package_dimensions"),
		}

		// Повторный идентификатор заменяет предыдущую запись
		if _, exists := repo.byID[id]; !exists {
			repo.ordered = append(repo.ordered, product)
		} else {
			for i, prev := range repo.ordered {
				if prev.ID == id {
					repo.ordered[i] = product
					break
				}
			}
		}
		repo.byID[id] = product
	}

	return repo, nil
}

// GetByID возвращает продукт каталога или e.ErrProductNotFound.
func (p *ProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	product, ok := p.byID[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return product, nil
}

// List возвращает продукты в порядке следования в датасете.
func (p *ProductRepo) List(_ context.Context) ([]*domain.Product, error) {
	return p.ordered, nil
}

// parsePriceToCents конвертирует цену вида "$24.99" или "1,299.00" в центы.
func parsePriceToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// parseListField разбирает значение-список.
// Датасет хранит списки в питоновском литеральном виде:
// ['Home & Kitchen', 'Storage & Organization']; поддерживается и просто
// перечисление через запятую.
func parseListField(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		part = strings.Trim(part, `'"`)
		if part != "" {
			result = append(result, part)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
