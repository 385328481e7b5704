package domain

import (
	"strings"

	"github.com/ikarus3d/go-backend/pkg/e"
)

// FilterCriteria — конъюнктивный предикат над метаданными продукта.
// Пустое множество или nil-граница означает отсутствие ограничения.
type FilterCriteria struct {
	Categories []string
	Brands     []string
	Materials  []string
	PriceMin   *int64 // в центах
	PriceMax   *int64 // в центах
}

// IsEmpty сообщает, накладывает ли критерий хоть одно ограничение.
func (f *FilterCriteria) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Categories) == 0 && len(f.Brands) == 0 && len(f.Materials) == 0 &&
		f.PriceMin == nil && f.PriceMax == nil
}

// Validate проверяет согласованность критерия до обращения к внешним сервисам.
func (f *FilterCriteria) Validate() error {
	if f == nil {
		return nil
	}

	if f.PriceMin != nil && *f.PriceMin < 0 {
		return e.ErrInvalidPriceRange
	}
	if f.PriceMax != nil && *f.PriceMax < 0 {
		return e.ErrInvalidPriceRange
	}
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return e.ErrInvalidPriceRange
	}

	return nil
}

// Matches проверяет продукт против всех заданных ограничений.
// Сопоставление категорий, брендов и материалов регистронезависимое.
func (f *FilterCriteria) Matches(p *Product) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Categories) > 0 && !intersects(f.Categories, p.Categories) {
		return false
	}

	if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
		return false
	}

	if len(f.Materials) > 0 && !contains(f.Materials, p.Material) {
		return false
	}

	if f.PriceMin != nil && p.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.Price > *f.PriceMax {
		return false
	}

	return true
}

// intersects проверяет непустое пересечение двух наборов меток.
func intersects(wanted []string, actual []string) bool {
	for _, w := range wanted {
		if contains(actual, w) {
			return true
		}
	}
	return false
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}
