package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

const topN = 10

// AnalyticsUseCase вычисляет агрегаты по статическому каталогу.
// Каталог неизменяем, поэтому агрегаты считаются один раз и кэшируются
// на время жизни процесса.
type AnalyticsUseCase struct {
	productRepo ProductRepository
	logger      logger.Logger

	once     sync.Once
	overview *AnalyticsOverview
	err      error
}

func NewAnalyticsUC(productRepo ProductRepository, logger logger.Logger) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Overview возвращает сводную аналитику каталога.
func (a *AnalyticsUseCase) Overview(ctx context.Context) (*AnalyticsOverview, error) {
	const op = "AnalyticsUseCase.Overview"

	a.once.Do(func() {
		a.overview, a.err = a.compute(ctx)
		if a.err == nil {
			a.logger.Infof("analytics computed for %d products", a.overview.TotalProducts)
		}
	})

	if a.err != nil {
		return nil, e.Wrap(op, a.err)
	}

	return a.overview, nil
}

func (a *AnalyticsUseCase) compute(ctx context.Context) (*AnalyticsOverview, error) {
	products, err := a.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, e.ErrDatasetNotLoaded
	}

	var (
		prices         = make([]int64, 0, len(products))
		sum            = decimal.Zero
		brandCounts    = make(map[string]int)
		categoryCounts = make(map[string]int)
		materials      = make(map[string]struct{})
	)

	for _, p := range products {
		prices = append(prices, p.Price)
		sum = sum.Add(decimal.NewFromInt(p.Price))

		if p.Brand != "" {
			brandCounts[p.Brand]++
		}
		if p.Material != "" {
			materials[strings.ToLower(p.Material)] = struct{}{}
		}
		for _, label := range p.Categories {
			categoryCounts[label]++
		}
	}

	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	average := sum.Div(decimal.NewFromInt(int64(len(prices)))).Div(decimal.NewFromInt(100))

	return &AnalyticsOverview{
		TotalProducts: len(products),
		AveragePrice:  average.Round(2).InexactFloat64(),
		MedianPrice:   centsToDollars(median(prices)),
		PriceRange: PriceRange{
			Min: centsToDollars(prices[0]),
			Max: centsToDollars(prices[len(prices)-1]),
		},
		TotalBrands:       len(brandCounts),
		TotalCategories:   len(categoryCounts),
		TotalMaterials:    len(materials),
		TopCategories:     topCounts(categoryCounts, topN),
		TopBrands:         topCounts(brandCounts, topN),
		PriceDistribution: priceDistribution(prices),
	}, nil
}

// topCounts возвращает n самых частых меток по убыванию,
// при равенстве — в алфавитном порядке.
func topCounts(counts map[string]int, n int) []NameValue {
	all := make([]NameValue, 0, len(counts))
	for name, count := range counts {
		all = append(all, NameValue{Name: name, Value: count})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Value != all[j].Value {
			return all[i].Value > all[j].Value
		}
		return all[i].Name < all[j].Name
	})

	if len(all) > n {
		all = all[:n]
	}
	return all
}

// priceDistribution раскладывает цены по гистограмме ценовых диапазонов.
func priceDistribution(sortedCents []int64) []PriceBucket {
	buckets := []struct {
		min   int64
		max   int64 // не включается; -1 — без верхней границы
		label string
	}{
		{0, 2500, "$0-25"},
		{2500, 5000, "$25-50"},
		{5000, 10000, "$50-100"},
		{10000, 20000, "$100-200"},
		{20000, -1, "$200+"},
	}

	result := make([]PriceBucket, 0, len(buckets))
	for _, b := range buckets {
		count := 0
		for _, price := range sortedCents {
			if price >= b.min && (b.max < 0 || price < b.max) {
				count++
			}
		}
		result = append(result, PriceBucket{Range: b.label, Count: count})
	}

	return result
}

func median(sorted []int64) int64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func centsToDollars(cents int64) float64 {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).InexactFloat64()
}
