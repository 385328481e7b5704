package domain

import (
	"testing"

	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func sampleProduct() *Product {
	return &Product{
		ID:         "p1",
		Title:      "Oak Table",
		Brand:      "Nordic",
		Price:      29900,
		Material:   "Wood",
		Categories: []string{"Furniture", "Dining"},
	}
}

func TestFilterCriteria_NilMatchesEverything(t *testing.T) {
	var f *FilterCriteria

	assert.True(t, f.IsEmpty())
	assert.NoError(t, f.Validate())
	assert.True(t, f.Matches(sampleProduct()))
}

func TestFilterCriteria_EmptyMatchesEverything(t *testing.T) {
	f := &FilterCriteria{}

	assert.True(t, f.IsEmpty())
	assert.True(t, f.Matches(sampleProduct()))
}

func TestFilterCriteria_CategoryIntersection(t *testing.T) {
	assert.True(t, (&FilterCriteria{Categories: []string{"Dining"}}).Matches(sampleProduct()))
	assert.True(t, (&FilterCriteria{Categories: []string{"Outdoor", "Dining"}}).Matches(sampleProduct()))
	assert.False(t, (&FilterCriteria{Categories: []string{"Outdoor"}}).Matches(sampleProduct()))
}

func TestFilterCriteria_CaseInsensitiveMatching(t *testing.T) {
	assert.True(t, (&FilterCriteria{Brands: []string{"nordic"}}).Matches(sampleProduct()))
	assert.True(t, (&FilterCriteria{Materials: []string{"WOOD"}}).Matches(sampleProduct()))
	assert.True(t, (&FilterCriteria{Categories: []string{"dining"}}).Matches(sampleProduct()))
}

func TestFilterCriteria_Conjunction(t *testing.T) {
	// Все заданные ограничения должны выполняться одновременно
	f := &FilterCriteria{
		Brands:    []string{"Nordic"},
		Materials: []string{"Wood"},
		PriceMax:  int64Ptr(30000),
	}
	assert.True(t, f.Matches(sampleProduct()))

	f.Materials = []string{"Metal"}
	assert.False(t, f.Matches(sampleProduct()))
}

func TestFilterCriteria_PriceBounds(t *testing.T) {
	assert.True(t, (&FilterCriteria{PriceMin: int64Ptr(29900)}).Matches(sampleProduct()))
	assert.True(t, (&FilterCriteria{PriceMax: int64Ptr(29900)}).Matches(sampleProduct()))
	assert.False(t, (&FilterCriteria{PriceMin: int64Ptr(30000)}).Matches(sampleProduct()))
	assert.False(t, (&FilterCriteria{PriceMax: int64Ptr(29899)}).Matches(sampleProduct()))
}

func TestFilterCriteria_Validate(t *testing.T) {
	assert.NoError(t, (&FilterCriteria{PriceMin: int64Ptr(0), PriceMax: int64Ptr(100)}).Validate())
	assert.NoError(t, (&FilterCriteria{PriceMin: int64Ptr(100), PriceMax: int64Ptr(100)}).Validate())

	assert.ErrorIs(t, (&FilterCriteria{PriceMin: int64Ptr(-1)}).Validate(), e.ErrInvalidPriceRange)
	assert.ErrorIs(t, (&FilterCriteria{PriceMax: int64Ptr(-1)}).Validate(), e.ErrInvalidPriceRange)
	assert.ErrorIs(t, (&FilterCriteria{PriceMin: int64Ptr(200), PriceMax: int64Ptr(100)}).Validate(), e.ErrInvalidPriceRange)
}
