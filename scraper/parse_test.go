package scraper

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"lego-price-agent/models"
)

func TestExtractCatalogID(t *testing.T) {
	tests := []struct {
		title  string
		want   string
		wantOK bool
	}{
		{"LEGO Technic 42100 Liebherr R 9800", "42100", true},
		{"LEGO Technic 42131-1 D11 Bulldozer", "42131-1", true},
		{"No set number here", "", false},
		{"Klocki 10915 Duplo", "10915", true},
		{"Zestaw 123456789", "", false},
		{"LEGO 75192-12 Millennium Falcon", "75192-12", true},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ExtractCatalogID(tt.title)
		assert.Equal(t, tt.wantOK, ok, "ExtractCatalogID(%q) ok", tt.title)
		assert.Equal(t, tt.want, got, "ExtractCatalogID(%q)", tt.title)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"2 499,00 zł", 2499.0, true},
		{"abc", 0, false},
		{"89,99 zł", 89.99, true},
		{"1 850,50 zł", 1850.50, true},
		{"150 zł", 150, true},
		{"149,99 zł.", 0, false},
		{"", 0, false},
		{"1.234,56 zł", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePrice(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "ParsePrice(%q) ok", tt.raw)
		assert.InDelta(t, tt.want, got, 1e-9, "ParsePrice(%q)", tt.raw)
	}
}

func TestParsePriceIdempotentOnNormalizedNumbers(t *testing.T) {
	for _, v := range []float64{0.5, 1, 99.99, 2499, 2615.75, 10000} {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		first, ok := ParsePrice(s)
		assert.True(t, ok)
		second, ok := ParsePrice(strconv.FormatFloat(first, 'f', -1, 64))
		assert.True(t, ok)
		assert.Equal(t, first, second)
		assert.Equal(t, v, first)
	}
}

func TestClassifyCondition(t *testing.T) {
	assert.Equal(t, models.ConditionNew, ClassifyCondition("LEGO 42100 NOWY", "nowy"))
	assert.Equal(t, models.ConditionNew, ClassifyCondition("lego 42100 nowy zestaw", "nowy"))
	assert.Equal(t, models.ConditionUsed, ClassifyCondition("LEGO 42100 używany", "nowy"))
	assert.Equal(t, models.ConditionUsed, ClassifyCondition("LEGO 42100 nowy", ""))
}

func TestShippingPolicy(t *testing.T) {
	p := ShippingPolicy{FlatFee: 15, FreeFrom: 100}
	assert.Equal(t, 15.0, p.Cost(99.99))
	assert.Equal(t, 0.0, p.Cost(100))
	assert.Equal(t, 0.0, p.Cost(2499))
}
