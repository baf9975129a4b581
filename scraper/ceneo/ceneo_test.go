package ceneo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lego-price-agent/models"
	"lego-price-agent/scraper"
	"lego-price-agent/utils"
)

func TestSearchFixturePage(t *testing.T) {
	a := New(scraper.NewFixtureLoader("../testdata"), utils.NewNopLogger())

	listings := a.Search(context.Background(), "lego 42100")
	require.Len(t, listings, 3)

	assert.Equal(t, "42100", listings[0].CatalogID)
	assert.Equal(t, 2615.0, listings[0].TotalPrice)
	assert.Equal(t, "https://www.ceneo.pl/91234567", listings[0].SourceURL)
	assert.Equal(t, "https://image.ceneostatic.pl/data/products/42100.jpg", listings[0].ImageURL)

	assert.Equal(t, "42115", listings[1].CatalogID)
	assert.InDelta(t, 1399.99, listings[1].Price, 1e-9)
	assert.Equal(t, 0.0, listings[1].ShippingCost)

	assert.Equal(t, "10915", listings[2].CatalogID)
	assert.Equal(t, 12.0, listings[2].ShippingCost)
	assert.Equal(t, 111.0, listings[2].TotalPrice)

	for _, l := range listings {
		assert.Equal(t, models.ConditionNew, l.Condition)
		assert.Equal(t, "Ceneo", l.SourceName)
	}
}

func TestSearchURL(t *testing.T) {
	assert.Equal(t, "https://www.ceneo.pl/;szukaj-lego+42100", Marketplace().SearchURL("lego 42100"))
}
