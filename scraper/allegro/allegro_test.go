package allegro

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

	listings := a.Search(context.Background(), "lego technic")
	require.Len(t, listings, 4)

	assert.Equal(t, "42100", listings[0].CatalogID)
	assert.Equal(t, 2499.0, listings[0].Price)
	assert.Equal(t, 0.0, listings[0].ShippingCost)
	assert.Equal(t, models.ConditionNew, listings[0].Condition)
	assert.Equal(t, "https://allegro.pl/oferta/lego-technic-42100-liebherr-r-9800-11223344", listings[0].SourceURL)
	assert.Equal(t, "https://a.allegroimg.com/s180/42100.jpg", listings[0].ImageURL)

	assert.Equal(t, "60337", listings[1].CatalogID)
	assert.Equal(t, models.ConditionUsed, listings[1].Condition)
	assert.Equal(t, 15.0, listings[1].ShippingCost)
	assert.InDelta(t, 104.99, listings[1].TotalPrice, 1e-9)

	// price found only through the text-pattern fallback
	assert.Equal(t, "75192", listings[2].CatalogID)
	assert.Equal(t, 3199.0, listings[2].Price)
	assert.Equal(t, models.ConditionNew, listings[2].Condition)

	// title and unlabelled price share one wrapper, the set number must not
	// leak into the amount
	assert.Equal(t, "42115", listings[3].CatalogID)
	assert.Equal(t, 1599.0, listings[3].Price)
	assert.Equal(t, models.ConditionUsed, listings[3].Condition)

	for _, l := range listings {
		assert.Equal(t, "Allegro", l.SourceName)
	}
}

func TestSearchURL(t *testing.T) {
	got := Marketplace().SearchURL("lego 42100")
	assert.Equal(t, "https://allegro.pl/listing?string=lego+42100&bmatch=base-relevance-floki-5-nga-hc-ele-1-2-0901", got)
}

func TestShippingCost(t *testing.T) {
	a := New(scraper.NewFixtureLoader("../testdata"), utils.NewNopLogger())

	assert.Equal(t, 15.0, a.ShippingCost(99, "PL"))
	assert.Equal(t, 0.0, a.ShippingCost(100, "PL"))
}
