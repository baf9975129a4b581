package modelstesting

import (
	"math/rand"
	"time"

	"github.com/go-faker/faker/v4"

	"lego-price-agent/models"
)

// FakeListing returns a new-condition models.Listing with fake text fields
// and a random price. Options run after TotalPrice is computed, so callers
// changing prices should use WithPrices.
func FakeListing(ops ...func(l *models.Listing)) models.Listing {
	price := float64(100 + rand.Intn(2000))
	listing := models.NewListing(
		"42100",
		faker.Sentence(),
		price,
		0,
		faker.Word(),
		faker.URL(),
		models.ConditionNew,
		time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
	)

	for _, op := range ops {
		op(&listing)
	}

	return listing
}

// WithPrices sets price and shipping and keeps TotalPrice consistent.
func WithPrices(price, shipping float64) func(l *models.Listing) {
	return func(l *models.Listing) {
		l.Price = price
		l.ShippingCost = shipping
		l.TotalPrice = price + shipping
	}
}

// WithTotal sets a listing whose whole total is the item price.
func WithTotal(total float64) func(l *models.Listing) {
	return WithPrices(total, 0)
}

// WithCatalogID sets the catalog id.
func WithCatalogID(id string) func(l *models.Listing) {
	return func(l *models.Listing) { l.CatalogID = id }
}

// WithCondition sets the condition.
func WithCondition(c models.Condition) func(l *models.Listing) {
	return func(l *models.Listing) { l.Condition = c }
}
