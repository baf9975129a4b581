// Package ceneo declares how offers are read from the ceneo.pl price
// comparison listing. Ceneo aggregates shops selling new goods only.
package ceneo

import (
	"net/url"

	"lego-price-agent/scraper"
	"lego-price-agent/utils"
)

const (
	name    = "Ceneo"
	baseURL = "https://www.ceneo.pl"
)

// Marketplace returns the ceneo.pl extraction table.
func Marketplace() scraper.Marketplace {
	return scraper.Marketplace{
		Name:    name,
		BaseURL: baseURL,
		SearchURL: func(query string) string {
			return baseURL + "/;szukaj-" + url.QueryEscape(query)
		},
		ReadySelectors: []string{".cat-prod-row", ".cat-prod-box"},
		Containers:     []string{".cat-prod-row", ".cat-prod-box"},
		Title:          scraper.Texts(".cat-prod-row__name", ".cat-prod-box__name", "strong a").Bounded(5, 300),
		Price:          scraper.Texts(".cat-prod-row__price .price", ".cat-prod-row__price", ".cat-prod-box__price", ".price"),
		Link:           scraper.Hrefs(".cat-prod-row__name a", ".cat-prod-box__name a", "a.go-to-product", "a"),
		Image:          scraper.Field{Strategies: []scraper.Strategy{scraper.Attr("img", "src")}},
		AlwaysNew:      true,
		Shipping:       scraper.ShippingPolicy{FlatFee: 12, FreeFrom: 150},
	}
}

// New returns an Adapter for ceneo.pl.
func New(loader scraper.Loader, logger *utils.Logger, opts ...scraper.Option) *scraper.Adapter {
	return scraper.NewAdapter(Marketplace(), loader, logger, opts...)
}
