package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"lego-price-agent/models"
	"lego-price-agent/utils"
)

const (
	defaultTimeout = 30 * time.Second
	defaultLimit   = 10
)

// Option customises an Adapter.
type Option func(a *Adapter)

// WithTimeout bounds a whole Search call, page load included.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithLimit caps how many candidate elements are read per page.
func WithLimit(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.limit = n
		}
	}
}

// WithClock overrides the time source used for ObservedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// Adapter turns one marketplace's result pages into listings.
type Adapter struct {
	market  Marketplace
	loader  Loader
	logger  *utils.Logger
	timeout time.Duration
	limit   int
	now     func() time.Time
}

// NewAdapter creates an Adapter for m that fetches pages through loader.
func NewAdapter(m Marketplace, loader Loader, logger *utils.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		market:  m,
		loader:  loader,
		logger:  logger.With("marketplace", m.Name),
		timeout: defaultTimeout,
		limit:   defaultLimit,
		now:     time.Now,
	}
	for _, op := range opts {
		op(a)
	}
	return a
}

// Name returns the marketplace name listings are attributed to.
func (a *Adapter) Name() string {
	return a.market.Name
}

// Search returns the offers found for query. Load failures and timeouts
// yield an empty result; unreadable offers are skipped one by one.
func (a *Adapter) Search(ctx context.Context, query string) []models.Listing {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req := PageRequest{
		Marketplace:    a.market.Name,
		URL:            a.market.SearchURL(query),
		ReadySelectors: a.market.ReadySelectors,
	}

	html, err := a.loader.Load(ctx, req)
	if err != nil {
		a.logger.Warn("[%s] Search %q failed: %v", a.market.Name, query, err)
		return nil
	}

	listings, err := a.extract(html)
	if err != nil {
		a.logger.Warn("[%s] Could not parse results page: %v", a.market.Name, err)
		return nil
	}

	a.logger.Info("[%s] Search %q finished with %d listings", a.market.Name, query, len(listings))
	return listings
}

// FetchDetail searches for catalogID and returns the first offer whose
// extracted id matches exactly.
func (a *Adapter) FetchDetail(ctx context.Context, catalogID string) (models.Listing, bool) {
	for _, l := range a.Search(ctx, "lego "+catalogID) {
		if l.CatalogID == catalogID {
			return l, true
		}
	}
	return models.Listing{}, false
}

// ShippingCost returns the marketplace's shipping charge for price. All
// configured policies are domestic, so location is not consulted.
func (a *Adapter) ShippingCost(price float64, location string) float64 {
	return a.market.Shipping.Cost(price)
}

func (a *Adapter) extract(html string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	cards := a.candidates(doc)
	if cards == nil {
		a.logger.Warn("[%s] No result container on page", a.market.Name)
		return nil, nil
	}
	a.logger.Debug("[%s] Found %d potential listings", a.market.Name, cards.Length())

	seen := utils.NewURLSet()
	duplicates := 0
	observedAt := a.now()
	listings := make([]models.Listing, 0, cards.Length())

	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= a.limit {
			return false
		}
		l, ok := a.readCard(card, observedAt)
		if !ok {
			return true
		}
		if !seen.Add(l.SourceURL) {
			duplicates++
			a.logger.Debug("[%s] Skipping duplicate: %s", a.market.Name, l.SourceURL)
			return true
		}
		listings = append(listings, l)
		return true
	})
	if duplicates > 0 {
		a.logger.Debug("[%s] %d unique offers, %d duplicates skipped", a.market.Name, seen.Size(), duplicates)
	}

	return listings, nil
}

func (a *Adapter) candidates(doc *goquery.Document) *goquery.Selection {
	for _, sel := range a.market.Containers {
		if found := doc.Find(sel); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// readCard builds a listing from one candidate element. Any missing or
// unparseable required field drops just this card.
func (a *Adapter) readCard(card *goquery.Selection, observedAt time.Time) (models.Listing, bool) {
	title, ok := a.market.Title.Extract(card)
	if !ok {
		return models.Listing{}, false
	}
	priceText, ok := a.market.Price.Extract(card)
	if !ok {
		a.logger.Debug("[%s] No price for %q", a.market.Name, title)
		return models.Listing{}, false
	}
	link, ok := a.market.Link.Extract(card)
	if !ok {
		a.logger.Debug("[%s] No link for %q", a.market.Name, title)
		return models.Listing{}, false
	}

	catalogID, ok := ExtractCatalogID(title)
	if !ok {
		a.logger.Debug("[%s] No set number in %q", a.market.Name, title)
		return models.Listing{}, false
	}
	price, ok := ParsePrice(priceText)
	if !ok || price <= 0 {
		a.logger.Debug("[%s] Unusable price %q for %q", a.market.Name, priceText, title)
		return models.Listing{}, false
	}

	condition := models.ConditionNew
	if !a.market.AlwaysNew {
		condition = ClassifyCondition(title, a.market.NewMarker)
	}

	l := models.NewListing(
		catalogID,
		title,
		price,
		a.ShippingCost(price, "PL"),
		a.market.Name,
		a.absoluteURL(link),
		condition,
		observedAt,
	)
	if img, ok := a.market.Image.Extract(card); ok {
		l.ImageURL = a.absoluteURL(img)
	}
	return l, true
}

func (a *Adapter) absoluteURL(ref string) string {
	base, err := url.Parse(a.market.BaseURL)
	if err != nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}
