package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"lego-price-agent/models"
	"lego-price-agent/utils"
)

// ErrNotFound is returned by Lookup when no marketplace offers the set.
var ErrNotFound = errors.New("set not found")

// Searcher is one marketplace source. Search never fails; an unreachable
// marketplace contributes no listings.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) []models.Listing
}

// ServiceOption is custom configuration of CatalogService.
type ServiceOption func(s *CatalogService)

// WithBatchLimits bounds concurrent searches and spaces their starts in
// BatchRecommendations and Observe.
func WithBatchLimits(maxConcurrency, rateLimitMs int) ServiceOption {
	return func(s *CatalogService) {
		s.maxConcurrency = maxConcurrency
		s.rateLimitMs = rateLimitMs
	}
}

// WithServiceClock sets the time source used when recording trend samples.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *CatalogService) { s.now = now }
}

// WithRunIDs sets the generator for search run ids.
func WithRunIDs(next func() string) ServiceOption {
	return func(s *CatalogService) { s.newRunID = next }
}

// CatalogService fans queries out to all marketplaces and turns the merged
// listings into recommendations.
type CatalogService struct {
	sources        []Searcher
	recommender    *Recommender
	tracker        *TrendTracker
	logger         *utils.Logger
	maxConcurrency int
	rateLimitMs    int
	now            func() time.Time
	newRunID       func() string
}

// NewCatalogService returns a CatalogService over sources.
func NewCatalogService(sources []Searcher, recommender *Recommender, tracker *TrendTracker, logger *utils.Logger, ops ...ServiceOption) *CatalogService {
	s := &CatalogService{
		sources:        sources,
		recommender:    recommender,
		tracker:        tracker,
		logger:         logger,
		maxConcurrency: 3,
		now:            time.Now,
		newRunID:       uuid.NewString,
	}
	for _, op := range ops {
		op(s)
	}
	return s
}

// Search queries every marketplace concurrently, keeps at most limit
// listings (all when limit is not positive) and analyzes them.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) models.SearchResult {
	runID := s.newRunID()
	log := s.logger.With("run_id", runID)

	perSource := s.collect(ctx, query)
	counts := make(map[string]int, len(s.sources))
	for i, src := range s.sources {
		counts[src.Name()] = len(perSource[i])
	}

	listings := lo.Flatten(perSource)
	if len(listings) == 0 {
		log.Warn("[catalog] No marketplace returned offers for %q", query)
	}
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}

	recs := s.recommender.Analyze(listings)
	log.Info("[catalog] Search %q: %d listings, %d recommendations", query, len(listings), len(recs))

	return models.SearchResult{
		RunID:           runID,
		Query:           query,
		Listings:        listings,
		Recommendations: recs,
		PerSource:       counts,
	}
}

// Lookup returns the offers whose catalog id equals catalogID exactly,
// with their recommendation. It wraps ErrNotFound when there are none.
func (s *CatalogService) Lookup(ctx context.Context, catalogID string) (models.LookupResult, error) {
	found := lo.Flatten(s.collect(ctx, setQuery(catalogID)))
	exact := lo.Filter(found, func(l models.Listing, _ int) bool { return l.CatalogID == catalogID })
	if len(exact) == 0 {
		return models.LookupResult{}, fmt.Errorf("lookup %s: %w", catalogID, ErrNotFound)
	}

	result := models.LookupResult{CatalogID: catalogID, Listings: exact}
	if recs := s.recommender.Analyze(exact); len(recs) > 0 {
		result.Recommendation = &recs[0]
	}
	return result, nil
}

// BatchRecommendations searches for each catalog id, analyzes everything
// found and keeps only buy verdicts.
func (s *CatalogService) BatchRecommendations(ctx context.Context, catalogIDs []string) []models.Recommendation {
	results := make([][]models.Listing, len(catalogIDs))
	pool := utils.NewWorkerPool(s.maxConcurrency, s.rateLimitMs)
	for i, id := range catalogIDs {
		pool.Submit(ctx, func() {
			results[i] = lo.Flatten(s.collect(ctx, setQuery(id)))
		})
	}
	pool.Wait()

	recs := s.recommender.Analyze(lo.Flatten(results))
	deals := lo.Filter(recs, func(r models.Recommendation, _ int) bool { return r.Verdict == models.VerdictBuy })
	s.logger.Info("[catalog] Batch of %d sets: %d recommendations, %d deals", len(catalogIDs), len(recs), len(deals))
	return deals
}

// Observe looks up each catalog id and records its current best price in
// the trend tracker. It returns the refreshed trend for every id that had
// offers.
func (s *CatalogService) Observe(ctx context.Context, catalogIDs []string) map[string]models.TrendStats {
	var mu sync.Mutex
	out := make(map[string]models.TrendStats, len(catalogIDs))

	pool := utils.NewWorkerPool(s.maxConcurrency, s.rateLimitMs)
	for _, id := range catalogIDs {
		pool.Submit(ctx, func() {
			res, err := s.Lookup(ctx, id)
			if err != nil {
				s.logger.Warn("[catalog] Observe %s: %v", id, err)
				return
			}
			if res.Recommendation == nil {
				return
			}
			s.tracker.Update(id, res.Recommendation.CurrentBestPrice, s.now())

			mu.Lock()
			out[id] = s.tracker.Query(id)
			mu.Unlock()
		})
	}
	pool.Wait()

	return out
}

// Trend returns the tracked trend for catalogID.
func (s *CatalogService) Trend(catalogID string) models.TrendStats {
	return s.tracker.Query(catalogID)
}

// collect runs query on every source concurrently and returns the listings
// per source, in source order.
func (s *CatalogService) collect(ctx context.Context, query string) [][]models.Listing {
	results := make([][]models.Listing, len(s.sources))

	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			results[i] = src.Search(ctx, query)
			return nil
		})
	}
	// sources never return an error, Wait only joins the goroutines
	_ = g.Wait()

	return results
}

func setQuery(catalogID string) string {
	return "lego " + catalogID
}
