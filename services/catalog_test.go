package services

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lego-price-agent/models"
	mt "lego-price-agent/models/modelstesting"
	"lego-price-agent/utils"
)

// fakeSource answers from a fixed listing set, filtered by a substring of
// the query, and records the queries it saw.
type fakeSource struct {
	name     string
	listings []models.Listing
	delay    time.Duration

	mu      sync.Mutex
	queries []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, query string) []models.Listing {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil
		}
	}

	var out []models.Listing
	for _, l := range f.listings {
		if strings.Contains(query, l.CatalogID) || query == "lego" {
			out = append(out, l)
		}
	}
	return out
}

func offer(source, id string, total float64, c models.Condition) models.Listing {
	return mt.FakeListing(
		mt.WithCatalogID(id),
		mt.WithTotal(total),
		mt.WithCondition(c),
		func(l *models.Listing) { l.SourceName = source },
	)
}

func newTestService(sources ...Searcher) *CatalogService {
	return NewCatalogService(
		sources,
		newTestRecommender(),
		NewTrendTracker(NewMemoryHistory(), 0),
		utils.NewNopLogger(),
		WithRunIDs(func() string { return "run-1" }),
		WithBatchLimits(2, 0),
		WithServiceClock(func() time.Time { return day0 }),
	)
}

func testSources() (*fakeSource, *fakeSource, *fakeSource) {
	allegro := &fakeSource{name: "Allegro", listings: []models.Listing{
		offer("Allegro", "42100", 2400, models.ConditionNew),
		offer("Allegro", "42115", 1200, models.ConditionNew),
	}}
	olx := &fakeSource{name: "OLX", listings: []models.Listing{
		offer("OLX", "42100", 2615, models.ConditionNew),
		offer("OLX", "42131", 1000, models.ConditionUsed),
	}}
	ceneo := &fakeSource{name: "Ceneo", listings: []models.Listing{
		offer("Ceneo", "42100", 2500, models.ConditionNew),
		offer("Ceneo", "42115", 1800, models.ConditionNew),
	}}
	return allegro, olx, ceneo
}

func TestSearchMergesAllSources(t *testing.T) {
	allegro, olx, ceneo := testSources()
	svc := newTestService(allegro, olx, ceneo)

	res := svc.Search(context.Background(), "lego", 0)

	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "lego", res.Query)
	assert.Len(t, res.Listings, 6)
	assert.Equal(t, map[string]int{"Allegro": 2, "OLX": 2, "Ceneo": 2}, res.PerSource)

	// source order is preserved in the merged batch
	assert.Equal(t, "Allegro", res.Listings[0].SourceName)
	assert.Equal(t, "OLX", res.Listings[2].SourceName)
	assert.Equal(t, "Ceneo", res.Listings[4].SourceName)

	require.Len(t, res.Recommendations, 3)
	assert.Equal(t, "42100", res.Recommendations[0].CatalogID)
	assert.Equal(t, models.VerdictWait, res.Recommendations[0].Verdict)
	assert.Equal(t, "42115", res.Recommendations[1].CatalogID)
	assert.Equal(t, models.VerdictBuy, res.Recommendations[1].Verdict)
	assert.Equal(t, "42131", res.Recommendations[2].CatalogID)
	assert.Equal(t, models.ConditionUsed, res.Recommendations[2].Condition)
	assert.Equal(t, models.VerdictAvoid, res.Recommendations[2].Verdict)
}

func TestSearchRunsSourcesConcurrently(t *testing.T) {
	slow := func(name string) *fakeSource { return &fakeSource{name: name, delay: 200 * time.Millisecond} }
	svc := newTestService(slow("a"), slow("b"), slow("c"))

	start := time.Now()
	svc.Search(context.Background(), "lego", 10)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestSearchAppliesLimit(t *testing.T) {
	allegro, olx, ceneo := testSources()
	svc := newTestService(allegro, olx, ceneo)

	res := svc.Search(context.Background(), "lego", 3)

	require.Len(t, res.Listings, 3)
	assert.Equal(t, 2, res.PerSource["Allegro"])
	assert.Equal(t, 2, res.PerSource["OLX"])
	require.Len(t, res.Recommendations, 2)
}

func TestSearchAllSourcesEmpty(t *testing.T) {
	svc := newTestService(&fakeSource{name: "a"}, &fakeSource{name: "b"})

	res := svc.Search(context.Background(), "lego", 10)

	assert.Empty(t, res.Listings)
	assert.Empty(t, res.Recommendations)
}

func TestLookupFiltersExactID(t *testing.T) {
	allegro, olx, ceneo := testSources()
	olx.listings = append(olx.listings, offer("OLX", "4210", 100, models.ConditionNew))
	svc := newTestService(allegro, olx, ceneo)

	res, err := svc.Lookup(context.Background(), "42100")
	require.NoError(t, err)

	assert.Equal(t, "42100", res.CatalogID)
	assert.Len(t, res.Listings, 3)
	for _, l := range res.Listings {
		assert.Equal(t, "42100", l.CatalogID)
	}
	require.NotNil(t, res.Recommendation)
	assert.Equal(t, 2400.0, res.Recommendation.CurrentBestPrice)
	assert.Equal(t, []string{"lego 42100"}, allegro.queries)
}

func TestLookupNotFound(t *testing.T) {
	allegro, olx, ceneo := testSources()
	svc := newTestService(allegro, olx, ceneo)

	_, err := svc.Lookup(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBatchRecommendationsKeepsBuyOnly(t *testing.T) {
	allegro, olx, ceneo := testSources()
	svc := newTestService(allegro, olx, ceneo)

	deals := svc.BatchRecommendations(context.Background(), []string{"42100", "42115", "42131"})

	require.Len(t, deals, 1)
	assert.Equal(t, "42115", deals[0].CatalogID)
	assert.Equal(t, models.VerdictBuy, deals[0].Verdict)
	assert.Len(t, allegro.queries, 3)
}

func TestObserveRecordsBestPrice(t *testing.T) {
	allegro, olx, ceneo := testSources()
	svc := newTestService(allegro, olx, ceneo)

	trends := svc.Observe(context.Background(), []string{"42100", "99999"})

	require.Contains(t, trends, "42100")
	assert.NotContains(t, trends, "99999")
	assert.Equal(t, 1, trends["42100"].SampleCount)
	assert.Equal(t, 1, svc.Trend("42100").SampleCount)
}

func TestReportsRender(t *testing.T) {
	allegro, olx, ceneo := testSources()
	svc := newTestService(allegro, olx, ceneo)

	var buf bytes.Buffer
	res := svc.Search(context.Background(), "lego", 0)
	PrintSearch(&buf, res)
	assert.Contains(t, buf.String(), "SEARCH: lego")
	assert.Contains(t, buf.String(), "42115")
	assert.Contains(t, buf.String(), "run-1")

	buf.Reset()
	PrintDeals(&buf, nil)
	assert.Contains(t, buf.String(), "No recommendations")

	buf.Reset()
	PrintTrends(&buf, map[string]models.TrendStats{"42100": {TrendPercent: 20, SampleCount: 3}})
	assert.Contains(t, buf.String(), "+20.00%")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Średnio...", truncate("Średniowieczny zamek", 10))
}
