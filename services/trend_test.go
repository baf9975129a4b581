package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lego-price-agent/models"
)

var day0 = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func TestTrendConsecutiveDays(t *testing.T) {
	tracker := NewTrendTracker(NewMemoryHistory(), 0)

	tracker.Update("42100", 1000, day0)
	tracker.Update("42100", 1100, day0.AddDate(0, 0, 1))
	tracker.Update("42100", 1200, day0.AddDate(0, 0, 2))

	got := tracker.Query("42100")
	assert.Equal(t, 3, got.SampleCount)
	assert.InDelta(t, 20.0, got.TrendPercent, 1e-9)
	// sample standard deviation 100 over mean 1100
	assert.InDelta(t, 100.0/1100.0*100, got.VolatilityPercent, 1e-9)
}

func TestTrendUnknownID(t *testing.T) {
	tracker := NewTrendTracker(NewMemoryHistory(), 0)

	assert.Equal(t, models.TrendStats{}, tracker.Query("99999"))
}

func TestTrendSingleSample(t *testing.T) {
	tracker := NewTrendTracker(NewMemoryHistory(), 0)
	tracker.Update("42100", 1000, day0)

	got := tracker.Query("42100")
	assert.Equal(t, 1, got.SampleCount)
	assert.Equal(t, 0.0, got.TrendPercent)
	assert.Equal(t, 0.0, got.VolatilityPercent)
}

func TestTrendZeroEarliestPrice(t *testing.T) {
	tracker := NewTrendTracker(NewMemoryHistory(), 0)
	tracker.Update("42100", 0, day0)
	tracker.Update("42100", 500, day0.Add(time.Hour))

	got := tracker.Query("42100")
	assert.Equal(t, 0.0, got.TrendPercent)
	assert.Greater(t, got.VolatilityPercent, 0.0)
}

func TestTrendPrunesOnWrite(t *testing.T) {
	history := NewMemoryHistory()
	tracker := NewTrendTracker(history, DefaultRetention)

	tracker.Update("42100", 900, day0)
	tracker.Update("42100", 950, day0.AddDate(0, 0, 10))
	assert.Equal(t, 2, tracker.Query("42100").SampleCount)

	// reads never evict, however old the window is
	assert.Len(t, history.Entries("42100"), 2)

	tracker.Update("42100", 1000, day0.AddDate(0, 0, 31))
	entries := history.Entries("42100")
	require.Len(t, entries, 2)
	assert.Equal(t, 950.0, entries[0].Price)
	assert.Equal(t, 1000.0, entries[1].Price)
}

func TestTrendPruningIsPerID(t *testing.T) {
	tracker := NewTrendTracker(NewMemoryHistory(), DefaultRetention)

	tracker.Update("42100", 900, day0)
	tracker.Update("75192", 3000, day0.AddDate(0, 2, 0))

	assert.Equal(t, 1, tracker.Query("42100").SampleCount)
	assert.Equal(t, 1, tracker.Query("75192").SampleCount)
}

func TestTrendOrdersSamplesByTime(t *testing.T) {
	tracker := NewTrendTracker(NewMemoryHistory(), 0)

	tracker.Update("42100", 1200, day0.AddDate(0, 0, 2))
	tracker.Update("42100", 1000, day0)
	tracker.Update("42100", 1100, day0.AddDate(0, 0, 1))

	assert.InDelta(t, 20.0, tracker.Query("42100").TrendPercent, 1e-9)
}

func TestTrendConcurrentUpdatesSameID(t *testing.T) {
	tracker := NewTrendTracker(NewMemoryHistory(), 0)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tracker.Update("42100", float64(1000+i), day0.Add(time.Duration(i)*time.Minute))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 200, tracker.Query("42100").SampleCount)
}
