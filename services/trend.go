package services

import (
	"sort"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"lego-price-agent/models"
)

// DefaultRetention is how long a price sample stays in the trend window.
const DefaultRetention = 30 * 24 * time.Hour

// HistoryStore holds price samples per catalog id. Implementations must
// serialize writes for the same id.
type HistoryStore interface {
	// Append records e and drops samples for the same id observed at or
	// before cutoff.
	Append(e models.TrendEntry, cutoff time.Time)
	// Entries returns a copy of the samples for id, oldest first.
	Entries(catalogID string) []models.TrendEntry
}

// MemoryHistory is an in-process HistoryStore with one lock per catalog id.
type MemoryHistory struct {
	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	mu      sync.Mutex
	entries []models.TrendEntry
}

// NewMemoryHistory creates an empty MemoryHistory.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{series: make(map[string]*series)}
}

func (h *MemoryHistory) get(catalogID string, create bool) *series {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.series[catalogID]
	if !ok && create {
		s = &series{}
		h.series[catalogID] = s
	}
	return s
}

func (h *MemoryHistory) Append(e models.TrendEntry, cutoff time.Time) {
	s := h.get(e.CatalogID, true)
	s.mu.Lock()
	defer s.mu.Unlock()

	// keep samples ordered by observation time, ties in arrival order
	i := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].ObservedAt.After(e.ObservedAt)
	})
	s.entries = append(s.entries, models.TrendEntry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e

	kept := s.entries[:0]
	for _, entry := range s.entries {
		if entry.ObservedAt.After(cutoff) {
			kept = append(kept, entry)
		}
	}
	s.entries = kept
}

func (h *MemoryHistory) Entries(catalogID string) []models.TrendEntry {
	s := h.get(catalogID, false)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.TrendEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// TrendTracker keeps a rolling price window per catalog id. Old samples are
// evicted only when a new sample for the same id is written.
type TrendTracker struct {
	store     HistoryStore
	retention time.Duration
}

// NewTrendTracker creates a tracker over store. A non-positive retention
// means DefaultRetention.
func NewTrendTracker(store HistoryStore, retention time.Duration) *TrendTracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &TrendTracker{store: store, retention: retention}
}

// Update records price for catalogID at the given time and prunes samples
// older than the retention window measured from that time.
func (t *TrendTracker) Update(catalogID string, price float64, at time.Time) {
	t.store.Append(models.TrendEntry{
		CatalogID:  catalogID,
		Price:      price,
		ObservedAt: at,
	}, at.Add(-t.retention))
}

// Query returns trend and volatility for catalogID. Unknown ids and single
// samples report zero trend and volatility.
func (t *TrendTracker) Query(catalogID string) models.TrendStats {
	entries := t.store.Entries(catalogID)
	result := models.TrendStats{SampleCount: len(entries)}
	if len(entries) < 2 {
		return result
	}

	earliest := entries[0].Price
	latest := entries[len(entries)-1].Price
	if earliest != 0 {
		result.TrendPercent = (latest - earliest) / earliest * 100
	}

	prices := make([]float64, len(entries))
	for i, e := range entries {
		prices[i] = e.Price
	}
	mean, err := stats.Mean(prices)
	if err != nil || mean == 0 {
		return result
	}
	sd, err := stats.StandardDeviationSample(prices)
	if err != nil {
		return result
	}
	result.VolatilityPercent = sd / mean * 100

	return result
}
