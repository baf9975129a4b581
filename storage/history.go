package storage

import (
	"context"
	"time"

	"lego-price-agent/models"
	"lego-price-agent/utils"
)

// RecordingHistory forwards every appended sample to a SampleStore while
// serving reads from the wrapped in-process history.
type RecordingHistory struct {
	History
	store  SampleStore
	logger *utils.Logger
}

// NewRecordingHistory wraps inner so that new samples are also persisted.
func NewRecordingHistory(inner History, store SampleStore, logger *utils.Logger) *RecordingHistory {
	return &RecordingHistory{History: inner, store: store, logger: logger}
}

// Append records e in memory first. A failed save is logged and does not
// undo the in-memory sample.
func (h *RecordingHistory) Append(e models.TrendEntry, cutoff time.Time) {
	h.History.Append(e, cutoff)
	if err := h.store.SaveSample(context.Background(), e); err != nil {
		h.logger.Warn("[storage] Could not persist sample for %s: %v", e.CatalogID, err)
	}
}

// Warm replays samples newer than since into inner without persisting
// them again.
func Warm(ctx context.Context, inner History, store SampleStore, since time.Time) (int, error) {
	entries, err := store.LoadSamples(ctx, since)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		inner.Append(e, since)
	}
	return len(entries), nil
}
