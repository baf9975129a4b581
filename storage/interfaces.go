package storage

import (
	"context"
	"time"

	"lego-price-agent/models"
)

// ListingWriter is the interface any storage backend for search runs must satisfy.
type ListingWriter interface {
	Write(runID string, listings []models.Listing) error
	Close() error
}

// SampleStore persists trend samples between processes.
type SampleStore interface {
	SaveSample(ctx context.Context, e models.TrendEntry) error
	LoadSamples(ctx context.Context, since time.Time) ([]models.TrendEntry, error)
}

// History is the in-process trend history a RecordingHistory wraps.
type History interface {
	Append(e models.TrendEntry, cutoff time.Time)
	Entries(catalogID string) []models.TrendEntry
}
