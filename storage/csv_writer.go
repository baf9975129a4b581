package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"lego-price-agent/models"
)

var csvHeader = []string{
	"run_id", "catalog_id", "title", "price", "shipping_cost", "total_price",
	"condition", "source", "url", "observed_at",
}

// CSVWriter writes search run listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per listing, tagged with runID.
func (c *CSVWriter) Write(runID string, listings []models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		if err := c.writer.Write(csvRow(runID, l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	return c.file.Close()
}

func csvRow(runID string, l models.Listing) []string {
	money := func(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }
	return []string{
		runID,
		l.CatalogID,
		l.Title,
		money(l.Price),
		money(l.ShippingCost),
		money(l.TotalPrice),
		string(l.Condition),
		l.SourceName,
		l.SourceURL,
		l.ObservedAt.UTC().Format(time.RFC3339),
	}
}
