package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"lego-price-agent/models"
	"lego-price-agent/utils"
)

const (
	batchSize = 50

	offerColumns = 10
)

// PostgresWriter persists search runs and trend samples to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := utils.Retry{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS offers (
			id            SERIAL PRIMARY KEY,
			run_id        UUID          NOT NULL,
			catalog_id    VARCHAR(16)   NOT NULL,
			title         TEXT          NOT NULL,
			price         NUMERIC(10,2) NOT NULL,
			shipping_cost NUMERIC(10,2) NOT NULL DEFAULT 0,
			total_price   NUMERIC(10,2) NOT NULL,
			condition     VARCHAR(16)   NOT NULL,
			source        VARCHAR(50)   NOT NULL,
			url           TEXT          NOT NULL,
			observed_at   TIMESTAMPTZ   NOT NULL,
			UNIQUE (run_id, url)
		);

		CREATE INDEX IF NOT EXISTS idx_offers_catalog_id ON offers(catalog_id);

		CREATE TABLE IF NOT EXISTS price_samples (
			id          SERIAL PRIMARY KEY,
			catalog_id  VARCHAR(16)   NOT NULL,
			price       NUMERIC(10,2) NOT NULL,
			observed_at TIMESTAMPTZ   NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_price_samples_observed ON price_samples(catalog_id, observed_at);
	`)
	return err
}

// Write batch-inserts the listings of one search run.
func (pw *PostgresWriter) Write(runID string, listings []models.Listing) error {
	for start := 0; start < len(listings); start += batchSize {
		end := min(start+batchSize, len(listings))
		query, args := offerInsert(runID, listings[start:end])
		if _, err := pw.db.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert offers: %w", err)
		}
	}
	return nil
}

// SaveSample stores one observed best price.
func (pw *PostgresWriter) SaveSample(ctx context.Context, e models.TrendEntry) error {
	_, err := pw.db.ExecContext(ctx,
		`INSERT INTO price_samples (catalog_id, price, observed_at) VALUES ($1,$2,$3)`,
		e.CatalogID, e.Price, e.ObservedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert sample: %w", err)
	}
	return nil
}

// LoadSamples returns every stored sample observed after since, oldest first.
func (pw *PostgresWriter) LoadSamples(ctx context.Context, since time.Time) ([]models.TrendEntry, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT catalog_id, price, observed_at
		FROM price_samples
		WHERE observed_at > $1
		ORDER BY observed_at, id
	`, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: load samples: %w", err)
	}
	defer rows.Close()

	var entries []models.TrendEntry
	for rows.Next() {
		var e models.TrendEntry
		if err := rows.Scan(&e.CatalogID, &e.Price, &e.ObservedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan sample: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// offerInsert builds one multi-row INSERT for batch.
func offerInsert(runID string, batch []models.Listing) (string, []any) {
	values := make([]string, 0, len(batch))
	args := make([]any, 0, len(batch)*offerColumns)

	for idx, l := range batch {
		values = append(values, placeholders(idx*offerColumns, offerColumns))
		args = append(args,
			runID, l.CatalogID, l.Title, l.Price, l.ShippingCost, l.TotalPrice,
			string(l.Condition), l.SourceName, l.SourceURL, l.ObservedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO offers (run_id, catalog_id, title, price, shipping_cost, total_price, condition, source, url, observed_at)
		VALUES %s
		ON CONFLICT (run_id, url) DO NOTHING
	`, strings.Join(values, ","))
	return query, args
}

// placeholders returns "($base+1,...,$base+n)".
func placeholders(base, n int) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "$%d", base+i)
	}
	b.WriteByte(')')
	return b.String()
}
