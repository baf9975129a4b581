package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lego-price-agent/config"
	"lego-price-agent/models"
	"lego-price-agent/scraper"
	"lego-price-agent/scraper/allegro"
	"lego-price-agent/scraper/ceneo"
	"lego-price-agent/scraper/olx"
	"lego-price-agent/services"
	"lego-price-agent/storage"
	"lego-price-agent/utils"
)

const usage = `usage: lego-price-agent <command> [args]

commands:
  search <query>   compare offers for a free-text query
  set <id>         show offers and verdict for one catalog number
  deals [ids...]   list buy recommendations (defaults to WATCH_IDS)
  watch            observe WATCH_IDS on WATCH_SCHEDULE until interrupted
`

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	logger  *utils.Logger
	catalog *services.CatalogService
	db      *storage.PostgresWriter
	closers []func()
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Error("Startup failed: %v", err)
		os.Exit(1)
	}
	code := a.run(ctx, os.Args[1], os.Args[2:])
	a.close()
	os.Exit(code)
}

func setup(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var loader scraper.Loader
	if cfg.FixtureDir != "" {
		logger.Info("Serving marketplace pages from %s", cfg.FixtureDir)
		loader = scraper.NewFixtureLoader(cfg.FixtureDir)
	} else {
		browser, err := scraper.NewBrowserLoader(cfg.ChromeBin, cfg.SettleDelay, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, browser.Close)
		loader = browser
	}

	opts := []scraper.Option{
		scraper.WithTimeout(cfg.LoadTimeout),
		scraper.WithLimit(cfg.SourceResultLimit),
	}
	sources := []services.Searcher{
		allegro.New(loader, logger, opts...),
		olx.New(loader, logger, opts...),
		ceneo.New(loader, logger, opts...),
	}

	var history services.HistoryStore = services.NewMemoryHistory()
	if cfg.DatabaseURL != "" {
		db, err := storage.NewPostgresWriter(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, func() { _ = db.Close() })

		since := time.Now().Add(-cfg.Watch.Retention)
		n, err := storage.Warm(ctx, history, db, since)
		if err != nil {
			logger.Warn("Could not load stored price samples: %v", err)
		} else {
			logger.Info("Loaded %d stored price samples", n)
		}
		history = storage.NewRecordingHistory(history, db, logger)
	}

	a.catalog = services.NewCatalogService(
		sources,
		services.NewRecommender(logger),
		services.NewTrendTracker(history, cfg.Watch.Retention),
		logger,
		services.WithBatchLimits(cfg.MaxConcurrency, cfg.RateLimitMs),
	)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) run(ctx context.Context, command string, args []string) int {
	switch command {
	case "search":
		if len(args) == 0 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		return a.search(ctx, strings.Join(args, " "))
	case "set":
		if len(args) != 1 {
			fmt.Fprint(os.Stderr, usage)
			return 2
		}
		return a.set(ctx, args[0])
	case "deals":
		ids := args
		if len(ids) == 0 {
			ids = a.cfg.Watch.IDs
		}
		services.PrintDeals(os.Stdout, a.catalog.BatchRecommendations(ctx, ids))
		return 0
	case "watch":
		return a.watch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
}

func (a *app) search(ctx context.Context, query string) int {
	res := a.catalog.Search(ctx, query, a.cfg.ResultLimit)
	services.PrintSearch(os.Stdout, res)

	csvWriter, err := storage.NewCSVWriter(a.cfg.CSVOutputPath)
	if err != nil {
		a.logger.Error("Failed to create CSV writer: %v", err)
	} else {
		if a.save(csvWriter, res) {
			a.logger.Info("Listings saved to %s", a.cfg.CSVOutputPath)
		}
		_ = csvWriter.Close()
	}
	if a.db != nil && a.save(a.db, res) {
		a.logger.Info("Listings stored in PostgreSQL (table: offers)")
	}
	return 0
}

func (a *app) save(w storage.ListingWriter, res models.SearchResult) bool {
	if err := w.Write(res.RunID, res.Listings); err != nil {
		a.logger.Error("Saving run %s failed: %v", res.RunID, err)
		return false
	}
	return true
}

func (a *app) set(ctx context.Context, catalogID string) int {
	res, err := a.catalog.Lookup(ctx, catalogID)
	if errors.Is(err, services.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "No offers found for set %s\n", catalogID)
		return 1
	}
	if err != nil {
		a.logger.Error("Lookup failed: %v", err)
		return 1
	}
	services.PrintLookup(os.Stdout, res)
	return 0
}

func (a *app) watch(ctx context.Context) int {
	w, err := services.NewWatcher(a.cfg.Watch.Schedule, a.catalog, a.cfg.Watch.IDs, os.Stdout, a.logger)
	if err != nil {
		a.logger.Error("%v", err)
		return 1
	}
	w.Start()
	<-ctx.Done()
	w.Stop()
	return 0
}
