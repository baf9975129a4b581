package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/robfig/cron/v3"

	"lego-price-agent/utils"
)

// Watcher periodically observes a fixed set of catalog ids and reports
// their trends.
type Watcher struct {
	cron    *cron.Cron
	catalog *CatalogService
	ids     []string
	out     io.Writer
	logger  *utils.Logger

	ctx    context.Context
	cancel context.CancelFunc
	first  sync.WaitGroup
}

// NewWatcher schedules observation of ids on a standard cron spec or a
// descriptor such as "@every 6h".
func NewWatcher(schedule string, catalog *CatalogService, ids []string, out io.Writer, logger *utils.Logger) (*Watcher, error) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		cron:    cron.New(),
		catalog: catalog,
		ids:     ids,
		out:     out,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	if _, err := w.cron.AddFunc(schedule, w.RunOnce); err != nil {
		cancel()
		return nil, fmt.Errorf("watch schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start runs one observation immediately and then follows the schedule.
func (w *Watcher) Start() {
	w.logger.Info("[watch] Watching %d sets", len(w.ids))
	w.first.Add(1)
	go func() {
		defer w.first.Done()
		w.RunOnce()
	}()
	w.cron.Start()
}

// Stop cancels a running observation and waits for it to return.
func (w *Watcher) Stop() {
	w.cancel()
	<-w.cron.Stop().Done()
	w.first.Wait()
	w.logger.Info("[watch] Stopped")
}

// RunOnce observes every watched id and prints the refreshed trends.
func (w *Watcher) RunOnce() {
	if w.ctx.Err() != nil {
		return
	}
	trends := w.catalog.Observe(w.ctx, w.ids)
	w.logger.Info("[watch] Observed %d of %d sets", len(trends), len(w.ids))
	PrintTrends(w.out, trends)
}
