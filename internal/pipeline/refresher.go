package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/climate-catalog-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Runner produces one catalog per call.
type Runner interface {
	Run(ctx context.Context) (Summary, error)
}

// Refresher regenerates the catalog on an interval and keeps the latest
// encoded document for serving. A failed refresh leaves the previous
// document in place.
type Refresher struct {
	runner   Runner
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger

	mu      sync.RWMutex
	doc     []byte
	summary Summary
}

// NewRefresher creates a Refresher. An interval of zero generates once.
func NewRefresher(r Runner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Refresher {
	return &Refresher{
		runner:   r,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Refresh runs the generator once and swaps in the new document on success.
func (r *Refresher) Refresh(ctx context.Context) error {
	sum, err := r.runner.Run(ctx)
	if err != nil {
		return err
	}
	doc, err := domain.MarshalCatalog(sum.Catalog)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.doc = doc
	r.summary = sum
	r.mu.Unlock()
	return nil
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	r.refreshAndLog(ctx)
	if r.interval <= 0 {
		return
	}

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("catalog refresh scheduled", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.refreshAndLog(ctx)
		}
	}
}

func (r *Refresher) refreshAndLog(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error("catalog refresh failed, keeping previous document", "error", err)
	}
}

// Document returns the latest encoded catalog, or false if no run has
// succeeded yet.
func (r *Refresher) Document() ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc, r.doc != nil
}

// Summary returns the summary of the latest successful run.
func (r *Refresher) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary
}

// CheckReadiness returns nil once a catalog has been generated.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if _, ok := r.Document(); !ok {
		return errors.New("catalog has not been generated yet")
	}
	return nil
}
