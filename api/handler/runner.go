package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/use-agent/tubemeta/batch"
)

// Runner serializes batch runs over one Analyzer. At most one batch holds
// the slot at a time; Stop waits for it before tearing the session down.
type Runner struct {
	analyzer *batch.Analyzer
	slot     chan struct{}
}

// NewRunner wraps a.
func NewRunner(a *batch.Analyzer) *Runner {
	return &Runner{analyzer: a, slot: make(chan struct{}, 1)}
}

// Analyzer returns the wrapped analyzer.
func (r *Runner) Analyzer() *batch.Analyzer {
	return r.analyzer
}

// TryStart claims the slot without waiting. The returned release func must
// be called exactly once. A stop left over from a Stop call that gave up
// waiting is cleared, since nothing is running once the slot is free.
func (r *Runner) TryStart() (release func(), ok bool) {
	select {
	case r.slot <- struct{}{}:
		r.analyzer.StopToken().Reset()
		return func() { <-r.slot }, true
	default:
		return nil, false
	}
}

// Busy reports whether a batch (or a teardown) holds the slot.
func (r *Runner) Busy() bool {
	return len(r.slot) > 0
}

// Stop asks the running batch to end, waits until it has settled and then
// closes the browser session. With no batch running it only closes the session.
func (r *Runner) Stop(ctx context.Context) error {
	r.analyzer.StopToken().Stop()

	select {
	case r.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-r.slot }()

	if err := r.analyzer.Close(); err != nil {
		slog.Warn("closing browser session failed", "error", err)
		return err
	}
	return nil
}

// Reset closes an idle session so the next batch launches with fresh
// settings. It does nothing while a batch is running.
func (r *Runner) Reset() {
	release, ok := r.TryStart()
	if !ok {
		return
	}
	defer release()
	if err := r.analyzer.Close(); err != nil {
		slog.Warn("closing browser session failed", "error", err)
	}
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
