package batch

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/use-agent/tubemeta/models"
)

// Session visits one video page at a time. *scraper.Session satisfies it.
type Session interface {
	Visit(ctx context.Context, url string) (models.VideoRecord, error)
	Close() error
}

// LaunchFunc starts a browser session. It is called at most once per
// Analyzer lifetime between teardowns.
type LaunchFunc func(ctx context.Context) (Session, error)

// ProgressFunc is reserved for finer-grained progress and is never invoked.
type ProgressFunc func(current, total int)

// ResultFunc receives each kept record, the 1-based count of records so far,
// the requested total and the accumulated list.
type ResultFunc func(rec models.VideoRecord, current, total int, results []models.VideoRecord)

// StopToken is a cooperative stop flag. It is polled before each URL and
// after a failed visit; it never interrupts a visit in progress.
// A nil *StopToken never stops.
type StopToken struct {
	stopped atomic.Bool
}

// Stop requests the running batch to end at its next checkpoint.
func (t *StopToken) Stop() {
	if t != nil {
		t.stopped.Store(true)
	}
}

// Stopped reports whether Stop has been called since the last Reset.
func (t *StopToken) Stopped() bool {
	return t != nil && t.stopped.Load()
}

// Reset clears the flag.
func (t *StopToken) Reset() {
	if t != nil {
		t.stopped.Store(false)
	}
}

// Analyzer runs batches sequentially over one lazily started session.
// Callers must not run two batches on the same Analyzer at once.
type Analyzer struct {
	launch LaunchFunc
	token  StopToken

	mu      sync.Mutex
	session Session
}

// New creates an Analyzer. No browser is started until the first batch.
func New(launch LaunchFunc) *Analyzer {
	return &Analyzer{launch: launch}
}

// StopToken returns the analyzer-owned token, used when AnalyzeVideos is
// called with a nil token.
func (a *Analyzer) StopToken() *StopToken {
	return &a.token
}

// HasSession reports whether a browser session is currently open.
func (a *Analyzer) HasSession() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

func (a *Analyzer) ensureSession(ctx context.Context) (Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		return a.session, nil
	}
	s, err := a.launch(ctx)
	if err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

// AnalyzeVideos visits urls strictly in order and returns one record per
// processed URL.
//
// A visit error becomes a failed record and the batch continues. Stopping
// (tok or ctx) is not an error: the records collected so far are returned.
// The only error returned is a session start failure, in which case no URL
// is processed.
//
// With a nil tok the analyzer's own token is used, cleared at entry. URLs are
// trimmed before use.
func (a *Analyzer) AnalyzeVideos(
	ctx context.Context,
	urls []string,
	_ ProgressFunc,
	onResult ResultFunc,
	tok *StopToken,
) ([]models.VideoRecord, error) {
	if tok == nil {
		tok = &a.token
		tok.Reset()
	}

	sess, err := a.ensureSession(ctx)
	if err != nil {
		slog.Error("batch: browser session failed to start", "error", err)
		return nil, err
	}

	start := time.Now()
	total := len(urls)
	results := make([]models.VideoRecord, 0, total)
	stopped := false

	for i, u := range urls {
		u = strings.TrimSpace(u)
		if shouldStop(ctx, tok) {
			stopped = true
			slog.Info("batch: stop requested", "processed", len(results), "total", total)
			break
		}

		rec, visitErr := sess.Visit(ctx, u)
		if visitErr != nil {
			if shouldStop(ctx, tok) {
				stopped = true
				slog.Info("batch: visit failed after stop, dropping item", "url", u, "error", visitErr)
				break
			}
			slog.Warn("batch: video visit failed", "index", i+1, "url", u, "error", visitErr)
			rec = models.FailedRecord(u, visitErr)
		}

		results = append(results, rec)
		// A visit that completes after a stop is kept but not reported.
		if onResult != nil && !shouldStop(ctx, tok) {
			onResult(rec, len(results), total, results)
		}
	}

	slog.Info("batch finished",
		"processed", len(results),
		"succeeded", models.CountSucceeded(results),
		"total", total,
		"stopped", stopped,
		"ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

func shouldStop(ctx context.Context, tok *StopToken) bool {
	return tok.Stopped() || ctx.Err() != nil
}

// Close tears the session down and clears the analyzer's stop token. It is
// safe to call with no session open. The caller must make sure no batch is
// still visiting a page.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.mu.Unlock()

	a.token.Reset()

	if s == nil {
		return nil
	}
	return s.Close()
}
