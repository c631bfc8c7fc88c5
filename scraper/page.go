package scraper

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/tubemeta/extractor"
	"github.com/use-agent/tubemeta/models"
	"github.com/use-agent/tubemeta/normalizer"
	"github.com/ysmood/gson"
)

const (
	// requestIdleWindow is how long the network must stay quiet.
	requestIdleWindow = 500 * time.Millisecond

	// snapshotTimeout bounds the single evaluation that reads the page state.
	snapshotTimeout = 10 * time.Second
)

// idleExcludedTypes never count against network quiescence: they stay open
// for as long as the player is alive.
var idleExcludedTypes = []proto.NetworkResourceType{
	proto.NetworkResourceTypeMedia,
	proto.NetworkResourceTypeWebSocket,
	proto.NetworkResourceTypeEventSource,
	proto.NetworkResourceTypePing,
}

// Visit loads one video page in a fresh tab and returns its cleaned record.
//
// Lifecycle:
//
//  1. Open tab              – never reused across URLs
//  2. DEFER: close tab      – on every exit path
//  3. Stealth + identity    – UA, Accept-Language (before navigation!)
//  4. Hijack mount          – optional resource blocking (before navigation!)
//  5. Idle listener         – MUST be registered before Navigate
//  6. Navigate + wait       – bounded by NavigationTimeout
//  7. Settle                – fixed delay for client-side state population
//  8. Snapshot              – one Eval of both embedded trees
//  9. Extract + normalize   – never fails on missing fields
//
// Cancellation of ctx does not interrupt an in-flight visit; only the
// navigation deadline does.
func (s *Session) Visit(ctx context.Context, rawURL string) (models.VideoRecord, error) {
	target := strings.TrimSpace(rawURL)
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	// ── 1. Open tab ───────────────────────────────────────────────────
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return models.VideoRecord{}, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to open a browser tab",
			err,
		)
	}

	// ── 2. Teardown ───────────────────────────────────────────────────
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("cleanup: failed to close tab", "url", target, "error", closeErr)
		}
	}()

	// ── 3. Stealth + identity ─────────────────────────────────────────
	if s.scraperCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}
	if uaErr := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.scraperCfg.UserAgent,
		AcceptLanguage: s.scraperCfg.AcceptLanguage,
	}); uaErr != nil {
		slog.Warn("user agent override failed", "error", uaErr)
	}
	if hdrErr := (proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{"Accept-Language": s.scraperCfg.AcceptLanguage}),
	}).Call(page); hdrErr != nil {
		slog.Warn("extra headers failed", "error", hdrErr)
	}

	// ── 4. Hijack ─────────────────────────────────────────────────────
	router := setupHijack(page, s.scraperCfg.BlockedResourceTypes, s.scraperCfg.BlockAds)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	navCtx, cancel := context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
	defer cancel()
	p := page.Context(navCtx)

	// ── 5. Idle listener ──────────────────────────────────────────────
	// The hijack router and WaitRequestIdle both use the Fetch domain, so
	// the DOM-stable wait is used while the router is mounted.
	var waitIdle func()
	if router == nil {
		waitIdle = p.WaitRequestIdle(requestIdleWindow, nil, nil, idleExcludedTypes)
	}

	// ── 6. Navigate + wait ────────────────────────────────────────────
	if navErr := p.Navigate(target); navErr != nil {
		return models.VideoRecord{}, categorizeError(navErr, "navigation to video page failed")
	}
	if waitIdle != nil {
		waitIdle()
	} else if stableErr := p.WaitDOMStable(time.Second, 0.1); stableErr != nil {
		return models.VideoRecord{}, categorizeError(stableErr, "page did not settle")
	}
	if navCtx.Err() != nil {
		return models.VideoRecord{}, categorizeError(navCtx.Err(), "page did not reach network idle")
	}

	// ── 7. Settle ─────────────────────────────────────────────────────
	time.Sleep(s.scraperCfg.SettleDelay)

	// ── 8. Snapshot ───────────────────────────────────────────────────
	snapCtx, snapCancel := context.WithTimeout(ctx, snapshotTimeout)
	defer snapCancel()
	res, evalErr := page.Context(snapCtx).Eval(extractor.SnapshotJS)
	if evalErr != nil {
		return models.VideoRecord{}, models.NewScrapeError(
			models.ErrCodeExtraction,
			"failed to read embedded page state",
			evalErr,
		)
	}

	// ── 9. Extract + normalize ────────────────────────────────────────
	fields := extractor.Extract(extractor.StateFromSnapshot(res.Value))
	rec := normalizer.Normalize(fields)
	rec.URL = target

	slog.Debug("video page visited",
		"url", target,
		"fields", len(fields),
		"failed", rec.Failed(),
		"ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "visit canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
