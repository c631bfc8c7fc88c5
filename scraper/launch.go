package scraper

import (
	"context"
	"log/slog"

	"github.com/use-agent/tubemeta/batch"
	"github.com/use-agent/tubemeta/browserpath"
	"github.com/use-agent/tubemeta/config"
)

// LaunchFunc returns a batch.LaunchFunc that resolves the browser on every
// launch, so a changed browser choice applies to the next session.
func LaunchFunc(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) batch.LaunchFunc {
	return func(_ context.Context) (batch.Session, error) {
		prefs, err := browserpath.LoadPrefs(browserCfg.PrefsFile)
		if err != nil {
			slog.Warn("ignoring unreadable browser preferences", "file", browserCfg.PrefsFile, "error", err)
		}

		bin, err := browserpath.Resolve(prefs, browserCfg.BrowserBin)
		if err != nil {
			return nil, err
		}

		s, err := Launch(bin, browserCfg, scraperCfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
