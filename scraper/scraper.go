package scraper

import (
	"log/slog"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/tubemeta/config"
	"github.com/use-agent/tubemeta/models"
)

// Session owns one browser process. Pages are opened per visit and never
// reused. A Session is meant to be driven by one batch at a time.
type Session struct {
	browser    *rod.Browser
	launcher   *launcher.Launcher
	scraperCfg config.ScraperConfig
}

// Launch starts the browser at bin and connects to it.
//
// bin must already be resolved by the caller; an empty or missing path is
// reported as ErrCodeBrowserNotFound and no lookup or download is attempted.
func Launch(bin string, browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Session, error) {
	if bin == "" {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserNotFound,
			"no browser executable configured",
			nil,
		)
	}
	if _, err := os.Stat(bin); err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserNotFound,
			"browser executable not found at "+bin,
			err,
		)
	}

	l := launcher.New().
		Bin(bin).
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "TranslateUI,VizDisplayCompositor")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("no-default-browser-check"))

	// Labels must render in English regardless of the host locale.
	l.Set(flags.Flag("lang"), "en-US")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "bin", bin, "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserLaunch,
			"failed to connect to browser",
			err,
		)
	}

	return &Session{
		browser:    browser,
		launcher:   l,
		scraperCfg: scraperCfg,
	}, nil
}

// Close shuts the browser down. It must not race an in-flight Visit.
func (s *Session) Close() error {
	slog.Info("session shutting down: closing browser")
	err := s.browser.Close()
	if err != nil {
		slog.Warn("browser close failed, killing process", "error", err)
	}
	s.launcher.Kill()
	slog.Info("session shutdown complete")
	return err
}
