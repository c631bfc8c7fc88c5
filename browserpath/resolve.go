// Package browserpath locates a Chromium-family browser executable and
// persists the user's choice between runs.
package browserpath

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/use-agent/tubemeta/models"
)

// Kind names a browser family.
type Kind string

const (
	Edge   Kind = "edge"
	Chrome Kind = "chrome"
	Custom Kind = "custom"
)

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Edge, Chrome, Custom:
		return k, nil
	default:
		return "", models.NewScrapeError(
			models.ErrCodeInvalidInput,
			fmt.Sprintf("unknown browser kind %q", s),
			nil,
		)
	}
}

// Candidates lists the well-known install locations of kind on this OS, in
// lookup order. Custom has no candidates.
func Candidates(kind Kind) []string {
	return candidatesFor(runtime.GOOS, kind)
}

func candidatesFor(goos string, kind Kind) []string {
	var paths []string
	switch goos {
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		switch kind {
		case Edge:
			paths = []string{
				`C:\Program Files\Microsoft\Edge\Application\msedge.exe`,
				`C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
			}
			if local != "" {
				paths = append(paths, filepath.Join(local, `Microsoft\Edge\Application\msedge.exe`))
			}
		case Chrome:
			paths = []string{
				`C:\Program Files\Google\Chrome\Application\chrome.exe`,
				`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			}
			if local != "" {
				paths = append(paths, filepath.Join(local, `Google\Chrome\Application\chrome.exe`))
			}
		}
	case "darwin":
		switch kind {
		case Edge:
			paths = []string{"/Applications/Microsoft Edge.app/Contents/MacOS/Microsoft Edge"}
		case Chrome:
			paths = []string{
				"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
				"/Applications/Chromium.app/Contents/MacOS/Chromium",
			}
		}
	default:
		switch kind {
		case Edge:
			paths = []string{
				"/usr/bin/microsoft-edge",
				"/usr/bin/microsoft-edge-stable",
				"/opt/microsoft/msedge/msedge",
			}
		case Chrome:
			paths = []string{
				"/usr/bin/google-chrome",
				"/usr/bin/google-chrome-stable",
				"/opt/google/chrome/chrome",
				"/usr/bin/chromium",
				"/usr/bin/chromium-browser",
			}
		}
	}
	return paths
}

// Check returns the first existing executable for kind.
func Check(kind Kind) (string, bool) {
	return firstExisting(Candidates(kind))
}

func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Resolve picks the executable to launch. Order: override (usually
// TUBEMETA_BROWSER_BIN), then the persisted preference, then the system
// lookup. It never downloads a browser.
func Resolve(prefs Prefs, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	switch prefs.Browser {
	case Custom:
		if prefs.Path != "" {
			return prefs.Path, nil
		}
	case Edge, Chrome:
		if p, ok := Check(prefs.Browser); ok {
			return p, nil
		}
		if prefs.Path != "" {
			return prefs.Path, nil
		}
		slog.Warn("preferred browser not installed, falling back to system lookup", "browser", prefs.Browser)
	}

	if p, ok := launcher.LookPath(); ok {
		return p, nil
	}

	return "", models.NewScrapeError(
		models.ErrCodeBrowserNotFound,
		"no Chrome or Edge executable found; set TUBEMETA_BROWSER_BIN or choose a browser",
		nil,
	)
}
