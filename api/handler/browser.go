package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/tubemeta/browserpath"
	"github.com/use-agent/tubemeta/config"
	"github.com/use-agent/tubemeta/models"
)

// GetBrowser returns a handler for GET /api/v1/browser. Resolved is the
// executable the next session would launch, if any.
func GetBrowser(cfg config.BrowserConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs, err := browserpath.LoadPrefs(cfg.PrefsFile)
		if err != nil {
			abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, err.Error())
			return
		}
		resp := models.BrowserPrefsResponse{Browser: string(prefs.Browser), Path: prefs.Path}
		if bin, err := browserpath.Resolve(prefs, cfg.BrowserBin); err == nil {
			resp.Resolved = bin
		}
		c.JSON(http.StatusOK, resp)
	}
}

// PutBrowser returns a handler for PUT /api/v1/browser. An idle session is
// closed so the new choice takes effect on the next batch.
func PutBrowser(cfg config.BrowserConfig, run *Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BrowserPrefsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWith(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "invalid request: "+err.Error())
			return
		}

		prefs := browserpath.Prefs{Browser: browserpath.Kind(req.Browser), Path: req.Path}
		switch prefs.Browser {
		case browserpath.Custom:
			if prefs.Path == "" {
				abortWith(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "path is required for a custom browser")
				return
			}
			if _, err := os.Stat(prefs.Path); err != nil {
				abortWith(c, http.StatusBadRequest, models.ErrCodeBrowserNotFound, "browser executable not found at "+prefs.Path)
				return
			}
		default:
			if prefs.Path == "" {
				prefs.Path, _ = browserpath.Check(prefs.Browser)
			}
		}

		if err := browserpath.SavePrefs(cfg.PrefsFile, prefs); err != nil {
			slog.Error("saving browser preferences failed", "file", cfg.PrefsFile, "error", err)
			abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to save browser preferences")
			return
		}
		run.Reset()

		c.JSON(http.StatusOK, models.BrowserPrefsResponse{Browser: string(prefs.Browser), Path: prefs.Path})
	}
}

// DeleteBrowser returns a handler for DELETE /api/v1/browser.
func DeleteBrowser(cfg config.BrowserConfig, run *Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := browserpath.ClearPrefs(cfg.PrefsFile); err != nil {
			abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to clear browser preferences")
			return
		}
		run.Reset()
		c.JSON(http.StatusOK, models.StatusResponse{Success: true})
	}
}

// CheckBrowser returns a handler for GET /api/v1/browser/check/:kind.
func CheckBrowser() gin.HandlerFunc {
	return func(c *gin.Context) {
		kind, err := browserpath.ParseKind(c.Param("kind"))
		if err != nil || kind == browserpath.Custom {
			abortWith(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "kind must be edge or chrome")
			return
		}
		path, ok := browserpath.Check(kind)
		c.JSON(http.StatusOK, models.BrowserCheckResponse{
			Browser:   string(kind),
			Available: ok,
			Path:      path,
		})
	}
}
