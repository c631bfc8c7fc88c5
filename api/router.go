package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/tubemeta/api/handler"
	"github.com/use-agent/tubemeta/api/middleware"
	"github.com/use-agent/tubemeta/config"
	"github.com/use-agent/tubemeta/store"
	"github.com/use-agent/tubemeta/webhook"
)

// NewRouter builds the Gin engine serving the batch, results and browser
// routes under /api/v1.
//
//	Global:     Recovery → Logger
//	Protected:  Auth (if enabled) → RateLimit
//
// /health stays public for probes.
func NewRouter(run *handler.Runner, st store.Store, notifier *webhook.Notifier, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	v1.GET("/health", handler.Health(run, st, startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Batch
	protected.POST("/analyze", handler.Analyze(run, st, notifier))
	protected.POST("/stop", handler.Stop(run))

	// Accumulated results
	protected.GET("/results", handler.Results(st))
	protected.DELETE("/results", handler.ClearResults(st))
	protected.GET("/results/export.csv", handler.ExportCSV(st))

	// Browser choice
	protected.GET("/browser", handler.GetBrowser(cfg.Browser))
	protected.PUT("/browser", handler.PutBrowser(cfg.Browser, run))
	protected.DELETE("/browser", handler.DeleteBrowser(cfg.Browser, run))
	protected.GET("/browser/check/:kind", handler.CheckBrowser())

	return r
}
