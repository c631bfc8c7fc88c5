package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/tubemeta/export"
	"github.com/use-agent/tubemeta/models"
	"github.com/use-agent/tubemeta/store"
)

// Results returns a handler for GET /api/v1/results.
func Results(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := st.List(c.Request.Context())
		if err != nil {
			slog.Error("listing results failed", "error", err)
			abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read results")
			return
		}
		c.JSON(http.StatusOK, models.ResultsResponse{
			Success: true,
			Results: recs,
			Total:   len(recs),
		})
	}
}

// ClearResults returns a handler for DELETE /api/v1/results.
func ClearResults(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.Clear(c.Request.Context()); err != nil {
			slog.Error("clearing results failed", "error", err)
			abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to clear results")
			return
		}
		c.JSON(http.StatusOK, models.StatusResponse{Success: true})
	}
}

// ExportCSV returns a handler for GET /api/v1/results/export.csv.
func ExportCSV(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		recs, err := st.List(c.Request.Context())
		if err != nil {
			slog.Error("listing results failed", "error", err)
			abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to read results")
			return
		}

		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		c.Status(http.StatusOK)
		if err := export.WriteCSV(c.Writer, recs); err != nil {
			slog.Error("writing csv failed", "error", err)
		}
	}
}
