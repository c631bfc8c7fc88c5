package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/tubemeta/models"
	"github.com/use-agent/tubemeta/store"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
func Health(run *Runner, st store.Store, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		busy := run.Busy()
		status := "idle"
		if busy {
			status = "busy"
		}

		stored, err := st.Count(c.Request.Context())
		if err != nil {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Busy:    busy,
			Stored:  stored,
			Version: Version,
		})
	}
}
