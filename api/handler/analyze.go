package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/tubemeta/export"
	"github.com/use-agent/tubemeta/models"
	"github.com/use-agent/tubemeta/store"
	"github.com/use-agent/tubemeta/webhook"
)

// Analyze returns a handler for POST /api/v1/analyze.
//
// The batch runs inside the request. Each processed video is streamed as an
// SSE "result" event and the stream ends with a "done" event. Closing the
// connection stops the batch at its next checkpoint.
func Analyze(run *Runner, st store.Store, notifier *webhook.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWith(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "invalid request: "+err.Error())
			return
		}

		urls := req.URLs
		if req.Filter {
			urls = export.KeepVideoURLs(urls)
		}
		if len(urls) == 0 {
			abortWith(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "no video URLs to analyze")
			return
		}

		release, ok := run.TryStart()
		if !ok {
			abortWith(c, http.StatusConflict, models.ErrCodeBatchRunning, "a batch is already running")
			return
		}
		defer release()

		// Persisting must survive the client going away mid-batch.
		storeCtx := context.WithoutCancel(c.Request.Context())
		if !req.Append {
			if err := st.Clear(storeCtx); err != nil {
				abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, "failed to clear previous results")
				return
			}
		}

		jobID := "batch-" + randomID()
		start := time.Now()
		slog.Info("batch started", "id", jobID, "urls", len(urls), "append", req.Append)

		c.Header("Cache-Control", "no-cache")
		c.Header("X-Accel-Buffering", "no")

		onResult := func(rec models.VideoRecord, current, total int, _ []models.VideoRecord) {
			if err := st.Append(storeCtx, rec); err != nil {
				slog.Error("failed to store result", "id", jobID, "url", rec.URL, "error", err)
			}
			c.SSEvent("result", models.ResultEvent{Record: rec, Current: current, Total: total})
			c.Writer.Flush()
		}

		results, err := run.Analyzer().AnalyzeVideos(c.Request.Context(), urls, nil, onResult, nil)
		if err != nil {
			status := http.StatusInternalServerError
			code := models.ErrCodeInternal
			if se, ok := models.AsScrapeError(err); ok {
				code = se.Code
				if models.IsPrecondition(err) {
					status = http.StatusServiceUnavailable
				}
			}
			abortWith(c, status, code, err.Error())
			return
		}

		done := models.DoneEvent{
			Succeeded: models.CountSucceeded(results),
			Processed: len(results),
			Total:     len(urls),
			Stopped:   len(results) < len(urls),
		}
		c.SSEvent("done", done)
		c.Writer.Flush()

		slog.Info("batch request finished",
			"id", jobID,
			"succeeded", done.Succeeded,
			"processed", done.Processed,
			"total", done.Total,
			"stopped", done.Stopped,
			"ms", time.Since(start).Milliseconds(),
		)

		if done.Processed == done.Total {
			notifier.BatchCompleted(jobID, webhook.BatchSummary{Succeeded: done.Succeeded, Total: done.Total})
		}
	}
}

// Stop returns a handler for POST /api/v1/stop.
func Stop(run *Runner) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := run.Stop(c.Request.Context()); err != nil {
			abortWith(c, http.StatusInternalServerError, models.ErrCodeInternal, "stop did not complete: "+err.Error())
			return
		}
		c.JSON(http.StatusOK, models.StatusResponse{Success: true})
	}
}

func abortWith(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, models.StatusResponse{
		Success: false,
		Error:   &models.ErrorDetail{Code: code, Message: msg},
	})
}
