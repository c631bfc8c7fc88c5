package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// EventBatchCompleted fires when every requested URL of a batch was processed.
const EventBatchCompleted = "batch.completed"

// SignatureHeader carries "sha256=<hex>" of the body when a secret is set.
const SignatureHeader = "X-Tubemeta-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// BatchSummary is the data of a batch.completed event.
type BatchSummary struct {
	Succeeded int `json:"succeeded"`
	Total     int `json:"total"`
}

// Sign returns the signature header value for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Deliver sends a webhook event synchronously.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
func Deliver(ctx context.Context, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Tubemeta-Webhook/1.0")

	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Notifier posts batch notifications to one endpoint. A nil Notifier, or one
// with an empty URL, drops every event.
type Notifier struct {
	URL    string
	Secret string

	// Delays between attempts; the first entry is the initial wait.
	Delays []time.Duration
}

// DefaultDelays retries after 1s, 5s and 30s.
var DefaultDelays = []time.Duration{0, 1 * time.Second, 5 * time.Second, 30 * time.Second}

// New returns a Notifier with the default retry schedule.
func New(url, secret string) *Notifier {
	return &Notifier{URL: url, Secret: secret, Delays: DefaultDelays}
}

// Enabled reports whether events will be sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.URL != ""
}

// BatchCompleted announces a finished batch in the background and returns
// a channel that is closed once delivery succeeded or gave up.
func (n *Notifier) BatchCompleted(jobID string, summary BatchSummary) <-chan struct{} {
	done := make(chan struct{})
	if !n.Enabled() {
		close(done)
		return done
	}
	event := &Event{
		Type:      EventBatchCompleted,
		JobID:     jobID,
		Timestamp: time.Now().Unix(),
		Data:      summary,
	}
	go func() {
		defer close(done)
		n.deliverWithRetry(event)
	}()
	return done
}

func (n *Notifier) deliverWithRetry(event *Event) {
	delays := n.Delays
	if len(delays) == 0 {
		delays = []time.Duration{0}
	}
	for attempt, delay := range delays {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := Deliver(ctx, n.URL, n.Secret, event)
		cancel()
		if err == nil {
			slog.Info("webhook delivered",
				"url", n.URL,
				"event", event.Type,
				"job_id", event.JobID,
				"attempt", attempt+1,
			)
			return
		}
		slog.Warn("webhook delivery failed",
			"url", n.URL,
			"event", event.Type,
			"job_id", event.JobID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("webhook delivery exhausted all retries",
		"url", n.URL,
		"event", event.Type,
		"job_id", event.JobID,
	)
}
