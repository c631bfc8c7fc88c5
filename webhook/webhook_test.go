package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver_SignsBody(t *testing.T) {
	var gotSig, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get(SignatureHeader)
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	event := &Event{Type: EventBatchCompleted, JobID: "batch-1", Data: BatchSummary{Succeeded: 2, Total: 3}}
	require.NoError(t, Deliver(context.Background(), srv.URL, "s3cret", event))

	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, Sign("s3cret", gotBody), gotSig)

	var decoded struct {
		Type string       `json:"type"`
		Data BatchSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &decoded))
	assert.Equal(t, EventBatchCompleted, decoded.Type)
	assert.Equal(t, BatchSummary{Succeeded: 2, Total: 3}, decoded.Data)
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(SignatureHeader))
	}))
	defer srv.Close()

	require.NoError(t, Deliver(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted}))
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := Deliver(context.Background(), srv.URL, "", &Event{Type: EventBatchCompleted})
	assert.ErrorContains(t, err, "502")
}

func TestNotifier_RetriesUntilSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := &Notifier{URL: srv.URL, Delays: []time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond}}

	select {
	case <-n.BatchCompleted("batch-1", BatchSummary{Succeeded: 1, Total: 1}):
	case <-time.After(5 * time.Second):
		t.Fatal("delivery did not finish")
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestNotifier_Disabled(t *testing.T) {
	var nilNotifier *Notifier
	assert.False(t, nilNotifier.Enabled())
	assert.False(t, New("", "").Enabled())

	select {
	case <-nilNotifier.BatchCompleted("x", BatchSummary{}):
	default:
		t.Fatal("disabled notifier must complete immediately")
	}
}
