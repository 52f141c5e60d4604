package alerting_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nightkernel/sentinel/pkg/domain/profile"
	"github.com/nightkernel/sentinel/pkg/infra/alerting"
	"github.com/nightkernel/sentinel/pkg/infra/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

type countingSender struct {
	calls atomic.Int32
	last  alerting.Event
}

func (c *countingSender) Name() string { return "counting" }

func (c *countingSender) Send(_ context.Context, event alerting.Event) error {
	c.calls.Add(1)
	c.last = event
	return nil
}

func TestNotify_SendsOnce(t *testing.T) {
	mem := storage.NewMemory()
	sender := &countingSender{}
	a := alerting.NewAlerter(mem, testLogger(), sender)

	inc := profile.Incident{Type: "honeytoken_access", ThreatScore: 10, ThreatLevel: "tarpit"}
	a.Notify(context.Background(), "hash-a", "honeytoken", inc)

	assert.Equal(t, int32(1), sender.calls.Load())
	assert.Equal(t, "hash-a", sender.last.HashedIP)
	assert.Equal(t, 10, sender.last.ThreatScore)
}

func TestNotify_DeduplicatesWithinWindow(t *testing.T) {
	mem := storage.NewMemory()
	sender := &countingSender{}
	a := alerting.NewAlerter(mem, testLogger(), sender)
	inc := profile.Incident{Type: "honeytoken_access"}

	a.Notify(context.Background(), "hash-a", "honeytoken", inc)
	a.Notify(context.Background(), "hash-a", "honeytoken", inc)
	a.Notify(context.Background(), "hash-a", "honeytoken", inc)

	assert.Equal(t, int32(1), sender.calls.Load(), "repeat events inside the window must be dropped")
}

func TestNotify_SeparateEventTypesAreNotDeduplicated(t *testing.T) {
	mem := storage.NewMemory()
	sender := &countingSender{}
	a := alerting.NewAlerter(mem, testLogger(), sender)
	inc := profile.Incident{}

	a.Notify(context.Background(), "hash-a", "honeytoken", inc)
	a.Notify(context.Background(), "hash-a", "hard_block", inc)

	assert.Equal(t, int32(2), sender.calls.Load())
}

func TestNotify_WindowExpiryAllowsResend(t *testing.T) {
	mem := storage.NewMemory()
	now := time.Now()
	mem.SetClock(func() time.Time { return now })
	sender := &countingSender{}
	a := alerting.NewAlerter(mem, testLogger(), sender)
	inc := profile.Incident{}

	a.Notify(context.Background(), "hash-a", "honeytoken", inc)
	now = now.Add(6 * time.Minute)
	a.Notify(context.Background(), "hash-a", "honeytoken", inc)

	assert.Equal(t, int32(2), sender.calls.Load())
}

func TestWebhookSender_PostsJSON(t *testing.T) {
	var received alerting.Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := alerting.NewWebhookSender(server.URL)
	err := sender.Send(context.Background(), alerting.Event{EventType: "hard_block", HashedIP: "hash-a"})
	require.NoError(t, err)
	assert.Equal(t, "hard_block", received.EventType)
}

func TestWebhookSender_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := alerting.NewWebhookSender(server.URL)
	assert.Error(t, sender.Send(context.Background(), alerting.Event{}))
}
