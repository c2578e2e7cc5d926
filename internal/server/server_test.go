package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltasync/deltasync/internal/config"
	"github.com/deltasync/deltasync/internal/core/alerting"
	"github.com/deltasync/deltasync/internal/core/conflict"
	"github.com/deltasync/deltasync/internal/core/metrics"
	"github.com/deltasync/deltasync/internal/core/monitor"
	"github.com/deltasync/deltasync/internal/core/observability/log"
	"github.com/deltasync/deltasync/internal/core/optimizer"
)

type staticSource struct{ sample metrics.HealthSample }

func (s staticSource) CollectHealthSample(context.Context) (metrics.HealthSample, error) {
	return s.sample, nil
}

func newTestServer(t *testing.T) (*HTTPServer, *httptest.Server, *alerting.Engine) {
	t.Helper()
	logger := log.NewNop()

	collector := metrics.NewCollector(metrics.DefaultConfig(), logger)
	alerts := alerting.NewEngine(alerting.DefaultConfig(), logger)
	coordinator := monitor.NewCoordinator(monitor.DefaultConfig(), logger, collector, alerts,
		staticSource{sample: metrics.HealthSample{Timestamp: time.Now()}})

	opt := optimizer.New(optimizer.DefaultConfig(), logger, collector,
		func(context.Context, string) error { return nil },
		conflict.NewResolverRegistry())

	hub := NewAlertHub(logger)
	alerts.RegisterHandler(hub.Broadcast)

	srv := NewHTTPServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, logger, coordinator, opt, hub)
	ts := httptest.NewServer(srv.server.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(hub.Close)
	return srv, ts, alerts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestHTTPServer_Status(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var status map[string]any
	resp := getJSON(t, ts.URL+"/api/v1/status", &status)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, status["enabled"])
	assert.Contains(t, status, "queueDepth")
	assert.Contains(t, status, "pendingConflictCount")
}

func TestHTTPServer_HealthReport(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var report map[string]any
	resp := getJSON(t, ts.URL+"/api/v1/health-report", &report)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(100), report["overallHealthScore"])
	assert.Equal(t, "EXCELLENT", report["healthStatus"])
}

func TestHTTPServer_MetricsExport(t *testing.T) {
	_, ts, _ := newTestServer(t)

	var export map[string]any
	resp := getJSON(t, ts.URL+"/api/v1/metrics/export?hours=6", &export)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(6), export["timeRangeHours"])
	assert.NotNil(t, export["healthSamples"])
	assert.NotNil(t, export["summary"])
}

func TestHTTPServer_MetricsExportRejectsBadHours(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/metrics/export?hours=yesterday")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_MethodNotAllowed(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAlertHub_StreamsFiredAlerts(t *testing.T) {
	_, ts, alerts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/alerts"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the hub a moment to register the subscriber.
	time.Sleep(50 * time.Millisecond)

	fired := alerts.CheckAlerts(metrics.HealthSample{
		Timestamp:            time.Now(),
		SuccessfulSyncs:      5,
		FailedSyncs:          5, // trips the failure-rate rule
		DataConsistencyScore: 1.0,
	})
	require.Len(t, fired, 1)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var received alerting.Alert
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, fired[0].RuleName, received.RuleName)
	assert.Equal(t, fired[0].ID, received.ID)
}

func TestAlertHub_DropsSlowSubscriber(t *testing.T) {
	logger := log.NewNop()
	hub := NewAlertHub(logger)
	defer hub.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/alerts", hub.handleSubscribe)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/alerts"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	// Never read from the connection; overflow the backlog.
	for i := 0; i < clientBacklog*4; i++ {
		hub.Broadcast(alerting.Alert{ID: "a", RuleName: "r"})
	}

	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
