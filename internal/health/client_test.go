package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lullapp/lull/internal/health"
)

func TestProbeSucceedsOnOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/status", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		},
	))
	defer server.Close()

	client := health.NewClient(server.URL, "secret")
	require.NoError(t, client.Probe(context.Background()))
}

func TestProbeFailsOnDegradedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"degraded"}`))
		},
	))
	defer server.Close()

	client := health.NewClient(server.URL, "secret")
	err := client.Probe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degraded")
}

func TestUnauthorizedReturnsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	))
	defer server.Close()

	client := health.NewClient(server.URL, "stale-token")
	err := client.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, health.IsAuthError(err))

	_, err = client.SleepSamples(
		context.Background(),
		time.Now().Add(-24*time.Hour),
		time.Now(),
	)
	assert.True(t, health.IsAuthError(err))
}

func TestSleepSamplesSendsDateRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/samples/sleep", r.URL.Path)
			assert.Equal(t, start.Format(time.RFC3339), r.URL.Query().Get("start"))
			assert.Equal(t, end.Format(time.RFC3339), r.URL.Query().Get("end"))

			json.NewEncoder(w).Encode(map[string]interface{}{
				"samples": []health.Sample{
					{
						ID:        "s-1",
						StartTime: start.Add(time.Hour),
						EndTime:   start.Add(8 * time.Hour),
						Source:    "Sleep Cycle",
					},
					{
						ID:        "s-2",
						StartTime: start.Add(2 * time.Hour),
						EndTime:   start.Add(3 * time.Hour),
						Source:    "Apple Watch",
					},
				},
			})
		},
	))
	defer server.Close()

	client := health.NewClient(server.URL, "secret")
	samples, err := client.SleepSamples(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, "Sleep Cycle", samples[0].Source)
	assert.Equal(t, 7*60, samples[0].Minutes())
}

func TestWriteMindfulSessionPostsPayload(t *testing.T) {
	var received health.MindfulSession
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/v1/samples/mindful", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusNoContent)
		},
	))
	defer server.Close()

	session := health.MindfulSession{
		StartTime: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 3, 2, 7, 10, 0, 0, time.UTC),
		Source:    "lull",
	}

	client := health.NewClient(server.URL, "secret")
	require.NoError(t, client.WriteMindfulSession(context.Background(), session))
	assert.Equal(t, session.Source, received.Source)
	assert.True(t, session.EndTime.Equal(received.EndTime))
}

func TestRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"status":"ok"}`))
		},
	))
	defer server.Close()

	client := health.NewClient(server.URL, "secret")
	require.NoError(t, client.Probe(context.Background()))
	assert.Equal(t, 2, attempts)
}
