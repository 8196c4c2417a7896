package cricketdata

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crickbase/fantasy-cricket/internal/platform/resilience"
	"github.com/crickbase/fantasy-cricket/internal/usecase"
)

func newTestClient(baseURL string, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "test-token",
		Timeout:        2 * time.Second,
		MaxRetries:     0,
		CircuitBreaker: breaker,
	})
}

func TestClient_Fixtures_ParsesPayload(t *testing.T) {
	var gotPath, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("api_token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"match_id":"m01","seq":1,"starts_at":"2026-03-01T14:00:00Z","completed":true},
			{"match_id":"m02","seq":2,"starts_at":"not-a-time"},
			{"match_id":"m03","seq":3,"starts_at":"2026-03-03T14:00:00Z"}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, resilience.CircuitBreakerConfig{})
	fixtures, err := client.Fixtures(t.Context(), "lg-1")
	require.NoError(t, err)

	require.Equal(t, "/leagues/lg-1/fixtures", gotPath)
	require.Equal(t, "test-token", gotToken)

	// The unparsable start time is dropped, not fatal.
	require.Len(t, fixtures, 2)
	require.Equal(t, usecase.ExternalFixture{
		MatchID:   "m01",
		Seq:       1,
		StartsAt:  time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC),
		Completed: true,
	}, fixtures[0])
	require.Equal(t, "m03", fixtures[1].MatchID)
}

func TestClient_MatchPerformances_ParsesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"player_id":"p03","runs":55,"balls":34,"fours":4,"sixes":1,"strike_rate":161.8},
			{"player_id":"p09","wickets":3,"overs":3.4,"maidens":1,"economy":5.5,"catches":1}
		]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, resilience.CircuitBreakerConfig{})
	lines, err := client.MatchPerformances(t.Context(), "m01")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	require.Equal(t, 55, lines[0].Runs)
	require.Equal(t, 161.8, lines[0].StrikeRate)
	require.Equal(t, 3.4, lines[1].Overs)
	require.Equal(t, 1, lines[1].Catches)
}

func TestClient_Fixtures_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"unknown league"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Token:      "test-token",
		Timeout:    2 * time.Second,
		MaxRetries: 3,
	})
	_, err := client.Fixtures(t.Context(), "lg-missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=404")
	require.EqualValues(t, 1, calls.Load(), "4xx responses must not be retried")
}

func TestClient_Fixtures_CircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "provider down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	_, err := client.Fixtures(t.Context(), "lg-1")
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())

	// The breaker tripped; the next call never reaches the provider.
	_, err = client.Fixtures(t.Context(), "lg-1")
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	require.EqualValues(t, 1, calls.Load())
}
