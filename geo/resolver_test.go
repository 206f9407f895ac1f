package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolver_FallbackSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/203.0.113.5", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","lat":51.51,"lon":-0.13,"city":"London","regionName":"England","country":"United Kingdom"}`))
	}))
	defer srv.Close()

	r := NewResolver("", srv.URL, time.Second, zap.NewNop())
	res := r.Resolve(context.Background(), "203.0.113.5")

	require.True(t, res.Resolved)
	assert.Equal(t, 51.51, res.Location.Latitude)
	assert.Equal(t, -0.13, res.Location.Longitude)
	assert.Equal(t, "London", res.Location.City)
	assert.Equal(t, "England", res.Location.Region)
	assert.Equal(t, "United Kingdom", res.Location.Country)
}

func TestResolver_FallbackFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	r := NewResolver("", srv.URL, time.Second, zap.NewNop())
	assert.False(t, r.Resolve(context.Background(), "192.168.0.1").Resolved)
}

func TestResolver_FallbackMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	r := NewResolver("", srv.URL, time.Second, zap.NewNop())
	assert.False(t, r.Resolve(context.Background(), "203.0.113.5").Resolved)
}

func TestResolver_FallbackNonSuccessStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewResolver("", srv.URL, time.Second, zap.NewNop())
	assert.False(t, r.Resolve(context.Background(), "203.0.113.5").Resolved)
}

func TestResolver_FullDegradationWithinBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // both the offline db and the fallback service are gone

	timeout := 200 * time.Millisecond
	r := NewResolver("/nonexistent/GeoLite2-City.mmdb", srv.URL, timeout, zap.NewNop())

	start := time.Now()
	res := r.Resolve(context.Background(), "203.0.113.5")
	elapsed := time.Since(start)

	assert.False(t, res.Resolved)
	assert.Less(t, elapsed, timeout+time.Second, "must return within the timeout budget")
}

func TestResolver_SlowServiceBoundedByTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	r := NewResolver("", srv.URL, 100*time.Millisecond, zap.NewNop())

	start := time.Now()
	res := r.Resolve(context.Background(), "203.0.113.5")

	assert.False(t, res.Resolved)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolver_MissingLocalDBFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","lat":1,"lon":2,"city":"","regionName":"","country":"Somewhere"}`))
	}))
	defer srv.Close()

	r := NewResolver("/does/not/exist.mmdb", srv.URL, time.Second, zap.NewNop())
	res := r.Resolve(context.Background(), "203.0.113.5")

	require.True(t, res.Resolved)
	assert.Equal(t, "Somewhere", res.Location.Country)
	assert.Empty(t, res.Location.City)
}
