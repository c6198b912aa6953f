package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/source"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() config.ScrapeConfig {
	return config.ScrapeConfig{
		Timeout:        2 * time.Second,
		UserAgent:      "VC-Sentiment-Podcast-Bot/1.0",
		RequestsPerSec: 1000,
		Retry: config.RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		},
	}
}

func TestFetchSuccess(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, "<html><body>posts</body></html>")
	}))
	defer server.Close()

	f := New(testConfig(), testLogger())
	result := f.Fetch(context.Background(), source.Descriptor{Name: "a16z", URL: server.URL + "/blog/"})

	require.True(t, result.OK(), "unexpected failure: %v", result.Err)
	assert.Equal(t, domain.FetchSuccess, result.Status)
	assert.Equal(t, http.StatusOK, result.HTTPStatus)
	assert.Contains(t, result.Body, "posts")
	assert.Equal(t, "VC-Sentiment-Podcast-Bot/1.0", gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer server.Close()

	f := New(testConfig(), testLogger())
	result := f.FetchURL(context.Background(), "a16z", server.URL+"/blog/")

	assert.Equal(t, domain.FetchSuccess, result.Status)
	assert.Equal(t, "recovered", result.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := New(testConfig(), testLogger())
	result := f.FetchURL(context.Background(), "a16z", server.URL+"/gone/")

	assert.Equal(t, domain.FetchHTTPError, result.Status)
	assert.Equal(t, http.StatusNotFound, result.HTTPStatus)
	assert.Equal(t, int32(1), calls.Load(), "4xx other than 408/429 must not be retried")
}

func TestFetchRetriesTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	f := New(testConfig(), testLogger())
	result := f.FetchURL(context.Background(), "a16z", server.URL+"/blog/")

	assert.Equal(t, domain.FetchSuccess, result.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := New(testConfig(), testLogger())
	result := f.FetchURL(context.Background(), "a16z", server.URL+"/blog/")

	assert.Equal(t, domain.FetchHTTPError, result.Status)
	assert.Equal(t, http.StatusBadGateway, result.HTTPStatus)
	assert.Equal(t, int32(3), calls.Load())
	assert.Error(t, result.Err)
}

func TestFetchTimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.Retry.MaxAttempts = 1

	f := New(cfg, testLogger())
	result := f.FetchURL(context.Background(), "slow", server.URL+"/blog/")

	assert.Equal(t, domain.FetchTimeout, result.Status)
	assert.Error(t, result.Err)
}

func TestFetchConnectionRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Retry.MaxAttempts = 1

	f := New(cfg, testLogger())
	result := f.FetchURL(context.Background(), "down", "http://127.0.0.1:1/blog/")

	assert.Equal(t, domain.FetchNetworkError, result.Status)
	assert.Error(t, result.Err)
}

func TestFetchRobotsDisallowed(t *testing.T) {
	var pageCalls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		pageCalls.Add(1)
		fmt.Fprint(w, "secret")
	}))
	defer server.Close()

	f := New(testConfig(), testLogger())
	result := f.FetchURL(context.Background(), "walled", server.URL+"/private/posts")

	assert.Equal(t, domain.FetchSkipped, result.Status)
	assert.ErrorIs(t, result.Err, ErrRobotsDisallowed)
	assert.Equal(t, int32(0), pageCalls.Load(), "disallowed page must not be requested")
}

func TestFetchRobotsAllowsOtherPaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		fmt.Fprint(w, "public")
	}))
	defer server.Close()

	f := New(testConfig(), testLogger())
	result := f.FetchURL(context.Background(), "walled", server.URL+"/blog/")

	assert.Equal(t, domain.FetchSuccess, result.Status)
	assert.Equal(t, "public", result.Body)
}

func TestFetchCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Retry.InitialBackoff = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	f := New(cfg, testLogger())

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	result := f.FetchURL(ctx, "a16z", server.URL+"/blog/")

	assert.False(t, result.OK())
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestCalculateBackoffDoublesAndCaps(t *testing.T) {
	f := New(config.ScrapeConfig{
		RequestsPerSec: 1,
		Retry: config.RetryConfig{
			MaxAttempts:    5,
			InitialBackoff: time.Second,
			MaxBackoff:     5 * time.Second,
		},
	}, testLogger())

	assert.Equal(t, time.Second, f.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, f.calculateBackoff(2))
	assert.Equal(t, 4*time.Second, f.calculateBackoff(3))
	assert.Equal(t, 5*time.Second, f.calculateBackoff(4))
	assert.Equal(t, 5*time.Second, f.calculateBackoff(5))
}
