// Package fetch performs rate-limited, retrying HTTP retrieval of source
// pages with robots.txt compliance.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/zaneinthebay/vc-sentiment-podcast/internal/config"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/domain"
	"github.com/zaneinthebay/vc-sentiment-podcast/internal/source"
)

// ErrRobotsDisallowed marks a source skipped because robots.txt forbids the
// path for our user agent.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// maxBodyBytes caps how much of a response body is read. Blog index pages
// are far below this; the cap guards against pathological responses.
const maxBodyBytes = 4 << 20

// Fetcher retrieves source pages. Safe for concurrent use; the rate limiter
// is shared across all outbound requests.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	retry     config.RetryConfig
	limiter   *rate.Limiter
	robots    *robotsCache
	logger    *slog.Logger
}

// New creates a Fetcher from scrape configuration.
func New(cfg config.ScrapeConfig, logger *slog.Logger) *Fetcher {
	client := &http.Client{}
	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		retry:     cfg.Retry,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		robots:    newRobotsCache(client, cfg.UserAgent),
		logger:    logger.With("component", "fetcher"),
	}
}

// Fetch retrieves the primary URL of a source. Failures never escape as
// errors: every outcome is folded into the FetchResult so the pipeline can
// tolerate losing any subset of sources.
func (f *Fetcher) Fetch(ctx context.Context, src source.Descriptor) domain.FetchResult {
	return f.FetchURL(ctx, src.Name, src.URL)
}

// FetchURL retrieves an arbitrary URL on behalf of a source. Used for the
// primary page and again for the syndication fallback.
func (f *Fetcher) FetchURL(ctx context.Context, sourceName, url string) domain.FetchResult {
	allowed, err := f.robots.Allowed(ctx, url)
	if err != nil {
		f.logger.Debug("robots.txt unavailable, proceeding", "source", sourceName, "error", err)
	}
	if !allowed {
		f.logger.Info("source skipped", "source", sourceName, "url", url, "reason", "robots.txt")
		return domain.FetchResult{
			SourceName: sourceName,
			Status:     domain.FetchSkipped,
			Err:        fmt.Errorf("%s: %w", url, ErrRobotsDisallowed),
		}
	}

	var last domain.FetchResult
	for attempt := 1; attempt <= f.retry.MaxAttempts; attempt++ {
		last = f.doRequest(ctx, sourceName, url)
		if last.OK() || !retryable(last) {
			return last
		}
		if attempt == f.retry.MaxAttempts {
			break
		}

		backoff := f.calculateBackoff(attempt)
		f.logger.Warn("fetch failed, retrying",
			"source", sourceName,
			"attempt", attempt,
			"status", last.Status,
			"http_status", last.HTTPStatus,
			"backoff", backoff,
			"error", last.Err,
		)

		select {
		case <-ctx.Done():
			last.Err = ctx.Err()
			return last
		case <-time.After(backoff):
		}
	}

	f.logger.Warn("fetch exhausted retries",
		"source", sourceName,
		"attempts", f.retry.MaxAttempts,
		"status", last.Status,
		"error", last.Err,
	)
	return last
}

func (f *Fetcher) doRequest(ctx context.Context, sourceName, url string) domain.FetchResult {
	result := domain.FetchResult{SourceName: sourceName}

	if err := f.limiter.Wait(ctx); err != nil {
		result.Status = domain.FetchNetworkError
		result.Err = err
		return result
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		result.Status = domain.FetchNetworkError
		result.Err = fmt.Errorf("create request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		result.Status = classifyTransportError(err)
		result.Err = fmt.Errorf("execute request: %w", err)
		return result
	}
	defer resp.Body.Close()

	result.HTTPStatus = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		result.Status = domain.FetchHTTPError
		result.Err = fmt.Errorf("unexpected status: %d", resp.StatusCode)
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		result.Status = domain.FetchNetworkError
		result.Err = fmt.Errorf("read body: %w", err)
		return result
	}

	result.Status = domain.FetchSuccess
	result.Body = string(body)
	return result
}

func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	backoff := f.retry.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > f.retry.MaxBackoff {
		backoff = f.retry.MaxBackoff
	}
	return backoff
}

func classifyTransportError(err error) domain.FetchStatus {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FetchTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FetchTimeout
	}
	return domain.FetchNetworkError
}

// retryable reports whether a failed result is worth another attempt:
// timeouts, connection failures, 5xx, and 429. Other 4xx responses are
// permanent for the duration of a run.
func retryable(r domain.FetchResult) bool {
	switch r.Status {
	case domain.FetchTimeout, domain.FetchNetworkError:
		return true
	case domain.FetchHTTPError:
		return r.HTTPStatus >= 500 ||
			r.HTTPStatus == http.StatusTooManyRequests ||
			r.HTTPStatus == http.StatusRequestTimeout
	default:
		return false
	}
}
