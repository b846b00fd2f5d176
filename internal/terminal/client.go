// Package terminal is the Token Terminal API client. It wraps every query in
// a read-through durable cache and retries transient upstream failures with
// backoff; exhausted or hard failures degrade to "data unavailable" (nil)
// rather than propagating errors into the dashboard.
package terminal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/web3-frozen/protocol-dashboard/internal/metrics"
)

const (
	defaultBaseURL = "https://api.tokenterminal.com/trpc"
	siteOrigin     = "https://tokenterminal.com"

	requestTimeout = 30 * time.Second
	maxAttempts    = 3
)

type Client struct {
	httpClient  *http.Client
	baseURL     string
	bearerToken string
	jwtToken    string
	cache       CacheStore
	freshness   time.Duration
	logger      *slog.Logger

	// sleep is replaceable in tests so backoff does not hit the wall clock.
	sleep func(time.Duration)
}

func NewClient(bearerToken, jwtToken string, cache CacheStore, freshness time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: requestTimeout},
		baseURL:     defaultBaseURL,
		bearerToken: bearerToken,
		jwtToken:    jwtToken,
		cache:       cache,
		freshness:   freshness,
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// headers builds the per-attempt header set. The user-agent is randomized on
// every attempt; it is fingerprinting noise only and never part of cache keys.
func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("accept", "*/*")
	h.Set("accept-language", "en-US,en-GB;q=0.9,en;q=0.8")
	h.Set("authorization", "Bearer "+c.bearerToken)
	h.Set("content-type", "application/json")
	h.Set("origin", siteOrigin)
	h.Set("referer", siteOrigin+"/explorer")
	h.Set("user-agent", randomUserAgent())
	h.Set("x-tt-terminal-jwt", c.jwtToken)
	return h
}

// request performs one upstream call with the retry policy: up to three
// attempts; 429 backs off 2^attempt seconds, transport errors back off one
// second, any other non-200 fails hard with no retry. Returns nil when no
// data could be obtained.
func (c *Client) request(ctx context.Context, query, method, url string, body []byte) []byte {
	start := time.Now()
	defer func() {
		metrics.UpstreamFetchDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			c.logger.Error("build upstream request", "query", query, "error", err)
			metrics.UpstreamRequestsTotal.WithLabelValues(query, "bad_request").Inc()
			return nil
		}
		req.Header = c.headers()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn("upstream request failed", "query", query, "attempt", attempt+1, "error", err)
			metrics.UpstreamRetriesTotal.WithLabelValues(query, "transport").Inc()
			if attempt+1 < maxAttempts {
				c.sleep(time.Second)
			}
			continue
		}

		payload, status := drainResponse(resp)
		switch {
		case status == http.StatusOK:
			metrics.UpstreamRequestsTotal.WithLabelValues(query, "ok").Inc()
			return payload
		case status == http.StatusTooManyRequests:
			c.logger.Warn("upstream rate limited", "query", query, "attempt", attempt+1)
			metrics.UpstreamRetriesTotal.WithLabelValues(query, "rate_limited").Inc()
			if attempt+1 < maxAttempts {
				c.sleep(time.Duration(1<<attempt) * time.Second)
			}
		default:
			c.logger.Error("upstream error", "query", query, "status", status, "body", truncate(payload, 512))
			metrics.UpstreamRequestsTotal.WithLabelValues(query, "hard_failure").Inc()
			return nil
		}
	}

	c.logger.Warn("upstream retry budget exhausted", "query", query)
	metrics.UpstreamRequestsTotal.WithLabelValues(query, "exhausted").Inc()
	return nil
}

func drainResponse(resp *http.Response) ([]byte, int) {
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode
	}
	return payload, resp.StatusCode
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
