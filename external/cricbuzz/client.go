// Package cricbuzz is the RapidAPI Cricbuzz client. It fetches raw provider
// documents; turning them into domain records is left to internal/ingest.
package cricbuzz

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/platform/resilience"
)

const (
	defaultBaseURL = "https://cricbuzz-cricket.p.rapidapi.com"
	defaultHost    = "cricbuzz-cricket.p.rapidapi.com"
	maxBodyBytes   = 6 << 20
)

var errTransient = crerr.New("cricbuzz transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Host           string
	APIKey         string
	Timeout        time.Duration
	Retry          resilience.RetryPolicy
	RatePerSecond  float64
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client implements ingestion.Provider. Every call is rate limited, retried
// on timeouts, 429 and 5xx responses, and guarded by a circuit breaker.
// Identical concurrent calls share one request. A 404 is reported as
// ingestion.ErrNotFound and does not count against the breaker.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
	retry      resilience.RetryPolicy
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
	now        func() time.Time
}

var _ ingestion.Provider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultHost
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		host:       host,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		retry:      resilience.NormalizeRetryPolicy(cfg.Retry),
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		now:        time.Now,
	}
}

func (c *Client) LiveMatches(ctx context.Context) (ingestion.Response, error) {
	return c.get(ctx, "/matches/v1/live", nil)
}

func (c *Client) RecentMatches(ctx context.Context) (ingestion.Response, error) {
	return c.get(ctx, "/matches/v1/recent", nil)
}

func (c *Client) MatchInfo(ctx context.Context, matchID string) (ingestion.Response, error) {
	return c.get(ctx, "/mcenter/v1/"+url.PathEscape(matchID), nil)
}

func (c *Client) Scorecard(ctx context.Context, matchID string) (ingestion.Response, error) {
	return c.get(ctx, "/mcenter/v1/"+url.PathEscape(matchID)+"/scard", nil)
}

func (c *Client) Commentary(ctx context.Context, matchID string) (ingestion.Response, error) {
	return c.get(ctx, "/mcenter/v1/"+url.PathEscape(matchID)+"/comm", nil)
}

func (c *Client) Player(ctx context.Context, playerID string) (ingestion.Response, error) {
	return c.get(ctx, "/stats/v1/player/"+url.PathEscape(playerID), nil)
}

func (c *Client) Rankings(ctx context.Context, category, format string) (ingestion.Response, error) {
	return c.get(ctx, "/stats/v1/rankings/"+url.PathEscape(category), url.Values{"formatType": {format}})
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (ingestion.Response, error) {
	endpoint := path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "cricbuzz circuit breaker rejected request", "endpoint", endpoint, "state", c.breaker.State())
		return ingestion.Response{}, fmt.Errorf("GET %s: %w: provider circuit is open", endpoint, ingestion.ErrUnavailable)
	}

	raw, err, _ := c.flight.Do(endpoint, func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, c.baseURL+endpoint)
		switch {
		case reqErr == nil:
			c.breaker.RecordSuccess()
		case stderrors.Is(reqErr, errTransient):
			c.breaker.RecordFailure()
		default:
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ingestion.Response{}, fmt.Errorf("GET %s: %w", endpoint, ctxErr)
		}
		if stderrors.Is(err, ingestion.ErrNotFound) {
			return ingestion.Response{}, fmt.Errorf("GET %s: %w", endpoint, err)
		}
		return ingestion.Response{}, fmt.Errorf("GET %s: %w: %w", endpoint, ingestion.ErrUnavailable, err)
	}

	body := map[string]any{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		if err := sonic.Unmarshal(raw, &body); err != nil {
			return ingestion.Response{}, fmt.Errorf("GET %s: %w", endpoint, ingestion.TypeMismatch("response", "expected a JSON object: "+err.Error()))
		}
	}

	return ingestion.Response{
		Endpoint:  endpoint,
		Body:      body,
		Raw:       raw,
		FetchedAt: c.now().UTC(),
	}, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	attempts := c.retry.Attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		raw, err := c.do(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !stderrors.Is(err, errTransient) || ctx.Err() != nil {
			break
		}
		if attempt == attempts-1 {
			break
		}
		c.logger.DebugContext(ctx, "retry cricbuzz request", "url", fullURL, "attempt", attempt+1, "error", err)
		if err := c.retry.Wait(ctx, attempt); err != nil {
			return nil, err
		}
	}

	c.logger.WarnContext(ctx, "cricbuzz request failed", "url", fullURL, "attempts", attempts, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %s", errTransient, c.redact(err.Error()))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errTransient, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: provider status=%d body=%s", ingestion.ErrNotFound, resp.StatusCode, abbreviateBody(raw))
	}
	if isRetryableStatus(resp.StatusCode) {
		return nil, fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
	}
	return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
}

func (c *Client) redact(value string) string {
	if c.apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, c.apiKey, "REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
