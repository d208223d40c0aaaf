// Package upstream provides the client for the population statistics API.
// The API key lives here and in the proxy configuration only; it is attached
// server-side and never relayed to a browser or terminal client.
package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pandanoir/popviz/internal/errors"
)

const (
	prefecturesPath = "/api/v1/prefectures"
	populationPath  = "/api/v1/population/composition/perYear"

	apiKeyHeader = "X-API-KEY"
)

// Response is a relayed upstream reply. Non-2xx statuses are not errors at
// this layer: the proxy forwards status and body verbatim, so callers get
// both untouched. Err is reserved for transport-level failures.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client provides access to the upstream population statistics API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// New creates an upstream client.
// Rate limited to 5 requests per second, the documented upstream quota.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:      logger,
	}
}

// SetHTTPClient overrides the HTTP client. Used by tests.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.httpClient = h
}

// Prefectures fetches the prefecture list resource.
func (c *Client) Prefectures(ctx context.Context) (*Response, error) {
	return c.get(ctx, prefecturesPath, nil)
}

// PopulationComposition fetches the per-year population composition for one
// prefecture.
func (c *Client) PopulationComposition(ctx context.Context, prefCode int) (*Response, error) {
	params := url.Values{}
	params.Set("prefCode", strconv.Itoa(prefCode))
	return c.get(ctx, populationPath, params)
}

// get performs a rate-limited GET with the API key attached.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CodeTransport, "rate limit wait")
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.logger.Debug("upstream request", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeTransport, "create request for %s", path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeTransport, "upstream request for %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeTransport, "read upstream body for %s", path)
	}

	c.logger.Debug("upstream response",
		"url", reqURL,
		"status", resp.StatusCode,
		"bytes", len(body),
	)

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json; charset=utf-8"
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// String implements fmt.Stringer without leaking the API key in logs.
func (c *Client) String() string {
	return fmt.Sprintf("upstream.Client(%s)", c.baseURL)
}
