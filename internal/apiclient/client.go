// Package apiclient is the client side of the fetch pipeline: it resolves
// population resources through the proxy, deduplicating requests with the
// resource cache and validating payloads before they reach the view model.
// It talks to the proxy only; the upstream credential never appears here.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pandanoir/popviz/internal/cache"
	"github.com/pandanoir/popviz/internal/errors"
	"github.com/pandanoir/popviz/internal/schema"
)

const (
	prefecturesKey       = "/api/v1/prefectures"
	populationKeyFormat  = "/api/v1/population/composition/perYear?prefCode=%d"
	defaultClientTimeout = 30 * time.Second
)

// Client fetches validated population resources through the proxy.
type Client struct {
	cache  *cache.ResourceCache
	logger *slog.Logger
}

// New creates a client targeting the proxy at proxyURL. Each Client owns an
// isolated resource cache, so constructing a fresh Client is also how a
// caller discards poisoned entries.
func New(proxyURL string, logger *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: defaultClientTimeout}

	fetch := func(ctx context.Context, key string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyURL+key, nil)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeTransport, "create request for %s", key)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeTransport, "fetch %s", key)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeTransport, "read body for %s", key)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.Transportf("fetch %s: status %d: %s", key, resp.StatusCode, body)
		}
		return body, nil
	}

	return &Client{
		cache:  cache.New(fetch, logger),
		logger: logger,
	}
}

// Prefectures returns the prefecture list. Fetched at most once per client
// lifetime; a failure here is expected to surface as a top-level error state.
func (c *Client) Prefectures(ctx context.Context) ([]schema.Prefecture, error) {
	body, err := c.cache.Get(ctx, prefecturesKey)
	if err != nil {
		return nil, err
	}
	return schema.ParsePrefectureList(body)
}

// PopulationSeries returns the validated composition series for one
// prefecture. Implements viewmodel.Fetcher.
func (c *Client) PopulationSeries(ctx context.Context, prefCode int) (*schema.PopulationSeries, error) {
	key := fmt.Sprintf(populationKeyFormat, prefCode)
	body, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return schema.ParsePopulation(body)
}

// CachedResources reports how many resource keys have settled.
func (c *Client) CachedResources() int {
	return c.cache.Len()
}
