// Package upstream fetches raw marketplace records from the remote data
// source and hands them to the catalog normalizer. It owns the transport
// error taxonomy and the response cache; it never fails on a malformed
// payload shape.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hexrift/nft-catalog/internal/cache"
	"github.com/hexrift/nft-catalog/internal/catalog"
	"github.com/hexrift/nft-catalog/internal/metrics"
	"github.com/hexrift/nft-catalog/pkg/logger"
)

// DefaultBaseURL is the marketplace data source queried when no override is
// configured.
const DefaultBaseURL = "https://us-central1-nft-cloud-functions.cloudfunctions.net"

// TopSellerLimit caps the ranked seller list.
const TopSellerLimit = 12

const maxBodyBytes = 4 << 20

// Client queries the upstream GET endpoints. All requests carry the caller's
// context; cancellation passes through untouched so the fetch controller can
// discard superseded results.
type Client struct {
	base    string
	httpc   *http.Client
	cache   cache.Cacher
	ttl     time.Duration
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewClient builds a client over the given base URL. The cacher may be
// cache.Noop{}; cache failures degrade to a direct fetch, never to an error.
func NewClient(baseURL string, c cache.Cacher, ttl time.Duration, log *logger.Logger, m *metrics.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		base:    baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		cache:   c,
		ttl:     ttl,
		log:     log,
		metrics: m,
	}
}

// NewItems returns the newly-listed assets, normalized.
func (c *Client) NewItems(ctx context.Context) ([]catalog.Listing, error) {
	body, err := c.get(ctx, EndpointNewItems, "newItems", nil)
	if err != nil {
		return nil, err
	}
	return catalog.NormalizeListings(catalog.UnwrapCollection(body)), nil
}

// Explore returns the general catalog listing, normalized.
func (c *Client) Explore(ctx context.Context) ([]catalog.Listing, error) {
	body, err := c.get(ctx, EndpointExplore, "explore", nil)
	if err != nil {
		return nil, err
	}
	return catalog.NormalizeListings(catalog.UnwrapCollection(body)), nil
}

// HotCollections returns the featured collection summaries, normalized.
func (c *Client) HotCollections(ctx context.Context) ([]catalog.Collection, error) {
	body, err := c.get(ctx, EndpointHotCollections, "hotCollections", nil)
	if err != nil {
		return nil, err
	}
	return catalog.NormalizeCollections(catalog.UnwrapCollection(body)), nil
}

// TopSellers returns the ranked seller profiles, normalized and capped at
// TopSellerLimit.
func (c *Client) TopSellers(ctx context.Context) ([]catalog.Profile, error) {
	body, err := c.get(ctx, EndpointTopSellers, "topSellers", nil)
	if err != nil {
		return nil, err
	}
	profiles := catalog.NormalizeProfiles(catalog.UnwrapRanked(body))
	if len(profiles) > TopSellerLimit {
		profiles = profiles[:TopSellerLimit]
	}
	return profiles, nil
}

// Author returns one seller profile by id.
func (c *Client) Author(ctx context.Context, authorID string) (catalog.Profile, error) {
	body, err := c.getAuthor(ctx, authorID)
	if err != nil {
		return catalog.Profile{}, err
	}
	return catalog.NormalizeProfile(catalog.UnwrapEntity(body)), nil
}

// AuthorItems returns the asset collection embedded in a seller profile.
func (c *Client) AuthorItems(ctx context.Context, authorID string) ([]catalog.Listing, error) {
	body, err := c.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return catalog.NormalizeListings(catalog.ExtractItems(catalog.UnwrapEntity(body))), nil
}

func (c *Client) getAuthor(ctx context.Context, authorID string) (any, error) {
	q := url.Values{}
	q.Set("author", authorID)
	return c.get(ctx, EndpointAuthors, "authors", q)
}

// ItemDetails returns one asset by id. The query-param form is tried first;
// on failure the path-param form is attempted before surfacing the error.
// Cancellation is never retried.
func (c *Client) ItemDetails(ctx context.Context, nftID string) (catalog.ItemDetail, error) {
	q := url.Values{}
	q.Set("nftId", nftID)
	body, err := c.get(ctx, EndpointItemDetails, "itemDetails", q)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return catalog.ItemDetail{}, err
		}
		body, err = c.get(ctx, EndpointItemDetails, "itemDetails/"+url.PathEscape(nftID), nil)
		if err != nil {
			return catalog.ItemDetail{}, err
		}
	}
	entity := catalog.UnwrapEntity(body)
	if entity == nil {
		return catalog.ItemDetail{}, newError(EndpointItemDetails, http.StatusNotFound, "")
	}
	return catalog.NormalizeItemDetail(entity), nil
}

// get performs one cached GET and decodes the body. A body that is not valid
// JSON degrades to a nil payload rather than an error; the unwrappers treat
// that as an empty result.
func (c *Client) get(ctx context.Context, ep Endpoint, path string, query url.Values) (any, error) {
	target := c.base + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	cacheKey := "upstream:" + target
	if cached, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok {
		c.metrics.CacheHits.Inc()
		return decodeBody([]byte(cached)), nil
	} else if err != nil && ctx.Err() == nil {
		c.log.Warnw("cache read failed, fetching direct", "endpoint", ep, "error", err)
	}
	c.metrics.CacheMisses.Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, newError(ep, 0, err.Error())
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	c.metrics.UpstreamLatency.WithLabelValues(string(ep)).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled requests pass the context error through so the
			// lifecycle controller can discard the outcome silently.
			c.metrics.UpstreamRequests.WithLabelValues(string(ep), "cancelled").Inc()
			return nil, ctx.Err()
		}
		c.metrics.UpstreamRequests.WithLabelValues(string(ep), "error").Inc()
		return nil, newError(ep, 0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			c.metrics.UpstreamRequests.WithLabelValues(string(ep), "cancelled").Inc()
			return nil, ctx.Err()
		}
		c.metrics.UpstreamRequests.WithLabelValues(string(ep), "error").Inc()
		return nil, newError(ep, resp.StatusCode, err.Error())
	}

	if resp.StatusCode >= 400 {
		c.metrics.UpstreamRequests.WithLabelValues(string(ep), "error").Inc()
		c.log.Warnw("upstream returned error status", "endpoint", ep, "status", resp.StatusCode)
		// Message chain: structured payload message, then the status text,
		// then the endpoint's fixed fallback.
		msg := extractMessage(raw)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, newError(ep, resp.StatusCode, msg)
	}

	c.metrics.UpstreamRequests.WithLabelValues(string(ep), "success").Inc()
	if err := c.cache.Set(ctx, cacheKey, string(raw), c.ttl); err != nil && ctx.Err() == nil {
		c.log.Warnw("cache write failed", "endpoint", ep, "error", err)
	}
	return decodeBody(raw), nil
}

func decodeBody(raw []byte) any {
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body
}

// extractMessage pulls a structured message out of a failure payload:
// a top-level "message" key, then "error", possibly nested one level under
// "data". Anything else yields "" and the caller falls back.
func extractMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	if data, ok := body["data"].(map[string]any); ok {
		for _, key := range []string{"message", "error"} {
			if s, ok := data[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
