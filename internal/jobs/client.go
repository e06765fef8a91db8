package jobs

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 20 * time.Second
	userAgent      = "job-agent/1.0"
)

// PayloadCache stores raw source responses. Implementations must treat a miss
// as (nil, false, nil).
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
}

// Client is the HTTP client shared by all job sources.
type Client struct {
	http   *resty.Client
	cache  PayloadCache
	logger *zap.Logger
}

type ClientOption func(*Client)

func WithCache(cache PayloadCache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

func NewClient(logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		http: resty.New().
			SetTimeout(defaultTimeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/json"),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET request and returns the body. Successful responses are
// stored in the payload cache and served from it on later calls. Cache
// failures are logged and never fail the request.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, headers map[string]string) ([]byte, error) {
	key := endpoint
	if len(params) > 0 {
		key += "?" + params.Encode()
	}

	if c.cache != nil {
		payload, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.logger.Warn("reading payload cache failed", zap.String("key", key), zap.Error(err))
		case ok:
			c.logger.Debug("payload served from cache", zap.String("key", key))
			return payload, nil
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		SetHeaders(headers).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("request %s: unexpected status %d", endpoint, resp.StatusCode())
	}

	body := resp.Body()
	c.logger.Debug("got response from job source",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)),
	)

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body); err != nil {
			c.logger.Warn("writing payload cache failed", zap.String("key", key), zap.Error(err))
		}
	}

	return body, nil
}
