package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.Catalog = (*Client)(nil)

// Default configuration values.
const (
	DefaultAPIVersion             = "2024-10"
	DefaultTimeout                = 30 * time.Second
	DefaultInventoryLevelPageSize = 250
	DefaultLocationPageSize       = 250

	// variantLookupLimit bounds the variants returned for one SKU search.
	variantLookupLimit = 10

	headerAccessToken = "X-Shopify-Access-Token"
)

// Config holds configuration for the catalog client.
type Config struct {
	// APIVersion is the Admin API version (default: 2024-10).
	APIVersion string

	// BaseURL replaces "https://{shop}" when set. Used in tests.
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond is the proactive throttle per shop (default: 2).
	RequestsPerSecond float64

	// InventoryLevelPageSize bounds the levels fetched per variant.
	InventoryLevelPageSize int

	// LocationPageSize bounds the location directory.
	LocationPageSize int

	// Retry bounds retries of failed calls.
	Retry RetryPolicy

	// TokenSource returns the token source for a tenant.
	// Defaults to a static source over the tenant's access token.
	TokenSource func(tenant domain.Tenant) oauth2.TokenSource
}

// ConfigFromSettings builds a client configuration from app settings.
func ConfigFromSettings(s *domain.AppSettings) Config {
	return Config{
		APIVersion:             s.Catalog.APIVersion,
		Timeout:                s.Catalog.Timeout,
		RequestsPerSecond:      s.Catalog.RequestsPerSecond,
		InventoryLevelPageSize: s.Catalog.InventoryLevelPageSize,
		LocationPageSize:       s.Catalog.LocationPageSize,
		Retry: RetryPolicy{
			MaxAttempts:     s.Retry.MaxAttempts,
			InitialInterval: s.Retry.InitialInterval,
			MaxInterval:     s.Retry.MaxInterval,
		},
	}
}

// Client talks to the Admin GraphQL API of any number of shops.
type Client struct {
	http     *http.Client
	cfg      Config
	limiters *limiters
}

// NewClient creates a catalog client.
func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.InventoryLevelPageSize <= 0 {
		cfg.InventoryLevelPageSize = DefaultInventoryLevelPageSize
	}
	if cfg.LocationPageSize <= 0 {
		cfg.LocationPageSize = DefaultLocationPageSize
	}
	if cfg.TokenSource == nil {
		cfg.TokenSource = StaticTokenSource
	}
	cfg.Retry = cfg.Retry.withDefaults()

	return &Client{
		http:     &http.Client{Timeout: cfg.Timeout},
		cfg:      cfg,
		limiters: newLimiters(cfg.RequestsPerSecond),
	}
}

// StaticTokenSource returns the tenant's stored offline access token.
func StaticTokenSource(tenant domain.Tenant) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tenant.AccessToken})
}

// endpoint returns the GraphQL URL of the shop.
func (c *Client) endpoint(shop string) string {
	base := c.cfg.BaseURL
	if base == "" {
		base = "https://" + shop
	}
	return strings.TrimRight(base, "/") + "/admin/api/" + c.cfg.APIVersion + "/graphql.json"
}

// graphqlRequest is the POST body of a GraphQL call.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse is the envelope of every GraphQL response.
type graphqlResponse struct {
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors,omitempty"`
	Extensions struct {
		Cost *queryCost `json:"cost,omitempty"`
	} `json:"extensions"`
}

// execute runs a GraphQL operation with throttling and retries and
// decodes the data field into out.
func (c *Client) execute(
	ctx context.Context,
	tenant domain.Tenant,
	name string,
	query string,
	vars map[string]any,
	mutation bool,
	out any,
) error {
	return withRetry(ctx, c.cfg.Retry, name, mutation, func() error {
		return c.do(ctx, tenant, query, vars, out)
	})
}

// do sends one request.
func (c *Client) do(ctx context.Context, tenant domain.Tenant, query string, vars map[string]any, out any) error {
	limiter := c.limiters.get(tenant.Shop)
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := c.cfg.TokenSource(tenant).Token()
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	jsonBody, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(tenant.Shop), bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAccessToken, token.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &transientError{cause: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &transientError{cause: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &throttledError{cause: &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}}
	}
	if resp.StatusCode != http.StatusOK {
		herr := &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
		if herr.Transient() {
			return &transientError{cause: herr}
		}
		return herr
	}

	var gr graphqlResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	limiter.Update(gr.Extensions.Cost)

	if err := decodeErrors(gr.Errors); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return errors.New("shopify: response has no data")
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// decodeErrors converts the "errors" field into an error. Shopify sends
// either an array of error objects or a bare string.
func decodeErrors(raw json.RawMessage) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list GraphQLErrors
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil
		}
		if list.Throttled() {
			return &throttledError{cause: list}
		}
		return list
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return GraphQLErrors{{Message: msg}}
	}
	return fmt.Errorf("shopify: unrecognised errors field: %s", string(raw))
}
