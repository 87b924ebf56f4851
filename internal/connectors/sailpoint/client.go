// Package sailpoint implements connectors.Connector against the
// IdentityNow REST API using OAuth client credentials.
package sailpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/fentz26/sailboard/internal/auth"
	"github.com/fentz26/sailboard/internal/connectors"
	"github.com/fentz26/sailboard/internal/models"
)

// DefaultTimeout is the default timeout for API requests.
const DefaultTimeout = 10 * time.Second

const (
	tenantPath     = "/beta/tenant"
	taskStatusPath = "/beta/task-status"
)

// APIError is returned for any response with status >= 400.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}

// Config holds what the client needs to reach a tenant.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	// TokenURL defaults to BaseURL + "/oauth/token".
	TokenURL string
	// TokenCache is the token cache file. Empty keeps tokens in memory.
	TokenCache string
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Client talks to one IdentityNow tenant.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *auth.CachedTokenSource
	logger     *slog.Logger
}

var _ connectors.Connector = (*Client)(nil)

// New creates a client that authenticates with client credentials.
// ctx bounds token requests for the lifetime of the client.
func New(ctx context.Context, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = baseURL + "/oauth/token"
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	tokens := auth.NewCachedTokenSource(cfg.TokenCache, auth.Identity{ClientID: cfg.ClientID, TokenURL: tokenURL}, fetchTokenSource{ctx: tokenCtx, cfg: cc})

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: tokens,
			Base:   http.DefaultTransport,
		},
	}

	c := NewWithHTTPClient(baseURL, httpClient, cfg.Logger)
	c.tokens = tokens
	return c
}

// NewWithHTTPClient creates a client with a caller-supplied HTTP client
// that is expected to add authorization itself.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Name returns the connector identifier.
func (c *Client) Name() string {
	return "sailpoint"
}

// GetTenant fetches the tenant descriptor.
func (c *Client) GetTenant(ctx context.Context) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := c.getJSON(ctx, tenantPath, nil, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// ListTaskStatus fetches task statuses ordered by opts.Sorters.
func (c *Client) ListTaskStatus(ctx context.Context, opts connectors.ListOptions) ([]models.Task, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Sorters != "" {
		query.Set("sorters", opts.Sorters)
	}

	var tasks []models.Task
	if err := c.getJSON(ctx, taskStatusPath, query, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("sailpoint request",
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
			if err := c.tokens.Clear(); err != nil {
				c.logger.Warn("failed to clear token cache", "error", err)
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// fetchTokenSource requests a fresh token on every call; caching is left
// to auth.CachedTokenSource.
type fetchTokenSource struct {
	ctx context.Context
	cfg *clientcredentials.Config
}

func (s fetchTokenSource) Token() (*oauth2.Token, error) {
	return s.cfg.Token(s.ctx)
}
