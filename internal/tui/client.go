package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fentz26/sailboard/internal/connectors"
	"github.com/fentz26/sailboard/internal/models"
)

// DefaultClientTimeout is the default timeout for daemon API requests.
const DefaultClientTimeout = 10 * time.Second

// Source supplies the raw tenant and task collection. All derived values
// are computed locally by the view-model.
type Source interface {
	Tenant(ctx context.Context) (*models.Tenant, error)
	// Tasks returns the current task collection. With refresh set the
	// source fetches fresh data instead of serving a cached copy.
	Tasks(ctx context.Context, refresh bool) ([]models.Task, error)
}

// ConnectorSource reads straight from a connector.
type ConnectorSource struct {
	conn connectors.Connector
	opts connectors.ListOptions
}

// NewConnectorSource creates a source over conn that lists tasks with opts.
func NewConnectorSource(conn connectors.Connector, opts connectors.ListOptions) *ConnectorSource {
	return &ConnectorSource{conn: conn, opts: opts}
}

func (s *ConnectorSource) Tenant(ctx context.Context) (*models.Tenant, error) {
	return s.conn.GetTenant(ctx)
}

// Tasks always fetches; a connector has no cache to bypass.
func (s *ConnectorSource) Tasks(ctx context.Context, _ bool) ([]models.Task, error) {
	return s.conn.ListTaskStatus(ctx, s.opts)
}

// Client reads snapshots from a running sailboard daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a daemon API client with DefaultClientTimeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// Tenant fetches the daemon's latest tenant snapshot.
func (c *Client) Tenant(ctx context.Context) (*models.Tenant, error) {
	var snap models.TenantSnapshot
	if err := c.do(ctx, http.MethodGet, "/tenant", &snap); err != nil {
		return nil, err
	}
	return &snap.Tenant, nil
}

// Tasks fetches the daemon's latest task snapshot, asking the daemon to
// refresh first when refresh is set.
func (c *Client) Tasks(ctx context.Context, refresh bool) ([]models.Task, error) {
	if refresh {
		if err := c.do(ctx, http.MethodPost, "/tasks/refresh", nil); err != nil {
			return nil, err
		}
	}

	var snap models.TaskSnapshot
	if err := c.do(ctx, http.MethodGet, "/snapshot", &snap); err != nil {
		return nil, err
	}
	if snap.Tasks == nil {
		return []models.Task{}, nil
	}
	return snap.Tasks, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
