// Package connectors defines how sailboard obtains tenant and task data.
package connectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/fentz26/sailboard/internal/models"
)

// DefaultLimit and DefaultSorters match the dashboard's initial fetch.
const (
	DefaultLimit   = 10
	DefaultSorters = "-created"
)

// sortableFields is the allowlist of task-status fields the API sorts on.
var sortableFields = map[string]bool{
	"created":   true,
	"modified":  true,
	"launched":  true,
	"completed": true,
	"id":        true,
	"type":      true,
}

// ListOptions selects the server-side page of task statuses.
type ListOptions struct {
	Limit   int    `json:"limit"`
	Sorters string `json:"sorters"`
}

// DefaultListOptions returns the options used when none are configured.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: DefaultLimit, Sorters: DefaultSorters}
}

// Validate checks the limit and that every sorter names an allowed field.
// Sorters is a comma-separated list; a leading "-" sorts descending.
func (o ListOptions) Validate() error {
	if o.Limit < 1 || o.Limit > 250 {
		return fmt.Errorf("limit must be between 1 and 250, got %d", o.Limit)
	}
	if o.Sorters == "" {
		return nil
	}
	for _, field := range strings.Split(o.Sorters, ",") {
		name := strings.TrimPrefix(strings.TrimSpace(field), "-")
		if !sortableFields[name] {
			return fmt.Errorf("sorter not allowed: %q", field)
		}
	}
	return nil
}

// Connector is a source of tenant and task-status data.
type Connector interface {
	// Name returns the connector identifier.
	Name() string

	// GetTenant returns the tenant descriptor.
	GetTenant(ctx context.Context) (*models.Tenant, error)

	// ListTaskStatus returns the most recent task statuses.
	ListTaskStatus(ctx context.Context, opts ListOptions) ([]models.Task, error)
}
