// Package fixture implements connectors.Connector over a local JSONC file.
//
// The file holds either a full document:
//
//	{
//	  // optional tenant descriptor
//	  "tenant": {"name": "acme", ...},
//	  "tasks": [{"id": "...", ...}],
//	}
//
// or a bare array of task statuses as returned by the task-status
// endpoint. Comments and trailing commas are allowed.
package fixture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/fentz26/sailboard/internal/connectors"
	"github.com/fentz26/sailboard/internal/models"
)

// Document is the parsed fixture contents.
type Document struct {
	Tenant *models.Tenant `json:"tenant,omitempty"`
	Tasks  []models.Task  `json:"tasks"`
}

// Parse strips JSONC comments and trailing commas, then decodes either a
// Document or a bare task array.
func Parse(data []byte) (*Document, error) {
	stripped := bytes.TrimSpace(jsonc.ToJSON(data))

	var doc Document
	if bytes.HasPrefix(stripped, []byte("[")) {
		if err := json.Unmarshal(stripped, &doc.Tasks); err != nil {
			return nil, fmt.Errorf("parsing task list: %w", err)
		}
	} else if err := json.Unmarshal(stripped, &doc); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	if doc.Tasks == nil {
		doc.Tasks = []models.Task{}
	}
	return &doc, nil
}

// ReadFile reads and parses a fixture file.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Connector serves a fixture file. The file is re-read on every call so
// edits show up on refresh.
type Connector struct {
	path string
}

var _ connectors.Connector = (*Connector)(nil)

// New creates a connector for the fixture at path.
func New(path string) *Connector {
	return &Connector{path: path}
}

// Name returns the connector identifier.
func (c *Connector) Name() string {
	return "fixture"
}

// GetTenant returns the fixture's tenant, or an error if it has none.
func (c *Connector) GetTenant(ctx context.Context) (*models.Tenant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	if doc.Tenant == nil {
		return nil, fmt.Errorf("%s: no tenant in fixture", c.path)
	}
	return doc.Tenant, nil
}

// ListTaskStatus returns the first opts.Limit tasks in file order. The
// file is assumed to be sorted already; Sorters is only validated.
func (c *Connector) ListTaskStatus(ctx context.Context, opts connectors.ListOptions) ([]models.Task, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := ReadFile(c.path)
	if err != nil {
		return nil, err
	}

	tasks := doc.Tasks
	if len(tasks) > opts.Limit {
		tasks = tasks[:opts.Limit]
	}
	return tasks, nil
}
