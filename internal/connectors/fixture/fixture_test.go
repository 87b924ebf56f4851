package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/sailboard/internal/connectors"
)

const samplePath = "testdata/dashboard.jsonc"

func TestReadFile_Document(t *testing.T) {
	doc, err := ReadFile(samplePath)
	require.NoError(t, err)

	require.NotNil(t, doc.Tenant)
	assert.Equal(t, "Acme Sandbox", doc.Tenant.FullName)
	require.Len(t, doc.Tenant.Products, 2)
	assert.Equal(t, "staging", doc.Tenant.Products[0].OrgType)

	require.Len(t, doc.Tasks, 4)
	assert.Equal(t, "ef38f94347e94562b5bb8424a56397d8", doc.Tasks[0].ID)
	assert.Nil(t, doc.Tasks[1].CompletionStatus)
	assert.Nil(t, doc.Tasks[2].Messages[0].LocalizedText)
	assert.EqualValues(t, 1200, doc.Tasks[0].Attributes["total"])
}

func TestParse_BareArray(t *testing.T) {
	doc, err := Parse([]byte(`
		// a raw API dump
		[{"id": "a"}, {"id": "b"},]
	`))
	require.NoError(t, err)
	assert.Nil(t, doc.Tenant)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, "b", doc.Tasks[1].ID)
}

func TestParse_EmptyDocument(t *testing.T) {
	doc, err := Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, doc.Tasks)
	assert.Empty(t, doc.Tasks)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"tasks": [}`))
	assert.Error(t, err)
}

func TestConnector(t *testing.T) {
	c := New(samplePath)
	ctx := context.Background()
	assert.Equal(t, "fixture", c.Name())

	tenant, err := c.GetTenant(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme-sb", tenant.Name)

	tasks, err := c.ListTaskStatus(ctx, connectors.DefaultListOptions())
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	tasks, err = c.ListTaskStatus(ctx, connectors.ListOptions{Limit: 2, Sorters: "-created"})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestConnector_NoTenant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	_, err := New(path).GetTenant(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tenant")
}

func TestConnector_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.jsonc")).ListTaskStatus(
		context.Background(), connectors.DefaultListOptions())
	assert.Error(t, err)
}

func TestConnector_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(samplePath).ListTaskStatus(ctx, connectors.DefaultListOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
