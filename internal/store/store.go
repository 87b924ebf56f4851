// Package store provides SQLite-backed snapshot persistence for the
// sailboard daemon.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fentz26/sailboard/internal/models"
)

// ErrNoSnapshot is returned when nothing has been fetched yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store provides access to the sailboard SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// The refresher and HTTP handlers share one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_snapshots (
		id TEXT PRIMARY KEY,
		connector TEXT NOT NULL,
		task_count INTEGER NOT NULL,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tenant_snapshots (
		id TEXT PRIMARY KEY,
		connector TEXT NOT NULL,
		payload TEXT NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS fetch_log (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fetch_log_timestamp ON fetch_log(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Task snapshots ---

// SaveTaskSnapshot stores one fetched page of tasks.
func (s *Store) SaveTaskSnapshot(ctx context.Context, connector string, tasks []models.Task) (*models.TaskSnapshot, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	payload, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}

	snap := &models.TaskSnapshot{
		ID:        uuid.New().String(),
		Connector: connector,
		FetchedAt: time.Now().UTC(),
		Tasks:     tasks,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO task_snapshots (id, connector, task_count, payload, fetched_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.Connector, len(tasks), string(payload), snap.FetchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task snapshot: %w", err)
	}
	return snap, nil
}

// LatestTaskSnapshot returns the most recently saved task snapshot.
func (s *Store) LatestTaskSnapshot(ctx context.Context) (*models.TaskSnapshot, error) {
	var snap models.TaskSnapshot
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, connector, payload, fetched_at FROM task_snapshots ORDER BY rowid DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.Connector, &payload, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query task snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &snap.Tasks); err != nil {
		return nil, fmt.Errorf("decode task snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}

// CountTaskSnapshots returns how many task snapshots are stored.
func (s *Store) CountTaskSnapshots(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count task snapshots: %w", err)
	}
	return n, nil
}

// PruneTaskSnapshots deletes all but the newest keep snapshots and
// returns the number removed.
func (s *Store) PruneTaskSnapshots(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1, got %d", keep)
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM task_snapshots WHERE id NOT IN (
			SELECT id FROM task_snapshots ORDER BY rowid DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune task snapshots: %w", err)
	}
	return result.RowsAffected()
}

// --- Tenant snapshots ---

// SaveTenantSnapshot stores a fetched tenant descriptor.
func (s *Store) SaveTenantSnapshot(ctx context.Context, connector string, tenant models.Tenant) (*models.TenantSnapshot, error) {
	payload, err := json.Marshal(tenant)
	if err != nil {
		return nil, fmt.Errorf("encode tenant: %w", err)
	}

	snap := &models.TenantSnapshot{
		ID:        uuid.New().String(),
		Connector: connector,
		FetchedAt: time.Now().UTC(),
		Tenant:    tenant,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tenant_snapshots (id, connector, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Connector, string(payload), snap.FetchedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tenant snapshot: %w", err)
	}

	// Only the latest tenant descriptor is ever read.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tenant_snapshots WHERE id != ?`, snap.ID); err != nil {
		return nil, fmt.Errorf("prune tenant snapshots: %w", err)
	}
	return snap, nil
}

// LatestTenantSnapshot returns the most recently saved tenant descriptor.
func (s *Store) LatestTenantSnapshot(ctx context.Context) (*models.TenantSnapshot, error) {
	var snap models.TenantSnapshot
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, connector, payload, fetched_at FROM tenant_snapshots ORDER BY rowid DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.Connector, &payload, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query tenant snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &snap.Tenant); err != nil {
		return nil, fmt.Errorf("decode tenant snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}

// --- Fetch log ---

// WriteFetchRecord appends an entry to the fetch log.
func (s *Store) WriteFetchRecord(ctx context.Context, action, inputsHash, outcome, details string) (*models.FetchRecord, error) {
	rec := &models.FetchRecord{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: inputsHash,
		Outcome:    outcome,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetch_log (id, action, inputs_hash, outcome, details, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Action, rec.InputsHash, rec.Outcome, rec.Details, rec.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert fetch record: %w", err)
	}
	return rec, nil
}

// ListFetchRecords returns up to limit fetch records, newest first.
func (s *Store) ListFetchRecords(ctx context.Context, limit int) ([]models.FetchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, inputs_hash, outcome, details, timestamp FROM fetch_log ORDER BY rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query fetch log: %w", err)
	}
	defer rows.Close()

	records := []models.FetchRecord{}
	for rows.Next() {
		var rec models.FetchRecord
		var details sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.InputsHash, &rec.Outcome, &details, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan fetch record: %w", err)
		}
		rec.Details = details.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
