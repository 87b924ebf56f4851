// Package audit records every upstream fetch the daemon performs.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/store"
)

// Fetch actions.
const (
	ActionFetchTasks  = "tasks.fetch"
	ActionFetchTenant = "tenant.fetch"
)

// FetchRecorder appends fetch records to the store.
type FetchRecorder struct {
	store *store.Store
}

// NewFetchRecorder creates a new recorder.
func NewFetchRecorder(s *store.Store) *FetchRecorder {
	return &FetchRecorder{store: s}
}

// Record writes a fetch record. inputs are hashed, not stored, so two
// records with the same hash were made with the same request parameters.
func (r *FetchRecorder) Record(ctx context.Context, action string, inputs any, outcome, details string) (*models.FetchRecord, error) {
	return r.store.WriteFetchRecord(ctx, action, HashInputs(inputs), outcome, details)
}

// HashInputs returns the hex SHA-256 of the JSON encoding of inputs.
func HashInputs(inputs any) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
