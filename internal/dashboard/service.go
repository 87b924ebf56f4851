// Package dashboard provides the daemon's HTTP API and the service layer
// that turns stored snapshots into derived task views.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/scheduler"
	"github.com/fentz26/sailboard/internal/store"
	"github.com/fentz26/sailboard/internal/taskview"
)

// ViewQuery is the client-controlled part of a task view request.
// A zero PageSize selects the service default.
type ViewQuery struct {
	Query    string
	Status   string
	Page     int
	PageSize int
}

// TaskPage is a derived listing tagged with the snapshot it came from.
type TaskPage struct {
	taskview.Listing
	SnapshotID string    `json:"snapshot_id"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Service provides the dashboard business logic.
type Service struct {
	store     *store.Store
	refresher *scheduler.Refresher
	pageSize  int
	now       func() time.Time
}

// NewService creates a new dashboard service. A non-positive pageSize
// selects taskview.DefaultPageSize.
func NewService(s *store.Store, r *scheduler.Refresher, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = taskview.DefaultPageSize
	}
	return &Service{
		store:     s,
		refresher: r,
		pageSize:  pageSize,
		now:       time.Now,
	}
}

// Tenant returns the latest tenant snapshot, fetching once if none exists.
func (s *Service) Tenant(ctx context.Context) (*models.TenantSnapshot, error) {
	snap, err := s.store.LatestTenantSnapshot(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		if _, err := s.Refresh(ctx); err != nil {
			return nil, err
		}
		snap, err = s.store.LatestTenantSnapshot(ctx)
	}
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, ErrNoSnapshot
	}
	return snap, err
}

// Tasks returns the latest task snapshot, fetching once if none exists.
func (s *Service) Tasks(ctx context.Context) (*models.TaskSnapshot, error) {
	snap, err := s.store.LatestTaskSnapshot(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return s.Refresh(ctx)
	}
	return snap, err
}

// Refresh fetches a new snapshot immediately.
func (s *Service) Refresh(ctx context.Context) (*models.TaskSnapshot, error) {
	if s.refresher == nil {
		return nil, ErrNoSnapshot
	}
	snap, err := s.refresher.RefreshNow(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return snap, nil
}

// View derives one page of task cards from the latest snapshot. The
// requested page is clamped into range.
func (s *Service) View(ctx context.Context, q ViewQuery) (*TaskPage, error) {
	snap, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}

	vm := taskview.NewViewModel(pageSize)
	vm.Load(snap.Tasks)
	vm.Apply(taskview.FilterState{Query: q.Query, Status: q.Status, Page: q.Page})

	return &TaskPage{
		Listing:    vm.Listing(s.now()),
		SnapshotID: snap.ID,
		FetchedAt:  snap.FetchedAt,
	}, nil
}

// Task returns the expanded view of one task in the latest snapshot.
func (s *Service) Task(ctx context.Context, id string) (*taskview.Detail, error) {
	snap, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	for _, task := range snap.Tasks {
		if task.ID == id {
			detail := taskview.NewDetail(task, s.now())
			return &detail, nil
		}
	}
	return nil, ErrNotFound
}

// History returns recent fetch records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]models.FetchRecord, error) {
	return s.store.ListFetchRecords(ctx, limit)
}

// Stats returns refresher statistics.
func (s *Service) Stats() scheduler.Stats {
	if s.refresher == nil {
		return scheduler.Stats{}
	}
	return s.refresher.Stats()
}
