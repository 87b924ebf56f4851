package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fentz26/sailboard/internal/audit"
	"github.com/fentz26/sailboard/internal/connectors"
	"github.com/fentz26/sailboard/internal/models"
	"github.com/fentz26/sailboard/internal/store"
)

// Stats summarises refresher activity.
type Stats struct {
	Refreshes     int       `json:"refreshes"`
	Failures      int       `json:"failures"`
	LastRefresh   time.Time `json:"last_refresh"`
	LastError     string    `json:"last_error,omitempty"`
	LastTaskCount int       `json:"last_task_count"`
}

// Refresher polls a connector and stores what it returns.
type Refresher struct {
	store     *store.Store
	recorder  *audit.FetchRecorder
	connector connectors.Connector
	config    *Config
	logger    *slog.Logger

	// refreshMu serialises refreshes from the loop and RefreshNow.
	refreshMu sync.Mutex

	mu    sync.Mutex
	stats Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new refresher. A nil cfg selects DefaultConfig and a nil
// logger selects slog.Default.
func New(s *store.Store, rec *audit.FetchRecorder, conn connectors.Connector, cfg *Config, logger *slog.Logger) *Refresher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Refresher{
		store:     s,
		recorder:  rec,
		connector: conn,
		config:    cfg,
		logger:    logger.With("component", "refresher", "connector", conn.Name()),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start refreshes once immediately, then on every interval.
func (r *Refresher) Start() {
	r.wg.Add(1)
	go r.loop()
	r.logger.Info("refresher started", "interval", r.config.Interval)
}

// Stop cancels any in-flight refresh and waits for the loop to exit.
func (r *Refresher) Stop() {
	r.cancel()
	r.wg.Wait()
	r.logger.Info("refresher stopped")
}

func (r *Refresher) loop() {
	defer r.wg.Done()

	r.refreshLogged()

	interval := r.config.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.refreshLogged()
		}
	}
}

func (r *Refresher) refreshLogged() {
	if _, err := r.RefreshNow(r.ctx); err != nil && r.ctx.Err() == nil {
		r.logger.Warn("refresh failed", "error", err)
	}
}

// RefreshNow fetches the tenant and the task page concurrently, stores
// both, prunes old task snapshots, and records each fetch. A tenant
// failure is recorded and logged but only a task failure is returned.
func (r *Refresher) RefreshNow(ctx context.Context) (*models.TaskSnapshot, error) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	var (
		wg        sync.WaitGroup
		tenant    *models.Tenant
		tenantErr error
		tasks     []models.Task
		tasksErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		tenant, tenantErr = r.connector.GetTenant(ctx)
	}()
	go func() {
		defer wg.Done()
		tasks, tasksErr = r.connector.ListTaskStatus(ctx, r.config.List)
	}()
	wg.Wait()

	if tenantErr != nil {
		r.record(ctx, audit.ActionFetchTenant, nil, models.OutcomeError, tenantErr.Error())
		r.logger.Warn("tenant fetch failed", "error", tenantErr)
	} else if _, err := r.store.SaveTenantSnapshot(ctx, r.connector.Name(), *tenant); err != nil {
		r.logger.Warn("saving tenant snapshot failed", "error", err)
	} else {
		r.record(ctx, audit.ActionFetchTenant, nil, models.OutcomeSuccess, tenant.Name)
	}

	if tasksErr != nil {
		r.record(ctx, audit.ActionFetchTasks, r.config.List, models.OutcomeError, tasksErr.Error())
		r.fail(tasksErr)
		return nil, fmt.Errorf("fetching tasks: %w", tasksErr)
	}

	snap, err := r.store.SaveTaskSnapshot(ctx, r.connector.Name(), tasks)
	if err != nil {
		r.fail(err)
		return nil, err
	}
	r.record(ctx, audit.ActionFetchTasks, r.config.List, models.OutcomeSuccess, fmt.Sprintf("%d tasks", len(tasks)))

	if removed, err := r.store.PruneTaskSnapshots(ctx, r.config.keep()); err != nil {
		r.logger.Warn("pruning snapshots failed", "error", err)
	} else if removed > 0 {
		r.logger.Debug("pruned task snapshots", "removed", removed)
	}

	r.mu.Lock()
	r.stats.Refreshes++
	r.stats.LastRefresh = snap.FetchedAt
	r.stats.LastError = ""
	r.stats.LastTaskCount = len(tasks)
	r.mu.Unlock()

	r.logger.Debug("refreshed", "tasks", len(tasks), "snapshot", snap.ID)
	return snap, nil
}

func (r *Refresher) record(ctx context.Context, action string, inputs any, outcome, details string) {
	if r.recorder == nil {
		return
	}
	if _, err := r.recorder.Record(ctx, action, inputs, outcome, details); err != nil {
		r.logger.Warn("writing fetch record failed", "action", action, "error", err)
	}
}

func (r *Refresher) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Failures++
	r.stats.LastError = err.Error()
}

// Stats returns a copy of the current statistics.
func (r *Refresher) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
