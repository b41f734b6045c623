package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"docflow/internal/config"
	"docflow/internal/logging"
	"docflow/internal/notifier"
	"docflow/internal/registry"
	"docflow/internal/stage"
	"docflow/internal/workflow"
)

// Daemon coordinates background processing and enforces single-instance
// execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *registry.Store
	workflow *workflow.Manager
	logPath  string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Workflow     workflow.StatusSummary
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *registry.Store, logger *slog.Logger, wf *workflow.Manager) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || wf == nil {
		return nil, errors.New("daemon requires config, store, logger, and workflow manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "docflowd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		workflow: wf,
		logPath:  filepath.Join(cfg.Paths.LogDir, "docflow.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start launches the workflow manager and acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another docflow daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.workflow.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start workflow: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("docflow daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.workflow.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("docflow daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Ingest registers a new document with the workflow.
func (d *Daemon) Ingest(ctx context.Context, name, locator string) (*registry.Document, error) {
	if d.workflow == nil {
		return nil, errors.New("workflow unavailable")
	}
	return d.workflow.Ingest(ctx, strings.TrimSpace(name), strings.TrimSpace(locator))
}

// Trigger runs one stage against a document immediately.
func (d *Daemon) Trigger(ctx context.Context, id string, kind stage.Kind) (*registry.Document, error) {
	if d.workflow == nil {
		return nil, errors.New("workflow unavailable")
	}
	return d.workflow.Trigger(ctx, id, kind)
}

// Subscribe attaches a consumer to the document event stream.
func (d *Daemon) Subscribe() *notifier.Subscription {
	return d.workflow.Hub().Subscribe()
}

// ListDocuments returns documents filtered by optional statuses.
func (d *Daemon) ListDocuments(ctx context.Context, statuses []registry.Status) ([]*registry.Document, error) {
	if d.store == nil {
		return nil, errors.New("document registry unavailable")
	}
	return d.store.List(ctx, statuses...)
}

// DescribeDocument fetches a single document.
func (d *Daemon) DescribeDocument(ctx context.Context, id string) (*registry.Document, error) {
	if d.store == nil {
		return nil, errors.New("document registry unavailable")
	}
	return d.store.GetByID(ctx, id)
}

// RemoveDocument deletes a document from the registry.
func (d *Daemon) RemoveDocument(ctx context.Context, id string) (bool, error) {
	if d.store == nil {
		return false, errors.New("document registry unavailable")
	}
	return d.store.Remove(ctx, id)
}

// ClearDocuments removes all documents.
func (d *Daemon) ClearDocuments(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("document registry unavailable")
	}
	return d.store.Clear(ctx)
}

// ClearRouted removes only routed documents.
func (d *Daemon) ClearRouted(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("document registry unavailable")
	}
	return d.store.ClearRouted(ctx)
}

// RegistryHealth returns aggregate registry diagnostics.
func (d *Daemon) RegistryHealth(ctx context.Context) (registry.HealthSummary, error) {
	if d.store == nil {
		return registry.HealthSummary{}, errors.New("document registry unavailable")
	}
	return d.store.Health(ctx)
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	push := notifier.NewPush(d.cfg)
	if err := push.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		Workflow:     d.workflow.Status(ctx),
		LockFilePath: d.lockPath,
	}
}
