package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/dori/stint/internal/config"
	"github.com/dori/stint/internal/db"
	"github.com/dori/stint/internal/notify"
	"github.com/dori/stint/internal/tracker"
	"github.com/gofrs/flock"
)

var (
	// ErrStoreLocked is returned when another instance has the store open
	ErrStoreLocked = errors.New("store is in use by another instance")

	// ErrStoreMissing is returned when opening a store file that does not exist
	ErrStoreMissing = errors.New("store file does not exist")
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	DB       *db.DB // nil until a store is open
	Tracker  *tracker.Tracker
	Notifier *notify.Notifier
	Logger   *log.Logger

	lockFile *flock.Flock
	logFile  *os.File
}

// Options holds what New needs besides the settings file
type Options struct {
	Config *config.Config
	Logger *log.Logger // overrides Config.LogFile when set
}

// New creates a new application instance and opens the configured store,
// if any. A configured store that no longer exists is created.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}

	a := &App{
		Config:   opts.Config,
		Notifier: notify.NewNotifier(),
		Logger:   opts.Logger,
	}

	if a.Logger == nil {
		logger, err := a.openLog()
		if err != nil {
			return nil, err
		}
		a.Logger = logger
	}

	a.Tracker = tracker.New(tracker.WithLogger(a.Logger))

	if path := a.Config.StoreFile; path != "" {
		if err := a.OpenStore(context.Background(), path, !db.Exists(path)); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// openLog opens the configured log file, or discards logs
func (a *App) openLog() (*log.Logger, error) {
	if a.Config.LogFile == "" {
		return log.New(io.Discard, "", 0), nil
	}

	if err := os.MkdirAll(filepath.Dir(a.Config.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(a.Config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = f
	return log.New(f, "stint ", log.LstdFlags), nil
}

// OpenStore switches to the store at path. With create set, a missing file
// is created with the current schema; otherwise it must exist.
// The current tree is saved to the current store before switching, and the
// new path is written to the settings file.
func (a *App) OpenStore(ctx context.Context, path string, create bool) error {
	path = filepath.Clean(path)
	if !create && !db.Exists(path) {
		return fmt.Errorf("%s: %w", path, ErrStoreMissing)
	}

	if a.DB != nil && a.DB.Path() == path {
		return nil
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%s: %w", path, ErrStoreLocked)
	}

	database, err := db.Open(path)
	if err != nil {
		lock.Unlock()
		return fmt.Errorf("failed to open database: %w", err)
	}

	// The old store stays in use unless everything pending reached it
	if a.DB != nil {
		if err := a.Tracker.Save(ctx); err != nil {
			database.Close()
			lock.Unlock()
			return fmt.Errorf("save %s before switching: %w", a.DB.Path(), err)
		}
	}

	if err := a.closeStore(ctx); err != nil {
		a.Logger.Printf("closing previous store: %v", err)
	}

	a.DB = database
	a.lockFile = lock
	a.Tracker.Rebuild(ctx, database)
	a.Logger.Printf("opened store %s", path)

	if a.Config.StoreFile != path {
		if err := a.Config.SetStoreFile(path); err != nil {
			a.Logger.Printf("remember store: %v", err)
		}
	}

	return nil
}

// Save writes the tree to the open store
func (a *App) Save(ctx context.Context) error {
	return a.Tracker.Save(ctx)
}

// closeStore saves and releases the current store, if any
func (a *App) closeStore(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}

	var errs []error
	if err := a.Tracker.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.Tracker.Rebuild(ctx, nil)

	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	a.DB = nil

	a.releaseLock()
	return errors.Join(errs...)
}

// releaseLock releases the store lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
		a.lockFile = nil
	}
}

// Close saves the state and cleans up application resources
func (a *App) Close() error {
	ctx := context.Background()

	hadStore := a.DB != nil
	running := a.Tracker.Running()

	err := a.closeStore(ctx)
	switch {
	case err != nil && hadStore:
		a.Notifier.SendSaveFailed(err)
	case running > 0 && hadStore:
		a.Notifier.SendTimersRunning(running)
	}

	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}

	return err
}
