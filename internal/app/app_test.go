package app

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/stint/internal/config"
	"github.com/dori/stint/internal/db"
	"github.com/dori/stint/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, dir, storeFile string) (*App, error) {
	t.Helper()

	cfg, err := config.Load(filepath.Join(dir, "stint.ini"))
	require.NoError(t, err)
	cfg.StoreFile = storeFile

	a, err := New(Options{Config: cfg, Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		return nil, err
	}
	a.Notifier.SetEnabled(false)
	return a, nil
}

func TestNewWithoutStore(t *testing.T) {
	a, err := newTestApp(t, t.TempDir(), "")
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.False(t, a.Tracker.HasStore())
	assert.NoError(t, a.Save(context.Background()))
}

func TestNewCreatesConfiguredStore(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "data", "work.db")

	a, err := newTestApp(t, dir, store)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.DB)
	assert.Equal(t, store, a.DB.Path())
	assert.True(t, a.Tracker.HasStore())
	assert.True(t, db.Exists(store))
}

func TestOpenMissingStore(t *testing.T) {
	dir := t.TempDir()
	a, err := newTestApp(t, dir, "")
	require.NoError(t, err)
	defer a.Close()

	err = a.OpenStore(context.Background(), filepath.Join(dir, "nope.db"), false)
	assert.ErrorIs(t, err, ErrStoreMissing)
	assert.Nil(t, a.DB)
}

func TestStoreLocked(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "work.db")

	first, err := newTestApp(t, dir, store)
	require.NoError(t, err)

	_, err = newTestApp(t, dir, store)
	assert.ErrorIs(t, err, ErrStoreLocked)

	require.NoError(t, first.Close())

	second, err := newTestApp(t, dir, store)
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestSwitchStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	storeA := filepath.Join(dir, "a.db")
	storeB := filepath.Join(dir, "b.db")

	a, err := newTestApp(t, dir, storeA)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Tracker.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = a.Tracker.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)

	require.NoError(t, a.OpenStore(ctx, storeB, true))
	assert.Equal(t, storeB, a.DB.Path())
	assert.Empty(t, a.Tracker.Projects())

	reloaded, err := config.Load(a.Config.Path())
	require.NoError(t, err)
	assert.Equal(t, storeB, reloaded.StoreFile)

	require.NoError(t, a.OpenStore(ctx, storeA, false))
	require.Len(t, a.Tracker.Projects(), 1)
	assert.NotNil(t, a.Tracker.Project("book").Task("draft"))
}

func TestCloseSavesRunningTimers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := filepath.Join(dir, "work.db")

	a, err := newTestApp(t, dir, store)
	require.NoError(t, err)

	_, err = a.Tracker.CreateProject(ctx, "book")
	require.NoError(t, err)
	task, err := a.Tracker.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	_, err = a.Tracker.Start("book", "draft")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, a.Close())
	assert.Nil(t, a.DB)

	database, err := db.Open(store)
	require.NoError(t, err)
	defer database.Close()

	total, err := database.SumTimeSlots(ctx, task.ID)
	require.NoError(t, err)
	assert.Greater(t, total, time.Duration(0))
}

func TestSwitchStoreKeepsUnsavedTimeOnSaveFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	storeA := filepath.Join(dir, "a.db")
	storeB := filepath.Join(dir, "b.db")

	a, err := newTestApp(t, dir, storeA)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Tracker.CreateProject(ctx, "book")
	require.NoError(t, err)
	task, err := a.Tracker.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	_, err = a.Tracker.Start("book", "draft")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = a.Tracker.Stop("book", "draft")
	require.NoError(t, err)
	require.Len(t, task.PendingSlots(), 1)

	_, err = a.DB.Exec(`DROP TABLE timestamps`)
	require.NoError(t, err)

	err = a.OpenStore(ctx, storeB, true)
	require.Error(t, err)

	assert.Equal(t, storeA, a.DB.Path())
	assert.NotNil(t, a.Tracker.Project("book"))
	assert.Len(t, task.PendingSlots(), 1)

	reloaded, err := config.Load(a.Config.Path())
	require.NoError(t, err)
	assert.Equal(t, storeA, reloaded.StoreFile)

	// The new store was released again
	other, err := newTestApp(t, t.TempDir(), storeB)
	require.NoError(t, err)
	assert.NoError(t, other.Close())
}

func TestCloseNotifiesFailedSave(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := newTestApp(t, dir, filepath.Join(dir, "work.db"))
	require.NoError(t, err)

	var titles []string
	a.Notifier = notify.NewCommandNotifier(func(name string, args ...string) error {
		titles = append(titles, args[len(args)-2])
		return nil
	})

	_, err = a.Tracker.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = a.Tracker.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	_, err = a.Tracker.Start("book", "draft")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = a.DB.Exec(`DROP TABLE timestamps`)
	require.NoError(t, err)

	assert.Error(t, a.Close())
	assert.Equal(t, []string{"Save failed"}, titles)
}

func TestCloseNotifiesRunningTimers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	a, err := newTestApp(t, dir, filepath.Join(dir, "work.db"))
	require.NoError(t, err)

	var titles []string
	a.Notifier = notify.NewCommandNotifier(func(name string, args ...string) error {
		titles = append(titles, args[len(args)-2])
		return nil
	})

	_, err = a.Tracker.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = a.Tracker.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	_, err = a.Tracker.Start("book", "draft")
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.Equal(t, []string{"Timers saved"}, titles)
}
