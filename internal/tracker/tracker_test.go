package tracker

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/dori/stint/internal/db"
	"github.com/dori/stint/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a manually advanced wall clock
type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func openStore(t *testing.T) *db.DB {
	t.Helper()

	store, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTracker(t *testing.T, c *clock, store Store) *Tracker {
	t.Helper()

	tr := New(WithClock(c.Now))
	tr.Rebuild(context.Background(), store)
	return tr
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := openStore(t)
	tr := newTracker(t, c, store)

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "book", "edit")
	require.NoError(t, err)

	_, err = tr.Start("book", "draft")
	require.NoError(t, err)
	c.Advance(90 * time.Second)
	_, err = tr.Stop("book", "draft")
	require.NoError(t, err)

	require.NoError(t, tr.Save(ctx))

	loaded := newTracker(t, c, store)
	require.Len(t, loaded.Projects(), 1)

	draft, err := loaded.Task("book", "draft")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, draft.Count)
	assert.Equal(t, int64(90), draft.DisplaySeconds())
	assert.False(t, draft.IsRunning())

	edit, err := loaded.Task("book", "edit")
	require.NoError(t, err)
	assert.Zero(t, edit.Count)
}

func TestNoLossAtSaveBoundaries(t *testing.T) {
	for _, saves := range []int{0, 1, 5} {
		ctx := context.Background()
		c := newClock()
		store := openStore(t)
		tr := newTracker(t, c, store)

		_, err := tr.CreateProject(ctx, "book")
		require.NoError(t, err)
		_, err = tr.CreateTask(ctx, "book", "draft")
		require.NoError(t, err)

		_, err = tr.Start("book", "draft")
		require.NoError(t, err)
		for i := 0; i < saves; i++ {
			c.Advance(1250 * time.Millisecond)
			require.NoError(t, tr.Save(ctx))
		}
		c.Advance(10 * time.Second)
		_, err = tr.Stop("book", "draft")
		require.NoError(t, err)
		require.NoError(t, tr.Save(ctx))

		want := 10*time.Second + time.Duration(saves)*1250*time.Millisecond

		task, err := tr.Task("book", "draft")
		require.NoError(t, err)
		assert.Equal(t, want, task.Count, "saves=%d", saves)
		assert.Len(t, task.TimeSlots, saves+1)

		total, err := store.SumTimeSlots(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, want, total, "saves=%d", saves)
	}
}

func TestSaveTwiceDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := openStore(t)
	tr := newTracker(t, c, store)

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	task, err := tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)

	tr.Start("book", "draft")
	c.Advance(time.Minute)
	tr.Stop("book", "draft")

	require.NoError(t, tr.Save(ctx))
	require.NoError(t, tr.Save(ctx))

	slots, err := store.GetTimeSlots(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestUniqueness(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := openStore(t)
	tr := newTracker(t, c, store)

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = tr.CreateProject(ctx, "book")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, tr.Projects(), 1)

	_, err = tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "book", "draft")
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, tr.Project("book").Tasks, 1)

	// Task names are scoped to their project
	_, err = tr.CreateProject(ctx, "blog")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "blog", "draft")
	assert.NoError(t, err)

	projects, err := store.GetProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	tasks, err := store.GetTasksByProject(ctx, tr.Project("book").ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t, newClock(), openStore(t))

	_, err := tr.CreateProject(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = tr.CreateTask(ctx, "missing", "draft")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "book", "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestIdleStop(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	tr := newTracker(t, c, openStore(t))

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	task, err := tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)

	stopped, err := tr.Stop("book", "draft")
	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Empty(t, task.TimeSlots)
	assert.Zero(t, task.Count)

	started, err := tr.Start("book", "draft")
	require.NoError(t, err)
	assert.True(t, started)
	started, err = tr.Start("book", "draft")
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 1, tr.Running())

	_, err = tr.Start("book", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRunningTask(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := openStore(t)
	tr := newTracker(t, c, store)

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	task, err := tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)

	tr.Start("book", "draft")
	c.Advance(30 * time.Second)
	require.NoError(t, tr.Save(ctx))
	c.Advance(15 * time.Second)

	err = tr.DeleteTask(ctx, "book", "draft", false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.True(t, task.IsRunning())
	assert.NotNil(t, tr.Project("book").Task("draft"))

	require.NoError(t, tr.DeleteTask(ctx, "book", "draft", true))
	assert.Nil(t, tr.Project("book").Task("draft"))
	assert.False(t, task.IsRunning())

	row, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, row)

	total, err := store.SumTimeSlots(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, total)

	// The name is free again
	_, err = tr.CreateTask(ctx, "book", "draft")
	assert.NoError(t, err)
}

func TestAggregation(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	tr := newTracker(t, c, openStore(t))

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "book", "edit")
	require.NoError(t, err)

	tr.Start("book", "draft")
	c.Advance(120 * time.Second)
	tr.Stop("book", "draft")

	tr.Start("book", "edit")
	c.Advance(45 * time.Second)
	tr.Stop("book", "edit")

	p := tr.Project("book")
	assert.Equal(t, "0:02:45", model.FormatSeconds(p.DisplaySeconds()))

	report := tr.Report()
	require.Len(t, report, 1)
	assert.Equal(t, 165*time.Second, report[0].Total)
	require.Len(t, report[0].Tasks, 2)
	assert.Equal(t, "draft", report[0].Tasks[0].Name)
	assert.Equal(t, 120*time.Second, report[0].Tasks[0].Total)
}

func TestTick(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	tr := newTracker(t, c, openStore(t))

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	draft, err := tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	edit, err := tr.CreateTask(ctx, "book", "edit")
	require.NoError(t, err)

	tr.Start("book", "draft")
	tr.Tick()
	tr.Tick()

	assert.Equal(t, int64(2), draft.DisplaySeconds())
	assert.Zero(t, edit.DisplaySeconds())
}

func TestWithoutStore(t *testing.T) {
	ctx := context.Background()
	tr := New(WithClock(newClock().Now))

	assert.False(t, tr.HasStore())
	assert.NoError(t, tr.Save(ctx))

	_, err := tr.CreateProject(ctx, "book")
	assert.ErrorIs(t, err, ErrNoStore)
	assert.Empty(t, tr.Projects())
}

func TestRebuildStopsTimers(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := openStore(t)
	tr := newTracker(t, c, store)

	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	task, err := tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)
	tr.Start("book", "draft")

	tr.Rebuild(ctx, nil)
	assert.False(t, task.IsRunning())
	assert.Empty(t, tr.Projects())
	assert.False(t, tr.HasStore())
}

func TestPartialLoad(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	store := openStore(t)

	tr := newTracker(t, c, store)
	_, err := tr.CreateProject(ctx, "book")
	require.NoError(t, err)
	_, err = tr.CreateTask(ctx, "book", "draft")
	require.NoError(t, err)

	_, err = store.Exec(`DROP TABLE timestamps`)
	require.NoError(t, err)

	var buf bytes.Buffer
	loaded := New(WithClock(c.Now), WithLogger(log.New(&buf, "", 0)))
	loaded.Rebuild(ctx, store)

	task, err := loaded.Task("book", "draft")
	require.NoError(t, err)
	assert.Zero(t, task.Count)
	assert.Contains(t, buf.String(), "load time of \"draft\"")
}

// failingStore fails every write
type failingStore struct {
	Store
}

func (failingStore) GetProjects(context.Context) ([]*model.Project, error) {
	return []*model.Project{{ID: 1, Name: "book"}}, nil
}

func (failingStore) GetTasksByProject(context.Context, int64) ([]*model.Task, error) {
	return []*model.Task{model.NewTask(1, 1, "draft", time.Time{}, 0)}, nil
}

func (failingStore) SumTimeSlots(context.Context, int64) (time.Duration, error) {
	return 0, nil
}

func (failingStore) SaveState(context.Context, []*model.Project) (map[int64][]int64, error) {
	return nil, errors.New("disk I/O error")
}

func TestFailedSaveKeepsSlotsPending(t *testing.T) {
	ctx := context.Background()
	c := newClock()
	tr := newTracker(t, c, failingStore{})

	tr.Start("book", "draft")
	c.Advance(time.Minute)
	tr.Stop("book", "draft")

	require.Error(t, tr.Save(ctx))

	task, err := tr.Task("book", "draft")
	require.NoError(t, err)
	assert.Len(t, task.PendingSlots(), 1)
}
