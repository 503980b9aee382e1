package tracker

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/dori/stint/internal/model"
)

// Store is the persistence the tracker reads from and writes to.
// *db.DB satisfies it.
type Store interface {
	CreateProject(ctx context.Context, name string, startedAt time.Time) (int64, error)
	CreateTask(ctx context.Context, projectID int64, name string, startedAt time.Time) (int64, error)
	GetProjects(ctx context.Context) ([]*model.Project, error)
	GetTasksByProject(ctx context.Context, projectID int64) ([]*model.Task, error)
	SumTimeSlots(ctx context.Context, taskID int64) (time.Duration, error)
	SaveState(ctx context.Context, projects []*model.Project) (map[int64][]int64, error)
	DeleteTask(ctx context.Context, taskID int64, pending []model.TimeSlot) error
}

// Tracker owns the in-memory project tree and keeps it in sync with a store.
//
// A Tracker is not safe for concurrent use. It is meant to be driven from a
// single event loop.
type Tracker struct {
	store    Store
	projects []*model.Project
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock sets the wall clock used for timers and timestamps
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithLogger sets the logger for diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// New creates a tracker with no store and an empty tree
func New(opts ...Option) *Tracker {
	t := &Tracker{
		now:    time.Now,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HasStore returns true if a store is open
func (t *Tracker) HasStore() bool {
	return t.store != nil
}

// Projects returns the project tree. Callers must not modify it.
func (t *Tracker) Projects() []*model.Project {
	return t.projects
}

// Project returns the named project, or nil
func (t *Tracker) Project(name string) *model.Project {
	for _, p := range t.projects {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Task returns the named task of the named project
func (t *Tracker) Task(projectName, taskName string) (*model.Task, error) {
	p := t.Project(projectName)
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", projectName, ErrNotFound)
	}
	task := p.Task(taskName)
	if task == nil {
		return nil, fmt.Errorf("task %q in %q: %w", taskName, projectName, ErrNotFound)
	}
	return task, nil
}

// Running returns the number of running timers
func (t *Tracker) Running() int {
	n := 0
	for _, p := range t.projects {
		n += p.RunningCount()
	}
	return n
}

// CreateProject registers a new project in the store, then adds it to the tree
func (t *Tracker) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if t.Project(name) != nil {
		return nil, fmt.Errorf("project %q: %w", name, ErrDuplicateName)
	}
	if t.store == nil {
		return nil, ErrNoStore
	}

	now := t.now()
	id, err := t.store.CreateProject(ctx, name, now)
	if err != nil {
		return nil, fmt.Errorf("register project %q: %w", name, err)
	}

	p := &model.Project{ID: id, Name: name, StartedAt: now}
	t.projects = append(t.projects, p)
	t.logger.Printf("created project %q (id %d)", name, id)
	return p, nil
}

// CreateTask registers a new task in the store, then adds it to its project
func (t *Tracker) CreateTask(ctx context.Context, projectName, name string) (*model.Task, error) {
	p := t.Project(projectName)
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", projectName, ErrNotFound)
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if p.Task(name) != nil {
		return nil, fmt.Errorf("task %q in %q: %w", name, projectName, ErrDuplicateName)
	}
	if t.store == nil {
		return nil, ErrNoStore
	}

	now := t.now()
	id, err := t.store.CreateTask(ctx, p.ID, name, now)
	if err != nil {
		return nil, fmt.Errorf("register task %q: %w", name, err)
	}

	task := model.NewTask(id, p.ID, name, now, 0)
	p.AddTask(task)
	t.logger.Printf("created task %q in %q (id %d)", name, projectName, id)
	return task, nil
}

// Start starts the timer of a task. It returns false if it was already running.
func (t *Tracker) Start(projectName, taskName string) (bool, error) {
	task, err := t.Task(projectName, taskName)
	if err != nil {
		return false, err
	}
	return task.Start(t.now()), nil
}

// Stop stops the timer of a task. It returns false if it was idle.
func (t *Tracker) Stop(projectName, taskName string) (bool, error) {
	task, err := t.Task(projectName, taskName)
	if err != nil {
		return false, err
	}
	return task.Stop(t.now()), nil
}

// Tick advances the display counter of every running task by one second
func (t *Tracker) Tick() {
	for _, p := range t.projects {
		for _, task := range p.Tasks {
			task.Tick()
		}
	}
}

// DeleteTask permanently removes a task. Without confirmation nothing
// happens. A running timer is stopped first and its last slot is written
// together with the removal.
func (t *Tracker) DeleteTask(ctx context.Context, projectName, taskName string, confirmed bool) error {
	p := t.Project(projectName)
	if p == nil {
		return fmt.Errorf("project %q: %w", projectName, ErrNotFound)
	}
	task := p.Task(taskName)
	if task == nil {
		return fmt.Errorf("task %q in %q: %w", taskName, projectName, ErrNotFound)
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if t.store == nil {
		return ErrNoStore
	}

	task.Stop(t.now())

	if err := t.store.DeleteTask(ctx, task.ID, task.PendingSlots()); err != nil {
		return fmt.Errorf("delete task %q: %w", taskName, err)
	}

	p.RemoveTask(taskName)
	t.logger.Printf("deleted task %q in %q (id %d)", taskName, projectName, task.ID)
	return nil
}
