package tracker

import (
	"context"
	"fmt"

	"github.com/dori/stint/internal/model"
)

// Save checkpoints every running timer and writes the tree to the store.
// Without a store it does nothing. The write is all-or-nothing: if it fails,
// pending slots stay pending and are retried by the next Save.
func (t *Tracker) Save(ctx context.Context) error {
	if t.store == nil {
		return nil
	}

	now := t.now()
	for _, p := range t.projects {
		for _, task := range p.Tasks {
			task.Checkpoint(now)
		}
	}

	slotIDs, err := t.store.SaveState(ctx, t.projects)
	if err != nil {
		t.logger.Printf("save failed: %v", err)
		return fmt.Errorf("save state: %w", err)
	}

	written := 0
	for _, p := range t.projects {
		for _, task := range p.Tasks {
			ids := slotIDs[task.ID]
			task.MarkPersisted(ids)
			written += len(ids)
		}
	}

	t.logger.Printf("saved %d projects, %d new time slots", len(t.projects), written)
	return nil
}

// Rebuild stops every timer, drops the tree and loads it again from store.
// A nil store leaves the tracker empty and without a store.
func (t *Tracker) Rebuild(ctx context.Context, store Store) {
	now := t.now()
	for _, p := range t.projects {
		for _, task := range p.Tasks {
			task.Stop(now)
		}
	}
	t.projects = nil
	t.store = store

	if store != nil {
		t.load(ctx)
	}
}

// Shutdown writes the final state
func (t *Tracker) Shutdown(ctx context.Context) error {
	return t.Save(ctx)
}

// load reads projects, their tasks and each task's recorded time. A failing
// step is logged and treated as having no rows.
func (t *Tracker) load(ctx context.Context) {
	projects, err := t.store.GetProjects(ctx)
	if err != nil {
		t.logger.Printf("load projects: %v", err)
		return
	}

	for _, p := range projects {
		tasks, err := t.store.GetTasksByProject(ctx, p.ID)
		if err != nil {
			t.logger.Printf("load tasks of %q: %v", p.Name, err)
			tasks = nil
		}

		for _, task := range tasks {
			count, err := t.store.SumTimeSlots(ctx, task.ID)
			if err != nil {
				t.logger.Printf("load time of %q: %v", task.Name, err)
				count = 0
			}
			loaded := model.NewTask(task.ID, task.ProjectID, task.Name, task.StartedAt, count)
			loaded.EndedAt = task.EndedAt
			p.AddTask(loaded)
		}

		t.projects = append(t.projects, p)
	}

	t.logger.Printf("loaded %d projects", len(t.projects))
}
