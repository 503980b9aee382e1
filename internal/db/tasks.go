package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/dori/stint/internal/model"
)

// GetTasksByProject returns the tasks of a project in creation order.
// Count is left at zero; it is recomputed from the time slots.
func (db *DB) GetTasksByProject(ctx context.Context, projectID int64) ([]*model.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, project_id, name, started_at, ended_at
		FROM tasks
		WHERE project_id = ?
		ORDER BY id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetTask returns a single task by ID, or nil
func (db *DB) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, project_id, name, started_at, ended_at
		FROM tasks WHERE id = ?
	`, id)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// CreateTask inserts a task row and returns its id
func (db *DB) CreateTask(ctx context.Context, projectID int64, name string, startedAt time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO tasks (project_id, name, started_at, count) VALUES (?, ?, ?, 0)
	`, projectID, name, startedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteTask writes the task's pending slots and removes the task row in one
// transaction. Slot rows of the task are kept.
func (db *DB) DeleteTask(ctx context.Context, taskID int64, pending []model.TimeSlot) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := insertTimeSlots(ctx, tx, pending); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
		return err
	})
}

// upsertTask writes a task row keyed by (project_id, name)
func upsertTask(ctx context.Context, tx *sql.Tx, t *model.Task) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, name, started_at, ended_at, count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, name) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			count = excluded.count
	`, t.ID, t.ProjectID, t.Name, t.StartedAt, nullTime(t.EndedAt), int64(t.Count/time.Second))
	return err
}

func scanTask(s scanner) (*model.Task, error) {
	var id, projectID int64
	var name string
	var startedAt, endedAt interface{}

	if err := s.Scan(&id, &projectID, &name, &startedAt, &endedAt); err != nil {
		return nil, err
	}

	var started time.Time
	if t := asTime(startedAt); t != nil {
		started = *t
	}

	task := model.NewTask(id, projectID, name, started, 0)
	task.EndedAt = asTime(endedAt)
	return task, nil
}
