package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/dori/stint/internal/model"
)

// GetProjects returns all projects in creation order, without tasks
func (db *DB) GetProjects(ctx context.Context) ([]*model.Project, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, started_at, ended_at
		FROM projects
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// CreateProject inserts a project row and returns its id
func (db *DB) CreateProject(ctx context.Context, name string, startedAt time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO projects (name, started_at) VALUES (?, ?)
	`, name, startedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// upsertProject writes a project row keyed by its unique name
func upsertProject(ctx context.Context, tx *sql.Tx, p *model.Project) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projects (id, name, started_at, ended_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at
	`, p.ID, p.Name, p.StartedAt, nullTime(p.EndedAt))
	return err
}

func scanProject(s scanner) (*model.Project, error) {
	var p model.Project
	var startedAt, endedAt interface{}

	if err := s.Scan(&p.ID, &p.Name, &startedAt, &endedAt); err != nil {
		return nil, err
	}

	if t := asTime(startedAt); t != nil {
		p.StartedAt = *t
	}
	p.EndedAt = asTime(endedAt)

	return &p, nil
}
