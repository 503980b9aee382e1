package db

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/dori/stint/internal/model"
)

// SumTimeSlots returns the total recorded time of a task (0 if none)
func (db *DB) SumTimeSlots(ctx context.Context, taskID int64) (time.Duration, error) {
	var total sql.NullFloat64
	err := db.QueryRowContext(ctx, `
		SELECT SUM(count) FROM timestamps WHERE task_id = ?
	`, taskID).Scan(&total)
	if err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return secondsToDuration(total.Float64), nil
}

// GetTimeSlots returns the recorded slots of a task, oldest first
func (db *DB) GetTimeSlots(ctx context.Context, taskID int64) ([]model.TimeSlot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, task_id, started_at, ended_at, count
		FROM timestamps
		WHERE task_id = ?
		ORDER BY started_at, id
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var s model.TimeSlot
		var startedAt, endedAt interface{}
		var count sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.TaskID, &startedAt, &endedAt, &count); err != nil {
			return nil, err
		}
		if t := asTime(startedAt); t != nil {
			s.StartedAt = *t
		}
		if t := asTime(endedAt); t != nil {
			s.EndedAt = *t
		}
		s.Count = secondsToDuration(count.Float64)
		slots = append(slots, s)
	}

	return slots, rows.Err()
}

// insertTimeSlots appends slot rows and returns their ids in order
func insertTimeSlots(ctx context.Context, tx *sql.Tx, slots []model.TimeSlot) ([]int64, error) {
	ids := make([]int64, 0, len(slots))
	for _, s := range slots {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO timestamps (task_id, started_at, ended_at, count)
			VALUES (?, ?, ?, ?)
		`, s.TaskID, s.StartedAt, s.EndedAt, s.Count.Seconds())
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
