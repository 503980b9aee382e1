package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dori/stint/internal/model"
)

// SaveState writes the whole tree in one transaction: every project and task
// row is upserted and every pending slot is inserted. On success it returns
// the new slot ids keyed by task id, in the order of Task.PendingSlots.
// On failure nothing is written.
func (db *DB) SaveState(ctx context.Context, projects []*model.Project) (map[int64][]int64, error) {
	slotIDs := make(map[int64][]int64)

	err := db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, p := range projects {
			if err := upsertProject(ctx, tx, p); err != nil {
				return fmt.Errorf("save project %q: %w", p.Name, err)
			}
		}

		for _, p := range projects {
			for _, t := range p.Tasks {
				if err := upsertTask(ctx, tx, t); err != nil {
					return fmt.Errorf("save task %q: %w", t.Name, err)
				}
			}
		}

		for _, p := range projects {
			for _, t := range p.Tasks {
				pending := t.PendingSlots()
				if len(pending) == 0 {
					continue
				}
				ids, err := insertTimeSlots(ctx, tx, pending)
				if err != nil {
					return fmt.Errorf("save time slots of %q: %w", t.Name, err)
				}
				slotIDs[t.ID] = ids
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return slotIDs, nil
}
