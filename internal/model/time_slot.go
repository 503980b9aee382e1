package model

import (
	"time"
)

// TimeSlot is one closed interval of tracked time for a task.
// Slots are append-only: once closed they are never modified, only persisted.
type TimeSlot struct {
	ID        int64         `json:"id"` // 0 until the store assigns one
	TaskID    int64         `json:"task_id"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Count     time.Duration `json:"count"`
}

// IsPersisted returns true once the slot has been written to the store
func (s *TimeSlot) IsPersisted() bool {
	return s.ID != 0
}

// ActiveSlot is the provisional interval of a running timer
type ActiveSlot struct {
	TaskID    int64     `json:"task_id"`
	StartedAt time.Time `json:"started_at"`
}

// IsOpen returns true if the slot has a start time
func (a ActiveSlot) IsOpen() bool {
	return !a.StartedAt.IsZero()
}
