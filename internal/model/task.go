package model

import (
	"time"
)

// Task is a unit of trackable work inside a project, with its own stopwatch.
//
// Count holds the time of every closed slot, both loaded from the store and
// closed during this session. The display counter is a separate per-second
// value advanced by Tick while running; it is re-synced to Count whenever the
// timer stops.
type Task struct {
	ID        int64         `json:"id"`
	ProjectID int64         `json:"project_id"`
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	Count     time.Duration `json:"count"`

	// Slots closed in memory, pending and persisted
	TimeSlots []TimeSlot `json:"time_slots,omitempty"`

	running bool
	active  ActiveSlot
	display int64
}

// NewTask creates an idle task whose closed time totals count
func NewTask(id, projectID int64, name string, startedAt time.Time, count time.Duration) *Task {
	return &Task{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		StartedAt: startedAt,
		Count:     count,
		active:    ActiveSlot{TaskID: id},
		display:   int64(count / time.Second),
	}
}

// IsRunning returns true if the stopwatch is running
func (t *Task) IsRunning() bool {
	return t.running
}

// Active returns the currently open slot (zero StartedAt when idle)
func (t *Task) Active() ActiveSlot {
	return t.active
}

// Start opens a new active slot at now. Starting a running timer does nothing.
func (t *Task) Start(now time.Time) bool {
	if t.running {
		return false
	}
	t.running = true
	t.active = ActiveSlot{TaskID: t.ID, StartedAt: now}
	return true
}

// Stop closes the active slot at now and appends it to TimeSlots.
// Stopping an idle timer does nothing.
func (t *Task) Stop(now time.Time) bool {
	if !t.running {
		return false
	}
	t.closeActive(now)
	t.running = false
	t.active = ActiveSlot{TaskID: t.ID}
	t.display = int64(t.Count / time.Second)
	return true
}

// Checkpoint closes the active slot at now and immediately reopens it at the
// same instant, so the timer keeps running with no gap and no overlap.
// Returns false if the timer is idle or no time has passed.
func (t *Task) Checkpoint(now time.Time) bool {
	if !t.running || !now.After(t.active.StartedAt) {
		return false
	}
	slot := t.closeActive(now)
	t.active = ActiveSlot{TaskID: t.ID, StartedAt: slot.EndedAt}
	return true
}

func (t *Task) closeActive(now time.Time) TimeSlot {
	slot := TimeSlot{
		TaskID:    t.ID,
		StartedAt: t.active.StartedAt,
		EndedAt:   now,
		Count:     now.Sub(t.active.StartedAt),
	}
	t.TimeSlots = append(t.TimeSlots, slot)
	t.Count += slot.Count
	return slot
}

// Tick advances the display counter by one second while running
func (t *Task) Tick() {
	if t.running {
		t.display++
	}
}

// DisplaySeconds returns the seconds shown for this task
func (t *Task) DisplaySeconds() int64 {
	return t.display
}

// Elapsed returns closed time plus the live delta of the active slot
func (t *Task) Elapsed(now time.Time) time.Duration {
	if !t.running {
		return t.Count
	}
	return t.Count + now.Sub(t.active.StartedAt)
}

// PendingSlots returns the closed slots not yet written to the store
func (t *Task) PendingSlots() []TimeSlot {
	var pending []TimeSlot
	for _, s := range t.TimeSlots {
		if !s.IsPersisted() {
			pending = append(pending, s)
		}
	}
	return pending
}

// MarkPersisted assigns store ids to the pending slots, in order
func (t *Task) MarkPersisted(ids []int64) {
	i := 0
	for j := range t.TimeSlots {
		if i >= len(ids) {
			return
		}
		if !t.TimeSlots[j].IsPersisted() {
			t.TimeSlots[j].ID = ids[i]
			i++
		}
	}
}
