package model

import (
	"time"
)

// Project groups tasks under a globally unique name
type Project struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"` // never set by the tracker

	// Owned tasks, in creation order. Names are unique within the project.
	Tasks []*Task `json:"tasks,omitempty"`
}

// Task returns the task with the given name, or nil
func (p *Project) Task(name string) *Task {
	for _, t := range p.Tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// AddTask appends a task to the project
func (p *Project) AddTask(t *Task) {
	p.Tasks = append(p.Tasks, t)
}

// RemoveTask removes the named task and returns it, or nil if absent
func (p *Project) RemoveTask(name string) *Task {
	for i, t := range p.Tasks {
		if t.Name == name {
			p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
			return t
		}
	}
	return nil
}

// DisplaySeconds returns the sum of the displayed seconds of every task
func (p *Project) DisplaySeconds() int64 {
	var total int64
	for _, t := range p.Tasks {
		total += t.DisplaySeconds()
	}
	return total
}

// Elapsed returns the project total computed from timestamps
func (p *Project) Elapsed(now time.Time) time.Duration {
	var total time.Duration
	for _, t := range p.Tasks {
		total += t.Elapsed(now)
	}
	return total
}

// RunningCount returns how many of the project's timers are running
func (p *Project) RunningCount() int {
	n := 0
	for _, t := range p.Tasks {
		if t.IsRunning() {
			n++
		}
	}
	return n
}
