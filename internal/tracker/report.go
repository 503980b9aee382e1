package tracker

import "time"

// TaskTotal is the recorded time of one task
type TaskTotal struct {
	Name    string
	Total   time.Duration
	Running bool
}

// ProjectTotal is the recorded time of one project and its tasks
type ProjectTotal struct {
	Name  string
	Total time.Duration
	Tasks []TaskTotal
}

// Report returns the totals of the tree, including running timers up to now
func (t *Tracker) Report() []ProjectTotal {
	now := t.now()

	totals := make([]ProjectTotal, 0, len(t.projects))
	for _, p := range t.projects {
		pt := ProjectTotal{Name: p.Name, Total: p.Elapsed(now)}
		for _, task := range p.Tasks {
			pt.Tasks = append(pt.Tasks, TaskTotal{
				Name:    task.Name,
				Total:   task.Elapsed(now),
				Running: task.IsRunning(),
			})
		}
		totals = append(totals, pt)
	}
	return totals
}
