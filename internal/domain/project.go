package domain

import "time"

// ProjectStatus is the lifecycle status of a tracked project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectPaused    ProjectStatus = "paused"
	ProjectArchived  ProjectStatus = "archived"
)

// Valid reports whether s is one of the known project statuses.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectPaused, ProjectArchived:
		return true
	}
	return false
}

// Project is the view-model record for a tracked initiative. Agent IDs are
// informational only; there is no referential enforcement against the
// agent collection.
type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Status         ProjectStatus `json:"status"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastActivity   time.Time     `json:"lastActivity"`
	AgentIDs       []string      `json:"agentIds,omitempty"`
	CompletedTasks int           `json:"completedTasks"`
	PendingTasks   int           `json:"pendingTasks"`
	TotalTasks     int           `json:"totalTasks"`
	Technologies   []string      `json:"technologies,omitempty"`
	Repository     string        `json:"repository,omitempty"`
}

// Progress returns the completion percentage derived from the task
// counters. It is never stored, so it cannot drift out of sync with them.
// A project with no tasks reports zero.
func (p Project) Progress() float64 {
	if p.TotalTasks <= 0 {
		return 0
	}
	return float64(p.CompletedTasks) / float64(p.TotalTasks) * 100
}
