package directory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

// ErrNoLoader is returned by Load when no backend loader was configured.
var ErrNoLoader = errors.New("directory: no loader configured")

// ProjectLoader fetches the project collection from the backend.
type ProjectLoader interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// ProjectDirectory is an ordered, concurrency-safe collection of project
// records. Same contract as AgentDirectory with project-shaped fields.
type ProjectDirectory struct {
	mu       sync.RWMutex
	projects []domain.Project
	loading  bool
	loadErr  string

	loader ProjectLoader
	log    *logging.Logger
}

// NewProjectDirectory creates an empty project directory.
func NewProjectDirectory(loader ProjectLoader, log *logging.Logger) *ProjectDirectory {
	return &ProjectDirectory{
		loader: loader,
		log:    log.Sub("projects"),
	}
}

// ReplaceAll swaps in a new collection, preserving the given order.
func (d *ProjectDirectory) ReplaceAll(projects []domain.Project) {
	cp := make([]domain.Project, len(projects))
	copy(cp, projects)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects = cp
}

// Add appends one project record.
func (d *ProjectDirectory) Add(p domain.Project) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projects = append(d.projects, p)
}

// SetStatus replaces the status of the project with the given ID. Unknown
// IDs are a silent no-op and return false.
func (d *ProjectDirectory) SetStatus(id string, status domain.ProjectStatus) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.projects {
		if d.projects[i].ID == id {
			d.projects[i].Status = status
			d.projects[i].LastActivity = time.Now()
			return true
		}
	}
	d.log.Debug().Str("project", id).Msg("status update for unknown project ignored")
	return false
}

// RecordTask folds a task completion into the project's counters. A
// successful task moves one unit from pending to completed; a failed task
// only touches the activity timestamp (the task stays pending for retry).
// The completed+pending==total invariant is preserved by construction.
func (d *ProjectDirectory) RecordTask(projectID string, success bool, at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.projects {
		if d.projects[i].ID != projectID {
			continue
		}
		p := &d.projects[i]
		if success && p.PendingTasks > 0 {
			p.PendingTasks--
			p.CompletedTasks++
		}
		if at.IsZero() {
			at = time.Now()
		}
		p.LastActivity = at
		return true
	}
	return false
}

// Remove deletes the project with the given ID. Unknown IDs are a no-op.
func (d *ProjectDirectory) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.projects {
		if d.projects[i].ID == id {
			d.projects = append(d.projects[:i], d.projects[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the project with the given ID.
func (d *ProjectDirectory) Get(id string) (domain.Project, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.projects {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Project{}, false
}

// List returns a snapshot copy of the collection in insertion order.
func (d *ProjectDirectory) List() []domain.Project {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cp := make([]domain.Project, len(d.projects))
	copy(cp, d.projects)
	return cp
}

// Len returns the number of records.
func (d *ProjectDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.projects)
}

// Loading reports whether a Load is in flight.
func (d *ProjectDirectory) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// Err returns the error message of the last failed Load, or "" after a
// successful one.
func (d *ProjectDirectory) Err() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loadErr
}

// Load fetches the collection from the backend. Same contract as
// AgentDirectory.Load.
func (d *ProjectDirectory) Load(ctx context.Context) error {
	if d.loader == nil {
		return ErrNoLoader
	}

	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	projects, err := d.loader.ListProjects(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.loadErr = err.Error()
		d.log.Error().Err(err).Msg("project load failed")
		return err
	}
	d.loadErr = ""
	d.projects = projects
	d.log.Debug().Int("count", len(projects)).Msg("projects loaded")
	return nil
}

// CountByStatus returns the number of projects per status.
func (d *ProjectDirectory) CountByStatus() map[domain.ProjectStatus]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	counts := make(map[domain.ProjectStatus]int)
	for _, p := range d.projects {
		counts[p.Status]++
	}
	return counts
}
