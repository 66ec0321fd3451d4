// Package directory holds the client-side view-model collections that the
// console renders: agents and projects as reported by the EMAS backend.
package directory

import (
	"context"
	"sync"
	"time"

	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

// AgentLoader fetches the agent collection from the backend.
type AgentLoader interface {
	ListAgents(ctx context.Context) ([]domain.Agent, error)
}

// AgentDirectory is an ordered, concurrency-safe collection of agent
// records. Mutations arrive both from Load (REST) and from the real-time
// channel's reader goroutine, so all access goes through the lock.
type AgentDirectory struct {
	mu      sync.RWMutex
	agents  []domain.Agent
	loading bool
	loadErr string

	loader AgentLoader
	log    *logging.Logger
}

// NewAgentDirectory creates an empty agent directory. The loader may be nil
// for purely push-fed use; Load then reports ErrNoLoader.
func NewAgentDirectory(loader AgentLoader, log *logging.Logger) *AgentDirectory {
	return &AgentDirectory{
		loader: loader,
		log:    log.Sub("agents"),
	}
}

// ReplaceAll swaps in a new collection, preserving the given order.
func (d *AgentDirectory) ReplaceAll(agents []domain.Agent) {
	cp := make([]domain.Agent, len(agents))
	copy(cp, agents)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents = cp
}

// Add appends one agent record.
func (d *AgentDirectory) Add(a domain.Agent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agents = append(d.agents, a)
}

// SetStatus replaces the status of the agent with the given ID and touches
// its last-activity timestamp. Exactly one record changes; an unknown ID is
// a silent no-op and returns false.
func (d *AgentDirectory) SetStatus(id string, status domain.AgentStatus) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.agents {
		if d.agents[i].ID == id {
			d.agents[i].Status = status
			d.agents[i].LastActivity = time.Now()
			return true
		}
	}
	d.log.Debug().Str("agent", id).Msg("status update for unknown agent ignored")
	return false
}

// ApplyUpdate applies a channel agent-update event: status always, the
// performance summary when present. Returns false for an unknown agent.
func (d *AgentDirectory) ApplyUpdate(u domain.AgentUpdate) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.agents {
		if d.agents[i].ID == u.AgentID {
			d.agents[i].Status = u.Status
			if u.Performance != nil {
				d.agents[i].Performance = *u.Performance
			}
			if !u.Timestamp.IsZero() {
				d.agents[i].LastActivity = u.Timestamp
			} else {
				d.agents[i].LastActivity = time.Now()
			}
			return true
		}
	}
	d.log.Debug().Str("agent", u.AgentID).Msg("update for unknown agent ignored")
	return false
}

// Remove deletes the agent with the given ID. Unknown IDs are a no-op and
// return false. No referential checks are made against other collections.
func (d *AgentDirectory) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.agents {
		if d.agents[i].ID == id {
			d.agents = append(d.agents[:i], d.agents[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the agent with the given ID.
func (d *AgentDirectory) Get(id string) (domain.Agent, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, a := range d.agents {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Agent{}, false
}

// List returns a snapshot copy of the collection in insertion order.
func (d *AgentDirectory) List() []domain.Agent {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cp := make([]domain.Agent, len(d.agents))
	copy(cp, d.agents)
	return cp
}

// Len returns the number of records.
func (d *AgentDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.agents)
}

// Loading reports whether a Load is in flight.
func (d *AgentDirectory) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// Err returns the error message of the last failed Load, or "" after a
// successful one.
func (d *AgentDirectory) Err() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loadErr
}

// Load fetches the collection from the backend. On success the collection
// is replaced and the error cleared; on failure the collection is left
// untouched and the error captured. The loading flag is false afterwards
// either way.
func (d *AgentDirectory) Load(ctx context.Context) error {
	if d.loader == nil {
		return ErrNoLoader
	}

	d.mu.Lock()
	d.loading = true
	d.mu.Unlock()

	agents, err := d.loader.ListAgents(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.loadErr = err.Error()
		d.log.Error().Err(err).Msg("agent load failed")
		return err
	}
	d.loadErr = ""
	d.agents = agents
	d.log.Debug().Int("count", len(agents)).Msg("agents loaded")
	return nil
}

// CountByStatus returns the number of agents per status.
func (d *AgentDirectory) CountByStatus() map[domain.AgentStatus]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	counts := make(map[domain.AgentStatus]int)
	for _, a := range d.agents {
		counts[a.Status]++
	}
	return counts
}

// ActiveCount returns the number of agents that are running or busy.
func (d *AgentDirectory) ActiveCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, a := range d.agents {
		if a.Active() {
			n++
		}
	}
	return n
}
