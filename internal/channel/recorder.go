package channel

import (
	"sync"

	"github.com/emas-project/emascope/internal/domain"
)

// Recorder keeps bounded histories of the stream events the console renders:
// the most recent agent updates, the most recent task completions, and the
// latest health snapshot.
type Recorder struct {
	maxUpdates int
	maxTasks   int

	mu      sync.RWMutex
	updates []domain.AgentUpdate
	tasks   []domain.TaskCompleted
	health  *domain.SystemHealth
	unsubs  []func()
}

// NewRecorder creates a recorder with the given history caps. Caps below 1
// fall back to the defaults of 100 updates and 50 completions.
func NewRecorder(maxUpdates, maxTasks int) *Recorder {
	if maxUpdates < 1 {
		maxUpdates = 100
	}
	if maxTasks < 1 {
		maxTasks = 50
	}
	return &Recorder{maxUpdates: maxUpdates, maxTasks: maxTasks}
}

// Attach subscribes the recorder to the channel's stream events. Call
// Detach to release the subscriptions.
func (r *Recorder) Attach(ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsubs = append(r.unsubs,
		ch.Subscribe(domain.EventAgentUpdate, func(env Envelope) {
			var u domain.AgentUpdate
			if err := env.Decode(&u); err == nil {
				r.RecordUpdate(u)
			}
		}),
		ch.Subscribe(domain.EventTaskCompleted, func(env Envelope) {
			var tc domain.TaskCompleted
			if err := env.Decode(&tc); err == nil {
				r.RecordTask(tc)
			}
		}),
		ch.Subscribe(domain.EventSystemHealth, func(env Envelope) {
			var h domain.SystemHealth
			if err := env.Decode(&h); err == nil {
				r.RecordHealth(h)
			}
		}),
	)
}

// Detach releases all channel subscriptions taken by Attach.
func (r *Recorder) Detach() {
	r.mu.Lock()
	unsubs := r.unsubs
	r.unsubs = nil
	r.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// RecordUpdate appends an agent update, evicting the oldest entry when the
// history is full.
func (r *Recorder) RecordUpdate(u domain.AgentUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	if len(r.updates) > r.maxUpdates {
		r.updates = append(r.updates[:0], r.updates[len(r.updates)-r.maxUpdates:]...)
	}
}

// RecordTask appends a task completion, evicting the oldest entry when the
// history is full.
func (r *Recorder) RecordTask(tc domain.TaskCompleted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, tc)
	if len(r.tasks) > r.maxTasks {
		r.tasks = append(r.tasks[:0], r.tasks[len(r.tasks)-r.maxTasks:]...)
	}
}

// RecordHealth replaces the health snapshot; only the latest one is kept.
func (r *Recorder) RecordHealth(h domain.SystemHealth) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.health = &h
}

// AgentUpdates returns a copy of the recorded updates, oldest first.
func (r *Recorder) AgentUpdates() []domain.AgentUpdate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AgentUpdate, len(r.updates))
	copy(out, r.updates)
	return out
}

// TaskCompletions returns a copy of the recorded completions, oldest first.
func (r *Recorder) TaskCompletions() []domain.TaskCompleted {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TaskCompleted, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Health returns the latest health snapshot, or false if none arrived.
func (r *Recorder) Health() (domain.SystemHealth, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.health == nil {
		return domain.SystemHealth{}, false
	}
	return *r.health, true
}
