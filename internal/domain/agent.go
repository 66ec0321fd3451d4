package domain

import "time"

// AgentStatus is the lifecycle status of a registered agent.
type AgentStatus string

const (
	AgentIdle    AgentStatus = "idle"
	AgentRunning AgentStatus = "running"
	AgentBusy    AgentStatus = "busy"
	AgentError   AgentStatus = "error"
	AgentStopped AgentStatus = "stopped"
)

// Valid reports whether s is one of the known agent statuses.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentIdle, AgentRunning, AgentBusy, AgentError, AgentStopped:
		return true
	}
	return false
}

// Performance summarises an agent's execution history as reported
// by the backend registry.
type Performance struct {
	TasksCompleted int     `json:"tasksCompleted"`
	SuccessRate    float64 `json:"successRate"`    // percentage, 0-100
	AvgExecutionMs float64 `json:"avgExecutionMs"` // mean task duration
}

// Agent is the view-model record for a worker agent in the EMAS backend.
type Agent struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         string      `json:"type"` // category tag, e.g. "code_analysis"
	Status       AgentStatus `json:"status"`
	Version      string      `json:"version"`
	Description  string      `json:"description,omitempty"`
	Capabilities []string    `json:"capabilities,omitempty"`
	LastActivity time.Time   `json:"lastActivity"`
	Performance  Performance `json:"performance"`
}

// Healthy reports whether the agent is in a working state
// (running, idle, or busy).
func (a Agent) Healthy() bool {
	switch a.Status {
	case AgentRunning, AgentIdle, AgentBusy:
		return true
	}
	return false
}

// Active reports whether the agent is currently doing work.
func (a Agent) Active() bool {
	return a.Status == AgentRunning || a.Status == AgentBusy
}
