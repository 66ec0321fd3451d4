package domain

import "time"

// Named events pushed by the backend over the real-time channel.
const (
	EventAgentUpdate   = "agent-update"
	EventTaskCompleted = "task-completed"
	EventSystemHealth  = "system-health"
	EventError         = "error"
)

// AgentUpdate announces a status change for a single agent. Performance is
// optional; when present it replaces the agent's stored summary.
type AgentUpdate struct {
	AgentID     string       `json:"agentId"`
	Status      AgentStatus  `json:"status"`
	Performance *Performance `json:"performance,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// TaskCompleted announces that an agent finished a task.
type TaskCompleted struct {
	TaskID     string    `json:"taskId"`
	AgentID    string    `json:"agentId"`
	ProjectID  string    `json:"projectId,omitempty"`
	Success    bool      `json:"success"`
	DurationMs int64     `json:"durationMs"`
	Timestamp  time.Time `json:"timestamp"`
}

// SystemHealth is the backend's aggregate health snapshot.
type SystemHealth struct {
	Status       string            `json:"status"` // "healthy" | "degraded" | "unhealthy"
	Services     map[string]string `json:"services,omitempty"`
	ActiveAgents int               `json:"activeAgents"`
	Timestamp    time.Time         `json:"timestamp"`
}

// StreamError is an error pushed by the backend on the channel.
type StreamError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
