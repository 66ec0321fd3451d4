package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/emas-project/emascope/internal/channel"
	"github.com/emas-project/emascope/internal/domain"
)

// statusColor maps an agent status to a tview color tag.
func statusColor(s domain.AgentStatus) string {
	switch s {
	case domain.AgentRunning:
		return "green"
	case domain.AgentBusy:
		return "yellow"
	case domain.AgentIdle:
		return "blue"
	case domain.AgentError:
		return "red"
	case domain.AgentStopped:
		return "gray"
	default:
		return "white"
	}
}

// projectStatusColor maps a project status to a tview color tag.
func projectStatusColor(s domain.ProjectStatus) string {
	switch s {
	case domain.ProjectActive:
		return "green"
	case domain.ProjectCompleted:
		return "blue"
	case domain.ProjectPaused:
		return "yellow"
	case domain.ProjectArchived:
		return "gray"
	default:
		return "white"
	}
}

// healthColor maps an aggregate health status to a tview color tag.
func healthColor(status string) string {
	switch status {
	case "healthy":
		return "green"
	case "degraded":
		return "yellow"
	case "unhealthy":
		return "red"
	default:
		return "white"
	}
}

// connectionColor maps a channel state to a tview color tag.
func connectionColor(s channel.State) string {
	switch s {
	case channel.StateConnected:
		return "green"
	case channel.StateConnecting:
		return "yellow"
	case channel.StateError:
		return "red"
	default:
		return "gray"
	}
}

// progressBar renders a fixed-width bar for a 0-100 percentage.
func progressBar(percent float64, width int) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent/100*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// formatAgo renders a timestamp as a compact relative age.
func formatAgo(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatDurationMs renders a millisecond duration compactly.
func formatDurationMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

// trimLine caps a string at limit runes with an ellipsis.
func trimLine(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}
