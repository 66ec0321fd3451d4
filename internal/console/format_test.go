package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emas-project/emascope/internal/channel"
	"github.com/emas-project/emascope/internal/domain"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", progressBar(0, 10))
	assert.Equal(t, "█████░░░░░", progressBar(50, 10))
	assert.Equal(t, "██████████", progressBar(100, 10))
	assert.Equal(t, "██████████", progressBar(250, 10), "clamped above 100")
	assert.Equal(t, "░░░░░░░░░░", progressBar(-5, 10), "clamped below 0")
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"seconds", now.Add(-30 * time.Second), "30s ago"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-49 * time.Hour), "2d ago"},
		{"future", now.Add(time.Minute), "now"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatAgo(tc.at, now))
		})
	}
}

func TestFormatDurationMs(t *testing.T) {
	assert.Equal(t, "250ms", formatDurationMs(250))
	assert.Equal(t, "1.5s", formatDurationMs(1500))
	assert.Equal(t, "2m5s", formatDurationMs(125000))
}

func TestTrimLine(t *testing.T) {
	assert.Equal(t, "short", trimLine("short", 10))
	assert.Equal(t, "exactly-10", trimLine("exactly-10", 10))
	assert.Equal(t, "this is...", trimLine("this is far too long", 10))
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, "green", statusColor(domain.AgentRunning))
	assert.Equal(t, "red", statusColor(domain.AgentError))
	assert.Equal(t, "white", statusColor(domain.AgentStatus("bogus")))

	assert.Equal(t, "green", projectStatusColor(domain.ProjectActive))
	assert.Equal(t, "gray", projectStatusColor(domain.ProjectArchived))

	assert.Equal(t, "yellow", healthColor("degraded"))
	assert.Equal(t, "green", connectionColor(channel.StateConnected))
	assert.Equal(t, "red", connectionColor(channel.StateError))
}
