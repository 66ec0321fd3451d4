package channel

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

func TestRecorderBoundsUpdates(t *testing.T) {
	rec := NewRecorder(5, 3)

	for i := 0; i < 20; i++ {
		rec.RecordUpdate(domain.AgentUpdate{AgentID: fmt.Sprintf("a%d", i)})
	}

	updates := rec.AgentUpdates()
	require.Len(t, updates, 5)
	assert.Equal(t, "a15", updates[0].AgentID, "oldest surviving entry")
	assert.Equal(t, "a19", updates[4].AgentID, "newest entry")
}

func TestRecorderBoundsTasks(t *testing.T) {
	rec := NewRecorder(5, 3)

	for i := 0; i < 10; i++ {
		rec.RecordTask(domain.TaskCompleted{TaskID: fmt.Sprintf("t%d", i)})
	}

	tasks := rec.TaskCompletions()
	require.Len(t, tasks, 3)
	assert.Equal(t, "t7", tasks[0].TaskID)
	assert.Equal(t, "t9", tasks[2].TaskID)
}

func TestRecorderLatestHealthWins(t *testing.T) {
	rec := NewRecorder(0, 0)

	_, ok := rec.Health()
	assert.False(t, ok)

	rec.RecordHealth(domain.SystemHealth{Status: "healthy", ActiveAgents: 4})
	rec.RecordHealth(domain.SystemHealth{Status: "degraded", ActiveAgents: 2})

	h, ok := rec.Health()
	require.True(t, ok)
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, 2, h.ActiveAgents)
}

func TestRecorderDefaultCaps(t *testing.T) {
	rec := NewRecorder(0, -1)

	for i := 0; i < 150; i++ {
		rec.RecordUpdate(domain.AgentUpdate{})
		rec.RecordTask(domain.TaskCompleted{})
	}
	assert.Len(t, rec.AgentUpdates(), 100)
	assert.Len(t, rec.TaskCompletions(), 50)
}

func TestRecorderAttachDetach(t *testing.T) {
	ch := New("ws://127.0.0.1:1/ws", testOptions(), logging.New(nil, "silent"))
	rec := NewRecorder(10, 10)
	rec.Attach(ch)

	env, err := NewEnvelope(domain.EventTaskCompleted, domain.TaskCompleted{
		TaskID:    "t1",
		AgentID:   "a1",
		Success:   true,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	ch.dispatch(env)

	require.Len(t, rec.TaskCompletions(), 1)
	assert.Equal(t, "t1", rec.TaskCompletions()[0].TaskID)

	rec.Detach()
	ch.dispatch(env)
	assert.Len(t, rec.TaskCompletions(), 1, "detached recorder sees nothing")
}

func TestRecorderSnapshotsAreCopies(t *testing.T) {
	rec := NewRecorder(10, 10)
	rec.RecordUpdate(domain.AgentUpdate{AgentID: "a1"})

	snap := rec.AgentUpdates()
	snap[0].AgentID = "mutated"

	assert.Equal(t, "a1", rec.AgentUpdates()[0].AgentID)
}
