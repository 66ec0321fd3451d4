package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

type stubProjectLoader struct {
	projects []domain.Project
	err      error
}

func (s *stubProjectLoader) ListProjects(ctx context.Context) ([]domain.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.projects, nil
}

func seedProjects() []domain.Project {
	return []domain.Project{
		{ID: "p1", Name: "api-refactor", Status: domain.ProjectActive, CompletedTasks: 2, PendingTasks: 3, TotalTasks: 5},
		{ID: "p2", Name: "docs-sweep", Status: domain.ProjectPaused, CompletedTasks: 5, PendingTasks: 0, TotalTasks: 5},
	}
}

func newTestProjectDir(loader ProjectLoader) *ProjectDirectory {
	return NewProjectDirectory(loader, logging.New(nil, "silent"))
}

func TestProjectSetStatus(t *testing.T) {
	dir := newTestProjectDir(nil)
	dir.ReplaceAll(seedProjects())

	require.True(t, dir.SetStatus("p2", domain.ProjectArchived))
	p, ok := dir.Get("p2")
	require.True(t, ok)
	assert.Equal(t, domain.ProjectArchived, p.Status)

	assert.False(t, dir.SetStatus("ghost", domain.ProjectActive))
	assert.Equal(t, 2, dir.Len())
}

func TestRecordTaskSuccessMovesPendingToCompleted(t *testing.T) {
	dir := newTestProjectDir(nil)
	dir.ReplaceAll(seedProjects())

	at := time.Date(2026, 8, 21, 9, 30, 0, 0, time.UTC)
	require.True(t, dir.RecordTask("p1", true, at))

	p, _ := dir.Get("p1")
	assert.Equal(t, 3, p.CompletedTasks)
	assert.Equal(t, 2, p.PendingTasks)
	assert.Equal(t, 5, p.TotalTasks)
	assert.Equal(t, p.TotalTasks, p.CompletedTasks+p.PendingTasks)
	assert.Equal(t, at, p.LastActivity)
	assert.InDelta(t, 60.0, p.Progress(), 0.001)
}

func TestRecordTaskFailureOnlyTouchesActivity(t *testing.T) {
	dir := newTestProjectDir(nil)
	dir.ReplaceAll(seedProjects())

	require.True(t, dir.RecordTask("p1", false, time.Time{}))

	p, _ := dir.Get("p1")
	assert.Equal(t, 2, p.CompletedTasks)
	assert.Equal(t, 3, p.PendingTasks)
	assert.False(t, p.LastActivity.IsZero())
}

func TestRecordTaskNoPendingIsStable(t *testing.T) {
	dir := newTestProjectDir(nil)
	dir.ReplaceAll(seedProjects())

	// p2 has nothing pending; a stray success must not overflow the counters.
	require.True(t, dir.RecordTask("p2", true, time.Time{}))
	p, _ := dir.Get("p2")
	assert.Equal(t, 5, p.CompletedTasks)
	assert.Equal(t, 0, p.PendingTasks)
}

func TestRecordTaskUnknownProject(t *testing.T) {
	dir := newTestProjectDir(nil)
	dir.ReplaceAll(seedProjects())

	assert.False(t, dir.RecordTask("ghost", true, time.Time{}))
}

func TestProjectLoadFailureKeepsCollection(t *testing.T) {
	loader := &stubProjectLoader{projects: seedProjects()}
	dir := newTestProjectDir(loader)

	require.NoError(t, dir.Load(context.Background()))
	assert.Equal(t, 2, dir.Len())
	assert.Empty(t, dir.Err())

	loader.err = errors.New("503 service unavailable")
	require.Error(t, dir.Load(context.Background()))
	assert.False(t, dir.Loading())
	assert.Equal(t, "503 service unavailable", dir.Err())
	assert.Equal(t, 2, dir.Len(), "collection survives a failed reload")
}

func TestProjectCountByStatus(t *testing.T) {
	dir := newTestProjectDir(nil)
	dir.ReplaceAll(seedProjects())

	counts := dir.CountByStatus()
	assert.Equal(t, 1, counts[domain.ProjectActive])
	assert.Equal(t, 1, counts[domain.ProjectPaused])
	assert.Zero(t, counts[domain.ProjectArchived])
}

func TestProjectRemove(t *testing.T) {
	dir := newTestProjectDir(nil)
	dir.ReplaceAll(seedProjects())

	require.True(t, dir.Remove("p1"))
	assert.Equal(t, 1, dir.Len())
	assert.False(t, dir.Remove("p1"))
}
