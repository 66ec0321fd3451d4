package console

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/emas-project/emascope/internal/channel"
	"github.com/emas-project/emascope/internal/config"
	"github.com/emas-project/emascope/internal/domain"
)

func renderAgentsTable(table *tview.Table, agents []domain.Agent, now time.Time) {
	table.Clear()
	headers := []string{"Agent", "Type", "Status", "Tasks", "Success", "Avg Exec", "Last Activity"}
	for i, h := range headers {
		table.SetCell(0, i, tview.NewTableCell(h).SetSelectable(false).SetAttributes(tcell.AttrBold))
	}
	for i, a := range agents {
		row := i + 1
		table.SetCell(row, 0, tview.NewTableCell(trimLine(a.Name, 28)))
		table.SetCell(row, 1, tview.NewTableCell(a.Type))
		table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("[%s]%s[-]", statusColor(a.Status), a.Status)))
		table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%d", a.Performance.TasksCompleted)))
		table.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("%.1f%%", a.Performance.SuccessRate)))
		table.SetCell(row, 5, tview.NewTableCell(formatDurationMs(int64(a.Performance.AvgExecutionMs))))
		table.SetCell(row, 6, tview.NewTableCell(formatAgo(a.LastActivity, now)))
	}
}

func renderProjectsTable(table *tview.Table, projects []domain.Project, now time.Time) {
	table.Clear()
	headers := []string{"Project", "Status", "Progress", "Done", "Pending", "Agents", "Last Activity"}
	for i, h := range headers {
		table.SetCell(0, i, tview.NewTableCell(h).SetSelectable(false).SetAttributes(tcell.AttrBold))
	}
	for i, p := range projects {
		row := i + 1
		pct := p.Progress()
		table.SetCell(row, 0, tview.NewTableCell(trimLine(p.Name, 28)))
		table.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf("[%s]%s[-]", projectStatusColor(p.Status), p.Status)))
		table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%s %3.0f%%", progressBar(pct, 10), pct)))
		table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%d/%d", p.CompletedTasks, p.TotalTasks)))
		table.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("%d", p.PendingTasks)))
		table.SetCell(row, 5, tview.NewTableCell(fmt.Sprintf("%d", len(p.AgentIDs))))
		table.SetCell(row, 6, tview.NewTableCell(formatAgo(p.LastActivity, now)))
	}
}

// dashboardSummary is the snapshot the dashboard stat cards render.
type dashboardSummary struct {
	TotalAgents    int
	ActiveAgents   int
	AgentCounts    map[domain.AgentStatus]int
	TotalProjects  int
	ActiveProjects int
	Health         *domain.SystemHealth
	Connection     channel.State
}

func renderDashboardStats(s dashboardSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]Agents[-:-:-]    %d registered, [green]%d active[-]\n", s.TotalAgents, s.ActiveAgents)

	statuses := make([]domain.AgentStatus, 0, len(s.AgentCounts))
	for st := range s.AgentCounts {
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })
	for _, st := range statuses {
		fmt.Fprintf(&b, "  [%s]%-8s[-] %d\n", statusColor(st), st, s.AgentCounts[st])
	}

	fmt.Fprintf(&b, "\n[::b]Projects[-:-:-]  %d tracked, [green]%d active[-]\n", s.TotalProjects, s.ActiveProjects)

	b.WriteString("\n[::b]System[-:-:-]    ")
	if s.Health != nil {
		fmt.Fprintf(&b, "[%s]%s[-], %d agents reporting\n", healthColor(s.Health.Status), s.Health.Status, s.Health.ActiveAgents)
	} else {
		b.WriteString("no health report yet\n")
	}
	fmt.Fprintf(&b, "[::b]Channel[-:-:-]   [%s]%s[-]\n", connectionColor(s.Connection), s.Connection)
	return b.String()
}

// renderActivity interleaves recent agent updates and task completions,
// newest first.
func renderActivity(updates []domain.AgentUpdate, tasks []domain.TaskCompleted, limit int, now time.Time) string {
	type line struct {
		at   time.Time
		text string
	}
	lines := make([]line, 0, len(updates)+len(tasks))
	for _, u := range updates {
		lines = append(lines, line{
			at: u.Timestamp,
			text: fmt.Sprintf("[%s] agent %s -> [%s]%s[-]",
				formatAgo(u.Timestamp, now), trimLine(u.AgentID, 20), statusColor(u.Status), u.Status),
		})
	}
	for _, tc := range tasks {
		outcome := "[green]ok[-]"
		if !tc.Success {
			outcome = "[red]failed[-]"
		}
		lines = append(lines, line{
			at: tc.Timestamp,
			text: fmt.Sprintf("[%s] task %s by %s %s (%s)",
				formatAgo(tc.Timestamp, now), trimLine(tc.TaskID, 12), trimLine(tc.AgentID, 20),
				outcome, formatDurationMs(tc.DurationMs)),
		})
	}
	if len(lines) == 0 {
		return "No activity yet"
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].at.After(lines[j].at) })
	if limit > 0 && len(lines) > limit {
		lines = lines[:limit]
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.text)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderMonitoring(state channel.State, lastErr string, health *domain.SystemHealth, tasks []domain.TaskCompleted, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]Connection[-:-:-]  [%s]%s[-]\n", connectionColor(state), state)
	if lastErr != "" {
		fmt.Fprintf(&b, "  last error: [red]%s[-]\n", trimLine(lastErr, 100))
	}

	b.WriteString("\n[::b]Services[-:-:-]\n")
	if health == nil {
		b.WriteString("  awaiting health report\n")
	} else {
		names := make([]string, 0, len(health.Services))
		for name := range health.Services {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			st := health.Services[name]
			fmt.Fprintf(&b, "  %-16s [%s]%s[-]\n", name, healthColor(st), st)
		}
		fmt.Fprintf(&b, "  overall: [%s]%s[-] (%s)\n", healthColor(health.Status), health.Status, formatAgo(health.Timestamp, now))
	}

	b.WriteString("\n[::b]Task Feed[-:-:-]\n")
	if len(tasks) == 0 {
		b.WriteString("  no completions yet\n")
		return b.String()
	}
	// Newest last in the recorder; show newest first.
	for i := len(tasks) - 1; i >= 0; i-- {
		tc := tasks[i]
		outcome := "[green]ok[-]"
		if !tc.Success {
			outcome = "[red]failed[-]"
		}
		fmt.Fprintf(&b, "  %s  %s  %-10s %s %s\n",
			formatAgo(tc.Timestamp, now), trimLine(tc.TaskID, 12), trimLine(tc.AgentID, 10),
			outcome, formatDurationMs(tc.DurationMs))
	}
	return b.String()
}

func renderSettings(cfg config.Config, configPath string) string {
	token := "(not set)"
	if cfg.Server.Token != "" {
		token = "(set, hidden)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]Config file[-:-:-]   %s\n\n", configPath)
	fmt.Fprintf(&b, "[::b]server[-:-:-]\n")
	fmt.Fprintf(&b, "  url                  %s\n", cfg.Server.URL)
	fmt.Fprintf(&b, "  socketUrl            %s\n", cfg.Server.ResolveSocketURL())
	fmt.Fprintf(&b, "  token                %s\n", token)
	fmt.Fprintf(&b, "  connectTimeoutMs     %d\n", cfg.Server.ConnectTimeoutMs)
	fmt.Fprintf(&b, "  requestTimeoutMs     %d\n", cfg.Server.RequestTimeoutMs)
	fmt.Fprintf(&b, "\n[::b]channel[-:-:-]\n")
	fmt.Fprintf(&b, "  reconnectDelayMs     %d\n", cfg.Channel.ReconnectDelayMs)
	fmt.Fprintf(&b, "  maxReconnectAttempts %d\n", cfg.Channel.MaxReconnectAttempts)
	fmt.Fprintf(&b, "\n[::b]history[-:-:-]\n")
	fmt.Fprintf(&b, "  agentUpdates         %d\n", cfg.History.AgentUpdates)
	fmt.Fprintf(&b, "  taskCompletions      %d\n", cfg.History.TaskCompletions)
	fmt.Fprintf(&b, "\n[::b]console[-:-:-]\n")
	fmt.Fprintf(&b, "  refreshIntervalMs    %d\n", cfg.Console.RefreshIntervalMs)
	fmt.Fprintf(&b, "\n[::b]logging[-:-:-]\n")
	fmt.Fprintf(&b, "  level                %s\n", cfg.Logging.Level)
	fmt.Fprintf(&b, "  consoleStyle         %s\n", cfg.Logging.ConsoleStyle)
	if cfg.Logging.File != "" {
		fmt.Fprintf(&b, "  file                 %s\n", cfg.Logging.File)
	}
	b.WriteString("\nEdit with: emascope config set <path> <value>\n")
	return b.String()
}
