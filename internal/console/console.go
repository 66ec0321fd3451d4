// Package console implements the emascope terminal dashboard: five pages
// (dashboard, agents, projects, monitoring, settings) fed by the REST client
// and the real-time channel.
package console

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/emas-project/emascope/internal/api"
	"github.com/emas-project/emascope/internal/channel"
	"github.com/emas-project/emascope/internal/config"
	"github.com/emas-project/emascope/internal/directory"
	"github.com/emas-project/emascope/internal/domain"
	"github.com/emas-project/emascope/internal/logging"
)

type page struct {
	name  string
	title string
	key   rune
}

var pageList = []page{
	{name: "dashboard", title: "Dashboard", key: '1'},
	{name: "agents", title: "Agents", key: '2'},
	{name: "projects", title: "Projects", key: '3'},
	{name: "monitoring", title: "Monitoring", key: '4'},
	{name: "settings", title: "Settings", key: '5'},
}

// Console is the terminal dashboard application.
type Console struct {
	cfg        config.Config
	configPath string
	log        *logging.Logger

	client   *api.Client
	ch       *channel.Channel
	agents   *directory.AgentDirectory
	projects *directory.ProjectDirectory
	recorder *channel.Recorder

	app     *tview.Application
	pages   *tview.Pages
	sidebar *tview.List
	header  *tview.TextView
	status  *tview.TextView

	statsView      *tview.TextView
	activityView   *tview.TextView
	agentsTable    *tview.Table
	projectsTable  *tview.Table
	monitoringView *tview.TextView
	settingsView   *tview.TextView

	current string
}

// New wires a console from configuration. The channel is created but not
// started; Run owns its lifecycle.
func New(cfg config.Config, configPath string, log *logging.Logger) *Console {
	client := api.New(cfg.Server, log)
	ch := channel.New(cfg.Server.ResolveSocketURL(), channel.Options{
		HandshakeTimeout:     cfg.Server.ConnectTimeout(),
		ReconnectDelay:       cfg.Channel.ReconnectDelay(),
		MaxReconnectAttempts: cfg.Channel.MaxReconnectAttempts,
	}, log)

	c := &Console{
		cfg:        cfg,
		configPath: configPath,
		log:        log.Sub("console"),
		client:     client,
		ch:         ch,
		agents:     directory.NewAgentDirectory(client, log),
		projects:   directory.NewProjectDirectory(client, log),
		recorder:   channel.NewRecorder(cfg.History.AgentUpdates, cfg.History.TaskCompletions),
		app:        tview.NewApplication(),
		current:    "dashboard",
	}
	c.build()
	return c
}

// build assembles the widget tree.
func (c *Console) build() {
	c.header = tview.NewTextView().SetDynamicColors(true)
	c.header.SetBorder(true)

	c.status = tview.NewTextView().SetDynamicColors(true)
	c.status.SetBorder(true).SetTitle("Status")
	c.status.SetText("Keys: 1-5 switch page, r refresh, q quit")

	c.sidebar = tview.NewList().ShowSecondaryText(false)
	c.sidebar.SetBorder(true).SetTitle("emascope")
	for _, p := range pageList {
		p := p
		c.sidebar.AddItem(p.title, "", p.key, func() { c.switchTo(p.name) })
	}

	c.statsView = tview.NewTextView().SetDynamicColors(true)
	c.statsView.SetBorder(true).SetTitle("System Overview")
	c.activityView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	c.activityView.SetBorder(true).SetTitle("Recent Activity")
	dashboard := tview.NewFlex().
		AddItem(c.statsView, 0, 1, false).
		AddItem(c.activityView, 0, 2, false)

	c.agentsTable = tview.NewTable().SetBorders(false).SetSelectable(true, false).SetFixed(1, 0)
	c.agentsTable.SetBorder(true).SetTitle("Agents (s start, x stop)")

	c.projectsTable = tview.NewTable().SetBorders(false).SetSelectable(true, false).SetFixed(1, 0)
	c.projectsTable.SetBorder(true).SetTitle("Projects")

	c.monitoringView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	c.monitoringView.SetBorder(true).SetTitle("Monitoring")

	c.settingsView = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	c.settingsView.SetBorder(true).SetTitle("Settings (read-only)")

	c.pages = tview.NewPages().
		AddPage("dashboard", dashboard, true, true).
		AddPage("agents", c.agentsTable, true, false).
		AddPage("projects", c.projectsTable, true, false).
		AddPage("monitoring", c.monitoringView, true, false).
		AddPage("settings", c.settingsView, true, false)

	main := tview.NewFlex().
		AddItem(c.sidebar, 22, 0, true).
		AddItem(c.pages, 0, 1, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.header, 3, 0, false).
		AddItem(main, 0, 1, true).
		AddItem(c.status, 3, 0, false)

	c.app.SetRoot(root, true)
}

func (c *Console) switchTo(name string) {
	c.current = name
	c.pages.SwitchToPage(name)
	switch name {
	case "agents":
		c.app.SetFocus(c.agentsTable)
	case "projects":
		c.app.SetFocus(c.projectsTable)
	default:
		c.app.SetFocus(c.sidebar)
	}
	c.render()
}

// Run starts the channel, subscribes the view-model, and blocks in the
// tview event loop until the user quits or ctx ends.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubAgents := c.ch.Subscribe(domain.EventAgentUpdate, func(env channel.Envelope) {
		var u domain.AgentUpdate
		if err := env.Decode(&u); err != nil {
			c.log.Warn().Err(err).Msg("bad agent-update payload")
			return
		}
		c.agents.ApplyUpdate(u)
		c.redraw()
	})
	unsubTasks := c.ch.Subscribe(domain.EventTaskCompleted, func(env channel.Envelope) {
		var tc domain.TaskCompleted
		if err := env.Decode(&tc); err != nil {
			c.log.Warn().Err(err).Msg("bad task-completed payload")
			return
		}
		if tc.ProjectID != "" {
			c.projects.RecordTask(tc.ProjectID, tc.Success, tc.Timestamp)
		}
		c.redraw()
	})
	unsubHealth := c.ch.Subscribe(domain.EventSystemHealth, func(channel.Envelope) { c.redraw() })
	c.recorder.Attach(c.ch)
	defer func() {
		c.recorder.Detach()
		unsubAgents()
		unsubTasks()
		unsubHealth()
	}()

	if err := c.ch.Start(ctx); err != nil {
		return err
	}
	defer c.ch.Close()

	go c.reload(ctx)

	go func() {
		interval := c.cfg.Console.RefreshInterval()
		if interval <= 0 {
			interval = 2 * time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.redraw()
			}
		}
	}()

	go func() {
		<-ctx.Done()
		c.app.QueueUpdateDraw(func() { c.app.Stop() })
	}()

	c.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF10, tcell.KeyCtrlC:
			c.app.Stop()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				c.app.Stop()
				return nil
			case 'r':
				go c.reload(ctx)
				c.status.SetText("Reloading from backend...")
				return nil
			case 's', 'x':
				if c.current == "agents" {
					c.agentAction(ctx, event.Rune() == 's')
					return nil
				}
			}
			for _, p := range pageList {
				if event.Rune() == p.key {
					c.switchTo(p.name)
					return nil
				}
			}
		}
		return event
	})

	c.render()
	c.log.Info().Str("server", c.cfg.Server.URL).Msg("console starting")
	return c.app.Run()
}

// reload fetches both collections from the backend.
func (c *Console) reload(ctx context.Context) {
	aErr := c.agents.Load(ctx)
	pErr := c.projects.Load(ctx)
	c.app.QueueUpdateDraw(func() {
		c.render()
		switch {
		case aErr != nil:
			c.status.SetText(fmt.Sprintf("[red]agent load failed: %v[-]", aErr))
		case pErr != nil:
			c.status.SetText(fmt.Sprintf("[red]project load failed: %v[-]", pErr))
		default:
			c.status.SetText(fmt.Sprintf("Loaded %d agents, %d projects | 1-5 switch page, r refresh, q quit",
				c.agents.Len(), c.projects.Len()))
		}
	})
}

// agentAction starts or stops the agent selected in the agents table.
func (c *Console) agentAction(ctx context.Context, start bool) {
	row, _ := c.agentsTable.GetSelection()
	agents := c.agents.List()
	if row < 1 || row > len(agents) {
		return
	}
	agent := agents[row-1]

	verb := "stop"
	if start {
		verb = "start"
	}
	c.status.SetText(fmt.Sprintf("Requesting %s of %s...", verb, agent.Name))

	go func() {
		var err error
		if start {
			err = c.client.StartAgent(ctx, agent.ID)
		} else {
			err = c.client.StopAgent(ctx, agent.ID)
		}
		c.app.QueueUpdateDraw(func() {
			if err != nil {
				c.status.SetText(fmt.Sprintf("[red]%s %s failed: %v[-]", verb, agent.Name, err))
				return
			}
			c.status.SetText(fmt.Sprintf("%s of %s requested", verb, agent.Name))
		})
	}()
}

// redraw re-renders from a non-UI goroutine.
func (c *Console) redraw() {
	c.app.QueueUpdateDraw(c.render)
}

// render repaints the header and the current page from the latest
// view-model snapshots. Must run on the UI goroutine.
func (c *Console) render() {
	now := time.Now()
	state := c.ch.State()

	var health *domain.SystemHealth
	if h, ok := c.recorder.Health(); ok {
		health = &h
	}

	c.header.SetText(fmt.Sprintf(" [::b]EMAS Console[-:-:-]  %s  |  channel: [%s]%s[-]  |  %s",
		c.cfg.Server.URL, connectionColor(state), state, now.Format("15:04:05")))

	switch c.current {
	case "dashboard":
		c.statsView.SetText(renderDashboardStats(dashboardSummary{
			TotalAgents:    c.agents.Len(),
			ActiveAgents:   c.agents.ActiveCount(),
			AgentCounts:    c.agents.CountByStatus(),
			TotalProjects:  c.projects.Len(),
			ActiveProjects: c.projects.CountByStatus()[domain.ProjectActive],
			Health:         health,
			Connection:     state,
		}))
		c.activityView.SetText(renderActivity(c.recorder.AgentUpdates(), c.recorder.TaskCompletions(), 30, now))
	case "agents":
		renderAgentsTable(c.agentsTable, c.agents.List(), now)
	case "projects":
		renderProjectsTable(c.projectsTable, c.projects.List(), now)
	case "monitoring":
		c.monitoringView.SetText(renderMonitoring(state, c.ch.LastError(), health, c.recorder.TaskCompletions(), now))
	case "settings":
		c.settingsView.SetText(renderSettings(c.cfg, c.configPath))
	}
}
