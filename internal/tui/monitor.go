// Package tui provides the terminal user interface for Foreman.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/foreman/internal/orchestrator"
)

// EventMsg wraps an orchestrator event for the monitor.
type EventMsg struct {
	Event orchestrator.Event
}

// DoneMsg signals that the batch has completed.
type DoneMsg struct {
	Summary string
}

// taskRow is one tracked task line in the monitor.
type taskRow struct {
	worker  string
	title   string
	status  string
	message string
	started time.Time
}

// Monitor is a bubbletea model that displays live batch progress.
// Events arrive over a channel from the executor's event handler.
type Monitor struct {
	events <-chan orchestrator.Event

	spinner spinner.Model
	rows    []taskRow
	index   map[string]int

	started   time.Time
	completed int
	failed    int
	done      bool
	summary   string

	headerStyle  lipgloss.Style
	workerStyle  lipgloss.Style
	runningStyle lipgloss.Style
	doneStyle    lipgloss.Style
	failedStyle  lipgloss.Style
	footerStyle  lipgloss.Style
}

// NewMonitor creates a monitor reading from the given event channel.
func NewMonitor(events <-chan orchestrator.Event) *Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Monitor{
		events:  events,
		spinner: s,
		index:   make(map[string]int),
		started: time.Now(),

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		workerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Width(14),
		runningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")),
		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")),
		failedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		footerStyle: lipgloss.NewStyle().
			Faint(true),
	}
}

// Init starts the spinner and the event pump.
func (m *Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

// waitForEvent blocks on the event channel and converts events to messages.
func (m *Monitor) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return DoneMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// Update handles messages.
func (m *Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.apply(msg.Event)
		return m, m.waitForEvent()

	case DoneMsg:
		m.done = true
		m.summary = msg.Summary
		return m, tea.Quit
	}

	return m, nil
}

// apply folds one orchestrator event into the monitor state.
func (m *Monitor) apply(ev orchestrator.Event) {
	key := ev.WorkerName + "\x00" + ev.TaskTitle
	switch ev.Type {
	case orchestrator.EventTaskStarted:
		m.index[key] = len(m.rows)
		m.rows = append(m.rows, taskRow{
			worker:  ev.WorkerName,
			title:   ev.TaskTitle,
			status:  "running",
			started: time.Now(),
		})

	case orchestrator.EventTaskCompleted:
		if i, ok := m.lastRunning(ev.WorkerName); ok {
			m.rows[i].status = "done"
		}
		m.completed++

	case orchestrator.EventTaskFailed:
		if i, ok := m.lastRunning(ev.WorkerName); ok {
			m.rows[i].status = "failed"
			m.rows[i].message = ev.Message
		}
		m.failed++

	case orchestrator.EventBatchDone:
		m.done = true
		m.summary = ev.Message
	}
}

// lastRunning finds the most recent running row for a worker.
func (m *Monitor) lastRunning(worker string) (int, bool) {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].worker == worker && m.rows[i].status == "running" {
			return i, true
		}
	}
	return 0, false
}

// View renders the monitor.
func (m *Monitor) View() string {
	var b strings.Builder

	b.WriteString(m.headerStyle.Render("Foreman batch"))
	b.WriteString("\n\n")

	for _, row := range m.rows {
		var status string
		switch row.status {
		case "running":
			status = m.spinner.View() + m.runningStyle.Render(" running")
		case "done":
			status = m.doneStyle.Render("✓ done")
		case "failed":
			status = m.failedStyle.Render("✗ " + row.message)
		}
		b.WriteString(fmt.Sprintf("  %s %s  %s\n",
			m.workerStyle.Render(row.worker), status, row.title))
	}

	b.WriteString("\n")
	elapsed := time.Since(m.started).Round(time.Second)
	footer := fmt.Sprintf("%d done, %d failed · %s", m.completed, m.failed, elapsed)
	if m.done {
		footer = "finished: " + m.summary
	}
	b.WriteString(m.footerStyle.Render(footer + "  (q to quit)"))
	b.WriteString("\n")

	return b.String()
}

// Run drives a monitor to completion on the terminal.
func Run(events <-chan orchestrator.Event) error {
	p := tea.NewProgram(NewMonitor(events))
	_, err := p.Run()
	return err
}
