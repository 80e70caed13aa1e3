package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finvix/finvix/internal/api"
	"github.com/finvix/finvix/internal/chart"
	"github.com/finvix/finvix/internal/report"
	"github.com/finvix/finvix/internal/results"
)

type rowsMsg struct {
	rows []results.Row
}

type fetchErrMsg struct {
	err error
}

type tickMsg time.Time

type snapshotMsg struct {
	path string
	err  error
}

// WatchModel is the live dashboard. It fetches on start and re-fetches
// every poll interval until it quits; responses are applied in arrival
// order, last write wins.
type WatchModel struct {
	client   *api.Client
	interval time.Duration
	timeout  time.Duration
	exports  string
	styles   Styles

	rows    []results.Row
	panels  []chart.Panel
	fetched bool
	lastErr error
	notice  string
	expired bool
	width   int
}

// NewWatch builds the dashboard watch view. Each poll uses the
// configured request timeout; snapshot exports are written under
// exportDir.
func NewWatch(client *api.Client, interval, timeout time.Duration, exportDir string) WatchModel {
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	return WatchModel{
		client:   client,
		interval: interval,
		timeout:  timeout,
		exports:  exportDir,
		styles:   DefaultStyles(),
		width:    100,
	}
}

// Expired reports whether the watch quit because the session expired,
// so the command can print the login prompt after the program exits.
func (m WatchModel) Expired() bool { return m.expired }

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m WatchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		rows, err := m.client.Dashboard(ctx)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return rowsMsg{rows: rows}
	}
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m WatchModel) snapshot() tea.Cmd {
	panels := m.panels
	exports := m.exports
	return func() tea.Msg {
		path, err := report.Snapshot(panels, "Finvix Dashboard", exports)
		return snapshotMsg{path: path, err: err}
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		// The tick loop keeps running whatever the last fetch did.
		return m, tea.Batch(m.fetch(), m.tick())

	case rowsMsg:
		m.rows = msg.rows
		m.panels = chart.DashboardPanels(msg.rows)
		m.fetched = true
		m.lastErr = nil

	case fetchErrMsg:
		if api.IsKind(msg.err, api.KindAuthExpired) {
			m.expired = true
			return m, tea.Quit
		}
		// Stale data stays on screen with the error underneath.
		m.lastErr = msg.err

	case snapshotMsg:
		if msg.err != nil {
			m.notice = m.styles.Error.Render("snapshot failed: " + msg.err.Error())
		} else {
			m.notice = m.styles.Notice.Render("snapshot written to " + msg.path)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "s":
			if len(m.panels) > 0 {
				m.notice = m.styles.Label.Render("capturing...")
				return m, m.snapshot()
			}
		case "r":
			return m, m.fetch()
		}
	}
	return m, nil
}

func (m WatchModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Finvix Dashboard"))
	sb.WriteString("\n\n")

	switch {
	case !m.fetched && m.lastErr == nil:
		sb.WriteString(m.styles.Label.Render("loading..."))
		sb.WriteString("\n")
	case !m.fetched:
		sb.WriteString(m.styles.Error.Render(describeErr(m.lastErr)))
		sb.WriteString("\n")
	default:
		for _, p := range m.panels {
			sb.WriteString(renderPanel(m.styles, p, m.width))
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.Label.Render(fmt.Sprintf("%d rows", len(m.rows))))
		sb.WriteString("\n")
		if m.lastErr != nil {
			sb.WriteString(m.styles.Error.Render("refresh failed: " + describeErr(m.lastErr)))
			sb.WriteString("\n")
		}
	}

	if m.notice != "" {
		sb.WriteString(m.notice)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render("r refresh • s snapshot • q quit"))
	return sb.String()
}

func describeErr(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Remediation()
	}
	return err.Error()
}
