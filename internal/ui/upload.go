package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/finvix/finvix/internal/api"
	"github.com/finvix/finvix/internal/forms"
	"github.com/finvix/finvix/internal/results"
)

type progressMsg int

type uploadDoneMsg struct {
	rows []results.Row
}

type uploadErrMsg struct {
	err error
}

// UploadModel runs one upload_predict request with a live progress
// bar. The upload starts immediately; there is nothing to press while
// it is in flight.
type UploadModel struct {
	client *api.Client
	job    forms.UploadJob
	bar    progress.Model
	styles Styles

	updates chan int
	percent int
	done    bool
	rows    []results.Row
	err     error
}

// NewUpload builds the upload view for one job.
func NewUpload(client *api.Client, job forms.UploadJob) UploadModel {
	return UploadModel{
		client:  client,
		job:     job,
		bar:     progress.New(progress.WithDefaultGradient()),
		styles:  DefaultStyles(),
		updates: make(chan int, 16),
	}
}

// Rows returns the prediction rows once the upload finished.
func (m UploadModel) Rows() []results.Row { return m.rows }

// Err returns the terminal failure, if any.
func (m UploadModel) Err() error { return m.err }

func (m UploadModel) Init() tea.Cmd {
	return tea.Batch(m.start(), m.waitForProgress())
}

func (m UploadModel) start() tea.Cmd {
	client, job, updates := m.client, m.job, m.updates
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), api.DefaultTimeout)
		defer cancel()
		rows, err := client.UploadPredict(ctx, job, func(pct int) {
			select {
			case updates <- pct:
			default:
				// Drop rather than stall the upload.
			}
		})
		if err != nil {
			return uploadErrMsg{err: err}
		}
		return uploadDoneMsg{rows: rows}
	}
}

func (m UploadModel) waitForProgress() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		return progressMsg(<-updates)
	}
}

func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8

	case progressMsg:
		if int(msg) > m.percent {
			m.percent = int(msg)
		}
		return m, m.waitForProgress()

	case uploadDoneMsg:
		m.percent = 100
		m.rows = msg.rows
		m.done = true
		return m, tea.Quit

	case uploadErrMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m UploadModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Uploading " + m.job.Filename()))
	sb.WriteString("\n\n")
	sb.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	sb.WriteString("\n")
	if m.done && m.err != nil {
		sb.WriteString(m.styles.Error.Render(describeErr(m.err)))
		sb.WriteString("\n")
	}
	return sb.String()
}
