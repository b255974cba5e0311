package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aaearon/authlive/internal/authenticator"
	"github.com/aaearon/authlive/internal/countdown"
	"github.com/aaearon/authlive/internal/scan"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// CopiedFor is how long the "Copied!" feedback stays visible.
const CopiedFor = 2 * time.Second

// SessionFactory creates a fresh scan session for each scan request.
type SessionFactory func() *scan.Session

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	tokenStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const emptyPrompt = "Input your secret key"

type tickMsg struct {
	id int
	at time.Time
}

type clearCopiedMsg struct {
	id int
}

type scanOpenedMsg struct {
	id  int
	err error
}

type scanFrameMsg struct {
	id  int
	res scan.Result
	err error
}

// Model is the interactive authenticator screen. All state changes go
// through the controller; the model only routes events to it and schedules
// the follow-up commands.
type Model struct {
	ctrl       *authenticator.Controller
	newSession SessionFactory
	logger     *slog.Logger

	input textinput.Model
	bar   progress.Model

	// Each id invalidates messages from a superseded ticker, copy or scan.
	tickID    int
	copyID    int
	sessionID int

	session    *scan.Session
	scanCtx    context.Context
	cancelScan context.CancelFunc
	closed     bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithModelLogger sets the model logger.
func WithModelLogger(l *slog.Logger) ModelOption {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewModel creates the screen around ctrl. newSession may be nil, in which
// case scanning is unavailable.
func NewModel(ctrl *authenticator.Controller, newSession SessionFactory, opts ...ModelOption) *Model {
	input := textinput.New()
	input.Placeholder = "JBSWY3DPEHPK3PXP"
	input.Prompt = "Secret: "
	input.Focus()
	if s := ctrl.State().Secret; s != "" {
		input.SetValue(s)
	}

	m := &Model{
		ctrl:       ctrl,
		newSession: newSession,
		logger:     slog.New(slog.DiscardHandler),
		input:      input,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init starts the cursor blink and the countdown ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

// Update routes one event.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if msg.id != m.tickID || m.closed {
			return m, nil
		}
		m.ctrl.Tick()
		return m, m.tick()

	case clearCopiedMsg:
		if msg.id == m.copyID {
			m.ctrl.ClearCopied()
		}
		return m, nil

	case scanOpenedMsg:
		if msg.id != m.sessionID || m.session == nil {
			return m, nil
		}
		if msg.err != nil {
			m.finishScan(msg.err)
			return m, nil
		}
		return m, m.nextFrame()

	case scanFrameMsg:
		if msg.id != m.sessionID || m.session == nil {
			return m, nil
		}
		switch {
		case msg.err != nil:
			m.finishScan(msg.err)
		case msg.res.Done:
			m.releaseScan()
			m.ctrl.ScanSucceeded(msg.res)
			m.input.SetValue(m.ctrl.State().Secret)
		case m.session.Active():
			return m, m.nextFrame()
		default:
			m.finishScan(m.session.Err())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return m, tea.Quit

	case "esc":
		if m.ctrl.State().Scanning {
			m.stopScan()
			return m, nil
		}
		m.Close()
		return m, tea.Quit

	case "ctrl+s":
		return m, m.startScan()

	case "ctrl+v":
		if err := m.ctrl.Paste(); err == nil {
			m.input.SetValue(m.ctrl.State().Secret)
		}
		return m, nil

	case "ctrl+y":
		if err := m.ctrl.Copy(); err != nil || !m.ctrl.State().Copied {
			return m, nil
		}
		m.copyID++
		id := m.copyID
		return m, tea.Tick(CopiedFor, func(time.Time) tea.Msg {
			return clearCopiedMsg{id: id}
		})
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.ctrl.SetSecret(m.input.Value())
	}
	return m, cmd
}

// tick schedules the next countdown update on the wall-clock second.
func (m *Model) tick() tea.Cmd {
	id := m.tickID
	return tea.Every(countdown.Interval, func(t time.Time) tea.Msg {
		return tickMsg{id: id, at: t}
	})
}

func (m *Model) startScan() tea.Cmd {
	if m.newSession == nil || m.closed {
		return nil
	}
	if !m.ctrl.BeginScan() {
		return nil
	}

	m.sessionID++
	id := m.sessionID
	ctx, cancel := context.WithCancel(context.Background())
	session := m.newSession()
	m.session = session
	m.scanCtx = ctx
	m.cancelScan = cancel
	m.logger.Debug("scan started", "session", id)

	return func() tea.Msg {
		return scanOpenedMsg{id: id, err: session.Open(ctx)}
	}
}

// nextFrame reads and decodes one frame off the event loop.
func (m *Model) nextFrame() tea.Cmd {
	id := m.sessionID
	session := m.session
	ctx := m.scanCtx
	return func() tea.Msg {
		res, err := session.Attempt(ctx)
		return scanFrameMsg{id: id, res: res, err: err}
	}
}

func (m *Model) stopScan() {
	m.logger.Debug("scan cancelled", "session", m.sessionID)
	m.releaseScan()
	m.ctrl.ScanCancelled()
}

func (m *Model) finishScan(err error) {
	m.logger.Debug("scan ended", "session", m.sessionID, "error", err)
	m.releaseScan()
	m.ctrl.ScanFailed(err)
}

// releaseScan cancels the current session and drops its id so late results
// are ignored.
func (m *Model) releaseScan() {
	if m.session == nil {
		return
	}
	m.cancelScan()
	m.session.Cancel()
	m.session = nil
	m.scanCtx = nil
	m.cancelScan = nil
	m.sessionID++
}

// Close stops the ticker and any scan session. It is safe to call more
// than once.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.tickID++
	if m.ctrl.State().Scanning {
		m.stopScan()
	}
}

// View renders the screen.
func (m *Model) View() string {
	st := m.ctrl.State()
	var b strings.Builder

	b.WriteString(titleStyle.Render("authlive"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if st.HasSecret() {
		b.WriteString("  ")
		b.WriteString(tokenStyle.Render(st.Token.Format()))
		b.WriteString("\n  ")
		b.WriteString(m.bar.ViewAs(fraction(st.Remaining, st.Period)))
		fmt.Fprintf(&b, " %2ds\n", st.Remaining)
	} else {
		b.WriteString("  " + emptyPrompt + "\n")
	}

	if st.Copied {
		b.WriteString("\n  " + noticeStyle.Render("Copied!") + "\n")
	}
	if st.Scanning {
		b.WriteString("\n  Scanning for a QR code... (esc to cancel)\n")
	}
	if st.Message != "" {
		b.WriteString("\n  " + errorStyle.Render(st.Message) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+s scan • ctrl+v paste • ctrl+y copy • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func fraction(remaining, period int) float64 {
	if period <= 0 {
		return 0
	}
	return float64(remaining) / float64(period)
}
