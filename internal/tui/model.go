package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragclient/internal/controller"
	"ragclient/internal/domain"
	"ragclient/internal/render"
)

// ControllerPort is the TUI-facing subset of the request controller.
type ControllerPort interface {
	SubmitIngestion(ctx context.Context, draftText string) (domain.IngestReceipt, error)
	SubmitQuery(ctx context.Context, draftQuery string) (domain.AnswerResult, error)
	Snapshot() controller.State
}

type pane int

const (
	paneText pane = iota
	paneQuery
)

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctrl ControllerPort
	ctx  context.Context
	keys KeyMap

	text     textarea.Model
	query    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	focus pane
	// waiting is set when a submission is dispatched and cleared when its
	// completion message arrives. The controller only turns Pending once the
	// command runs, so the model gates triggers on this flag as well.
	waiting bool
	state   controller.State
	ready   bool
}

// New creates a new TUI model instance.
func New(ctx context.Context, ctrl ControllerPort) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste your document content here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(6)
	ta.Focus()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctrl:     ctrl,
		ctx:      ctx,
		keys:     DefaultKeyMap(),
		text:     ta,
		query:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		help:     help.New(),
		state:    ctrl.Snapshot(),
	}
}

// Init initializes the model (text area cursor blink).
func (m Model) Init() tea.Cmd { return textarea.Blink }

// DraftText returns the unsubmitted ingestion text.
func (m Model) DraftText() string { return m.text.Value() }

// DraftQuery returns the unsubmitted question.
func (m Model) DraftQuery() string { return m.query.Value() }

// Pending reports whether submit triggers are disabled.
func (m Model) Pending() bool { return m.waiting || m.state.Pending() }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.resize(msg.Width, msg.Height)
		return m, nil

	case IngestCompleted, QueryCompleted:
		m.waiting = false
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.SwitchPane):
			return m, m.switchPane()
		case key.Matches(msg, m.keys.Scroll):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case m.focus == paneText && key.Matches(msg, m.keys.Ingest):
			return m.submitIngestion()
		case m.focus == paneQuery && key.Matches(msg, m.keys.Query):
			return m.submitQuery()
		}
	}

	var cmd tea.Cmd
	if m.focus == paneText {
		m.text, cmd = m.text.Update(msg)
	} else {
		m.query, cmd = m.query.Update(msg)
	}
	return m, cmd
}

func (m *Model) switchPane() tea.Cmd {
	if m.focus == paneText {
		m.focus = paneQuery
		m.text.Blur()
		return m.query.Focus()
	}
	m.focus = paneText
	m.query.Blur()
	return m.text.Focus()
}

func (m Model) submitIngestion() (tea.Model, tea.Cmd) {
	if m.Pending() {
		return m, nil
	}
	m.waiting = true
	ctrl, ctx, text := m.ctrl, m.ctx, m.text.Value()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		receipt, err := ctrl.SubmitIngestion(ctx, text)
		return IngestCompleted{Receipt: receipt, Err: err}
	})
}

func (m Model) submitQuery() (tea.Model, tea.Cmd) {
	if m.Pending() {
		return m, nil
	}
	m.waiting = true
	ctrl, ctx, q := m.ctrl, m.ctx, m.query.Value()
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		answer, err := ctrl.SubmitQuery(ctx, q)
		return QueryCompleted{Answer: answer, Err: err}
	})
}

func (m *Model) refresh() {
	m.state = m.ctrl.Snapshot()
	if m.state.Answer != nil {
		m.viewport.SetContent(render.Answer(*m.state.Answer, render.TerminalStyles()))
		m.viewport.GotoTop()
	}
}

func (m *Model) resize(width, height int) {
	fw, _ := panelStyle.GetFrameSize()
	inner := max(20, width-fw)
	m.text.SetWidth(inner)
	m.query.Width = inner - len(m.query.Prompt) - 1

	// title, two panels with their buttons, loading/error/notice lines, help
	reserved := 1 + (m.text.Height() + 3) + 4 + 3 + 1
	_, ah := answerStyle.GetFrameSize()
	m.viewport.Width = inner
	m.viewport.Height = max(3, height-reserved-ah)
	if m.state.Answer != nil {
		m.viewport.SetContent(render.Answer(*m.state.Answer, render.TerminalStyles()))
	}
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	pending := m.Pending()

	ingestLabel, queryLabel := "Ingest Document", "Get Answer"
	btn := buttonStyle
	if pending {
		ingestLabel, queryLabel = "Ingesting...", "Thinking..."
		btn = disabledBtn
	}

	textPanel, queryPanel := panelStyle, panelStyle
	if m.focus == paneText {
		textPanel = focusedPanel
	} else {
		queryPanel = focusedPanel
	}

	sections := []string{
		titleStyle.Render("Mini RAG App"),
		textPanel.Render(m.text.View() + "\n" + btn.Render("[ "+ingestLabel+" ]")),
		queryPanel.Render(m.query.View() + "\n" + btn.Render("[ "+queryLabel+" ]")),
	}
	if pending {
		sections = append(sections, loadingStyle.Render(m.spinner.View()+" Processing request..."))
	}
	if m.state.Error != "" {
		sections = append(sections, errorStyle.Render(m.state.Error))
	}
	if m.state.Notice != "" && !pending {
		sections = append(sections, noticeStyle.Render(m.state.Notice))
	}
	if m.state.Answer != nil {
		sections = append(sections, answerStyle.Render(m.viewport.View()))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
