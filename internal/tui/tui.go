// Package tui provides the Bubble Tea front end: case selection, briefing,
// the investigation workspace and the case result.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fakeyudi/forensim/internal/report"
	"github.com/fakeyudi/forensim/internal/scenario"
	"github.com/fakeyudi/forensim/internal/session"
)

type screen int

const (
	screenCases screen = iota
	screenBriefing
	screenPlay
	screenResult
)

type pane int

const (
	paneTerminal pane = iota
	paneChat
)

// Options wires the TUI to the game and its surroundings.
type Options struct {
	Game    *session.Game
	Catalog *scenario.Catalog
	// CasesDir is watched for case file changes when set.
	CasesDir     string
	Investigator string
	// ReportDir receives a case report whenever a case ends; empty disables
	// reports.
	ReportDir    string
	ReportFormat string
	// StartCase opens the briefing of this case id instead of the case list.
	StartCase string
	Log       *zap.Logger
}

type (
	chatReplyMsg struct {
		req   session.ChatRequest
		reply string
	}
	reloadMsg scenario.Reload
	tickMsg   struct{ id int }
)

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	ctx     context.Context
	game    *session.Game
	catalog *scenario.Catalog
	reloads <-chan scenario.Reload
	opts    Options
	log     *zap.Logger

	screen   screen
	cursor   int
	selected *scenario.Case

	focus     pane
	termInput textinput.Model
	chatInput textinput.Model
	termView  viewport.Model
	chatView  viewport.Model
	spinner   spinner.Model
	md        *markdown
	tickID    int

	result     *session.Summary
	reportPath string
	status     string

	width  int
	height int
	ready  bool
}

// New creates the root model.
func New(ctx context.Context, opts Options, reloads <-chan scenario.Reload) Model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type a command, e.g. help"
	ti.CharLimit = 512

	ci := textinput.New()
	ci.Prompt = "› "
	ci.Placeholder = "ask your co-investigator..."
	ci.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = assistantStyle

	m := Model{
		ctx:       ctx,
		game:      opts.Game,
		catalog:   opts.Catalog,
		reloads:   reloads,
		opts:      opts,
		log:       log,
		termInput: ti,
		chatInput: ci,
		spinner:   sp,
		md:        newMarkdown(),
	}
	if opts.StartCase != "" {
		if c, err := m.catalog.Get(opts.StartCase); err == nil {
			m.selected = c
			m.screen = screenBriefing
		} else {
			m.status = err.Error()
		}
	}
	return m
}

// ── Bubble Tea interface ──────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return m.waitForReload()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenCases:
			return m.updateCases(msg)
		case screenBriefing:
			return m.updateBriefing(msg)
		case screenPlay:
			return m.updatePlay(msg)
		case screenResult:
			return m.updateResult(msg)
		}

	case chatReplyMsg:
		m.game.CompleteChat(msg.req, msg.reply)
		m.refreshChat()
		return m, nil

	case spinner.TickMsg:
		if !m.game.Session().Composing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		if msg.id != m.tickID || m.screen != screenPlay {
			return m, nil
		}
		return m, m.tick()

	case reloadMsg:
		m.applyReload(scenario.Reload(msg))
		return m, m.waitForReload()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	switch m.screen {
	case screenBriefing:
		return m.viewBriefing()
	case screenPlay:
		return m.viewPlay()
	case screenResult:
		return m.viewResult()
	default:
		return m.viewCases()
	}
}

// ── Screens ───────────────────────────────────────────────────────────────────

func (m Model) updateCases(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cases := m.catalog.All()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(cases)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(cases) > 0 {
			m.selected = cases[m.cursor]
			m.screen = screenBriefing
			m.status = ""
		}
	}
	return m, nil
}

func (m Model) updateBriefing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.screen = screenCases
		m.selected = nil
	case "enter", "s":
		return m.startCase()
	}
	return m, nil
}

func (m Model) startCase() (tea.Model, tea.Cmd) {
	if err := m.game.StartCase(m.selected); err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.screen = screenPlay
	m.status = ""
	m.result = nil
	m.reportPath = ""
	m.setFocus(paneTerminal)
	m.termInput.Reset()
	m.chatInput.Reset()
	m.layout()
	m.tickID++
	return m, tea.Batch(textinput.Blink, m.tick())
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "esc", " ":
		m.screen = screenCases
		m.selected = nil
	}
	return m, nil
}

func (m Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		if m.focus == paneTerminal {
			m.setFocus(paneChat)
		} else {
			m.setFocus(paneTerminal)
		}
		return m, nil
	case "ctrl+s":
		return m.endCase(true)
	case "ctrl+q":
		return m.endCase(false)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		if m.focus == paneTerminal {
			m.termView, cmd = m.termView.Update(msg)
		} else {
			m.chatView, cmd = m.chatView.Update(msg)
		}
		return m, cmd
	}

	if m.focus == paneChat {
		return m.updateChat(msg)
	}
	return m.updateTerminal(msg)
}

func (m Model) updateTerminal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		line := m.termInput.Value()
		m.termInput.Reset()
		before := len(m.game.Session().FoundEvidence)
		m.game.RunCommand(line)
		if s := m.game.Session(); len(s.FoundEvidence) > before && s.Case.AllEvidenceFound() {
			m.status = "All evidence found. Press ctrl+s to submit your findings."
		}
		m.refreshTerminal()
		return m, nil
	case "up":
		if line, ok := m.game.RecallPrev(); ok {
			m.termInput.SetValue(line)
			m.termInput.CursorEnd()
		}
		return m, nil
	case "down":
		if line, ok := m.game.RecallNext(); ok {
			m.termInput.SetValue(line)
			m.termInput.CursorEnd()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.termInput, cmd = m.termInput.Update(msg)
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		return m, cmd
	}

	req, err := m.game.BeginChat(m.chatInput.Value())
	switch {
	case errors.Is(err, session.ErrEmptyMessage):
		return m, nil
	case errors.Is(err, session.ErrComposing):
		m.status = "Your co-investigator is still typing..."
		return m, nil
	case err != nil:
		m.status = err.Error()
		return m, nil
	}
	m.chatInput.Reset()
	m.status = ""
	m.refreshChat()
	return m, tea.Batch(m.spinner.Tick, m.respond(req))
}

func (m Model) endCase(completed bool) (tea.Model, tea.Cmd) {
	var (
		sum session.Summary
		err error
	)
	if completed {
		sum, err = m.game.SubmitFindings()
	} else {
		sum, err = m.game.Abandon()
	}
	if errors.Is(err, session.ErrNotPlaying) {
		return m, nil
	}
	m.status = ""
	if err != nil {
		m.status = err.Error()
	}
	m.result = &sum
	m.screen = screenResult

	if m.opts.ReportDir != "" {
		r := report.FromSummary(sum, m.opts.Investigator)
		path, werr := report.Write(m.opts.ReportDir, m.opts.ReportFormat, r)
		if werr != nil {
			m.log.Warn("report not written", zap.Error(werr))
			m.status = "Report not written: " + werr.Error()
		} else {
			m.reportPath = path
		}
	}
	return m, nil
}

// ── Commands ──────────────────────────────────────────────────────────────────

// respond runs the assistant off the update loop. It only touches the
// request snapshot.
func (m Model) respond(req session.ChatRequest) tea.Cmd {
	g, ctx := m.game, m.ctx
	return func() tea.Msg {
		return chatReplyMsg{req: req, reply: g.Respond(ctx, req)}
	}
}

func (m Model) tick() tea.Cmd {
	id := m.tickID
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{id: id} })
}

func (m Model) waitForReload() tea.Cmd {
	if m.reloads == nil {
		return nil
	}
	ch := m.reloads
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return reloadMsg(r)
	}
}

func (m *Model) applyReload(r scenario.Reload) {
	if r.Err != nil {
		m.log.Warn("case reload failed", zap.Error(r.Err))
		m.status = "Case reload failed: " + r.Err.Error()
		return
	}
	m.catalog = r.Catalog
	if n := m.catalog.Len(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.status = fmt.Sprintf("Case library reloaded: %d cases", m.catalog.Len())
	if len(r.Warnings) > 0 {
		m.status += fmt.Sprintf(" (%d skipped: %s)", len(r.Warnings), r.Warnings[0])
	}
	m.log.Info("cases reloaded", zap.Int("cases", m.catalog.Len()), zap.Strings("warnings", r.Warnings))
}

func (m *Model) setFocus(p pane) {
	m.focus = p
	if p == paneTerminal {
		m.chatInput.Blur()
		m.termInput.Focus()
	} else {
		m.termInput.Blur()
		m.chatInput.Focus()
	}
}

// Run starts the TUI and blocks until the player quits. The case directory,
// when configured, is watched for the lifetime of the program.
func Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reloads chan scenario.Reload
	if opts.CasesDir != "" {
		reloads = make(chan scenario.Reload)
		go func() {
			if err := scenario.Watch(ctx, opts.CasesDir, reloads); err != nil && opts.Log != nil {
				opts.Log.Warn("case watcher stopped", zap.Error(err))
			}
		}()
	}

	p := tea.NewProgram(New(ctx, opts, reloads), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
