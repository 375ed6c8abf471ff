package tui

import (
	"context"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/scenario"
	"github.com/fakeyudi/forensim/internal/session"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	engine, err := progress.NewEngine(&progress.MemoryStore{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	cat, _, err := scenario.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	opts.Game = session.NewGame(engine, assistant.NewKeywordAssistant(0), zap.NewNop())
	opts.Catalog = cat
	m := New(context.Background(), opts, nil)
	return send(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyType(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// run executes cmd and any batch it expands to, returning the messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func startPhishing(t *testing.T, m Model) Model {
	t.Helper()
	m = send(t, m, keyType(tea.KeyEnter))
	if m.screen != screenBriefing || m.selected.ID != "phishing-attack-001" {
		t.Fatalf("expected phishing briefing, got screen %d", m.screen)
	}
	m = send(t, m, keyType(tea.KeyEnter))
	if m.screen != screenPlay || !m.game.Session().Playing {
		t.Fatal("expected the case to be playing")
	}
	return m
}

func TestCaseListNavigation(t *testing.T) {
	m := newTestModel(t, Options{})

	if v := m.View(); !strings.Contains(v, "Case Manager") || !strings.Contains(v, "Suspicious Email Campaign") {
		t.Fatalf("case list missing from view:\n%s", v)
	}

	m = send(t, m, keyType(tea.KeyDown))
	m = send(t, m, keyType(tea.KeyDown))
	if m.cursor != m.catalog.Len()-1 {
		t.Errorf("cursor = %d, want clamped at %d", m.cursor, m.catalog.Len()-1)
	}
	m = send(t, m, keyType(tea.KeyUp))
	m = send(t, m, keyType(tea.KeyUp))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.cursor)
	}

	m = send(t, m, keyType(tea.KeyEnter))
	if m.screen != screenBriefing {
		t.Fatalf("screen = %d, want briefing", m.screen)
	}
	if v := m.View(); !strings.Contains(v, "CASE BRIEFING") {
		t.Errorf("briefing text missing:\n%s", v)
	}
	m = send(t, m, keyType(tea.KeyEsc))
	if m.screen != screenCases || m.selected != nil {
		t.Errorf("esc should return to the case list")
	}
}

func TestStartCaseOption(t *testing.T) {
	m := newTestModel(t, Options{StartCase: "ransomware-incident-001"})
	if m.screen != screenBriefing || m.selected.ID != "ransomware-incident-001" {
		t.Fatalf("expected ransomware briefing, got screen %d", m.screen)
	}

	m = newTestModel(t, Options{StartCase: "nope"})
	if m.screen != screenCases || !strings.Contains(m.status, "case not found") {
		t.Errorf("unknown case should stay on the list with a status, got %q", m.status)
	}
}

func TestTerminalCommandsAndRecall(t *testing.T) {
	m := startPhishing(t, newTestModel(t, Options{}))

	m = send(t, m, runes("cd users"))
	m = send(t, m, keyType(tea.KeyEnter))
	m = send(t, m, runes("dir"))
	m = send(t, m, keyType(tea.KeyEnter))

	hist := m.game.Session().TerminalHistory
	if got := hist[len(hist)-1].Command; got != "dir" {
		t.Fatalf("last command = %q, want dir", got)
	}
	if m.game.Session().CurrentPath != "/Users" {
		t.Errorf("cwd = %q, want /Users", m.game.Session().CurrentPath)
	}
	if m.termInput.Value() != "" {
		t.Errorf("input should be cleared, got %q", m.termInput.Value())
	}

	m = send(t, m, keyType(tea.KeyUp))
	if m.termInput.Value() != "dir" {
		t.Errorf("up = %q, want dir", m.termInput.Value())
	}
	m = send(t, m, keyType(tea.KeyUp))
	if m.termInput.Value() != "cd users" {
		t.Errorf("up again = %q, want 'cd users'", m.termInput.Value())
	}
	m = send(t, m, keyType(tea.KeyDown))
	m = send(t, m, keyType(tea.KeyDown))
	if m.termInput.Value() != "" {
		t.Errorf("down past newest = %q, want empty", m.termInput.Value())
	}

	if v := m.View(); !strings.Contains(v, "Investigating: Suspicious Email Campaign") {
		t.Errorf("play header missing:\n%s", v)
	}
}

func TestEvidenceStatus(t *testing.T) {
	m := startPhishing(t, newTestModel(t, Options{}))

	for _, line := range []string{
		`type \Users\jsmith\Desktop\suspicious_email.eml`,
		`type \Windows\System32\config\SECURITY.evtx`,
		`type \Windows\Logs\IIS\access.log`,
		`type \Users\jsmith\AppData\Local\Google\Chrome\History`,
	} {
		m.termInput.SetValue(line)
		m = send(t, m, keyType(tea.KeyEnter))
	}
	if !m.game.Session().Case.AllEvidenceFound() {
		t.Fatalf("expected all evidence found, have %v", m.game.Session().FoundEvidence)
	}
	if !strings.Contains(m.status, "All evidence found") {
		t.Errorf("status = %q", m.status)
	}
}

func TestChatRoundTrip(t *testing.T) {
	m := startPhishing(t, newTestModel(t, Options{}))

	m = send(t, m, keyType(tea.KeyTab))
	if m.focus != paneChat {
		t.Fatal("tab should focus the chat pane")
	}
	m = send(t, m, runes("I need a hint"))
	m, cmd := sendCmd(t, m, keyType(tea.KeyEnter))
	if !m.game.Session().Composing {
		t.Fatal("expected composing after sending")
	}

	// A second message while composing is refused.
	m = send(t, m, runes("hello?"))
	m = send(t, m, keyType(tea.KeyEnter))
	if !strings.Contains(m.status, "still typing") {
		t.Errorf("status = %q", m.status)
	}

	var reply chatReplyMsg
	for _, msg := range run(cmd) {
		if r, ok := msg.(chatReplyMsg); ok {
			reply = r
		}
	}
	if !strings.HasPrefix(reply.reply, "💡 **Hint:**") {
		t.Fatalf("reply = %q", reply.reply)
	}

	m = send(t, m, reply)
	s := m.game.Session()
	if s.Composing {
		t.Error("composing should be cleared")
	}
	last := s.ChatHistory[len(s.ChatHistory)-1]
	if last.Role != assistant.RoleAssistant || last.Content != reply.reply {
		t.Errorf("last message = %+v", last)
	}
	if got := m.game.Progress().HintsUsed["phishing-attack-001"]; got != 1 {
		t.Errorf("hints = %d, want 1", got)
	}
}

func TestSubmitWritesReport(t *testing.T) {
	dir := t.TempDir()
	m := startPhishing(t, newTestModel(t, Options{ReportDir: dir, ReportFormat: "json", Investigator: "Dana"}))

	m = send(t, m, keyType(tea.KeyCtrlS))
	if m.screen != screenResult {
		t.Fatalf("screen = %d, want result", m.screen)
	}
	if m.result.Completed {
		t.Error("case with missing evidence should not be completed")
	}
	if m.reportPath == "" {
		t.Fatalf("no report written, status %q", m.status)
	}
	if _, err := os.Stat(m.reportPath); err != nil {
		t.Errorf("report missing: %v", err)
	}
	if v := m.View(); !strings.Contains(v, "Case Left Unsolved") {
		t.Errorf("result view:\n%s", v)
	}

	// A reply arriving after the case ended is dropped.
	m = send(t, m, chatReplyMsg{req: session.ChatRequest{Seq: 1}, reply: "late"})
	if m.game.Session().Playing || len(m.game.Session().ChatHistory) != 0 {
		t.Error("late reply should not revive the session")
	}

	m = send(t, m, keyType(tea.KeyEnter))
	if m.screen != screenCases {
		t.Errorf("screen = %d, want cases", m.screen)
	}
}

func TestLeaveCase(t *testing.T) {
	m := startPhishing(t, newTestModel(t, Options{}))
	m = send(t, m, keyType(tea.KeyCtrlQ))
	if m.screen != screenResult || m.result.Outcome.Reward.Final != 0 {
		t.Fatalf("leaving should end the case with no reward, got %+v", m.result.Outcome)
	}
	if m.reportPath != "" {
		t.Error("no report directory configured, nothing should be written")
	}
}

func TestReload(t *testing.T) {
	m := newTestModel(t, Options{})
	m = send(t, m, keyType(tea.KeyDown))

	one, _ := m.catalog.Get("phishing-attack-001")
	m = send(t, m, reloadMsg(scenario.Reload{Catalog: scenario.NewCatalog(one), Warnings: []string{"bad.yaml: missing id"}}))
	if m.catalog.Len() != 1 || m.cursor != 0 {
		t.Errorf("catalog len %d cursor %d", m.catalog.Len(), m.cursor)
	}
	if !strings.Contains(m.status, "reloaded: 1 cases") || !strings.Contains(m.status, "1 skipped") {
		t.Errorf("status = %q", m.status)
	}

	m = send(t, m, reloadMsg(scenario.Reload{Err: os.ErrPermission}))
	if m.catalog.Len() != 1 || !strings.Contains(m.status, "Case reload failed") {
		t.Errorf("failed reload should keep the catalog, status %q", m.status)
	}
}

func TestWaitForReload(t *testing.T) {
	ch := make(chan scenario.Reload, 1)
	m := New(context.Background(), Options{Catalog: scenario.NewCatalog()}, ch)

	ch <- scenario.Reload{Catalog: scenario.NewCatalog()}
	if _, ok := m.Init()().(reloadMsg); !ok {
		t.Error("expected a reload message")
	}
	close(ch)
	if msg := m.waitForReload()(); msg != nil {
		t.Errorf("closed channel should yield nil, got %T", msg)
	}

	if cmd := New(context.Background(), Options{Catalog: scenario.NewCatalog()}, nil).Init(); cmd != nil {
		t.Error("no watcher, no command")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	m := startPhishing(t, newTestModel(t, Options{}))
	if _, cmd := sendCmd(t, m, tickMsg{id: m.tickID - 1}); cmd != nil {
		t.Error("stale tick should not reschedule")
	}
	if _, cmd := sendCmd(t, m, tickMsg{id: m.tickID}); cmd == nil {
		t.Error("current tick should reschedule")
	}
}

func TestMarkdownFallback(t *testing.T) {
	md := newMarkdown()
	if got := md.render("a", "**bold**"); got != "**bold**" {
		t.Errorf("without a renderer the raw text is kept, got %q", got)
	}
	md.resize(60)
	if got := md.render("b", "plain words"); !strings.Contains(got, "plain") {
		t.Errorf("rendered = %q", got)
	}
}
