package session_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/scenario"
	"github.com/fakeyudi/forensim/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type responderFunc func(ctx context.Context, msg string, c *scenario.Case, h []assistant.Message) (string, error)

func (f responderFunc) Respond(ctx context.Context, msg string, c *scenario.Case, h []assistant.Message) (string, error) {
	return f(ctx, msg, c, h)
}

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// tb is the subset of testing.TB that rapid.T also provides.
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
}

func phishing(t tb) *scenario.Case {
	t.Helper()
	cat, _, err := scenario.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	c, err := cat.Get("phishing-attack-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return c
}

func newGame(t tb, r assistant.Responder) (*session.Game, *progress.MemoryStore, *clock) {
	t.Helper()
	store := &progress.MemoryStore{}
	engine, err := progress.NewEngine(store, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if r == nil {
		r = assistant.NewKeywordAssistant(0)
	}
	clk := &clock{t: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
	return session.NewGame(engine, r, zap.NewNop(), session.WithClock(clk.now)), store, clk
}

func TestStartCaseSeedsSession(t *testing.T) {
	g, _, clk := newGame(t, nil)
	c := phishing(t)

	if err := g.StartCase(c); err != nil {
		t.Fatalf("StartCase: %v", err)
	}
	s := g.Session()
	if !s.Playing || s.CurrentPath != "/" || !s.StartTime.Equal(clk.now()) {
		t.Errorf("unexpected session: playing=%v path=%q start=%v", s.Playing, s.CurrentPath, s.StartTime)
	}
	if len(s.ChatHistory) != 2 {
		t.Fatalf("chat history = %d messages, want 2", len(s.ChatHistory))
	}
	if got := s.ChatHistory[0].Content; got != `Case "Suspicious Email Campaign - ABC Corp" started. Good luck, investigator!` {
		t.Errorf("system message = %q", got)
	}
	if s.ChatHistory[1].Role != assistant.RoleAssistant || !strings.Contains(s.ChatHistory[1].Content, "Co-Investigator Online") {
		t.Errorf("greeting = %+v", s.ChatHistory[1])
	}
	want := "Investigating: Suspicious Email Campaign - ABC Corp\nType 'help' for available commands."
	if len(s.TerminalHistory) != 1 || s.TerminalHistory[0].Output != want {
		t.Errorf("terminal history = %+v", s.TerminalHistory)
	}
	if s.Case == c {
		t.Error("session must work on a copy of the case")
	}

	if err := g.StartCase(c); !errors.Is(err, session.ErrCaseInProgress) {
		t.Errorf("second StartCase err = %v, want ErrCaseInProgress", err)
	}
}

func TestRunCommandWithoutCase(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if out := g.RunCommand("ls"); out != "No case loaded." {
		t.Errorf("got %q", out)
	}
}

func TestEvidenceBannerScenarioC(t *testing.T) {
	g, store, _ := newGame(t, nil)
	c := phishing(t)
	if err := g.StartCase(c); err != nil {
		t.Fatal(err)
	}

	if out := g.RunCommand(`cd Users\jsmith\Desktop`); out != "" {
		t.Fatalf("cd: %q", out)
	}
	first := g.RunCommand("cat suspicious_email.eml")
	banner := "\n\n⚠️  EVIDENCE FOUND: suspicious_email.eml\n    The original phishing email"
	if !strings.HasSuffix(first, banner) {
		t.Fatalf("first read missing banner: %q", first)
	}

	second := g.RunCommand("cat suspicious_email.eml")
	if strings.Contains(second, "EVIDENCE FOUND") {
		t.Errorf("second read repeated the banner")
	}
	if second+banner != first {
		t.Errorf("second read should be the bare content")
	}

	s := g.Session()
	if !slices.Equal(s.FoundEvidence, []string{"ev-1"}) {
		t.Errorf("FoundEvidence = %v", s.FoundEvidence)
	}
	if !s.Case.Evidence[0].IsFound || !s.Case.Objectives[0].IsCompleted {
		t.Error("working copy not updated")
	}
	if c.Evidence[0].IsFound {
		t.Error("catalog case was mutated")
	}

	saved, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.TotalEvidenceFound != 1 {
		t.Errorf("TotalEvidenceFound = %d, want 1", saved.TotalEvidenceFound)
	}
}

func TestClearIsNotRecorded(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	g.RunCommand("ls")
	g.RunCommand("clear")
	s := g.Session()
	if len(s.TerminalHistory) != 0 {
		t.Errorf("terminal history after clear = %+v", s.TerminalHistory)
	}
	g.RunCommand("pwd")
	if len(s.TerminalHistory) != 1 || s.TerminalHistory[0].Command != "pwd" {
		t.Errorf("terminal history = %+v", s.TerminalHistory)
	}
	if s.Recall.Len() != 3 {
		t.Errorf("recall should hold every submitted line, got %d", s.Recall.Len())
	}
}

func TestUnrecognizedCommandLeavesStateUnchanged(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	g.RunCommand("cd users")
	out := g.RunCommand("foobar")
	if out != "'foobar' is not recognized as an internal or external command." {
		t.Errorf("got %q", out)
	}
	s := g.Session()
	if s.CurrentPath != "/Users" || len(s.FoundEvidence) != 0 {
		t.Errorf("state changed: path=%q found=%v", s.CurrentPath, s.FoundEvidence)
	}
}

// Feature: forensim, Property 6: found evidence is monotonic and counted once
func TestEvidenceMonotonic(t *testing.T) {
	c := phishing(t)
	var reads []string
	for _, ev := range c.Evidence {
		reads = append(reads, "type "+ev.Path)
	}
	lines := append(reads, "ls", "cd ..", "cd /Users/jsmith/Desktop", "cat screenshot.png", "clear", "foobar")

	rapid.Check(t, func(t *rapid.T) {
		g, store, _ := newGame(t, nil)
		if err := g.StartCase(c); err != nil {
			t.Fatal(err)
		}
		var prev []string
		for i, n := 0, rapid.IntRange(1, 30).Draw(t, "n"); i < n; i++ {
			line := rapid.SampledFrom(lines).Draw(t, "line")
			out := g.RunCommand(line)
			cur := g.Session().FoundEvidence

			if len(cur) < len(prev) || !slices.Equal(cur[:len(prev)], prev) {
				t.Fatalf("found evidence shrank or changed: %v -> %v", prev, cur)
			}
			gained := len(cur) - len(prev)
			if gained > 1 {
				t.Fatalf("one command found %d items", gained)
			}
			if hasBanner := strings.Contains(out, "EVIDENCE FOUND"); hasBanner != (gained == 1) {
				t.Fatalf("%q: banner=%v gained=%d", line, hasBanner, gained)
			}
			prev = slices.Clone(cur)
		}

		p, err := store.Load()
		if errors.Is(err, progress.ErrNoProgress) {
			p = progress.New()
		} else if err != nil {
			t.Fatal(err)
		}
		if p.TotalEvidenceFound != len(prev) {
			t.Fatalf("TotalEvidenceFound = %d, found %d", p.TotalEvidenceFound, len(prev))
		}
	})
}

func TestChatRoundTrip(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if _, err := g.BeginChat("hello"); !errors.Is(err, session.ErrNotPlaying) {
		t.Fatalf("BeginChat without case err = %v", err)
	}
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}

	req, err := g.BeginChat("give me a hint")
	if err != nil {
		t.Fatalf("BeginChat: %v", err)
	}
	if !g.Session().Composing {
		t.Error("Composing should be set")
	}
	if _, err := g.BeginChat("again"); !errors.Is(err, session.ErrComposing) {
		t.Errorf("overlapping BeginChat err = %v, want ErrComposing", err)
	}
	if len(req.History) != 2 {
		t.Errorf("request history should exclude the new message, got %d", len(req.History))
	}

	var wg sync.WaitGroup
	var reply string
	wg.Add(1)
	go func() {
		defer wg.Done()
		reply = g.Respond(context.Background(), req)
	}()
	wg.Wait()
	g.CompleteChat(req, reply)

	s := g.Session()
	if s.Composing {
		t.Error("Composing should be cleared")
	}
	last := s.ChatHistory[len(s.ChatHistory)-1]
	if last.Role != assistant.RoleAssistant || !strings.HasPrefix(last.Content, "💡 **Hint:**") {
		t.Errorf("last message = %+v", last)
	}
	if got := g.Progress().HintsUsed["phishing-attack-001"]; got != 1 {
		t.Errorf("hints used = %d, want 1", got)
	}
}

func TestStuckIsNotCountedAsHint(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	reply, err := g.Ask(context.Background(), "I'm stuck")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Hint") {
		t.Errorf("reply = %q", reply)
	}
	if got := g.Progress().HintsUsed["phishing-attack-001"]; got != 0 {
		t.Errorf("hints used = %d, want 0", got)
	}
}

func TestAskSubstitutesApology(t *testing.T) {
	tests := map[string]responderFunc{
		"error": func(context.Context, string, *scenario.Case, []assistant.Message) (string, error) {
			return "", errors.New("backend down")
		},
		"panic": func(context.Context, string, *scenario.Case, []assistant.Message) (string, error) {
			panic("boom")
		},
	}
	for name, r := range tests {
		t.Run(name, func(t *testing.T) {
			g, _, _ := newGame(t, r)
			if err := g.StartCase(phishing(t)); err != nil {
				t.Fatal(err)
			}
			reply, err := g.Ask(context.Background(), "what now?")
			if err != nil {
				t.Fatalf("Ask: %v", err)
			}
			if reply != session.Apology {
				t.Errorf("reply = %q", reply)
			}
			s := g.Session()
			if s.Composing {
				t.Error("Composing stuck after failure")
			}
			if s.ChatHistory[len(s.ChatHistory)-1].Content != session.Apology {
				t.Error("apology not appended")
			}
		})
	}
}

func TestLateReplyIsDropped(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	first, err := g.BeginChat("hello")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Abandon(); err != nil {
		t.Fatal(err)
	}
	g.CompleteChat(first, "too late")
	s := g.Session()
	if s.Composing || len(s.ChatHistory) != 0 {
		t.Errorf("late reply leaked into idle session: %+v", s)
	}

	// A new case with its own pending question ignores the old reply.
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	second, err := g.BeginChat("second question")
	if err != nil {
		t.Fatal(err)
	}
	g.CompleteChat(first, "stale reply from previous case")
	s = g.Session()
	if !s.Composing {
		t.Error("stale reply cleared the pending request")
	}
	if last := s.ChatHistory[len(s.ChatHistory)-1]; last.Content != "second question" {
		t.Errorf("last message = %q, want the pending question", last.Content)
	}
	if _, err := g.BeginChat("third"); !errors.Is(err, session.ErrComposing) {
		t.Errorf("BeginChat err = %v, want ErrComposing", err)
	}

	g.CompleteChat(second, "answer")
	s = g.Session()
	if s.Composing || s.ChatHistory[len(s.ChatHistory)-1].Content != "answer" {
		t.Errorf("pending reply not applied: composing=%v", s.Composing)
	}
}

func TestEndCaseScenarioA(t *testing.T) {
	g, _, clk := newGame(t, nil)
	c := phishing(t)
	if err := g.StartCase(c); err != nil {
		t.Fatal(err)
	}
	for _, ev := range c.Evidence {
		g.RunCommand("type " + ev.Path)
	}
	clk.advance(10 * time.Minute)

	sum, err := g.SubmitFindings()
	if err != nil {
		t.Fatalf("SubmitFindings: %v", err)
	}
	if !sum.Completed || sum.Outcome.Reward.Final != 600 || len(sum.Outcome.Badges) != 3 {
		t.Errorf("summary = completed %v reward %+v badges %d", sum.Completed, sum.Outcome.Reward, len(sum.Outcome.Badges))
	}
	if sum.EndedAt.Sub(sum.StartedAt) != 10*time.Minute {
		t.Errorf("elapsed = %v", sum.EndedAt.Sub(sum.StartedAt))
	}
	if len(sum.FoundEvidence) != 4 {
		t.Errorf("FoundEvidence = %v", sum.FoundEvidence)
	}

	s := g.Session()
	if s.Playing || s.Case != nil || s.CurrentPath != "/" || len(s.TerminalHistory) != 0 {
		t.Errorf("session not reset: %+v", s)
	}
	if g.Progress().XP != 600 {
		t.Errorf("XP = %d", g.Progress().XP)
	}
}

func TestEndCaseScenarioB(t *testing.T) {
	g, _, clk := newGame(t, nil)
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Ask(context.Background(), "hint please"); err != nil {
		t.Fatal(err)
	}
	clk.advance(35 * time.Minute)

	sum, err := g.EndCase(true)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Outcome.Reward.Final != 375 || sum.HintsUsed != 1 {
		t.Errorf("reward = %+v hints = %d", sum.Outcome.Reward, sum.HintsUsed)
	}
	for _, b := range sum.Outcome.Badges {
		if b.ID == progress.SpeedDemon || b.ID == progress.GuidedLight {
			t.Errorf("unexpected badge %s", b.ID)
		}
	}
}

func TestSubmitFindingsIncomplete(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	g.RunCommand(`type \Users\jsmith\Desktop\suspicious_email.eml`)
	sum, err := g.SubmitFindings()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Completed || sum.Outcome.Reward.Final != 0 {
		t.Errorf("partial submission should not complete: %+v", sum.Outcome)
	}
}

func TestEndWithoutCase(t *testing.T) {
	g, _, _ := newGame(t, nil)
	if _, err := g.EndCase(true); !errors.Is(err, session.ErrNotPlaying) {
		t.Errorf("EndCase err = %v", err)
	}
	if _, err := g.SubmitFindings(); !errors.Is(err, session.ErrNotPlaying) {
		t.Errorf("SubmitFindings err = %v", err)
	}
}

func TestEndCaseReportsSaveFailure(t *testing.T) {
	g, store, clk := newGame(t, nil)
	if err := g.StartCase(phishing(t)); err != nil {
		t.Fatal(err)
	}
	store.Err = errors.New("read-only")
	clk.advance(time.Minute)
	sum, err := g.EndCase(true)
	if err == nil {
		t.Fatal("expected save error")
	}
	if sum.Outcome.Reward.Final != 600 || g.Session().Playing {
		t.Errorf("summary should still be valid: %+v", sum.Outcome)
	}
}
