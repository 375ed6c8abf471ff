package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/evidence"
	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/scenario"
	"github.com/fakeyudi/forensim/internal/terminal"
)

var (
	// ErrCaseInProgress is returned by StartCase while another case is active.
	ErrCaseInProgress = errors.New("a case is already in progress")
	// ErrNotPlaying is returned by actions that need an active case.
	ErrNotPlaying = errors.New("no case in progress")
	// ErrComposing is returned by BeginChat while a reply is pending.
	ErrComposing = errors.New("the assistant is still composing a reply")
	// ErrEmptyMessage is returned by BeginChat for blank input.
	ErrEmptyMessage = errors.New("empty message")
)

// Apology replaces an assistant reply that failed.
const Apology = "Sorry, I encountered an error. Please try again."

// Game owns the session and applies every player action to it. It is not
// safe for concurrent use; only Respond may run off the owning goroutine.
type Game struct {
	engine    *progress.Engine
	responder assistant.Responder
	log       *zap.Logger
	interp    *terminal.Interpreter
	now       func() time.Time
	// chatSeq numbers chat requests across sessions.
	chatSeq uint64

	s Session
}

// Option configures a Game.
type Option func(*Game)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// NewGame returns an idle game.
func NewGame(engine *progress.Engine, responder assistant.Responder, log *zap.Logger, opts ...Option) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		engine:    engine,
		responder: responder,
		log:       log,
		interp:    terminal.New(),
		now:       time.Now,
		s:         emptySession(),
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Session exposes the current state for rendering. Callers must not modify it.
func (g *Game) Session() *Session { return &g.s }

// Progress returns a copy of the persisted progress record.
func (g *Game) Progress() *progress.UserProgress { return g.engine.Progress() }

// Elapsed is the time since the case started, or zero when idle.
func (g *Game) Elapsed() time.Duration {
	if !g.s.Playing {
		return 0
	}
	return g.now().Sub(g.s.StartTime)
}

// StartCase begins c on a fresh working copy.
func (g *Game) StartCase(c *scenario.Case) error {
	if g.s.Playing {
		return ErrCaseInProgress
	}
	if c == nil {
		return fmt.Errorf("starting case: %w", scenario.ErrCaseNotFound)
	}

	now := g.now()
	g.s = emptySession()
	g.s.Case = c.Clone()
	g.s.Playing = true
	g.s.StartTime = now
	g.s.ChatHistory = []assistant.Message{
		assistant.NewMessage(assistant.RoleSystem, fmt.Sprintf("Case \"%s\" started. Good luck, investigator!", c.Title), now),
		assistant.NewMessage(assistant.RoleAssistant, assistant.Greeting(c.Title), now),
	}
	g.s.TerminalHistory = []TerminalEntry{{
		Command:   "system",
		Output:    fmt.Sprintf("Investigating: %s\nType 'help' for available commands.", c.Title),
		Timestamp: now,
	}}

	g.log.Info("case started", zap.String("case", c.ID), zap.String("title", c.Title))
	return nil
}

// RunCommand executes one terminal line and returns its output, including
// the evidence banner when the line uncovered evidence.
func (g *Game) RunCommand(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}

	var c *scenario.Case
	if g.s.Playing {
		c = g.s.Case
	}
	res := g.interp.Execute(terminal.Env{Case: c, Cwd: g.s.CurrentPath}, line)
	g.s.CurrentPath = res.Cwd

	out := res.Output
	if res.Read != "" && c != nil {
		if ev, ok := evidence.Match(res.Read, c.Evidence, g.s.FoundEvidence); ok {
			g.markFound(ev.ID)
			out += evidence.Banner(ev)
		}
	}

	g.s.Recall.Push(line)
	if res.Clear {
		g.s.TerminalHistory = nil
	} else {
		g.s.TerminalHistory = append(g.s.TerminalHistory, TerminalEntry{Command: line, Output: out, Timestamp: g.now()})
	}
	g.log.Debug("command", zap.String("line", line), zap.String("cwd", g.s.CurrentPath))
	return out
}

// RecallPrev steps back through the command history.
func (g *Game) RecallPrev() (string, bool) { return g.s.Recall.Up() }

// RecallNext steps forward through the command history; past the newest
// entry it yields an empty line.
func (g *Game) RecallNext() (string, bool) { return g.s.Recall.Down() }

func (g *Game) markFound(id string) {
	if slices.Contains(g.s.FoundEvidence, id) {
		return
	}
	g.s.Case.MarkFound(id)
	g.s.FoundEvidence = append(g.s.FoundEvidence, id)
	g.log.Info("evidence found", zap.String("case", g.s.Case.ID), zap.String("evidence", id))
	// Save failures are logged by the engine; play continues.
	_, _ = g.engine.RecordEvidence(g.s.Case.ID, id)
}

// ChatRequest is an immutable snapshot handed to Respond.
type ChatRequest struct {
	// Seq identifies the request; CompleteChat only accepts the pending one.
	Seq     uint64
	Message string
	Case    *scenario.Case
	History []assistant.Message
}

// BeginChat records the player's message and marks the assistant as
// composing. A message mentioning "hint" counts as a hint for the case.
func (g *Game) BeginChat(text string) (ChatRequest, error) {
	text = strings.TrimSpace(text)
	switch {
	case !g.s.Playing:
		return ChatRequest{}, ErrNotPlaying
	case g.s.Composing:
		return ChatRequest{}, ErrComposing
	case text == "":
		return ChatRequest{}, ErrEmptyMessage
	}

	g.chatSeq++
	req := ChatRequest{
		Seq:     g.chatSeq,
		Message: text,
		Case:    g.s.Case.Clone(),
		History: slices.Clone(g.s.ChatHistory),
	}
	g.s.ChatHistory = append(g.s.ChatHistory, assistant.NewMessage(assistant.RoleUser, text, g.now()))
	if strings.Contains(strings.ToLower(text), "hint") {
		// Save failures are logged by the engine; play continues.
		_ = g.engine.RecordHint(g.s.Case.ID)
	}
	g.s.Composing = true
	g.s.PendingChat = req.Seq
	return req, nil
}

// Respond asks the responder for a reply. It never fails: errors and panics
// become Apology. It only reads req and may run on any goroutine.
func (g *Game) Respond(ctx context.Context, req ChatRequest) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("assistant panicked", zap.Any("panic", r))
			reply = Apology
		}
	}()

	reply, err := g.responder.Respond(ctx, req.Message, req.Case, req.History)
	if err != nil {
		g.log.Warn("assistant failed", zap.Error(err))
		return Apology
	}
	return reply
}

// CompleteChat appends the reply to req and clears the composing flag. A
// reply to any request other than the pending one, such as one that arrives
// after its case ended, is dropped and leaves the flag alone.
func (g *Game) CompleteChat(req ChatRequest, reply string) {
	if !g.s.Playing || !g.s.Composing || req.Seq != g.s.PendingChat {
		g.log.Debug("stale chat reply dropped", zap.Uint64("seq", req.Seq))
		return
	}
	g.s.Composing = false
	g.s.PendingChat = 0
	g.s.ChatHistory = append(g.s.ChatHistory, assistant.NewMessage(assistant.RoleAssistant, reply, g.now()))
}

// Ask runs a full chat exchange synchronously.
func (g *Game) Ask(ctx context.Context, text string) (string, error) {
	req, err := g.BeginChat(text)
	if err != nil {
		return "", err
	}
	reply := Apology
	defer func() { g.CompleteChat(req, reply) }()
	reply = g.Respond(ctx, req)
	return reply, nil
}

// EndCase closes the active case, applies its reward and resets the session.
// The summary is valid even when saving progress failed.
func (g *Game) EndCase(completed bool) (Summary, error) {
	if !g.s.Playing {
		return Summary{}, ErrNotPlaying
	}

	c := g.s.Case
	ended := g.now()
	hints := g.engine.HintsUsed(c.ID)
	outcome, err := g.engine.EndCase(progress.CaseResult{
		CaseID:    c.ID,
		XPReward:  c.XPReward,
		TimeLimit: c.TimeLimit,
		StartedAt: g.s.StartTime,
		EndedAt:   ended,
		Completed: completed,
	})

	sum := Summary{
		Case:          c,
		StartedAt:     g.s.StartTime,
		EndedAt:       ended,
		Completed:     completed,
		FoundEvidence: g.s.FoundEvidence,
		Terminal:      g.s.TerminalHistory,
		Chat:          g.s.ChatHistory,
		HintsUsed:     hints,
		Outcome:       outcome,
	}
	g.Reset()
	if err != nil {
		return sum, fmt.Errorf("saving progress: %w", err)
	}
	return sum, nil
}

// SubmitFindings ends the case; it counts as completed when every evidence
// item was found.
func (g *Game) SubmitFindings() (Summary, error) {
	if !g.s.Playing {
		return Summary{}, ErrNotPlaying
	}
	return g.EndCase(g.s.Case.AllEvidenceFound())
}

// Abandon ends the case without completing it.
func (g *Game) Abandon() (Summary, error) {
	return g.EndCase(false)
}

// Reset discards the session.
func (g *Game) Reset() {
	g.s = emptySession()
}
