// Package session holds the transient state of one play-through and the Game
// that orchestrates the interpreter, evidence matcher, assistant and progress
// engine on each player action.
package session

import (
	"time"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/scenario"
	"github.com/fakeyudi/forensim/internal/terminal"
	"github.com/fakeyudi/forensim/internal/vfs"
)

// Session is the transient state of an active case. It is never persisted.
type Session struct {
	// Case is the session's working copy; nil when not playing.
	Case        *scenario.Case
	Playing     bool
	StartTime   time.Time
	CurrentPath string
	// FoundEvidence is append-only and holds each id once.
	FoundEvidence   []string
	ChatHistory     []assistant.Message
	TerminalHistory []TerminalEntry
	Recall          *terminal.History
	// Composing is set while the assistant reply to PendingChat is pending.
	Composing   bool
	PendingChat uint64
}

// TerminalEntry is one command and its output in the transcript.
type TerminalEntry struct {
	Command   string    `json:"command"`
	Output    string    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}

func emptySession() Session {
	return Session{CurrentPath: vfs.Root, Recall: terminal.NewHistory()}
}

// Summary is what remains of a session after it ends.
type Summary struct {
	Case          *scenario.Case
	StartedAt     time.Time
	EndedAt       time.Time
	Completed     bool
	FoundEvidence []string
	Terminal      []TerminalEntry
	Chat          []assistant.Message
	HintsUsed     int
	Outcome       progress.Outcome
}
