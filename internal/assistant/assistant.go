// Package assistant is the in-game co-investigator: a deterministic keyword
// responder with a forensics knowledge base and per-case hints.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/forensim/internal/scenario"
)

// Role identifies who wrote a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one chat transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with a fresh id.
func NewMessage(role Role, content string, at time.Time) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content, Timestamp: at}
}

// Responder produces the assistant's reply to message. history is the
// transcript before message was sent.
type Responder interface {
	Respond(ctx context.Context, message string, c *scenario.Case, history []Message) (string, error)
}

// ErrNoCase is returned when a reply is requested without an active case.
var ErrNoCase = errors.New("assistant: no active case")

// DefaultHint is given when a case has no hint for the current stage.
const DefaultHint = "Keep exploring the file system and logs."

// KeywordAssistant answers by keyword matching. Delay simulates typing time
// before each reply.
type KeywordAssistant struct {
	Delay time.Duration
}

// NewKeywordAssistant returns a KeywordAssistant with the given typing delay.
func NewKeywordAssistant(delay time.Duration) *KeywordAssistant {
	return &KeywordAssistant{Delay: delay}
}

// IsHintRequest reports whether message asks for a hint.
func IsHintRequest(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "hint") || strings.Contains(m, "help me") || strings.Contains(m, "stuck")
}

// Respond implements Responder. It returns ctx.Err() if ctx ends during the
// typing delay.
func (a *KeywordAssistant) Respond(ctx context.Context, message string, c *scenario.Case, history []Message) (string, error) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	if c == nil {
		return "", ErrNoCase
	}

	lower := strings.ToLower(message)

	if IsHintRequest(lower) {
		return "💡 **Hint:**\n\n" + HintFor(c), nil
	}

	if k, ok := lookupKnowledge(lower); ok {
		return k, nil
	}

	if strings.Contains(lower, "what") && (strings.Contains(lower, "found") || strings.Contains(lower, "evidence")) {
		return foundSummary(c), nil
	}

	if strings.Contains(lower, "analyze") || strings.Contains(lower, "what is") || strings.Contains(lower, "tell me about") {
		for _, ev := range c.Evidence {
			if strings.Contains(lower, strings.ToLower(ev.Name)) {
				return describe(ev), nil
			}
		}
	}

	return defaultTips[len(history)%len(defaultTips)], nil
}

// HintFor picks the hint for the player's current stage: the hint at the
// index of the number of evidence items found, capped at the last objective.
func HintFor(c *scenario.Case) string {
	idx := min(c.FoundCount(), len(c.Objectives)-1)
	if idx < 0 || idx >= len(c.Hints) {
		return DefaultHint
	}
	return c.Hints[idx]
}

func foundSummary(c *scenario.Case) string {
	var found, remaining []string
	for _, ev := range c.Evidence {
		if ev.IsFound {
			found = append(found, "• "+ev.Name)
		} else {
			remaining = append(remaining, "• "+ev.Name)
		}
	}
	if len(found) == 0 {
		return "You haven't found any evidence yet. Try exploring the file system using terminal commands like 'ls' and 'cd'."
	}
	if len(remaining) == 0 {
		return fmt.Sprintf("So far you've found:\n%s\n\nThat's everything. Submit your findings to close the case.", strings.Join(found, "\n"))
	}
	return fmt.Sprintf("So far you've found:\n%s\n\nStill to find:\n%s", strings.Join(found, "\n"), strings.Join(remaining, "\n"))
}

func describe(ev scenario.Evidence) string {
	return fmt.Sprintf("**%s**\n\nType: %s\nPath: %s\n\n%s\n\nTip: Use the 'type' command in the terminal to view its contents if it's a text file.",
		ev.Name, ev.Type, ev.Path, ev.Description)
}

// Greeting is the assistant's first message in a new case.
func Greeting(caseTitle string) string {
	return fmt.Sprintf(`🔍 **AI Co-Investigator Online**

I'm here to help you investigate "%s".

You can:
• Ask me for hints when you're stuck
• Request analysis of specific evidence
• Ask about forensics concepts
• Check what evidence you've found so far

Use the terminal to navigate the file system and gather evidence. Good luck, investigator!`, caseTitle)
}
