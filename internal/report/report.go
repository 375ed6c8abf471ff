// Package report renders a finished investigation as a case report.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/session"
)

// Formats accepted by Write.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Report is the complete, renderable record of one investigation.
type Report struct {
	ID           string                  `json:"id"`
	CaseID       string                  `json:"case_id"`
	Title        string                  `json:"title"`
	Investigator string                  `json:"investigator,omitempty"`
	StartedAt    time.Time               `json:"started_at"`
	EndedAt      time.Time               `json:"ended_at"`
	Duration     string                  `json:"duration"` // human-readable, e.g. "12m30s"
	Completed    bool                    `json:"completed"`
	Evidence     []EvidenceItem          `json:"evidence"`
	Objectives   []ObjectiveItem         `json:"objectives"`
	Terminal     []session.TerminalEntry `json:"terminal"`
	Chat         []assistant.Message     `json:"chat"`
	HintsUsed    int                     `json:"hints_used"`
	Outcome      progress.Outcome        `json:"outcome"`
}

// EvidenceItem is one evidence entry and whether it was found.
type EvidenceItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Found       bool   `json:"found"`
}

// ObjectiveItem is one objective and whether it was met.
type ObjectiveItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// FromSummary builds a report for an ended session.
func FromSummary(sum session.Summary, investigator string) *Report {
	r := &Report{
		ID:           uuid.NewString(),
		Investigator: investigator,
		StartedAt:    sum.StartedAt,
		EndedAt:      sum.EndedAt,
		Duration:     sum.EndedAt.Sub(sum.StartedAt).Round(time.Second).String(),
		Completed:    sum.Completed,
		Terminal:     slices.Clone(sum.Terminal),
		Chat:         slices.Clone(sum.Chat),
		HintsUsed:    sum.HintsUsed,
		Outcome:      sum.Outcome,
		Evidence:     []EvidenceItem{},
		Objectives:   []ObjectiveItem{},
	}
	if c := sum.Case; c != nil {
		r.CaseID = c.ID
		r.Title = c.Title
		for _, ev := range c.Evidence {
			r.Evidence = append(r.Evidence, EvidenceItem{
				ID:          ev.ID,
				Name:        ev.Name,
				Path:        ev.Path,
				Type:        string(ev.Type),
				Description: ev.Description,
				Found:       slices.Contains(sum.FoundEvidence, ev.ID),
			})
		}
		for _, o := range c.Objectives {
			r.Objectives = append(r.Objectives, ObjectiveItem{ID: o.ID, Description: o.Description, Completed: o.IsCompleted})
		}
	}
	return r
}

// RendererFor returns the renderer for format.
func RendererFor(format string) (Renderer, string, error) {
	switch format {
	case "", FormatMarkdown:
		return &MarkdownRenderer{}, ".md", nil
	case FormatJSON:
		return &JSONRenderer{}, ".json", nil
	default:
		return nil, "", fmt.Errorf("unknown report format %q", format)
	}
}

// FileName is the base name Write uses for r.
func FileName(r *Report, ext string) string {
	return fmt.Sprintf("forensim-%s-%s%s", r.CaseID, r.EndedAt.Format("20060102-150405"), ext)
}

// Write renders r in format into dir and returns the file path.
func Write(dir, format string, r *Report) (string, error) {
	renderer, ext, err := RendererFor(format)
	if err != nil {
		return "", err
	}
	data, err := renderer.Render(r)
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, FileName(r, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// ParseAny detects the format of data and parses it.
func ParseAny(data []byte) (*Report, error) {
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		return (&JSONParser{}).Parse(data)
	}
	return (&MarkdownParser{}).Parse(data)
}
