package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/progress"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (j *JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Version is the report layout written by the renderers.
const Version = 1

const (
	versionPrefix = "<!-- forensim-report-version: "
	dataPrefix    = "<!-- forensim-data: "
	dataSuffix    = " -->"
	titlePrefix   = "# Case Report: "
	casePrefix    = "- Case: "
)

var versionSentinel = fmt.Sprintf("%s%d%s", versionPrefix, Version, dataSuffix)

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct {
	// OmitPayload drops the sentinel and payload comments, for display only.
	OmitPayload bool
}

func (m *MarkdownRenderer) Render(r *Report) ([]byte, error) {
	var sb strings.Builder

	if !m.OmitPayload {
		jsonBytes, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		sb.WriteString(versionSentinel + "\n")
		fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, base64.StdEncoding.EncodeToString(jsonBytes), dataSuffix)
	}

	fmt.Fprintf(&sb, "%s%s\n\n", titlePrefix, r.Title)

	// ## Summary
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "%s%s\n", casePrefix, r.CaseID)
	if r.Investigator != "" {
		fmt.Fprintf(&sb, "- Investigator: %s\n", r.Investigator)
	}
	fmt.Fprintf(&sb, "- Started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "- Duration: %s\n", r.Duration)
	status := "Abandoned"
	if r.Completed {
		status = "Solved"
	}
	fmt.Fprintf(&sb, "- Status: %s\n", status)
	fmt.Fprintf(&sb, "- Hints used: %d\n", r.HintsUsed)
	sb.WriteString("\n")

	// ## Evidence
	sb.WriteString("## Evidence\n\n")
	if len(r.Evidence) == 0 {
		sb.WriteString("_No evidence in this case._\n")
	} else {
		sb.WriteString("| Found | Name | Type | Path |\n")
		sb.WriteString("|-------|------|------|------|\n")
		for _, ev := range r.Evidence {
			mark := " "
			if ev.Found {
				mark = "x"
			}
			fmt.Fprintf(&sb, "| [%s] | %s | %s | `%s` |\n", mark, ev.Name, ev.Type, ev.Path)
		}
	}
	sb.WriteString("\n")

	// ## Objectives
	sb.WriteString("## Objectives\n\n")
	if len(r.Objectives) == 0 {
		sb.WriteString("_No objectives._\n")
	} else {
		for _, o := range r.Objectives {
			mark := " "
			if o.Completed {
				mark = "x"
			}
			fmt.Fprintf(&sb, "- [%s] %s\n", mark, o.Description)
		}
	}
	sb.WriteString("\n")

	// ## Score
	sb.WriteString("## Score\n\n")
	writeScore(&sb, r.Outcome)
	sb.WriteString("\n")

	// ## Terminal Log
	sb.WriteString("## Terminal Log\n\n")
	if len(r.Terminal) == 0 {
		sb.WriteString("_No terminal commands recorded._\n")
	} else {
		sb.WriteString("```text\n")
		for _, e := range r.Terminal {
			fmt.Fprintf(&sb, "PS> %s\n", e.Command)
			if e.Output != "" {
				sb.WriteString(e.Output)
				if !strings.HasSuffix(e.Output, "\n") {
					sb.WriteString("\n")
				}
			}
		}
		sb.WriteString("```\n")
	}
	sb.WriteString("\n")

	// ## Assistant Transcript
	sb.WriteString("## Assistant Transcript\n\n")
	if len(r.Chat) == 0 {
		sb.WriteString("_No messages._\n")
	} else {
		for _, msg := range r.Chat {
			fmt.Fprintf(&sb, "**%s** (%s)\n\n%s\n\n", speaker(msg.Role), msg.Timestamp.Format("15:04:05"), msg.Content)
		}
	}

	return []byte(sb.String()), nil
}

func writeScore(sb *strings.Builder, o progress.Outcome) {
	fmt.Fprintf(sb, "- Base XP: %d\n", o.Reward.Base)
	fmt.Fprintf(sb, "- Time bonus: %d\n", o.Reward.TimeBonus)
	fmt.Fprintf(sb, "- Hint penalty: x0.75^%d\n", o.Reward.Hints)
	fmt.Fprintf(sb, "- XP awarded: %d\n", o.Reward.Final)
	fmt.Fprintf(sb, "- Level: %d (%s) -> %d (%s)\n",
		o.OldLevel, progress.LevelName(o.OldLevel), o.NewLevel, progress.LevelName(o.NewLevel))
	for _, b := range o.Badges {
		fmt.Fprintf(sb, "- Badge earned: %s %s\n", b.Icon, b.Name)
	}
}

func speaker(r assistant.Role) string {
	switch r {
	case assistant.RoleUser:
		return "Investigator"
	case assistant.RoleAssistant:
		return "Co-Investigator"
	default:
		return "System"
	}
}
