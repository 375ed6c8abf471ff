package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/vfs"
)

const prompt = "PS > "

// ── Layout ────────────────────────────────────────────────────────────────────

type dims struct {
	bodyH, leftW, rightW, sideH, chatH int
}

func (m *Model) dims() dims {
	// title(1) + statusBar(1)
	d := dims{bodyH: max(m.height-2, 8)}
	d.leftW = max(m.width*3/5, 30)
	d.rightW = max(m.width-d.leftW, 24)
	d.sideH = max(d.bodyH*2/5, 6)
	d.chatH = max(d.bodyH-d.sideH, 6)
	return d
}

func (m *Model) layout() {
	d := m.dims()

	// border(2) + input(1)
	termW, termH := d.leftW-2, max(d.bodyH-3, 1)
	// border(2) + spinner(1) + input(1)
	chatW, chatH := d.rightW-2, max(d.chatH-4, 1)

	if m.termView.Width == 0 {
		m.termView = viewport.New(termW, termH)
		m.chatView = viewport.New(chatW, chatH)
	}
	m.termView.Width, m.termView.Height = termW, termH
	m.chatView.Width, m.chatView.Height = chatW, chatH
	m.termInput.Width = max(termW-lipgloss.Width(prompt)-1, 10)
	m.chatInput.Width = max(chatW-3, 10)
	m.md.resize(chatW - 2)

	m.refreshTerminal()
	m.refreshChat()
}

func (m *Model) refreshTerminal() {
	s := m.game.Session()
	var sb strings.Builder
	for _, e := range s.TerminalHistory {
		if e.Command == "system" {
			sb.WriteString(dimStyle.Render(e.Output) + "\n\n")
			continue
		}
		sb.WriteString(promptStyle.Render(prompt) + e.Command + "\n")
		if e.Output != "" {
			sb.WriteString(styleOutput(e.Output) + "\n")
		}
	}
	m.termView.SetContent(lipgloss.NewStyle().Width(m.termView.Width).Render(sb.String()))
	m.termView.GotoBottom()
}

// styleOutput highlights the evidence banner.
func styleOutput(out string) string {
	const marker = "⚠️  EVIDENCE FOUND"
	i := strings.Index(out, marker)
	if i < 0 {
		return out
	}
	return out[:i] + evidenceStyle.Render(out[i:])
}

func (m *Model) refreshChat() {
	s := m.game.Session()
	var sb strings.Builder
	for _, msg := range s.ChatHistory {
		switch msg.Role {
		case assistant.RoleUser:
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(msg.Content + "\n\n")
		case assistant.RoleAssistant:
			sb.WriteString(assistantStyle.Render("🤖 Co-Investigator") + "\n")
			sb.WriteString(m.md.render(msg.ID, msg.Content) + "\n\n")
		default:
			sb.WriteString(systemStyle.Render(msg.Content) + "\n\n")
		}
	}
	m.chatView.SetContent(lipgloss.NewStyle().Width(m.chatView.Width).Render(sb.String()))
	m.chatView.GotoBottom()
}

// ── Shared chrome ─────────────────────────────────────────────────────────────

func (m Model) titleBar(right string) string {
	left := "  🔬 forensim"
	pad := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-4, 1)
	return titleStyle.Width(m.width).Render(left + strings.Repeat(" ", pad) + right)
}

func (m Model) statusBar(keys string) string {
	text := keys
	if m.status != "" {
		text = m.status + "  ·  " + keys
	}
	return statusBarStyle.Width(m.width).Render(text)
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func row(sb *strings.Builder, label, value string) {
	sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
}

func progressLine(p *progress.UserProgress) string {
	lvl := p.Level()
	s := fmt.Sprintf("⭐ Level %d %s  ⚡ %d XP", lvl, progress.LevelName(lvl), p.XP)
	if next := progress.XPToNextLevel(p.XP); next > 0 {
		s += fmt.Sprintf(" (%d to next)", next)
	}
	return s
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// fit cuts s to at most n lines.
func fit(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// ── Case list ─────────────────────────────────────────────────────────────────

func (m Model) viewCases() string {
	p := m.game.Progress()
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Case Manager (%d cases)", m.catalog.Len())))

	for i, c := range m.catalog.All() {
		mark := dimStyle.Render("○")
		if p.HasCompleted(c.ID) {
			mark = foundStyle.Render("✓")
		}
		line := fmt.Sprintf("  %s  %-44s %s  %s  %s",
			mark,
			c.Title,
			difficultyStyle(string(c.Difficulty)).Render(fmt.Sprintf("%-12s", c.Difficulty)),
			dimStyle.Render(fmt.Sprintf("%-18s", c.Category)),
			timeStyle.Render(fmt.Sprintf("%3d min  %5d XP", c.TimeLimit, c.XPReward)))
		if i == m.cursor {
			line = selectedRowStyle.Width(m.width - 2).Render(line)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString(heading("Investigator"))
	row(&sb, "Progress:", progressLine(p))
	row(&sb, "Evidence:", fmt.Sprintf("%d found", p.TotalEvidenceFound))
	row(&sb, "Solved:", fmt.Sprintf("%d cases", len(p.CompletedCases)))
	if len(p.Badges) > 0 {
		var icons []string
		for _, b := range p.Badges {
			icons = append(icons, b.Icon+" "+b.Name)
		}
		row(&sb, "Badges:", strings.Join(icons, "  "))
	}

	body := lipgloss.NewStyle().Height(m.height - 2).Render(fit(sb.String(), m.height-2))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.titleBar(""),
		body,
		m.statusBar("↑/↓ select  enter open  q quit"))
}

// ── Briefing ──────────────────────────────────────────────────────────────────

func (m Model) viewBriefing() string {
	c := m.selected
	var sb strings.Builder
	sb.WriteString(heading(c.Title))
	row(&sb, "Case ID:", c.ID)
	row(&sb, "Requestor:", c.Requestor)
	row(&sb, "Date:", c.Date)
	row(&sb, "Difficulty:", difficultyStyle(string(c.Difficulty)).Render(string(c.Difficulty)))
	row(&sb, "Category:", string(c.Category))
	row(&sb, "Time limit:", fmt.Sprintf("%d minutes", c.TimeLimit))
	row(&sb, "Reward:", fmt.Sprintf("%d XP", c.XPReward))

	sb.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(c.Briefing, "\n"), "\n") {
		sb.WriteString("  " + line + "\n")
	}

	sb.WriteString(heading("Objectives"))
	for _, o := range c.Objectives {
		sb.WriteString(bulletStyle.Render("  •") + "  " + o.Description + "\n")
	}

	body := lipgloss.NewStyle().Height(m.height - 2).Render(fit(sb.String(), m.height-2))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.titleBar(c.ID),
		body,
		m.statusBar("enter start investigation  esc back"))
}

// ── Investigation ─────────────────────────────────────────────────────────────

func (m Model) viewPlay() string {
	s := m.game.Session()
	if s.Case == nil {
		return m.viewCases()
	}
	d := m.dims()

	termStyle, chatStyle := paneStyle, paneStyle
	if m.focus == paneTerminal {
		termStyle = focusedPaneStyle
	} else {
		chatStyle = focusedPaneStyle
	}

	terminal := termStyle.Width(d.leftW - 2).Height(d.bodyH - 2).Render(
		m.termView.View() + "\n" + promptStyle.Render(prompt) + m.termInput.View())

	composing := " "
	if s.Composing {
		composing = m.spinner.View() + dimStyle.Render(" analyzing...")
	}
	chat := chatStyle.Width(d.rightW - 2).Height(d.chatH - 2).Render(
		m.chatView.View() + "\n" + composing + "\n" + m.chatInput.View())

	side := paneStyle.Width(d.rightW - 2).Height(d.sideH - 2).Render(fit(m.sidebar(), d.sideH-2))

	right := lipgloss.JoinVertical(lipgloss.Left, side, chat)
	body := lipgloss.JoinHorizontal(lipgloss.Top, terminal, right)

	elapsed := m.game.Elapsed()
	timer := timeStyle.Render("⏱ " + clock(elapsed))
	if limit := time.Duration(s.Case.TimeLimit) * time.Minute; elapsed >= limit {
		timer = warnTimeStyle.Render("⏱ " + clock(elapsed))
	}
	header := fmt.Sprintf("Investigating: %s  %s / %d:00  ⚡ %s", s.Case.Title, timer, s.Case.TimeLimit, vfs.Display(s.CurrentPath))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.titleBar(header),
		body,
		m.statusBar("tab switch pane  ↑/↓ history  pgup/pgdn scroll  ctrl+s submit findings  ctrl+q leave case"))
}

func (m Model) sidebar() string {
	s := m.game.Session()
	c := s.Case
	var sb strings.Builder

	sb.WriteString(sectionHeader.Render(fmt.Sprintf("🔍 Evidence %d/%d", c.FoundCount(), len(c.Evidence))) + "\n")
	for _, ev := range c.Evidence {
		if ev.IsFound {
			sb.WriteString(foundStyle.Render("✓ "+ev.Name) + "\n")
		} else {
			sb.WriteString(dimStyle.Render("○ "+ev.Name) + "\n")
		}
	}

	sb.WriteString(sectionHeader.Render("🎯 Objectives") + "\n")
	for _, o := range c.Objectives {
		if o.IsCompleted {
			sb.WriteString(foundStyle.Render("✓ "+o.Description) + "\n")
		} else {
			sb.WriteString("○ " + o.Description + "\n")
		}
	}

	sb.WriteString(dimStyle.Render(progressLine(m.game.Progress())))
	return sb.String()
}

// ── Result ────────────────────────────────────────────────────────────────────

func (m Model) viewResult() string {
	sum := m.result
	o := sum.Outcome
	var sb strings.Builder

	title := "Case Closed"
	if !sum.Completed {
		title = "Case Left Unsolved"
	}
	sb.WriteString(heading(title + ": " + sum.Case.Title))

	row(&sb, "Time:", fmt.Sprintf("%s of %d:00", clock(o.Elapsed), sum.Case.TimeLimit))
	row(&sb, "Evidence:", fmt.Sprintf("%d of %d found", len(sum.FoundEvidence), len(sum.Case.Evidence)))
	row(&sb, "Hints used:", fmt.Sprintf("%d", sum.HintsUsed))

	sb.WriteString(heading("Score"))
	row(&sb, "Base XP:", fmt.Sprintf("%d", o.Reward.Base))
	row(&sb, "Time bonus:", fmt.Sprintf("%d", o.Reward.TimeBonus))
	if o.Reward.Hints > 0 {
		row(&sb, "Hint penalty:", fmt.Sprintf("x0.75^%d", o.Reward.Hints))
	}
	row(&sb, "XP awarded:", fmt.Sprintf("%d", o.Reward.Final))
	if o.LevelUp() {
		row(&sb, "Level up!", fmt.Sprintf("%d → %d %s", o.OldLevel, o.NewLevel, progress.LevelName(o.NewLevel)))
	}
	for _, b := range o.Badges {
		row(&sb, "Badge:", b.Icon+" "+b.Name+dimStyle.Render("  "+b.Description))
	}
	if m.reportPath != "" {
		row(&sb, "Report:", m.reportPath)
	}

	body := lipgloss.NewStyle().Height(m.height - 2).Render(fit(sb.String(), m.height-2))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.titleBar(sum.Case.ID),
		body,
		m.statusBar("enter back to cases  q quit"))
}
