package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/scenario"
	"github.com/fakeyudi/forensim/internal/session"
)

const replHelp = `Lines are run in the workstation's PowerShell. Investigator commands:
  /ask <question>   talk to your AI co-investigator
  /hint             ask for a hint (costs XP)
  /status           show evidence, objectives and time
  /submit           submit your findings and close the case
  /quit             leave the case unsolved
  /help             show this help`

// repl plays one case over plain line-oriented input and output.
type repl struct {
	ctx  context.Context
	game *session.Game
	in   *bufio.Scanner
	out  io.Writer
}

func newREPL(ctx context.Context, g *session.Game, in io.Reader, out io.Writer) *repl {
	return &repl{ctx: ctx, game: g, in: bufio.NewScanner(in), out: out}
}

// run plays c until the player submits, quits or input ends.
func (r *repl) run(c *scenario.Case) (session.Summary, error) {
	if err := r.game.StartCase(c); err != nil {
		return session.Summary{}, err
	}

	fmt.Fprintf(r.out, "%s\n\n", c.Title)
	fmt.Fprintln(r.out, strings.TrimRight(c.Briefing, "\n"))
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, replHelp)
	fmt.Fprintln(r.out)
	if h := r.game.Session().ChatHistory; len(h) > 0 {
		r.say(h[len(h)-1].Content)
	}

	for {
		fmt.Fprint(r.out, "PS > ")
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return r.game.Abandon()
		}
		line := strings.TrimSpace(r.in.Text())

		switch {
		case line == "/submit":
			return r.game.SubmitFindings()
		case line == "/quit":
			return r.game.Abandon()
		case line == "/help":
			fmt.Fprintln(r.out, replHelp)
		case line == "/status":
			r.status()
		case line == "/hint":
			r.ask("I need a hint")
		case line == "/ask" || strings.HasPrefix(line, "/ask "):
			r.ask(strings.TrimSpace(strings.TrimPrefix(line, "/ask")))
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(r.out, "Unknown investigator command %s. Type /help.\n", line)
		default:
			if out := r.game.RunCommand(line); out != "" {
				fmt.Fprintln(r.out, out)
			}
		}
	}
}

func (r *repl) ask(question string) {
	if question == "" {
		fmt.Fprintln(r.out, "Usage: /ask <question>")
		return
	}
	reply, err := r.game.Ask(r.ctx, question)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	r.say(reply)
}

func (r *repl) say(text string) {
	fmt.Fprintf(r.out, "\n🤖 %s\n\n", text)
}

func (r *repl) status() {
	s := r.game.Session()
	c := s.Case
	fmt.Fprintf(r.out, "Time: %s of %d:00\n", r.game.Elapsed().Round(time.Second), c.TimeLimit)
	fmt.Fprintf(r.out, "Evidence: %d/%d\n", c.FoundCount(), len(c.Evidence))
	for _, ev := range c.Evidence {
		mark := "○"
		if ev.IsFound {
			mark = "✓"
		}
		fmt.Fprintf(r.out, "  %s %s\n", mark, ev.Name)
	}
	fmt.Fprintln(r.out, "Objectives:")
	for _, o := range c.Objectives {
		mark := "○"
		if o.IsCompleted {
			mark = "✓"
		}
		fmt.Fprintf(r.out, "  %s %s\n", mark, o.Description)
	}
}

// printOutcome summarizes an ended case.
func printOutcome(w io.Writer, sum session.Summary) {
	o := sum.Outcome
	if sum.Completed {
		fmt.Fprintf(w, "Case closed: %s\n", sum.Case.Title)
	} else {
		fmt.Fprintf(w, "Case left unsolved: %s\n", sum.Case.Title)
	}
	fmt.Fprintf(w, "Time: %s\n", o.Elapsed.Round(time.Second))
	fmt.Fprintf(w, "Evidence: %d of %d found\n", len(sum.FoundEvidence), len(sum.Case.Evidence))
	fmt.Fprintf(w, "XP awarded: %d (base %d, time bonus %d, hints %d)\n",
		o.Reward.Final, o.Reward.Base, o.Reward.TimeBonus, o.Reward.Hints)
	if o.LevelUp() {
		fmt.Fprintf(w, "Level up! %d → %d %s\n", o.OldLevel, o.NewLevel, progress.LevelName(o.NewLevel))
	}
	for _, b := range o.Badges {
		fmt.Fprintf(w, "Badge earned: %s %s\n", b.Icon, b.Name)
	}
}
