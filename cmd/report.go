package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/forensim/internal/report"
)

var plainOutput bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Work with case reports",
}

var reportViewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "View a case report file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", path)
			}
			return err
		}

		r, err := report.ParseAny(data)
		if err != nil {
			return err
		}
		md, err := (&report.MarkdownRenderer{OmitPayload: true}).Render(r)
		if err != nil {
			return err
		}

		if plainOutput || !term.IsTerminal(os.Stdout.Fd()) {
			cmd.Print(string(md))
			return nil
		}

		width := 100
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 20 {
			width = min(w-4, 120)
		}
		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			return err
		}
		out, err := renderer.Render(string(md))
		if err != nil {
			return err
		}
		cmd.Print(out)
		return nil
	},
}

func init() {
	reportViewCmd.Flags().BoolVar(&plainOutput, "plain", false, "print raw Markdown instead of rendering it")
	reportCmd.AddCommand(reportViewCmd)
	rootCmd.AddCommand(reportCmd)
}
