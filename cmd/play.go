package cmd

import (
	"errors"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/forensim/internal/report"
	"github.com/fakeyudi/forensim/internal/session"
	"github.com/fakeyudi/forensim/internal/tui"
)

var playPlain bool

var playCmd = &cobra.Command{
	Use:   "play [case-id]",
	Short: "Open a case and start investigating",
	Long: "Open a case and start investigating. In a terminal the full-screen\n" +
		"workspace is used; with --plain or when input is piped, the case is\n" +
		"played line by line and a case id is required.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		var caseID string
		if len(args) == 1 {
			caseID = args[0]
			if _, err := cat.Get(caseID); err != nil {
				return err
			}
		}

		game, closeStore, err := newGame()
		if err != nil {
			return err
		}
		defer closeStore()

		interactive := term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
		if interactive && !playPlain {
			return tui.Run(cmd.Context(), tui.Options{
				Game:         game,
				Catalog:      cat,
				CasesDir:     cfg.CasesDir,
				Investigator: investigator(),
				ReportDir:    cfg.ReportDir,
				ReportFormat: cfg.ReportFormat,
				StartCase:    caseID,
				Log:          logger.Named("tui"),
			})
		}

		if caseID == "" {
			return errors.New("a case id is required in plain mode; run 'forensim cases' to list them")
		}
		c, _ := cat.Get(caseID)

		sum, endErr := newREPL(cmd.Context(), game, cmd.InOrStdin(), cmd.OutOrStdout()).run(c)
		if sum.Case == nil {
			return endErr
		}
		printOutcome(cmd.OutOrStdout(), sum)
		writeReport(cmd, sum)
		return endErr
	},
}

// writeReport saves the case report when a report directory is configured.
// Failure is reported but does not fail the command.
func writeReport(cmd *cobra.Command, sum session.Summary) {
	if cfg.ReportDir == "" {
		return
	}
	path, err := report.Write(cfg.ReportDir, cfg.ReportFormat, report.FromSummary(sum, investigator()))
	if err != nil {
		logger.Warn("report not written", zap.Error(err))
		cmd.PrintErrf("warning: report not written: %v\n", err)
		return
	}
	cmd.Printf("Report saved to %s\n", path)
}

func init() {
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "play line by line instead of the full-screen workspace")
	rootCmd.AddCommand(playCmd)
}
