package cmd

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/forensim/internal/progress"
)

var resetYes bool

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show your level, XP and badges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeStore, err := openEngine()
		if err != nil {
			return err
		}
		defer closeStore()
		p := engine.Progress()

		lvl := p.Level()
		cmd.Printf("Level: %d (%s)\n", lvl, progress.LevelName(lvl))
		if next := progress.XPToNextLevel(p.XP); next > 0 {
			cmd.Printf("XP: %d (%d to next level)\n", p.XP, next)
		} else {
			cmd.Printf("XP: %d (max level)\n", p.XP)
		}
		cmd.Printf("Cases solved: %d\n", len(p.CompletedCases))
		for _, id := range p.CompletedCases {
			cmd.Printf("  ✓ %s\n", id)
		}
		cmd.Printf("Evidence found: %d\n", p.TotalEvidenceFound)

		if len(p.HintsUsed) > 0 {
			ids := make([]string, 0, len(p.HintsUsed))
			for id := range p.HintsUsed {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			cmd.Println("Hints used:")
			for _, id := range ids {
				cmd.Printf("  %s: %d\n", id, p.HintsUsed[id])
			}
		}

		cmd.Println("Badges:")
		for _, b := range progress.AllBadges() {
			if p.HasBadge(b.ID) {
				cmd.Printf("  %s %s: %s\n", b.Icon, b.Name, b.Description)
			} else {
				cmd.Printf("  🔒 %s: %s\n", b.Name, b.Description)
			}
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all saved progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			cmd.Print("Erase all XP, badges and solved cases? (y/n): ")
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if ans := strings.ToLower(strings.TrimSpace(line)); ans != "y" && ans != "yes" {
				cmd.Println("Progress kept.")
				return nil
			}
		}

		engine, closeStore, err := openEngine()
		if err != nil {
			return err
		}
		defer closeStore()
		if err := engine.Reset(); err != nil {
			return fmt.Errorf("resetting progress: %w", err)
		}
		cmd.Println("Progress reset.")
		return nil
	},
}

func init() {
	progressResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")
	progressCmd.AddCommand(progressResetCmd)
	rootCmd.AddCommand(progressCmd)
}
