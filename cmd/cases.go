package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/forensim/internal/scenario"
)

var (
	casesDifficulty string
	casesCategory   string
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the available cases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := parseDifficulty(casesDifficulty)
		if err != nil {
			return err
		}
		c, err := parseCategory(casesCategory)
		if err != nil {
			return err
		}

		cat, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		engine, closeStore, err := openEngine()
		if err != nil {
			return err
		}
		defer closeStore()
		p := engine.Progress()

		list := cat.Filter(d, c)
		if len(list) == 0 {
			cmd.Println("no cases match")
			return nil
		}
		for _, cs := range list {
			mark := "○"
			if p.HasCompleted(cs.ID) {
				mark = "✓"
			}
			cmd.Printf("%s %-26s %s\n", mark, cs.ID, cs.Title)
			cmd.Printf("  %s · %s · %d min · %d XP\n", cs.Difficulty, cs.Category, cs.TimeLimit, cs.XPReward)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check case files for authoring errors",
	Long: "Check case files for authoring errors. With no arguments the built-in\n" +
		"cases and every case file in the configured cases directory are checked.",
	RunE: func(cmd *cobra.Command, args []string) error {
		total, bad := 0, 0
		check := func(name string, err error) {
			total++
			if err != nil {
				bad++
				cmd.Printf("✗ %s: %v\n", name, err)
				return
			}
			cmd.Printf("✓ %s\n", name)
		}

		files := args
		if len(files) == 0 {
			builtin, err := scenario.Builtin()
			if err != nil {
				return err
			}
			for _, c := range builtin {
				check("builtin "+c.ID, scenario.Validate(c))
			}
			if files, err = caseFiles(cfg.CasesDir); err != nil {
				return err
			}
		}
		for _, f := range files {
			c, err := scenario.LoadFile(f)
			if err == nil {
				err = scenario.Validate(c)
			}
			check(f, err)
		}

		if bad > 0 {
			return fmt.Errorf("%d of %d cases invalid", bad, total)
		}
		cmd.Printf("All %d cases valid.\n", total)
		return nil
	},
}

// caseFiles lists the case files directly inside dir.
func caseFiles(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && scenario.IsCaseFile(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// loadCatalog loads the built-in and user cases, printing skipped user cases
// as warnings.
func loadCatalog(cmd *cobra.Command) (*scenario.Catalog, error) {
	cat, warnings, err := scenario.LoadCatalog(cfg.CasesDir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		cmd.PrintErrln("warning: skipped " + w)
	}
	return cat, nil
}

func parseDifficulty(s string) (scenario.Difficulty, error) {
	if s == "" {
		return "", nil
	}
	var names []string
	for _, d := range scenario.Difficulties {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
		names = append(names, string(d))
	}
	return "", fmt.Errorf("unknown difficulty %q (want one of %s)", s, strings.Join(names, ", "))
}

func parseCategory(s string) (scenario.Category, error) {
	if s == "" {
		return "", nil
	}
	want := strings.ReplaceAll(s, "-", " ")
	var names []string
	for _, c := range scenario.Categories {
		if strings.EqualFold(want, string(c)) {
			return c, nil
		}
		names = append(names, string(c))
	}
	return "", fmt.Errorf("unknown category %q (want one of %s)", s, strings.Join(names, ", "))
}

func init() {
	casesCmd.Flags().StringVar(&casesDifficulty, "difficulty", "", "only show cases of this difficulty")
	casesCmd.Flags().StringVar(&casesCategory, "category", "", "only show cases in this category")
	casesCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(casesCmd)
}
