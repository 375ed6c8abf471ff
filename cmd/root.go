package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/forensim/internal/assistant"
	"github.com/fakeyudi/forensim/internal/config"
	"github.com/fakeyudi/forensim/internal/logging"
	"github.com/fakeyudi/forensim/internal/profile"
	"github.com/fakeyudi/forensim/internal/progress"
	"github.com/fakeyudi/forensim/internal/session"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded investigator profile.
var activeProfile *profile.Profile

// logger is built from cfg once per invocation.
var logger = zap.NewNop()

var verbose bool

var rootCmd = &cobra.Command{
	Use:          "forensim",
	Short:        "Practice digital forensics investigations in a simulated Windows workstation",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() && term.IsTerminal(os.Stdin.Fd()) {
			fmt.Println()
			fmt.Println("  Welcome to forensim! Looks like this is your first case.")
			if err := runSetup(cmd, true); err != nil {
				return err
			}
		}

		activeProfile = nil
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		global, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}
		project, err := config.LoadProject()
		if err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
		cfg = activeProfile.Apply(config.Merge(global, project))

		logPath := cfg.LogFile
		if logPath == "" {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			logPath = filepath.Join(dir, logging.FileName)
		}
		l, err := logging.New(logPath, verbose)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("command started", zap.String("command", cmd.CommandPath()), zap.Strings("args", args))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	rootCmd.SetOut(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active investigator profile.
func GetProfile() *profile.Profile {
	return activeProfile
}

func investigator() string {
	if activeProfile == nil {
		return ""
	}
	return activeProfile.Name
}

func dataDir() (string, error) {
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}
	return progress.DataDir()
}

// openEngine opens the configured progress store. The returned close func
// releases the store.
func openEngine() (*progress.Engine, func(), error) {
	dir, err := dataDir()
	if err != nil {
		return nil, nil, err
	}
	store, err := progress.Open(cfg.ProgressBackend, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening progress store: %w", err)
	}
	engine, err := progress.NewEngine(store, logger.Named("progress"))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return engine, func() { _ = store.Close() }, nil
}

// newGame wires a game to the configured store and assistant.
func newGame() (*session.Game, func(), error) {
	delay, err := cfg.Delay()
	if err != nil {
		return nil, nil, err
	}
	engine, closeStore, err := openEngine()
	if err != nil {
		return nil, nil, err
	}
	g := session.NewGame(engine, assistant.NewKeywordAssistant(delay), logger.Named("session"))
	return g, closeStore, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "write debug entries to the log file")
}
