package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nikbrunner/kanmark/internal/confirm"
	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/report"
	"github.com/nikbrunner/kanmark/internal/restructure"
	"github.com/nikbrunner/kanmark/internal/storage"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string
	toolbarID  int64
	wipLimit   int

	// Root flags
	dryRun bool
	commit bool
	backup bool

	// Logger
	logger *zap.Logger
)

// rootCmd restructures the bookmark toolbar when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "kanmark",
	Short: "Kanban-style restructuring for a Firefox bookmarks copy",
	Long: `kanmark reorganizes course bookmarks in a copy of Firefox's
places.sqlite into three kanban folders on the toolbar: active courses
(capped by a WIP limit), a planning queue, and an archive.

Bookmarks are ranked by how recently and how often they were visited;
the freshest ones fill the active folder up to the WIP limit, the rest
queue up in planning. Courses from sources marked completed go straight
to the archive. Nothing is ever deleted.

Always point dbPath at a copy of places.sqlite, never at the live
profile. Without flags the plan is shown and applied only after an
interactive confirmation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		// Keep stderr quiet unless asked; the TUI shares the terminal.
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logger.With(zap.String("run_id", uuid.NewString()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runRestructure,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/kanmark/config.json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the places.sqlite copy (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&toolbarID, "toolbar-id", places.ToolbarFolderID, "Folder id of the toolbar root (overrides config)")
	rootCmd.PersistentFlags().IntVar(&wipLimit, "wip", 3, "Maximum number of active courses (overrides config)")

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the plan without writing")
	rootCmd.Flags().BoolVar(&commit, "commit", false, "Apply the plan without asking")
	rootCmd.Flags().BoolVar(&backup, "backup", false, "Copy the database aside before writing")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads the config file and layers command-line flags on top.
func loadSettings(cmd *cobra.Command) (*storage.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = storage.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("db") {
		cfg.DBPath = dbPath
	}
	if cmd.Flags().Changed("toolbar-id") {
		cfg.ToolbarParentID = toolbarID
	}
	if cmd.Flags().Changed("wip") {
		cfg.WIPLimit = wipLimit
	}

	// Overrides can break what LoadConfig already checked.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRestructure(cmd *cobra.Command, args []string) error {
	if dryRun && commit {
		return errors.New("--dry-run and --commit are mutually exclusive")
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	st, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if backup && !dryRun {
		path, err := st.Backup()
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Backup written to %s\n", path)
	}

	mode := restructure.ModeInteractive
	switch {
	case dryRun:
		mode = restructure.ModeDryRun
	case commit:
		mode = restructure.ModeCommit
	}

	opts := restructure.Options{
		Mode:   mode,
		Logger: logger,
	}
	if mode == restructure.ModeInteractive {
		// The confirmation board displays the plan itself, so no text
		// report in that mode.
		opts.Confirm = func(plan *places.Plan) (bool, error) {
			if len(plan.Moves) == 0 && plan.CreateCount() == 0 {
				return true, nil
			}
			return confirm.Run(plan)
		}
	} else {
		opts.Report = func(plan *places.Plan) {
			fmt.Print(report.Render(plan))
		}
	}

	result, err := restructure.Run(st, *cfg, opts)
	if err != nil {
		return err
	}

	switch {
	case result.Declined:
		fmt.Println("Cancelled, nothing written.")
	case result.Applied && result.ApplyResult.Moved == 0 && len(result.ApplyResult.Created) == 0:
		fmt.Println("Everything already in place, nothing to do.")
	case result.Applied:
		fmt.Printf("Moved %d bookmarks", result.ApplyResult.Moved)
		if n := len(result.ApplyResult.Created); n > 0 {
			fmt.Printf(", created %d folders", n)
		}
		fmt.Println(".")
	default:
		fmt.Println("Dry run, nothing written.")
	}
	return nil
}
