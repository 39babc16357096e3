package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/kanmark/internal/resolver"
	"github.com/nikbrunner/kanmark/internal/storage"
	"github.com/nikbrunner/kanmark/internal/validate"
)

var reindexPath string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate database invariants and show stats",
	Long: `check loads the whole bookmark tree and verifies the invariants the
restructuring relies on: globally unique guids and unique positions
among siblings. Violations are listed and the command exits nonzero.

With --reindex <path>, the positions in that toolbar-relative folder
are rewritten to a dense 0..n-1 order first (pass "." for the toolbar
itself). That is the only repair this tool performs; guid problems have
to be fixed in Firefox.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&reindexPath, "reindex", "", `Folder whose positions get renumbered ("." for the toolbar itself)`)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	st, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if reindexPath != "" {
		snap, err := st.LoadSnapshot()
		if err != nil {
			return err
		}
		target := cfg.ToolbarParentID
		if reindexPath != "." {
			folder, err := resolver.Resolve(snap, cfg.ToolbarParentID, reindexPath)
			if err != nil {
				return err
			}
			target = folder.ID
		}
		changed, err := st.ReindexPositions(target)
		if err != nil {
			return err
		}
		fmt.Printf("Reindexed %d positions under %s.\n", changed, reindexPath)
	}

	stats, err := st.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d nodes (%d bookmarks, %d folders, %d separators), %d places\n",
		cfg.DBPath, stats["nodes"], stats["bookmarks"], stats["folders"],
		stats["separators"], stats["places"])

	snap, err := st.LoadSnapshot()
	if err != nil {
		return err
	}

	violations := validate.Tree(snap)
	if len(violations) == 0 {
		fmt.Println("All invariants hold.")
		return nil
	}

	for _, v := range violations {
		fmt.Printf("  %s\n", v)
	}
	return fmt.Errorf("%d invariant violations", len(violations))
}
