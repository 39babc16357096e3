package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/kanmark/internal/audit"
	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/resolver"
	"github.com/nikbrunner/kanmark/internal/storage"
)

var (
	auditConcurrency int
	auditTimeout     time.Duration
	auditExclude     []string
)

var auditCmd = &cobra.Command{
	Use:   "audit [path]",
	Short: "Check course bookmarks for dead links",
	Long: `audit probes bookmarks over HTTP and reports pages that no longer
exist. Without an argument it covers every configured source folder;
with one it covers the subtree at that toolbar-relative path. The
database is never modified; the report is meant to guide manual cleanup
in Firefox.

Platforms that answer 404 for login-walled pages can be listed with
--exclude so they show up as unreachable instead of dead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditConcurrency, "concurrency", 8, "Number of parallel requests")
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", 10*time.Second, "Per-request timeout")
	auditCmd.Flags().StringSliceVar(&auditExclude, "exclude", nil, "Domains where a 404 means auth is required, not a dead page")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	st, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot()
	if err != nil {
		return err
	}

	var bookmarks []*places.Node
	if len(args) == 1 {
		folder, err := resolver.Resolve(snap, cfg.ToolbarParentID, args[0])
		if err != nil {
			return err
		}
		bookmarks = snap.SubtreeBookmarks(folder.ID)
	} else {
		// Gather every source bookmark once, no matter how many sources
		// can reach it.
		seen := make(map[int64]bool)
		for _, src := range cfg.Sources {
			folder, err := resolver.Resolve(snap, cfg.ToolbarParentID, src.Path)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Label, err)
			}
			items := snap.ChildBookmarks(folder.ID)
			if src.Recursive {
				items = snap.SubtreeBookmarks(folder.ID)
			}
			for _, item := range items {
				if seen[item.ID] {
					continue
				}
				seen[item.ID] = true
				bookmarks = append(bookmarks, item)
			}
		}
	}

	if len(bookmarks) == 0 {
		fmt.Println("No bookmarks to audit.")
		return nil
	}

	fmt.Printf("Checking %d bookmarks...\n", len(bookmarks))
	results := audit.CheckURLs(bookmarks, auditConcurrency, auditTimeout, auditExclude,
		func(completed, total int) {
			fmt.Printf("\r%d/%d", completed, total)
		})
	fmt.Print("\r")

	var healthy, dead, unreachable int
	for _, r := range results {
		switch r.Status {
		case audit.Healthy:
			healthy++
		case audit.Dead:
			dead++
			fmt.Printf("  dead (%d): %s\n      %s\n", r.StatusCode, r.Node.Title, r.Node.URL)
		case audit.Unreachable:
			unreachable++
			fmt.Printf("  unreachable (%s): %s\n      %s\n", r.Error, r.Node.Title, r.Node.URL)
		}
	}

	fmt.Printf("%d healthy, %d dead, %d unreachable.\n", healthy, dead, unreachable)
	return nil
}
