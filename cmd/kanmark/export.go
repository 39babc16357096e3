package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/kanmark/internal/exporter"
	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/storage"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the toolbar tree as Netscape bookmark HTML",
	Long: `export writes the toolbar subtree to a bookmark HTML file that any
browser can import. Useful as a readable snapshot before a restructuring
run, or for moving the kanban folders to another machine.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: ~/Downloads/kanmark-export-<date>.html)")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	out := exportOutput
	if out == "" {
		out, err = exporter.DefaultExportPath()
		if err != nil {
			return err
		}
	}

	html := exporter.HTML(snap, cfg.ToolbarParentID)
	if err := os.WriteFile(out, []byte(html), 0644); err != nil {
		return err
	}

	fmt.Printf("Exported %d bookmarks, %d folders to %s\n",
		len(snap.SubtreeBookmarks(cfg.ToolbarParentID)),
		countFolders(snap, cfg.ToolbarParentID), out)
	return nil
}

// countFolders counts folders in the subtree, the root excluded.
func countFolders(snap *places.Snapshot, root int64) int {
	n := 0
	for _, f := range snap.ChildFolders(root) {
		n += 1 + countFolders(snap, f.ID)
	}
	return n
}
