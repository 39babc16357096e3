package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/kanmark/internal/importer"
	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/resolver"
	"github.com/nikbrunner/kanmark/internal/storage"
)

var (
	importInto   string
	importCreate bool
)

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import a Netscape bookmark HTML file into a folder",
	Long: `import parses a bookmark HTML export and inserts its folders and
bookmarks at the end of the target folder. By default the target is the
toolbar root; --into selects a slash-separated path below it.

With --create, a missing database file is bootstrapped with the places
schema and system roots, and missing folders along the --into path are
created. Importing a Firefox export into such a scratch database is the
supported way to trial-run a restructuring without a real profile copy.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importInto, "into", "", "Folder path under the toolbar to import into (default: toolbar root)")
	importCmd.Flags().BoolVar(&importCreate, "create", false, "Create a missing database and missing --into folders")
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	items, err := importer.Parse(file)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if len(items) == 0 {
		fmt.Println("Nothing to import.")
		return nil
	}

	st, err := openTarget(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.LoadSnapshot()
	if err != nil {
		return err
	}

	target := cfg.ToolbarParentID
	if importInto != "" {
		target, err = resolveTarget(st, snap, cfg.ToolbarParentID, importInto)
		if err != nil {
			return err
		}
	}

	if err := insertItems(st, target, items); err != nil {
		return err
	}

	folders, bookmarks := importer.Count(items)
	fmt.Printf("Imported %d bookmarks, %d folders.\n", bookmarks, folders)
	return nil
}

// openTarget opens the database, bootstrapping a scratch one with the
// places schema when --create is set and the file does not exist yet.
func openTarget(path string) (*storage.Store, error) {
	if importCreate {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return storage.Create(path)
		}
	}
	return storage.Open(path)
}

// resolveTarget resolves the --into path, creating the missing tail when
// --create is set. Ambiguous paths abort either way.
func resolveTarget(st *storage.Store, snap *places.Snapshot, start int64, path string) (int64, error) {
	folder, err := resolver.Resolve(snap, start, path)
	if err == nil {
		return folder.ID, nil
	}
	var notFound *resolver.NotFoundError
	if !importCreate || !errors.As(err, &notFound) {
		return 0, err
	}

	// Walk segment by segment; once one folder had to be created, every
	// deeper segment is new as well.
	parent := start
	created := false
	for _, segment := range strings.Split(path, "/") {
		if !created {
			f, err := resolver.Resolve(snap, parent, segment)
			if err == nil {
				parent = f.ID
				continue
			}
			if !errors.As(err, &notFound) {
				return 0, err
			}
			created = true
		}
		id, err := st.AddFolder(parent, segment)
		if err != nil {
			return 0, err
		}
		parent = id
	}
	return parent, nil
}

// insertItems writes the parsed tree under parent in file order.
func insertItems(st *storage.Store, parent int64, items []importer.Item) error {
	for _, item := range items {
		if item.Folder {
			id, err := st.AddFolder(parent, item.Title)
			if err != nil {
				return err
			}
			if err := insertItems(st, id, item.Children); err != nil {
				return err
			}
			continue
		}
		_, err := st.AddBookmark(storage.AddBookmarkParams{
			Parent:    parent,
			Title:     item.Title,
			URL:       item.URL,
			DateAdded: item.AddDate,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
