// Package exporter renders a bookmark tree as Netscape bookmark HTML,
// the format every browser accepts for import.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/kanmark/internal/places"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/kanmark-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("kanmark-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// HTML renders the subtree under root as a Netscape bookmark file.
// Siblings keep their stored order.
func HTML(snap *places.Snapshot, root int64) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeItems(&b, snap, root, 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// writeItems recursively writes the children of one folder.
func writeItems(b *strings.Builder, snap *places.Snapshot, parent int64, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, node := range snap.Children(parent) {
		switch {
		case node.IsFolder():
			fmt.Fprintf(b, "%s<DT><H3 ADD_DATE=\"%d\" LAST_MODIFIED=\"%d\">%s</H3>\n",
				prefix,
				toSeconds(node.DateAdded),
				toSeconds(node.LastModified),
				html.EscapeString(node.Title),
			)
			fmt.Fprintf(b, "%s<DL><p>\n", prefix)
			writeItems(b, snap, node.ID, indent+1)
			fmt.Fprintf(b, "%s</DL><p>\n", prefix)

		case node.IsBookmark():
			fmt.Fprintf(b, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\" LAST_MODIFIED=\"%d\">%s</A>\n",
				prefix,
				html.EscapeString(node.URL),
				toSeconds(node.DateAdded),
				toSeconds(node.LastModified),
				html.EscapeString(node.Title),
			)

		case node.Type == places.TypeSeparator:
			fmt.Fprintf(b, "%s<HR>\n", prefix)
		}
	}
}

// toSeconds converts a places timestamp (microseconds) to unix seconds.
func toSeconds(micros int64) int64 {
	return micros / 1_000_000
}
