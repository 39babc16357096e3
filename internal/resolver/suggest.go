package resolver

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/kanmark/internal/places"
)

const maxSuggestions = 3

// folderTitles adapts a list of folder nodes to fuzzy.Source.
type folderTitles []*places.Node

func (f folderTitles) String(i int) string {
	return f[i].Title
}

func (f folderTitles) Len() int {
	return len(f)
}

// Suggest returns up to maxSuggestions child folder titles of parent that
// fuzzy-match segment, best match first. Used to make path errors
// actionable when a folder was renamed or the config has a typo.
func Suggest(snap *places.Snapshot, parent int64, segment string) []string {
	folders := folderTitles(snap.ChildFolders(parent))
	if len(folders) == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(segment, folders)

	var titles []string
	seen := make(map[string]bool)
	for _, m := range matches {
		title := folders[m.Index].Title
		if seen[title] {
			continue
		}
		seen[title] = true
		titles = append(titles, title)
		if len(titles) == maxSuggestions {
			break
		}
	}
	return titles
}
