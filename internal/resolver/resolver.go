// Package resolver turns slash-separated folder paths like
// "Learn/Coursera/In progress" into bookmark tree nodes.
package resolver

import (
	"fmt"
	"strings"

	"github.com/nikbrunner/kanmark/internal/places"
)

// NotFoundError reports a path segment with no matching child folder.
type NotFoundError struct {
	Path        string
	Segment     string
	Parent      int64
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("path %q not found: no folder named %q under folder %d", e.Path, e.Segment, e.Parent)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// AmbiguousError reports a path segment matched by more than one sibling
// folder. The caller has to rename or deduplicate before the path can be
// used; guessing between the candidates is never safe.
type AmbiguousError struct {
	Path    string
	Segment string
	Parent  int64
	IDs     []int64
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("path %q is ambiguous: %d folders named %q under folder %d (ids %v)",
		e.Path, len(e.IDs), e.Segment, e.Parent, e.IDs)
}

// Resolve walks path from the folder startID, matching each slash-separated
// segment against child folder titles. Matching is exact and case sensitive.
// An empty path resolves to the start folder itself.
func Resolve(snap *places.Snapshot, startID int64, path string) (*places.Node, error) {
	cur := snap.NodeByID(startID)
	if cur == nil {
		return nil, fmt.Errorf("start folder %d does not exist", startID)
	}
	if !cur.IsFolder() {
		return nil, fmt.Errorf("start node %d is not a folder", startID)
	}
	if path == "" {
		return cur, nil
	}

	for _, segment := range strings.Split(path, "/") {
		var matches []*places.Node
		for _, child := range snap.ChildFolders(cur.ID) {
			if child.Title == segment {
				matches = append(matches, child)
			}
		}

		switch len(matches) {
		case 0:
			return nil, &NotFoundError{
				Path:        path,
				Segment:     segment,
				Parent:      cur.ID,
				Suggestions: Suggest(snap, cur.ID, segment),
			}
		case 1:
			cur = matches[0]
		default:
			ids := make([]int64, len(matches))
			for i, m := range matches {
				ids[i] = m.ID
			}
			return nil, &AmbiguousError{Path: path, Segment: segment, Parent: cur.ID, IDs: ids}
		}
	}

	return cur, nil
}
