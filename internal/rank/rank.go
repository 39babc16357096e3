// Package rank orders bookmarks by how recently and how often they were
// used. Recently visited bookmarks come first and never-visited ones last,
// so the WIP cut keeps the courses that are actually being worked on.
package rank

import (
	"sort"

	"github.com/nikbrunner/kanmark/internal/places"
)

// Less reports whether a ranks before b. The ordering is total and
// deterministic: last visit descending with never-visited bookmarks last,
// then last modified descending, then visit count descending, and finally
// position and id ascending so equal bookmarks keep a stable relative
// order across runs.
func Less(a, b *places.Node) bool {
	if a.LastVisit != b.LastVisit {
		if a.LastVisit == 0 {
			return false
		}
		if b.LastVisit == 0 {
			return true
		}
		return a.LastVisit > b.LastVisit
	}
	if a.LastModified != b.LastModified {
		return a.LastModified > b.LastModified
	}
	if a.VisitCount != b.VisitCount {
		return a.VisitCount > b.VisitCount
	}
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return a.ID < b.ID
}

// Bookmarks returns a new slice with nodes sorted by Less. The input is
// left untouched.
func Bookmarks(nodes []*places.Node) []*places.Node {
	ranked := make([]*places.Node, len(nodes))
	copy(ranked, nodes)
	sort.Slice(ranked, func(i, j int) bool { return Less(ranked[i], ranked[j]) })
	return ranked
}
