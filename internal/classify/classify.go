// Package classify assigns bookmarks to kanban buckets. Completed courses
// go straight to the archive in their current order; everything else is
// ranked and split at the WIP limit into active and planning.
package classify

import (
	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/rank"
)

// Result holds the bucket assignment for one restructuring run. Every
// bookmark from the input appears in exactly one bucket.
type Result struct {
	Active   []*places.Node
	Planning []*places.Node
	Archive  []*places.Node
}

// Bucket returns the bookmarks assigned to b.
func (r Result) Bucket(b places.Bucket) []*places.Node {
	switch b {
	case places.BucketActive:
		return r.Active
	case places.BucketPlanning:
		return r.Planning
	case places.BucketArchive:
		return r.Archive
	default:
		return nil
	}
}

// Split ranks the pool and cuts it at wipLimit: the top bookmarks become
// active, the rest planning. Completed bookmarks bypass ranking entirely
// and keep their order. When the pool fits under the limit, planning comes
// back empty.
func Split(pool, completed []*places.Node, wipLimit int) Result {
	ranked := rank.Bookmarks(pool)

	cut := wipLimit
	if cut > len(ranked) {
		cut = len(ranked)
	}
	if cut < 0 {
		cut = 0
	}

	archive := make([]*places.Node, len(completed))
	copy(archive, completed)

	return Result{
		Active:   ranked[:cut],
		Planning: ranked[cut:],
		Archive:  archive,
	}
}
