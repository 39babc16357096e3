package places

import (
	"fmt"
	"time"
)

// FolderSpec describes one destination folder: either an existing folder
// reused as-is, or a folder the mutator creates under Parent. Provisional
// ids stand in for the rowid during in-memory simulation; the database
// assigns the real one on insert.
type FolderSpec struct {
	Bucket        Bucket
	Title         string
	Description   string // report-only, the schema stores no description
	Parent        int64
	Exists        bool
	NodeID        int64
	ProvisionalID int64
	Position      int
}

// Move reassigns one bookmark into a bucket at a dense position. The
// descriptive fields are carried so reports and the confirmation board
// never need to re-query the snapshot.
type Move struct {
	NodeID     int64
	GUID       string
	Title      string
	URL        string
	FromParent int64
	FromSource string
	Bucket     Bucket
	Position   int
	VisitCount int
	LastVisit  int64
}

// SourceCount records how one configured source resolved.
type SourceCount struct {
	Label     string
	Path      string
	FolderID  int64
	Count     int
	Recursive bool
	Completed bool
}

// Plan is the computed, not-yet-applied restructure: destination folder
// specs plus bucket-grouped moves. A plan is applied wholesale or not at
// all.
type Plan struct {
	ToolbarID int64
	WIPLimit  int
	Folders   []FolderSpec
	Moves     []Move
	Sources   []SourceCount
}

// FolderID returns the destination folder id for a bucket: the existing
// rowid, or the provisional id for a folder still to be created.
func (p *Plan) FolderID(b Bucket) (int64, bool) {
	for _, f := range p.Folders {
		if f.Bucket == b {
			if f.Exists {
				return f.NodeID, true
			}
			return f.ProvisionalID, true
		}
	}
	return 0, false
}

// FolderTitle returns the destination folder title for a bucket.
func (p *Plan) FolderTitle(b Bucket) string {
	for _, f := range p.Folders {
		if f.Bucket == b {
			return f.Title
		}
	}
	return b.String()
}

// MovesTo returns the moves headed for one bucket, in position order.
func (p *Plan) MovesTo(b Bucket) []Move {
	var out []Move
	for _, m := range p.Moves {
		if m.Bucket == b {
			out = append(out, m)
		}
	}
	return out
}

// TargetIDs returns the ids of every node the plan mutates.
func (p *Plan) TargetIDs() []int64 {
	out := make([]int64, 0, len(p.Moves))
	for _, m := range p.Moves {
		out = append(out, m.NodeID)
	}
	return out
}

// CreateCount returns how many destination folders the plan has to create.
func (p *Plan) CreateCount() int {
	n := 0
	for _, f := range p.Folders {
		if !f.Exists {
			n++
		}
	}
	return n
}

// Apply replays the plan on a deep copy of the snapshot and returns the
// resulting tree. Created folders use their provisional ids and fresh
// guids; moved bookmarks get their new parent, position, and a bumped
// lastModified, exactly as the database apply performs them. The receiver
// is never modified.
func (s *Snapshot) Apply(plan *Plan) (*Snapshot, error) {
	now := time.Now().UnixMicro()

	nodes := make([]*Node, 0, len(s.nodes)+plan.CreateCount())
	for _, n := range s.nodes {
		c := *n
		nodes = append(nodes, &c)
	}

	folderID := make(map[Bucket]int64, len(plan.Folders))
	for _, spec := range plan.Folders {
		if spec.Exists {
			folderID[spec.Bucket] = spec.NodeID
			continue
		}
		folderID[spec.Bucket] = spec.ProvisionalID
		nodes = append(nodes, &Node{
			ID:           spec.ProvisionalID,
			GUID:         NewGUID(),
			Type:         TypeFolder,
			Parent:       spec.Parent,
			Position:     spec.Position,
			Title:        spec.Title,
			DateAdded:    now,
			LastModified: now,
		})
	}

	byID := make(map[int64]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	for _, m := range plan.Moves {
		target, ok := folderID[m.Bucket]
		if !ok {
			return nil, fmt.Errorf("plan has no destination folder for bucket %s", m.Bucket)
		}
		n := byID[m.NodeID]
		if n == nil {
			return nil, fmt.Errorf("plan moves unknown node %d", m.NodeID)
		}
		n.Parent = target
		n.Position = m.Position
		n.LastModified = now
	}

	return NewSnapshot(nodes), nil
}
