package places

import "sort"

// Snapshot is the immutable in-memory tree read at run start. Plans are
// computed against a snapshot and applied either in memory (Apply, for
// simulation and preview) or against the database (storage.Apply).
type Snapshot struct {
	nodes    []*Node
	byID     map[int64]*Node
	byParent map[int64][]*Node
}

// NewSnapshot builds a snapshot and its lookup indexes. Sibling lists are
// ordered by position, then id.
func NewSnapshot(nodes []*Node) *Snapshot {
	s := &Snapshot{
		nodes:    nodes,
		byID:     make(map[int64]*Node, len(nodes)),
		byParent: make(map[int64][]*Node),
	}
	for _, n := range nodes {
		s.byID[n.ID] = n
		s.byParent[n.Parent] = append(s.byParent[n.Parent], n)
	}
	for _, siblings := range s.byParent {
		sort.Slice(siblings, func(i, j int) bool {
			if siblings[i].Position != siblings[j].Position {
				return siblings[i].Position < siblings[j].Position
			}
			return siblings[i].ID < siblings[j].ID
		})
	}
	return s
}

// Nodes returns every node ordered by id.
func (s *Snapshot) Nodes() []*Node {
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of nodes.
func (s *Snapshot) Len() int {
	return len(s.nodes)
}

// NodeByID finds a node by rowid, nil if absent.
func (s *Snapshot) NodeByID(id int64) *Node {
	return s.byID[id]
}

// Children returns the position-ordered children of a folder.
func (s *Snapshot) Children(parent int64) []*Node {
	return s.byParent[parent]
}

// ChildFolders returns the position-ordered child folders of a folder.
func (s *Snapshot) ChildFolders(parent int64) []*Node {
	var out []*Node
	for _, n := range s.byParent[parent] {
		if n.IsFolder() {
			out = append(out, n)
		}
	}
	return out
}

// ChildBookmarks returns the position-ordered bookmarks directly inside a
// folder.
func (s *Snapshot) ChildBookmarks(parent int64) []*Node {
	var out []*Node
	for _, n := range s.byParent[parent] {
		if n.IsBookmark() {
			out = append(out, n)
		}
	}
	return out
}

// SubtreeBookmarks returns the bookmarks inside a folder and all of its
// descendant folders, depth-first in position order.
func (s *Snapshot) SubtreeBookmarks(folderID int64) []*Node {
	var out []*Node
	for _, n := range s.byParent[folderID] {
		switch {
		case n.IsBookmark():
			out = append(out, n)
		case n.IsFolder():
			out = append(out, s.SubtreeBookmarks(n.ID)...)
		}
	}
	return out
}

// MaxPosition returns the highest position among a folder's children, or
// -1 when the folder is empty.
func (s *Snapshot) MaxPosition(parent int64) int {
	max := -1
	for _, n := range s.byParent[parent] {
		if n.Position > max {
			max = n.Position
		}
	}
	return max
}

// MaxID returns the highest node id in the snapshot, 0 when empty.
func (s *Snapshot) MaxID() int64 {
	var max int64
	for _, n := range s.nodes {
		if n.ID > max {
			max = n.ID
		}
	}
	return max
}

// Clone returns a deep copy whose nodes can be mutated freely.
func (s *Snapshot) Clone() *Snapshot {
	nodes := make([]*Node, len(s.nodes))
	for i, n := range s.nodes {
		c := *n
		nodes[i] = &c
	}
	return NewSnapshot(nodes)
}
