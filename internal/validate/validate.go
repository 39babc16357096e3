// Package validate checks the structural invariants of a bookmark tree:
// globally unique guids, unique sibling positions, and untouchable system
// folders. Restructuring refuses to start or commit while any of them is
// broken, so a damaged database is reported instead of silently made worse.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nikbrunner/kanmark/internal/places"
)

// Kind identifies the invariant a Violation breaks.
type Kind int

const (
	KindDuplicateGUID Kind = iota
	KindDuplicatePosition
	KindProtectedTarget
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateGUID:
		return "duplicate guid"
	case KindDuplicatePosition:
		return "duplicate position"
	case KindProtectedTarget:
		return "protected folder targeted"
	default:
		return "unknown"
	}
}

// Violation describes one broken invariant and the nodes involved.
type Violation struct {
	Kind     Kind
	NodeIDs  []int64
	GUID     string
	Parent   int64
	Position int
}

func (v Violation) String() string {
	switch v.Kind {
	case KindDuplicateGUID:
		return fmt.Sprintf("guid %q is shared by nodes %v", v.GUID, v.NodeIDs)
	case KindDuplicatePosition:
		return fmt.Sprintf("position %d under folder %d is shared by nodes %v", v.Position, v.Parent, v.NodeIDs)
	case KindProtectedTarget:
		return fmt.Sprintf("system folder %d must not be a mutation target", v.NodeIDs[0])
	default:
		return fmt.Sprintf("unknown violation on nodes %v", v.NodeIDs)
	}
}

// Error is returned when a tree fails invariant validation. The run that
// produced it must leave the database untouched.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("%d invariant violations: %s", len(e.Violations), strings.Join(lines, "; "))
}

// ProtectedError is returned when a planned mutation targets one of the
// protected system folders.
type ProtectedError struct {
	Violations []Violation
}

func (e *ProtectedError) Error() string {
	ids := make([]int64, 0, len(e.Violations))
	for _, v := range e.Violations {
		ids = append(ids, v.NodeIDs...)
	}
	return fmt.Sprintf("plan targets protected system folders %v", ids)
}

// Tree checks guid uniqueness across the whole snapshot and position
// uniqueness among the children of each folder. It returns every violation
// found, in a deterministic order, or nil when the tree is sound.
func Tree(snap *places.Snapshot) []Violation {
	var violations []Violation

	byGUID := make(map[string][]int64)
	for _, n := range snap.Nodes() {
		byGUID[n.GUID] = append(byGUID[n.GUID], n.ID)
	}
	guids := make([]string, 0, len(byGUID))
	for guid := range byGUID {
		guids = append(guids, guid)
	}
	sort.Strings(guids)
	for _, guid := range guids {
		ids := byGUID[guid]
		if len(ids) > 1 {
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			violations = append(violations, Violation{Kind: KindDuplicateGUID, NodeIDs: ids, GUID: guid})
		}
	}

	parents := make(map[int64]bool)
	for _, n := range snap.Nodes() {
		parents[n.Parent] = true
	}
	parentIDs := make([]int64, 0, len(parents))
	for id := range parents {
		parentIDs = append(parentIDs, id)
	}
	sort.Slice(parentIDs, func(i, j int) bool { return parentIDs[i] < parentIDs[j] })

	for _, parent := range parentIDs {
		byPos := make(map[int][]int64)
		for _, child := range snap.Children(parent) {
			byPos[child.Position] = append(byPos[child.Position], child.ID)
		}
		positions := make([]int, 0, len(byPos))
		for pos := range byPos {
			positions = append(positions, pos)
		}
		sort.Ints(positions)
		for _, pos := range positions {
			ids := byPos[pos]
			if len(ids) > 1 {
				sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
				violations = append(violations, Violation{
					Kind:     KindDuplicatePosition,
					NodeIDs:  ids,
					Parent:   parent,
					Position: pos,
				})
			}
		}
	}

	return violations
}

// PlanTargets checks that no planned move or folder creation mutates a
// protected system folder. A protected folder may contain children that
// get moved out of it; it must never itself be moved or re-created.
func PlanTargets(plan *places.Plan, protected []int64) []Violation {
	isProtected := make(map[int64]bool, len(protected))
	for _, id := range protected {
		isProtected[id] = true
	}

	var violations []Violation
	seen := make(map[int64]bool)
	flag := func(id int64) {
		if isProtected[id] && !seen[id] {
			seen[id] = true
			violations = append(violations, Violation{Kind: KindProtectedTarget, NodeIDs: []int64{id}})
		}
	}

	for _, m := range plan.Moves {
		flag(m.NodeID)
	}
	for _, f := range plan.Folders {
		if f.Exists {
			flag(f.NodeID)
		}
	}

	sort.Slice(violations, func(i, j int) bool { return violations[i].NodeIDs[0] < violations[j].NodeIDs[0] })
	return violations
}
