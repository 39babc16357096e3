// Package restructure orchestrates a kanban restructuring run: load a
// snapshot, compute a plan, show it, and either stop there or apply it in
// one transaction.
package restructure

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nikbrunner/kanmark/internal/classify"
	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/resolver"
	"github.com/nikbrunner/kanmark/internal/storage"
	"github.com/nikbrunner/kanmark/internal/validate"
)

// Mode selects what happens after the plan is computed.
type Mode int

const (
	// ModeInteractive shows the plan and asks before applying.
	ModeInteractive Mode = iota
	// ModeDryRun shows the plan and never writes.
	ModeDryRun
	// ModeCommit applies the plan without asking.
	ModeCommit
)

func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeDryRun:
		return "dry-run"
	case ModeCommit:
		return "commit"
	default:
		return "unknown"
	}
}

// Options configures a restructuring run.
type Options struct {
	Mode   Mode
	Logger *zap.Logger
	// Report, when set, is called with the computed plan before any
	// decision is made.
	Report func(plan *places.Plan)
	// Confirm is required in interactive mode. Returning false leaves the
	// database untouched.
	Confirm func(plan *places.Plan) (bool, error)
}

// Result describes how a run ended.
type Result struct {
	Plan        *places.Plan
	Applied     bool
	Declined    bool
	ApplyResult *storage.ApplyResult
}

// ComputePlan builds the full restructuring plan from a snapshot without
// touching the database. The returned plan has already survived every
// check a commit would run: tree validation before, protected-folder
// checks on its targets, and tree validation of the simulated outcome.
// Running it twice over the same snapshot yields the same plan.
func ComputePlan(snap *places.Snapshot, cfg storage.Config) (*places.Plan, error) {
	if violations := validate.Tree(snap); len(violations) > 0 {
		return nil, &validate.Error{Violations: violations}
	}

	toolbar := snap.NodeByID(cfg.ToolbarParentID)
	if toolbar == nil {
		return nil, fmt.Errorf("toolbar folder %d does not exist", cfg.ToolbarParentID)
	}
	if !toolbar.IsFolder() {
		return nil, fmt.Errorf("toolbar node %d is not a folder", cfg.ToolbarParentID)
	}

	pool, completed, counts, fromSource, err := collectSources(snap, cfg)
	if err != nil {
		return nil, err
	}

	buckets := classify.Split(pool, completed, cfg.WIPLimit)

	folders, err := destinationFolders(snap, cfg)
	if err != nil {
		return nil, err
	}

	var moves []places.Move
	for _, b := range places.Buckets() {
		for i, n := range buckets.Bucket(b) {
			moves = append(moves, places.Move{
				NodeID:     n.ID,
				GUID:       n.GUID,
				Title:      n.Title,
				URL:        n.URL,
				FromParent: n.Parent,
				FromSource: fromSource[n.ID],
				Bucket:     b,
				Position:   i,
				VisitCount: n.VisitCount,
				LastVisit:  n.LastVisit,
			})
		}
	}

	plan := &places.Plan{
		ToolbarID: cfg.ToolbarParentID,
		WIPLimit:  cfg.WIPLimit,
		Folders:   folders,
		Moves:     moves,
		Sources:   counts,
	}

	if violations := validate.PlanTargets(plan, cfg.SystemFolderIDs); len(violations) > 0 {
		return nil, &validate.ProtectedError{Violations: violations}
	}

	// Simulate the plan on the in-memory tree and validate the outcome, so
	// a plan that would corrupt the database is rejected before any write.
	after, err := snap.Apply(plan)
	if err != nil {
		return nil, err
	}
	if violations := validate.Tree(after); len(violations) > 0 {
		return nil, &validate.Error{Violations: violations}
	}

	return plan, nil
}

// collectSources resolves every configured source folder and gathers its
// bookmarks. A bookmark reachable through several sources is claimed by
// the first one, so it lands in exactly one bucket.
func collectSources(snap *places.Snapshot, cfg storage.Config) (pool, completed []*places.Node, counts []places.SourceCount, fromSource map[int64]string, err error) {
	fromSource = make(map[int64]string)
	seen := make(map[int64]bool)

	for _, src := range cfg.Sources {
		folder, err := resolver.Resolve(snap, cfg.ToolbarParentID, src.Path)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("source %s: %w", src.Label, err)
		}

		var items []*places.Node
		if src.Recursive {
			items = snap.SubtreeBookmarks(folder.ID)
		} else {
			items = snap.ChildBookmarks(folder.ID)
		}

		claimed := 0
		for _, item := range items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			fromSource[item.ID] = src.Label
			if src.Completed {
				completed = append(completed, item)
			} else {
				pool = append(pool, item)
			}
			claimed++
		}

		counts = append(counts, places.SourceCount{
			Label:     src.Label,
			Path:      src.Path,
			FolderID:  folder.ID,
			Count:     claimed,
			Recursive: src.Recursive,
			Completed: src.Completed,
		})
	}

	return pool, completed, counts, fromSource, nil
}

// destinationFolders resolves or allocates the three bucket folders under
// the toolbar. Missing folders get provisional ids past the current
// maximum and positions after the last toolbar child, in bucket order.
func destinationFolders(snap *places.Snapshot, cfg storage.Config) ([]places.FolderSpec, error) {
	maxPos := snap.MaxPosition(cfg.ToolbarParentID)
	nextID := snap.MaxID()
	creates := 0

	var folders []places.FolderSpec
	for _, b := range places.Buckets() {
		bucket := cfg.Bucket(b)
		spec := places.FolderSpec{
			Bucket:      b,
			Title:       bucket.Title,
			Description: bucket.Description,
			Parent:      cfg.ToolbarParentID,
		}

		existing, err := resolver.Resolve(snap, cfg.ToolbarParentID, bucket.Title)
		switch {
		case err == nil:
			spec.Exists = true
			spec.NodeID = existing.ID
			spec.Position = existing.Position
		default:
			var notFound *resolver.NotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("destination %s: %w", bucket.Title, err)
			}
			nextID++
			creates++
			spec.ProvisionalID = nextID
			spec.Position = maxPos + creates
		}

		folders = append(folders, spec)
	}

	return folders, nil
}

// Run loads the database, computes the plan, and carries it out according
// to the mode. Every early exit and every error leaves the database
// exactly as it was.
func Run(st *storage.Store, cfg storage.Config, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("loading snapshot", zap.String("db", st.Path()))
	snap, err := st.LoadSnapshot()
	if err != nil {
		return nil, err
	}
	logger.Info("snapshot loaded", zap.Int("nodes", snap.Len()))

	plan, err := ComputePlan(snap, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("plan computed",
		zap.Int("moves", len(plan.Moves)),
		zap.Int("folders_to_create", plan.CreateCount()),
		zap.Int("wip_limit", plan.WIPLimit))

	result := &Result{Plan: plan}

	if opts.Report != nil {
		opts.Report(plan)
	}

	switch opts.Mode {
	case ModeDryRun:
		logger.Info("dry run, nothing written")
		return result, nil
	case ModeInteractive:
		if opts.Confirm == nil {
			return nil, errors.New("interactive mode needs a confirm callback")
		}
		ok, err := opts.Confirm(plan)
		if err != nil {
			return nil, err
		}
		if !ok {
			logger.Info("declined, nothing written")
			result.Declined = true
			return result, nil
		}
	}

	applied, err := st.Apply(plan, cfg.SystemFolderIDs)
	if err != nil {
		return nil, err
	}
	result.Applied = true
	result.ApplyResult = applied
	logger.Info("restructuring committed",
		zap.Int("moved", applied.Moved),
		zap.Strings("created", applied.Created))

	return result, nil
}
