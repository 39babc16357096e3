package storage

import (
	"fmt"

	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/validate"
)

// ApplyResult summarizes what a committed plan changed.
type ApplyResult struct {
	// FolderIDs maps each bucket to the real id of its destination folder,
	// whether it already existed or was created in this run.
	FolderIDs map[places.Bucket]int64
	// Created lists the titles of folders created in this run.
	Created []string
	// Moved is the number of bookmarks reassigned.
	Moved int
}

// Apply executes a plan inside a single transaction: create the missing
// destination folders, reassign every planned bookmark, then re-validate
// the whole tree before committing. Any error rolls everything back, so
// the database is either fully restructured or untouched.
func (s *Store) Apply(plan *places.Plan, protected []int64) (*ApplyResult, error) {
	if violations := validate.PlanTargets(plan, protected); len(violations) > 0 {
		return nil, &validate.ProtectedError{Violations: violations}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	result := &ApplyResult{FolderIDs: make(map[places.Bucket]int64)}

	for _, spec := range plan.Folders {
		if spec.Exists {
			result.FolderIDs[spec.Bucket] = spec.NodeID
			continue
		}
		id, err := insertFolderTx(tx, spec.Parent, spec.Position, spec.Title)
		if err != nil {
			return nil, err
		}
		result.FolderIDs[spec.Bucket] = id
		result.Created = append(result.Created, spec.Title)
	}

	stmt, err := tx.Prepare(`
		UPDATE moz_bookmarks
		SET parent = ?, position = ?, lastModified = ?
		WHERE id = ?
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	now := nowMicros()
	for _, m := range plan.Moves {
		folderID, ok := result.FolderIDs[m.Bucket]
		if !ok {
			return nil, fmt.Errorf("no destination folder for bucket %s", m.Bucket)
		}

		res, err := stmt.Exec(folderID, m.Position, now, m.NodeID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected != 1 {
			return nil, fmt.Errorf("bookmark %d vanished during restructuring", m.NodeID)
		}
		result.Moved++
	}

	// Re-validate against what is actually in the transaction, not just the
	// simulated plan. Anything broken here rolls the whole run back.
	after, err := loadSnapshot(tx)
	if err != nil {
		return nil, err
	}
	if violations := validate.Tree(after); len(violations) > 0 {
		return nil, &validate.Error{Violations: violations}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return result, nil
}
