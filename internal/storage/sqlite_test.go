package storage_test

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/kanmark/internal/places"
	"github.com/nikbrunner/kanmark/internal/storage"
	"github.com/nikbrunner/kanmark/internal/validate"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "places_copy.sqlite")

	s, err := storage.Create(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedCourses adds a Learn folder under the toolbar with three course
// bookmarks and returns the bookmark ids.
func seedCourses(t *testing.T, s *storage.Store) []int64 {
	t.Helper()

	learnID, err := s.AddFolder(places.ToolbarFolderID, "Learn")
	if err != nil {
		t.Fatalf("failed to add folder: %v", err)
	}

	var ids []int64
	courses := []struct {
		title     string
		visits    int
		lastVisit int64
	}{
		{"Go Basics", 5, 100},
		{"Networks", 0, 0},
		{"Databases", 2, 200},
	}
	for _, c := range courses {
		id, err := s.AddBookmark(storage.AddBookmarkParams{
			Parent:     learnID,
			Title:      c.title,
			URL:        "https://example.com/" + c.title,
			VisitCount: c.visits,
			LastVisit:  c.lastVisit,
		})
		if err != nil {
			t.Fatalf("failed to add bookmark %q: %v", c.title, err)
		}
		ids = append(ids, id)
	}
	return ids
}

// coursePlan moves the three seeded bookmarks into three new bucket
// folders under the toolbar.
func coursePlan(ids []int64) *places.Plan {
	return &places.Plan{
		ToolbarID: places.ToolbarFolderID,
		WIPLimit:  3,
		Folders: []places.FolderSpec{
			{Bucket: places.BucketActive, Title: "01_IN_PROGRESS", Parent: places.ToolbarFolderID, ProvisionalID: 100, Position: 1},
			{Bucket: places.BucketPlanning, Title: "02_PLANNING", Parent: places.ToolbarFolderID, ProvisionalID: 101, Position: 2},
			{Bucket: places.BucketArchive, Title: "03_ARCHIVE", Parent: places.ToolbarFolderID, ProvisionalID: 102, Position: 3},
		},
		Moves: []places.Move{
			{NodeID: ids[0], Bucket: places.BucketActive, Position: 0},
			{NodeID: ids[1], Bucket: places.BucketPlanning, Position: 0},
			{NodeID: ids[2], Bucket: places.BucketArchive, Position: 0},
		},
	}
}

func TestCreate_SeedsRootFolders(t *testing.T) {
	s := newTestStore(t)

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	if snap.Len() != 6 {
		t.Fatalf("expected 6 system folders, got %d nodes", snap.Len())
	}

	toolbar := snap.NodeByID(places.ToolbarFolderID)
	if toolbar == nil || !toolbar.IsFolder() {
		t.Fatal("toolbar root missing")
	}
	if toolbar.GUID != "toolbar_____" {
		t.Errorf("toolbar guid: got %q", toolbar.GUID)
	}
	if toolbar.Parent != places.RootFolderID || toolbar.Position != 1 {
		t.Errorf("toolbar placement: parent=%d position=%d", toolbar.Parent, toolbar.Position)
	}

	if got := validate.Tree(snap); len(got) != 0 {
		t.Errorf("fresh database has violations: %v", got)
	}
}

func TestCreate_RefusesExisting(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "places_copy.sqlite")

	s, err := storage.Create(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	s.Close()

	if _, err := storage.Create(dbPath); err == nil {
		t.Error("expected error when creating over an existing database")
	}
}

func TestOpen_MissingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nope.sqlite")

	_, err := storage.Open(dbPath)
	if err == nil {
		t.Fatal("expected error for missing database")
	}
	if !strings.Contains(err.Error(), dbPath) {
		t.Errorf("error should name the missing path, got: %v", err)
	}
}

func TestStore_AddFolder(t *testing.T) {
	s := newTestStore(t)

	first, err := s.AddFolder(places.ToolbarFolderID, "Learn")
	if err != nil {
		t.Fatalf("failed to add folder: %v", err)
	}
	second, err := s.AddFolder(places.ToolbarFolderID, "Work")
	if err != nil {
		t.Fatalf("failed to add folder: %v", err)
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	f1, f2 := snap.NodeByID(first), snap.NodeByID(second)
	if f1 == nil || f2 == nil {
		t.Fatal("created folders not found in snapshot")
	}
	if f1.Position != 0 || f2.Position != 1 {
		t.Errorf("positions: got %d and %d, want 0 and 1", f1.Position, f2.Position)
	}
	if !places.ValidGUID(f1.GUID) || !places.ValidGUID(f2.GUID) {
		t.Errorf("created folders have invalid guids: %q %q", f1.GUID, f2.GUID)
	}
	if f1.Title != "Learn" || f2.Title != "Work" {
		t.Errorf("titles: got %q and %q", f1.Title, f2.Title)
	}
}

func TestStore_AddBookmark(t *testing.T) {
	s := newTestStore(t)
	ids := seedCourses(t, s)

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	b := snap.NodeByID(ids[0])
	if b == nil || !b.IsBookmark() {
		t.Fatal("seeded bookmark not found")
	}
	if b.URL != "https://example.com/Go Basics" {
		t.Errorf("url not joined from moz_places: got %q", b.URL)
	}
	if b.VisitCount != 5 || b.LastVisit != 100 {
		t.Errorf("visit data: count=%d lastVisit=%d", b.VisitCount, b.LastVisit)
	}
	if b.DateAdded == 0 || b.LastModified == 0 {
		t.Error("expected dateAdded and lastModified to be set")
	}

	never := snap.NodeByID(ids[1])
	if never.LastVisit != 0 || never.VisitCount != 0 {
		t.Errorf("never-visited bookmark has visit data: count=%d lastVisit=%d", never.VisitCount, never.LastVisit)
	}
}

func TestStore_AddBookmark_ReusesPlace(t *testing.T) {
	s := newTestStore(t)

	first, err := s.AddBookmark(storage.AddBookmarkParams{
		Parent: places.UnfiledFolderID,
		Title:  "one",
		URL:    "https://example.com/shared",
	})
	if err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}
	second, err := s.AddBookmark(storage.AddBookmarkParams{
		Parent: places.UnfiledFolderID,
		Title:  "two",
		URL:    "https://example.com/shared",
	})
	if err != nil {
		t.Fatalf("failed to add bookmark: %v", err)
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	if p1, p2 := snap.NodeByID(first).PlaceID, snap.NodeByID(second).PlaceID; p1 != p2 {
		t.Errorf("same url got two place rows: %d and %d", p1, p2)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}
	if stats["places"] != 1 {
		t.Errorf("expected 1 place row, got %d", stats["places"])
	}
}

func TestStore_Apply(t *testing.T) {
	s := newTestStore(t)
	ids := seedCourses(t, s)

	before, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	guidsBefore := make(map[string]bool)
	for _, n := range before.Nodes() {
		guidsBefore[n.GUID] = true
	}

	result, err := s.Apply(coursePlan(ids), places.SystemFolderIDs())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if result.Moved != 3 {
		t.Errorf("moved: got %d, want 3", result.Moved)
	}
	if len(result.Created) != 3 {
		t.Errorf("created: got %v, want 3 folders", result.Created)
	}

	after, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	// Every guid from before survives; exactly the created folders are new.
	for _, n := range after.Nodes() {
		delete(guidsBefore, n.GUID)
	}
	if len(guidsBefore) != 0 {
		t.Errorf("guids lost during apply: %v", guidsBefore)
	}
	if after.Len() != before.Len()+3 {
		t.Errorf("node count: before=%d after=%d, want +3", before.Len(), after.Len())
	}

	activeID := result.FolderIDs[places.BucketActive]
	moved := after.NodeByID(ids[0])
	if moved.Parent != activeID || moved.Position != 0 {
		t.Errorf("bookmark placement: parent=%d position=%d, want parent=%d position=0", moved.Parent, moved.Position, activeID)
	}
	if moved.LastModified <= before.NodeByID(ids[0]).LastModified {
		t.Error("expected lastModified bump on moved bookmark")
	}

	if got := validate.Tree(after); len(got) != 0 {
		t.Errorf("tree has violations after apply: %v", got)
	}
}

func TestStore_Apply_ExistingDestination(t *testing.T) {
	s := newTestStore(t)
	ids := seedCourses(t, s)

	existingID, err := s.AddFolder(places.ToolbarFolderID, "01_IN_PROGRESS")
	if err != nil {
		t.Fatalf("failed to add folder: %v", err)
	}

	plan := coursePlan(ids)
	plan.Folders[0].Exists = true
	plan.Folders[0].NodeID = existingID
	plan.Folders[0].ProvisionalID = 0
	// The two remaining creations land after the existing folder.
	plan.Folders[1].Position = 2
	plan.Folders[2].Position = 3

	result, err := s.Apply(plan, places.SystemFolderIDs())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if len(result.Created) != 2 {
		t.Errorf("created: got %v, want only the 2 missing folders", result.Created)
	}
	if result.FolderIDs[places.BucketActive] != existingID {
		t.Errorf("active folder id: got %d, want reused %d", result.FolderIDs[places.BucketActive], existingID)
	}
}

func TestStore_Apply_RollbackOnViolation(t *testing.T) {
	s := newTestStore(t)
	ids := seedCourses(t, s)

	before, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	// Two bookmarks on the same position in the same bucket break the
	// sibling-position invariant, which post-validation must catch.
	plan := coursePlan(ids)
	plan.Moves[1].Bucket = places.BucketActive
	plan.Moves[1].Position = 0

	_, err = s.Apply(plan, places.SystemFolderIDs())
	var verr *validate.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected invariant violation error, got %v", err)
	}

	assertUnchanged(t, s, before)
}

func TestStore_Apply_ProtectedTarget(t *testing.T) {
	s := newTestStore(t)
	ids := seedCourses(t, s)

	before, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	plan := coursePlan(ids)
	plan.Moves[0].NodeID = places.ToolbarFolderID

	_, err = s.Apply(plan, places.SystemFolderIDs())
	var perr *validate.ProtectedError
	if !errors.As(err, &perr) {
		t.Fatalf("expected protected folder error, got %v", err)
	}

	assertUnchanged(t, s, before)
}

func TestStore_Apply_UnknownBookmark(t *testing.T) {
	s := newTestStore(t)
	ids := seedCourses(t, s)

	before, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}

	plan := coursePlan(ids)
	plan.Moves[0].NodeID = 9999

	if _, err := s.Apply(plan, places.SystemFolderIDs()); err == nil {
		t.Fatal("expected error for unknown bookmark id")
	}

	// The folder creations from the same transaction must be gone too.
	assertUnchanged(t, s, before)
}

// assertUnchanged verifies the database still matches an earlier snapshot.
func assertUnchanged(t *testing.T, s *storage.Store, want *places.Snapshot) {
	t.Helper()

	got, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("node count changed: got %d, want %d", got.Len(), want.Len())
	}
	for _, w := range want.Nodes() {
		g := got.NodeByID(w.ID)
		if g == nil {
			t.Fatalf("node %d disappeared", w.ID)
		}
		if g.Parent != w.Parent || g.Position != w.Position || g.LastModified != w.LastModified {
			t.Errorf("node %d changed: parent %d->%d position %d->%d", w.ID, w.Parent, g.Parent, w.Position, g.Position)
		}
	}
}

func TestStore_ReindexPositions(t *testing.T) {
	s := newTestStore(t)
	ids := seedCourses(t, s)

	// Corrupt the positions through a second raw connection; the schema has
	// no unique index on (parent, position), exactly like Firefox.
	db, err := sql.Open("sqlite", s.Path())
	if err != nil {
		t.Fatalf("failed to open raw connection: %v", err)
	}
	for i, id := range ids {
		pos := 5
		if i == 2 {
			pos = 9
		}
		if _, err := db.Exec("UPDATE moz_bookmarks SET position = ? WHERE id = ?", pos, id); err != nil {
			t.Fatalf("failed to corrupt positions: %v", err)
		}
	}
	db.Close()

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	learn := snap.NodeByID(ids[0]).Parent
	if got := validate.Tree(snap); len(got) == 0 {
		t.Fatal("expected duplicate position violations before reindex")
	}

	changed, err := s.ReindexPositions(learn)
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if changed != 3 {
		t.Errorf("changed rows: got %d, want 3", changed)
	}

	snap, err = s.LoadSnapshot()
	if err != nil {
		t.Fatalf("failed to load snapshot: %v", err)
	}
	if got := validate.Tree(snap); len(got) != 0 {
		t.Errorf("violations remain after reindex: %v", got)
	}
	for i, child := range snap.Children(learn) {
		if child.Position != i {
			t.Errorf("child %d has position %d after reindex", child.ID, child.Position)
		}
	}
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("failed to read stats: %v", err)
	}

	if stats["folders"] != 7 { // 6 roots + Learn
		t.Errorf("folders: got %d, want 7", stats["folders"])
	}
	if stats["bookmarks"] != 3 {
		t.Errorf("bookmarks: got %d, want 3", stats["bookmarks"])
	}
	if stats["nodes"] != 10 {
		t.Errorf("nodes: got %d, want 10", stats["nodes"])
	}
	if stats["places"] != 3 {
		t.Errorf("places: got %d, want 3", stats["places"])
	}
}

func TestStore_Backup(t *testing.T) {
	s := newTestStore(t)
	seedCourses(t, s)

	backupPath, err := s.Backup()
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	if !strings.HasPrefix(backupPath, s.Path()+".backup-") {
		t.Errorf("backup path: got %q", backupPath)
	}

	info, err := os.Stat(backupPath)
	if err != nil {
		t.Fatalf("backup file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("backup file is empty")
	}
}
