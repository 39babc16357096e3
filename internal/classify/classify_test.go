package classify_test

import (
	"testing"

	"github.com/nikbrunner/kanmark/internal/classify"
	"github.com/nikbrunner/kanmark/internal/places"
)

func bm(id int64, title string, visits int, lastVisit int64) *places.Node {
	return &places.Node{
		ID:         id,
		Type:       places.TypeBookmark,
		Title:      title,
		VisitCount: visits,
		LastVisit:  lastVisit,
	}
}

func titles(nodes []*places.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}

// Three candidates with a WIP limit of two: the two most recently visited
// become active, the never-visited one waits in planning.
func TestSplit_WIPCut(t *testing.T) {
	pool := []*places.Node{
		bm(1, "A", 1, 100),
		bm(2, "B", 0, 0),
		bm(3, "C", 1, 200),
	}

	got := classify.Split(pool, nil, 2)

	if len(got.Active) != 2 || got.Active[0].Title != "C" || got.Active[1].Title != "A" {
		t.Errorf("active: got %v, want [C A]", titles(got.Active))
	}
	if len(got.Planning) != 1 || got.Planning[0].Title != "B" {
		t.Errorf("planning: got %v, want [B]", titles(got.Planning))
	}
	if len(got.Archive) != 0 {
		t.Errorf("archive: got %v, want empty", titles(got.Archive))
	}
}

func TestSplit_PoolUnderLimit(t *testing.T) {
	pool := []*places.Node{
		bm(1, "A", 1, 100),
		bm(2, "B", 0, 0),
	}

	got := classify.Split(pool, nil, 3)

	if len(got.Active) != 2 {
		t.Errorf("active: got %v, want both bookmarks", titles(got.Active))
	}
	if len(got.Planning) != 0 {
		t.Errorf("planning: got %v, want empty", titles(got.Planning))
	}
}

func TestSplit_EmptyPool(t *testing.T) {
	got := classify.Split(nil, nil, 3)

	if len(got.Active) != 0 || len(got.Planning) != 0 || len(got.Archive) != 0 {
		t.Errorf("expected all buckets empty, got %+v", got)
	}
}

// Completed bookmarks keep their incoming order no matter how their visit
// stats compare; ranking applies to the pool only.
func TestSplit_CompletedBypassesRanking(t *testing.T) {
	completed := []*places.Node{
		bm(10, "first", 0, 0),
		bm(11, "second", 9, 999),
		bm(12, "third", 1, 50),
		bm(13, "fourth", 0, 0),
		bm(14, "fifth", 3, 500),
	}

	got := classify.Split(nil, completed, 3)

	want := []string{"first", "second", "third", "fourth", "fifth"}
	if len(got.Archive) != len(want) {
		t.Fatalf("archive size: got %d, want %d", len(got.Archive), len(want))
	}
	for i, w := range want {
		if got.Archive[i].Title != w {
			t.Fatalf("archive order: got %v, want %v", titles(got.Archive), want)
		}
	}
	if len(got.Active) != 0 || len(got.Planning) != 0 {
		t.Error("completed bookmarks leaked into active or planning")
	}
}

func TestSplit_ZeroLimit(t *testing.T) {
	pool := []*places.Node{bm(1, "A", 1, 100)}

	got := classify.Split(pool, nil, 0)

	if len(got.Active) != 0 {
		t.Errorf("active: got %v, want empty with zero limit", titles(got.Active))
	}
	if len(got.Planning) != 1 {
		t.Errorf("planning: got %v, want [A]", titles(got.Planning))
	}
}

func TestResult_Bucket(t *testing.T) {
	r := classify.Result{
		Active:   []*places.Node{bm(1, "A", 0, 0)},
		Planning: []*places.Node{bm(2, "B", 0, 0)},
		Archive:  []*places.Node{bm(3, "C", 0, 0)},
	}

	if got := r.Bucket(places.BucketActive); len(got) != 1 || got[0].Title != "A" {
		t.Errorf("active accessor: got %v", titles(got))
	}
	if got := r.Bucket(places.BucketPlanning); len(got) != 1 || got[0].Title != "B" {
		t.Errorf("planning accessor: got %v", titles(got))
	}
	if got := r.Bucket(places.BucketArchive); len(got) != 1 || got[0].Title != "C" {
		t.Errorf("archive accessor: got %v", titles(got))
	}
}

// Every input bookmark lands in exactly one bucket.
func TestSplit_Partition(t *testing.T) {
	pool := []*places.Node{
		bm(1, "A", 1, 100),
		bm(2, "B", 0, 0),
		bm(3, "C", 2, 300),
		bm(4, "D", 0, 0),
	}
	completed := []*places.Node{bm(5, "E", 0, 0)}

	got := classify.Split(pool, completed, 2)

	seen := make(map[int64]int)
	for _, n := range got.Active {
		seen[n.ID]++
	}
	for _, n := range got.Planning {
		seen[n.ID]++
	}
	for _, n := range got.Archive {
		seen[n.ID]++
	}

	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct bookmarks across buckets, got %d", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("bookmark %d appears %d times", id, count)
		}
	}
}
