// Package storage reads and writes the places database. It is the only
// package that talks SQL; everything above it works on immutable snapshots
// and pure plans.
package storage

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/kanmark/internal/places"
)

// Store wraps a connection to one places database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to an existing places database. Restructuring always runs
// against a working copy, so a missing file is an error rather than a
// reason to create one.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found at %s (copy your places.sqlite there first)", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys and set pragmas for performance
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{db: db, path: path}, nil
}

// Create makes a fresh places database at path, seeded with the six system
// root folders. It refuses to overwrite an existing file.
func Create(path string) (*Store, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("database already exists at %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		os.Remove(path)
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}
	defer tx.Rollback()

	now := nowMicros()
	for _, root := range rootFolders {
		_, err := tx.Exec(`
			INSERT INTO moz_bookmarks (id, type, fk, parent, position, title, dateAdded, lastModified, guid)
			VALUES (?, ?, NULL, ?, ?, ?, ?, ?, ?)
		`, root.ID, places.TypeFolder, root.Parent, root.Position, root.Title, now, now, root.GUID)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx, so snapshots can be
// loaded outside and inside a transaction with the same code.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// LoadSnapshot reads the whole bookmark tree with visit data joined in.
func (s *Store) LoadSnapshot() (*places.Snapshot, error) {
	return loadSnapshot(s.db)
}

func loadSnapshot(q querier) (*places.Snapshot, error) {
	rows, err := q.Query(`
		SELECT b.id, b.guid, b.type, b.parent, b.position, b.title,
		       b.dateAdded, b.lastModified, b.fk,
		       p.url, p.visit_count, p.last_visit_date
		FROM moz_bookmarks b
		LEFT JOIN moz_places p ON b.fk = p.id
		ORDER BY b.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*places.Node
	for rows.Next() {
		var n places.Node
		var guid, title, url sql.NullString
		var dateAdded, lastModified, fk, lastVisit sql.NullInt64
		var visitCount sql.NullInt64

		if err := rows.Scan(
			&n.ID, &guid, &n.Type, &n.Parent, &n.Position, &title,
			&dateAdded, &lastModified, &fk,
			&url, &visitCount, &lastVisit,
		); err != nil {
			return nil, err
		}

		n.GUID = guid.String
		n.Title = title.String
		n.DateAdded = dateAdded.Int64
		n.LastModified = lastModified.Int64
		n.PlaceID = fk.Int64
		n.URL = url.String
		n.VisitCount = int(visitCount.Int64)
		n.LastVisit = lastVisit.Int64

		nodes = append(nodes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return places.NewSnapshot(nodes), nil
}

// AddFolder creates a folder at the next free position under parent and
// returns its id.
func (s *Store) AddFolder(parent int64, title string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	position, err := nextPositionTx(tx, parent)
	if err != nil {
		return 0, err
	}

	id, err := insertFolderTx(tx, parent, position, title)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// AddBookmarkParams holds the fields for creating a new bookmark.
type AddBookmarkParams struct {
	Parent     int64
	Title      string
	URL        string
	DateAdded  int64 // microseconds; zero means now
	VisitCount int
	LastVisit  int64
}

// AddBookmark creates a bookmark at the next free position under the
// parent folder. The page record in moz_places is reused when the URL is
// already known, so re-importing does not duplicate visit history.
func (s *Store) AddBookmark(params AddBookmarkParams) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeID, err := ensurePlaceTx(tx, params.URL, params.Title, params.VisitCount, params.LastVisit)
	if err != nil {
		return 0, err
	}

	position, err := nextPositionTx(tx, params.Parent)
	if err != nil {
		return 0, err
	}

	guid, err := freshGUIDTx(tx)
	if err != nil {
		return 0, err
	}

	dateAdded := params.DateAdded
	if dateAdded == 0 {
		dateAdded = nowMicros()
	}

	res, err := tx.Exec(`
		INSERT INTO moz_bookmarks (type, fk, parent, position, title, dateAdded, lastModified, guid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, places.TypeBookmark, placeID, params.Parent, position, params.Title, dateAdded, dateAdded, guid)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ReindexPositions renumbers the children of parent to a dense 0..n-1
// sequence, keeping their current order. Returns how many rows changed.
func (s *Store) ReindexPositions(parent int64) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, position FROM moz_bookmarks
		WHERE parent = ?
		ORDER BY position, id
	`, parent)
	if err != nil {
		return 0, err
	}

	type child struct {
		id       int64
		position int
	}
	var children []child
	for rows.Next() {
		var c child
		if err := rows.Scan(&c.id, &c.position); err != nil {
			rows.Close()
			return 0, err
		}
		children = append(children, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare("UPDATE moz_bookmarks SET position = ? WHERE id = ?")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	changed := 0
	for i, c := range children {
		if c.position == i {
			continue
		}
		if _, err := stmt.Exec(i, c.id); err != nil {
			return 0, err
		}
		changed++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return changed, nil
}

// Stats returns row counts for a quick health overview.
func (s *Store) Stats() (map[string]int64, error) {
	stats := make(map[string]int64)

	counts := []struct {
		key   string
		query string
	}{
		{"nodes", "SELECT COUNT(*) FROM moz_bookmarks"},
		{"bookmarks", "SELECT COUNT(*) FROM moz_bookmarks WHERE type = 1"},
		{"folders", "SELECT COUNT(*) FROM moz_bookmarks WHERE type = 2"},
		{"separators", "SELECT COUNT(*) FROM moz_bookmarks WHERE type = 3"},
		{"places", "SELECT COUNT(*) FROM moz_places"},
	}
	for _, c := range counts {
		var n int64
		if err := s.db.QueryRow(c.query).Scan(&n); err != nil {
			return nil, err
		}
		stats[c.key] = n
	}

	return stats, nil
}

// Backup copies the database file next to itself with a timestamp suffix
// and returns the backup path. The WAL is checkpointed first so the copy
// is complete on its own.
func (s *Store) Backup() (string, error) {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return "", err
	}

	backupPath := fmt.Sprintf("%s.backup-%s", s.path, time.Now().Format("20060102-150405"))

	src, err := os.Open(s.path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(backupPath)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(backupPath)
		return "", err
	}

	return backupPath, nil
}

// nextPositionTx returns the first unused position under parent.
func nextPositionTx(tx *sql.Tx, parent int64) (int, error) {
	var max sql.NullInt64
	err := tx.QueryRow("SELECT MAX(position) FROM moz_bookmarks WHERE parent = ?", parent).Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// insertFolderTx creates a folder row and returns its id.
func insertFolderTx(tx *sql.Tx, parent int64, position int, title string) (int64, error) {
	guid, err := freshGUIDTx(tx)
	if err != nil {
		return 0, err
	}

	now := nowMicros()
	res, err := tx.Exec(`
		INSERT INTO moz_bookmarks (type, fk, parent, position, title, dateAdded, lastModified, guid)
		VALUES (?, NULL, ?, ?, ?, ?, ?, ?)
	`, places.TypeFolder, parent, position, title, now, now, guid)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ensurePlaceTx finds or creates the moz_places row for url.
func ensurePlaceTx(tx *sql.Tx, url, title string, visitCount int, lastVisit int64) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM moz_places WHERE url = ?", url).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	guid, err := freshGUIDTx(tx)
	if err != nil {
		return 0, err
	}

	var visit any
	if lastVisit != 0 {
		visit = lastVisit
	}
	res, err := tx.Exec(`
		INSERT INTO moz_places (url, title, visit_count, last_visit_date, guid)
		VALUES (?, ?, ?, ?, ?)
	`, url, title, visitCount, visit, guid)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// freshGUIDTx draws random guids until one is unused in both tables. The
// guid indexes are unique, so a collision would otherwise fail the insert.
func freshGUIDTx(tx *sql.Tx) (string, error) {
	for {
		guid := places.NewGUID()
		var one int
		err := tx.QueryRow(`
			SELECT 1 FROM moz_bookmarks WHERE guid = ?
			UNION
			SELECT 1 FROM moz_places WHERE guid = ?
		`, guid, guid).Scan(&one)
		if err == sql.ErrNoRows {
			return guid, nil
		}
		if err != nil {
			return "", err
		}
	}
}

func nowMicros() int64 {
	return time.Now().UnixMicro()
}
