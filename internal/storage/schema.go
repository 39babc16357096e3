package storage

// schema mirrors the subset of the Firefox places database that
// restructuring touches: the bookmark tree and the visited-pages table it
// references. Column names and index names match Firefox so a working copy
// created here is interchangeable with one copied from a real profile.
const schema = `
	CREATE TABLE moz_places (
		id INTEGER PRIMARY KEY,
		url LONGVARCHAR,
		title LONGVARCHAR,
		visit_count INTEGER DEFAULT 0,
		last_visit_date INTEGER,
		guid TEXT
	);

	CREATE TABLE moz_bookmarks (
		id INTEGER PRIMARY KEY,
		type INTEGER,
		fk INTEGER DEFAULT NULL,
		parent INTEGER,
		position INTEGER,
		title LONGVARCHAR,
		dateAdded INTEGER,
		lastModified INTEGER,
		guid TEXT
	);

	CREATE UNIQUE INDEX moz_places_guid_uniqueindex ON moz_places (guid);
	CREATE UNIQUE INDEX moz_bookmarks_guid_uniqueindex ON moz_bookmarks (guid);
	CREATE INDEX moz_bookmarks_itemindex ON moz_bookmarks (fk, type);
	CREATE INDEX moz_bookmarks_parentindex ON moz_bookmarks (parent, position);
`

// rootFolders are the six system folders every places database starts
// with. Their ids and guids are fixed; Firefox refuses databases without
// them and restructuring refuses to touch them.
var rootFolders = []struct {
	ID       int64
	Parent   int64
	Position int
	Title    string
	GUID     string
}{
	{1, 0, 0, "", "root________"},
	{2, 1, 0, "menu", "menu________"},
	{3, 1, 1, "toolbar", "toolbar_____"},
	{4, 1, 2, "tags", "tags________"},
	{5, 1, 3, "unfiled", "unfiled_____"},
	{6, 1, 4, "mobile", "mobile______"},
}
