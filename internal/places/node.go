package places

// Node type codes as stored in moz_bookmarks.type.
const (
	TypeBookmark  = 1
	TypeFolder    = 2
	TypeSeparator = 3
)

// Well-known rowids of the system roots in a places database.
// These are fixed by the schema and must never be structurally modified.
const (
	RootFolderID    int64 = 1
	MenuFolderID    int64 = 2
	ToolbarFolderID int64 = 3
	TagsFolderID    int64 = 4
	UnfiledFolderID int64 = 5
	MobileFolderID  int64 = 6
)

// SystemFolderIDs returns the protected root set.
func SystemFolderIDs() []int64 {
	return []int64{
		RootFolderID,
		MenuFolderID,
		ToolbarFolderID,
		TagsFolderID,
		UnfiledFolderID,
		MobileFolderID,
	}
}

// Node is one row of moz_bookmarks, joined to moz_places for bookmarks.
// All timestamps are integer microseconds since the Unix epoch.
type Node struct {
	ID           int64
	GUID         string
	Type         int
	Parent       int64
	Position     int
	Title        string
	DateAdded    int64
	LastModified int64

	// Bookmark-only fields from the joined moz_places row.
	// PlaceID is the fk column; zero when the row has no place entry.
	PlaceID    int64
	URL        string
	VisitCount int
	LastVisit  int64 // 0 = never visited
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool {
	return n.Type == TypeFolder
}

// IsBookmark reports whether the node is a bookmark.
func (n *Node) IsBookmark() bool {
	return n.Type == TypeBookmark
}
