package places

// Bucket is one of the three status categories bookmarks are classified
// into. Active is capped by the WIP limit.
type Bucket int

const (
	BucketActive Bucket = iota
	BucketPlanning
	BucketArchive
)

// Buckets returns all buckets in their fixed destination order.
func Buckets() []Bucket {
	return []Bucket{BucketActive, BucketPlanning, BucketArchive}
}

func (b Bucket) String() string {
	switch b {
	case BucketActive:
		return "active"
	case BucketPlanning:
		return "planning"
	case BucketArchive:
		return "archive"
	default:
		return "unknown"
	}
}
