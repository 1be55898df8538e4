package model

import "time"

// MediaAsset is an entry in the content library index. StoredName is the
// on-disk file name under the upload directory (uuid-prefixed to avoid
// collisions); FileName is the original client-supplied name.
type MediaAsset struct {
	ID          string
	FileName    string
	StoredName  string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
}
