package listing

import (
	"context"
	"fmt"
)

const DefaultCoverPath = "courses/%s/cover.jpg"

// CoverPath formats the blob path of a course cover. format holds one %s
// for the course id.
func CoverPath(format, courseID string) string {
	if format == "" {
		format = DefaultCoverPath
	}
	return fmt.Sprintf(format, courseID)
}

type URLResolver interface {
	DownloadURL(ctx context.Context, path string) (string, error)
}

// BlobCovers resolves covers through a blob store path convention.
type BlobCovers struct {
	blobs  URLResolver
	format string
}

func NewBlobCovers(blobs URLResolver, format string) *BlobCovers {
	return &BlobCovers{blobs: blobs, format: format}
}

func (b *BlobCovers) CoverURL(ctx context.Context, courseID string) (string, error) {
	return b.blobs.DownloadURL(ctx, CoverPath(b.format, courseID))
}
