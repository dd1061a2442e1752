package blob

import (
	"context"
	"io"
	"mime"
	"path"
)

// Store holds uploaded files and cover images. DownloadURL returns a
// time-limited URL, or app_errors.ErrObjectNotFound when nothing is stored at
// the path.
type Store interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	DownloadURL(ctx context.Context, path string) (string, error)
}

// ContentType falls back to the extension when the client sent none.
func ContentType(objectPath, contentType string) string {
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}
	if ct := mime.TypeByExtension(path.Ext(objectPath)); ct != "" {
		return ct
	}
	if path.Ext(objectPath) == ".md" {
		return "text/markdown; charset=utf-8"
	}
	return "application/octet-stream"
}
