package blob

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
)

type object struct {
	data        []byte
	contentType string
}

// Memory is an in-process Store. Its download URLs use the memory:// scheme
// and are only meaningful to tests and local development.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]object
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]object)}
}

func (m *Memory) Upload(_ context.Context, path string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[path] = object{data: data, contentType: ContentType(path, contentType)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[path]
	m.mu.RUnlock()
	if !ok {
		return nil, app_errors.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *Memory) DownloadURL(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	_, ok := m.objects[path]
	m.mu.RUnlock()
	if !ok {
		return "", app_errors.ErrObjectNotFound
	}
	return (&url.URL{Scheme: "memory", Path: "/" + path}).String(), nil
}

// ContentTypeOf reports the stored content type of path.
func (m *Memory) ContentTypeOf(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[path].contentType
}
