package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

// Store keeps the whole tree in process memory. It backs tests and the
// "memory" store driver used for local development.
type Store struct {
	mu   sync.RWMutex
	root interface{}
}

func New() *Store {
	return &Store{}
}

func (s *Store) Get(ctx context.Context, path string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	node, ok := storage.Lookup(s.root, storage.SplitPath(path))
	var raw []byte
	var err error
	if ok {
		raw, err = json.Marshal(node)
	}
	s.mu.RUnlock()

	if !ok {
		return app_errors.ErrNodeNotFound
	}
	if err != nil {
		return fmt.Errorf("memory.Get: %w", err)
	}
	return json.Unmarshal(raw, v)
}

func (s *Store) Query(ctx context.Context, path string, q storage.Query) ([]storage.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	collection, _ := storage.Lookup(s.root, storage.SplitPath(path))
	return storage.ApplyQuery(collection, q)
}

func (s *Store) Set(ctx context.Context, path string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := storage.Normalize(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.root = storage.Assign(s.root, storage.SplitPath(path), value)
	s.mu.Unlock()
	return nil
}

func (s *Store) Push(ctx context.Context, path string, v interface{}) (string, error) {
	key := storage.NewPushID()
	if err := s.Set(ctx, storage.JoinPath(path, key), v); err != nil {
		return "", err
	}
	return key, nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		value, err := storage.Normalize(v)
		if err != nil {
			return err
		}
		values[k] = value
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	base := storage.SplitPath(path)
	for k, value := range values {
		segs := append(append([]string{}, base...), storage.SplitPath(k)...)
		s.root = storage.Assign(s.root, segs, value)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	return s.Set(ctx, path, nil)
}

func (s *Store) Transaction(ctx context.Context, path string, fn func(current json.RawMessage) (interface{}, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	segs := storage.SplitPath(path)
	var current json.RawMessage
	if node, ok := storage.Lookup(s.root, segs); ok {
		raw, err := json.Marshal(node)
		if err != nil {
			return fmt.Errorf("memory.Transaction: %w", err)
		}
		current = raw
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	value, err := storage.Normalize(next)
	if err != nil {
		return err
	}
	s.root = storage.Assign(s.root, segs, value)
	return nil
}
