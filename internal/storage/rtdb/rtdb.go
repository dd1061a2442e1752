package rtdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"firebase.google.com/go/v4/db"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

// Store is the Firebase Realtime Database driver.
type Store struct {
	client *db.Client
}

func New(client *db.Client) *Store {
	return &Store{client: client}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func (s *Store) Get(ctx context.Context, path string, v interface{}) error {
	var raw json.RawMessage
	if err := s.client.NewRef(path).Get(ctx, &raw); err != nil {
		return fmt.Errorf("rtdb.Get %s: %w", path, err)
	}
	if isNull(raw) {
		return app_errors.ErrNodeNotFound
	}
	return json.Unmarshal(raw, v)
}

// Query maps q onto a database query. The database has no exclusive lower
// bound, so StartAfter is sent as StartAt with one extra row that is dropped
// client-side.
func (s *Store) Query(ctx context.Context, path string, q storage.Query) ([]storage.Node, error) {
	ref := s.client.NewRef(path)
	var query *db.Query
	if q.ByKey() {
		query = ref.OrderByKey()
	} else {
		query = ref.OrderByChild(q.OrderBy)
	}
	if q.StartAfter != "" {
		query = query.StartAt(q.StartAfter)
	}
	if q.EqualTo != nil {
		query = query.EqualTo(q.EqualTo)
	}
	if q.LimitToFirst > 0 {
		limit := q.LimitToFirst
		if q.StartAfter != "" {
			limit++
		}
		query = query.LimitToFirst(limit)
	}
	if q.LimitToLast > 0 {
		query = query.LimitToLast(q.LimitToLast)
	}

	result, err := query.GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("rtdb.Query %s: %w", path, err)
	}

	nodes := make([]storage.Node, 0, len(result))
	for _, r := range result {
		var raw json.RawMessage
		if err := r.Unmarshal(&raw); err != nil {
			return nil, fmt.Errorf("rtdb.Query %s: %w", path, err)
		}
		if q.StartAfter != "" && atBound(q, r.Key(), raw) {
			continue
		}
		nodes = append(nodes, storage.Node{Key: r.Key(), Value: raw})
	}
	if q.LimitToFirst > 0 && len(nodes) > q.LimitToFirst {
		nodes = nodes[:q.LimitToFirst]
	}
	return nodes, nil
}

func atBound(q storage.Query, key string, raw json.RawMessage) bool {
	if q.ByKey() {
		return key == q.StartAfter
	}
	var child map[string]interface{}
	if err := json.Unmarshal(raw, &child); err != nil {
		return false
	}
	return storage.CompareValues(child[q.OrderBy], q.StartAfter) == 0
}

func (s *Store) Set(ctx context.Context, path string, v interface{}) error {
	if err := s.client.NewRef(path).Set(ctx, v); err != nil {
		return fmt.Errorf("rtdb.Set %s: %w", path, err)
	}
	return nil
}

func (s *Store) Push(ctx context.Context, path string, v interface{}) (string, error) {
	ref, err := s.client.NewRef(path).Push(ctx, v)
	if err != nil {
		return "", fmt.Errorf("rtdb.Push %s: %w", path, err)
	}
	return ref.Key, nil
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	if err := s.client.NewRef(path).Update(ctx, fields); err != nil {
		return fmt.Errorf("rtdb.Update %s: %w", path, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	if err := s.client.NewRef(path).Delete(ctx); err != nil {
		return fmt.Errorf("rtdb.Remove %s: %w", path, err)
	}
	return nil
}

func (s *Store) Transaction(ctx context.Context, path string, fn func(current json.RawMessage) (interface{}, error)) error {
	var fnErr error
	err := s.client.NewRef(path).Transaction(ctx, func(tn db.TransactionNode) (interface{}, error) {
		var raw json.RawMessage
		if err := tn.Unmarshal(&raw); err != nil {
			return nil, err
		}
		if isNull(raw) {
			raw = nil
		}
		next, err := fn(raw)
		if err != nil {
			fnErr = err
			return nil, err
		}
		return next, nil
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("rtdb.Transaction %s: %w", path, err)
	}
	return nil
}
