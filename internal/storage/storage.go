package storage

import (
	"context"
	"encoding/json"
	"strings"
)

// OrderByKey orders a collection by its child keys.
const OrderByKey = "$key"

// Query selects an ordered window of a collection's children.
//
// OrderBy is OrderByKey (or empty) for key ordering, otherwise the name of a
// child field. StartAfter is an exclusive lower bound on the ordering value;
// EqualTo restricts the ordering value. At most one of LimitToFirst and
// LimitToLast should be set.
type Query struct {
	OrderBy      string
	StartAfter   string
	EqualTo      interface{}
	LimitToFirst int
	LimitToLast  int
}

func (q Query) ByKey() bool {
	return q.OrderBy == "" || q.OrderBy == OrderByKey
}

// Node is one child returned by a query, in query order.
type Node struct {
	Key   string
	Value json.RawMessage
}

func (n Node) Unmarshal(v interface{}) error {
	return json.Unmarshal(n.Value, v)
}

// Store is a hierarchical key-value database addressed by slash separated
// paths. Get returns app_errors.ErrNodeNotFound for absent paths.
type Store interface {
	Get(ctx context.Context, path string, v interface{}) error
	Query(ctx context.Context, path string, q Query) ([]Node, error)
	Set(ctx context.Context, path string, v interface{}) error
	Push(ctx context.Context, path string, v interface{}) (string, error)
	Update(ctx context.Context, path string, fields map[string]interface{}) error
	Remove(ctx context.Context, path string) error
	// Transaction atomically replaces the value at path with the result of
	// fn. current is nil when the path is absent. An error from fn aborts the
	// transaction and is returned unchanged.
	Transaction(ctx context.Context, path string, fn func(current json.RawMessage) (interface{}, error)) error
}

func SplitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func JoinPath(segs ...string) string {
	return strings.Join(segs, "/")
}

// EncodeKey makes an arbitrary string usable as a single path segment.
// Keys may not contain '.', '#', '$', '[', ']' or '/'.
func EncodeKey(s string) string {
	r := strings.NewReplacer(
		"%", "%25",
		".", "%2E",
		"#", "%23",
		"$", "%24",
		"[", "%5B",
		"]", "%5D",
		"/", "%2F",
	)
	return r.Replace(s)
}
