package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

// NodesPostgres stores the tree one row per second-level node: the document
// at "courses/abc" is the row (parent "courses", key "abc"), and everything
// below it lives inside that row's jsonb value.
type NodesPostgres struct {
	db *pgxpool.Pool
}

func NewNodesPostgres(db *pgxpool.Pool) *NodesPostgres {
	return &NodesPostgres{db: db}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
	CREATE TABLE IF NOT EXISTS nodes (
		parent     TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      JSONB       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (parent, key)
	)
`

func (r *NodesPostgres) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Migrate: %w", err)
	}
	return nil
}

func (r *NodesPostgres) Get(ctx context.Context, path string, v interface{}) error {
	segs := storage.SplitPath(path)
	if len(segs) == 0 {
		return app_errors.ErrInvalidInput
	}

	var node interface{}
	var ok bool
	if len(segs) == 1 {
		children, err := collection(ctx, r.db, segs[0], "", nil)
		if err != nil {
			return err
		}
		node, ok = children, len(children) > 0
	} else {
		doc, err := row(ctx, r.db, segs[0], segs[1], false)
		if err != nil {
			return err
		}
		node, ok = storage.Lookup(doc, segs[2:])
	}
	if !ok {
		return app_errors.ErrNodeNotFound
	}

	raw, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("postgres.Get: %w", err)
	}
	return json.Unmarshal(raw, v)
}

func (r *NodesPostgres) Query(ctx context.Context, path string, q storage.Query) ([]storage.Node, error) {
	segs := storage.SplitPath(path)
	switch {
	case len(segs) == 0:
		return nil, app_errors.ErrInvalidInput
	case len(segs) == 1 && q.ByKey():
		return r.queryByKey(ctx, segs[0], q)
	case len(segs) == 1:
		var eq *string
		if s, ok := q.EqualTo.(string); ok {
			eq = &s
		}
		children, err := collection(ctx, r.db, segs[0], q.OrderBy, eq)
		if err != nil {
			return nil, err
		}
		return storage.ApplyQuery(children, q)
	default:
		doc, err := row(ctx, r.db, segs[0], segs[1], false)
		if err != nil {
			return nil, err
		}
		node, _ := storage.Lookup(doc, segs[2:])
		return storage.ApplyQuery(node, q)
	}
}

// queryByKey serves key ordered range queries on a top-level collection
// directly from the primary key index. Top-level keys are push ids and
// uuids, so byte order matches the database's key order.
func (r *NodesPostgres) queryByKey(ctx context.Context, parent string, q storage.Query) ([]storage.Node, error) {
	query := `SELECT key, value FROM nodes WHERE parent = $1 AND key COLLATE "C" > $2`
	args := []any{parent, q.StartAfter}
	desc := false
	switch {
	case q.LimitToLast > 0:
		query += ` ORDER BY key COLLATE "C" DESC LIMIT $3`
		args = append(args, q.LimitToLast)
		desc = true
	case q.LimitToFirst > 0:
		query += ` ORDER BY key COLLATE "C" LIMIT $3`
		args = append(args, q.LimitToFirst)
	default:
		query += ` ORDER BY key COLLATE "C"`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.Query %s: %w", parent, err)
	}
	defer rows.Close()

	var nodes []storage.Node
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("postgres.Query %s: %w", parent, err)
		}
		nodes = append(nodes, storage.Node{Key: key, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.Query %s: %w", parent, err)
	}
	if desc {
		for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
			nodes[i], nodes[j] = nodes[j], nodes[i]
		}
	}
	return nodes, nil
}

func (r *NodesPostgres) Set(ctx context.Context, path string, v interface{}) error {
	value, err := storage.Normalize(v)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return set(ctx, tx, storage.SplitPath(path), value)
	})
}

func (r *NodesPostgres) Push(ctx context.Context, path string, v interface{}) (string, error) {
	key := storage.NewPushID()
	if err := r.Set(ctx, storage.JoinPath(path, key), v); err != nil {
		return "", err
	}
	return key, nil
}

func (r *NodesPostgres) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	base := storage.SplitPath(path)
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		value, err := storage.Normalize(v)
		if err != nil {
			return err
		}
		values[k] = value
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for k, value := range values {
			segs := append(append([]string{}, base...), storage.SplitPath(k)...)
			if err := set(ctx, tx, segs, value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *NodesPostgres) Remove(ctx context.Context, path string) error {
	return r.Set(ctx, path, nil)
}

func (r *NodesPostgres) Transaction(ctx context.Context, path string, fn func(current json.RawMessage) (interface{}, error)) error {
	segs := storage.SplitPath(path)
	if len(segs) < 2 {
		return app_errors.ErrNotSupported
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// Serializes transactions on rows that do not exist yet.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, segs[0]+"/"+segs[1]); err != nil {
			return fmt.Errorf("postgres.Transaction: %w", err)
		}
		doc, err := row(ctx, tx, segs[0], segs[1], true)
		if err != nil {
			return err
		}

		var current json.RawMessage
		if node, ok := storage.Lookup(doc, segs[2:]); ok {
			if current, err = json.Marshal(node); err != nil {
				return fmt.Errorf("postgres.Transaction: %w", err)
			}
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		value, err := storage.Normalize(next)
		if err != nil {
			return err
		}
		return writeRow(ctx, tx, segs[0], segs[1], storage.Assign(doc, segs[2:], value))
	})
}

func set(ctx context.Context, tx pgx.Tx, segs []string, value interface{}) error {
	switch len(segs) {
	case 0:
		return app_errors.ErrInvalidInput
	case 1:
		if _, err := tx.Exec(ctx, `DELETE FROM nodes WHERE parent = $1`, segs[0]); err != nil {
			return fmt.Errorf("postgres.Set %s: %w", segs[0], err)
		}
		if value == nil {
			return nil
		}
		children, ok := value.(map[string]interface{})
		if !ok {
			return app_errors.ErrInvalidInput
		}
		for key, child := range children {
			if err := writeRow(ctx, tx, segs[0], key, child); err != nil {
				return err
			}
		}
		return nil
	case 2:
		return writeRow(ctx, tx, segs[0], segs[1], value)
	default:
		doc, err := row(ctx, tx, segs[0], segs[1], true)
		if err != nil {
			return err
		}
		return writeRow(ctx, tx, segs[0], segs[1], storage.Assign(doc, segs[2:], value))
	}
}

func writeRow(ctx context.Context, q querier, parent, key string, value interface{}) error {
	if value == nil {
		if _, err := q.Exec(ctx, `DELETE FROM nodes WHERE parent = $1 AND key = $2`, parent, key); err != nil {
			return fmt.Errorf("postgres.write %s/%s: %w", parent, key, err)
		}
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("postgres.write %s/%s: %w", parent, key, err)
	}
	const query = `
		INSERT INTO nodes (parent, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (parent, key) DO UPDATE
		   SET value      = EXCLUDED.value,
		       updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, parent, key, json.RawMessage(raw)); err != nil {
		return fmt.Errorf("postgres.write %s/%s: %w", parent, key, err)
	}
	return nil
}

func row(ctx context.Context, q querier, parent, key string, forUpdate bool) (interface{}, error) {
	query := `SELECT value FROM nodes WHERE parent = $1 AND key = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var raw []byte
	err := q.QueryRow(ctx, query, parent, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres.row %s/%s: %w", parent, key, err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("postgres.row %s/%s: %w", parent, key, err)
	}
	return doc, nil
}

// collection loads every row below parent. When child and eq are set only
// rows whose child field equals eq are returned.
func collection(ctx context.Context, q querier, parent, child string, eq *string) (map[string]interface{}, error) {
	query := `SELECT key, value FROM nodes WHERE parent = $1`
	args := []any{parent}
	if child != "" && eq != nil {
		query += ` AND value->>$2 = $3`
		args = append(args, child, *eq)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres.collection %s: %w", parent, err)
	}
	defer rows.Close()

	children := make(map[string]interface{})
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("postgres.collection %s: %w", parent, err)
		}
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("postgres.collection %s: %w", parent, err)
		}
		children[key] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.collection %s: %w", parent, err)
	}
	return children, nil
}
