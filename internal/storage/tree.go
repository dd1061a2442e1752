package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Helpers shared by the drivers that keep documents as decoded JSON trees.
// A tree value is nil, bool, float64, string or map[string]interface{};
// arrays are stored as objects keyed by index and empty objects vanish.

// Normalize converts v into tree form.
func Normalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	var raw []byte
	switch t := v.(type) {
	case json.RawMessage:
		raw = t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("storage.Normalize: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("storage.Normalize: %w", err)
	}
	return prune(decoded), nil
}

func prune(v interface{}) interface{} {
	switch t := v.(type) {
	case []interface{}:
		m := make(map[string]interface{}, len(t))
		for i, e := range t {
			if p := prune(e); p != nil {
				m[strconv.Itoa(i)] = p
			}
		}
		if len(m) == 0 {
			return nil
		}
		return m
	case map[string]interface{}:
		for k, e := range t {
			if p := prune(e); p != nil {
				t[k] = p
			} else {
				delete(t, k)
			}
		}
		if len(t) == 0 {
			return nil
		}
		return t
	default:
		return v
	}
}

// Lookup walks segs below root.
func Lookup(root interface{}, segs []string) (interface{}, bool) {
	cur := root
	for _, s := range segs {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[s]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// Assign returns root with value placed at segs. A nil value removes the
// node, and parents left empty are removed with it.
func Assign(root interface{}, segs []string, value interface{}) interface{} {
	if len(segs) == 0 {
		return value
	}
	m, ok := root.(map[string]interface{})
	if !ok {
		if value == nil {
			return root
		}
		m = make(map[string]interface{})
	}
	child := Assign(m[segs[0]], segs[1:], value)
	if child == nil {
		delete(m, segs[0])
	} else {
		m[segs[0]] = child
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// ApplyQuery orders and windows the children of a collection value.
func ApplyQuery(collection interface{}, q Query) ([]Node, error) {
	children, _ := collection.(map[string]interface{})
	type entry struct {
		key   string
		order interface{}
		value interface{}
	}
	entries := make([]entry, 0, len(children))
	for k, v := range children {
		e := entry{key: k, value: v}
		if q.ByKey() {
			e.order = k
		} else if m, ok := v.(map[string]interface{}); ok {
			e.order = m[q.OrderBy]
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !q.ByKey() {
			if c := CompareValues(entries[i].order, entries[j].order); c != 0 {
				return c < 0
			}
		}
		return CompareKeys(entries[i].key, entries[j].key) < 0
	})

	var eq interface{}
	if q.EqualTo != nil {
		var err error
		if eq, err = Normalize(q.EqualTo); err != nil {
			return nil, err
		}
	}

	filtered := entries[:0]
	for _, e := range entries {
		if q.StartAfter != "" {
			if q.ByKey() && CompareKeys(e.key, q.StartAfter) <= 0 {
				continue
			}
			if !q.ByKey() && CompareValues(e.order, q.StartAfter) <= 0 {
				continue
			}
		}
		if q.EqualTo != nil && CompareValues(e.order, eq) != 0 {
			continue
		}
		filtered = append(filtered, e)
	}

	if q.LimitToFirst > 0 && len(filtered) > q.LimitToFirst {
		filtered = filtered[:q.LimitToFirst]
	}
	if q.LimitToLast > 0 && len(filtered) > q.LimitToLast {
		filtered = filtered[len(filtered)-q.LimitToLast:]
	}

	out := make([]Node, 0, len(filtered))
	for _, e := range filtered {
		raw, err := json.Marshal(e.value)
		if err != nil {
			return nil, fmt.Errorf("storage.ApplyQuery: %w", err)
		}
		out = append(out, Node{Key: e.key, Value: raw})
	}
	return out, nil
}

// CompareKeys orders canonical 32-bit integer keys numerically and before all
// other keys, which sort lexicographically. "01" and "+1" are not integer keys.
func CompareKeys(a, b string) int {
	ai, aok := intKey(a)
	bi, bok := intKey(b)
	switch {
	case aok && bok:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

func intKey(k string) (int64, bool) {
	n, err := strconv.ParseInt(k, 10, 32)
	if err != nil || strconv.FormatInt(n, 10) != k {
		return 0, false
	}
	return n, true
}

// CompareValues orders child values: null, false, true, numbers, strings,
// objects.
func CompareValues(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		return strings.Compare(av, b.(string))
	}
	return 0
}

func rank(v interface{}) int {
	switch t := v.(type) {
	case nil:
		return 0
	case bool:
		if t {
			return 2
		}
		return 1
	case float64:
		return 3
	case string:
		return 4
	}
	return 5
}
