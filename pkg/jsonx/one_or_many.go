package jsonx

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OneOrMany decodes a JSON value that a query layer may return either as a
// single object or as a collection of objects. Aggregating joins produce
// one-element arrays (sometimes holding a single null for a missed LEFT
// JOIN); non-aggregating joins produce a bare object or null. Callers get a
// uniform view either way.
type OneOrMany[T any] struct {
	items []T
}

// UnmarshalJSON accepts null, a single object, or an array of objects.
// Nulls inside an array are dropped.
func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	o.items = nil

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	if trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode collection: %w", err)
		}
		for _, elem := range raw {
			elem = bytes.TrimSpace(elem)
			if len(elem) == 0 || bytes.Equal(elem, []byte("null")) {
				continue
			}
			var item T
			if err := json.Unmarshal(elem, &item); err != nil {
				return fmt.Errorf("decode collection element: %w", err)
			}
			o.items = append(o.items, item)
		}
		return nil
	}

	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return fmt.Errorf("decode object: %w", err)
	}
	o.items = []T{item}
	return nil
}

// First returns the single unwrapped value, or false when the source was
// null or empty.
func (o OneOrMany[T]) First() (*T, bool) {
	if len(o.items) == 0 {
		return nil, false
	}
	return &o.items[0], true
}

// Items returns all decoded values.
func (o OneOrMany[T]) Items() []T {
	return o.items
}

// Len returns the number of decoded values.
func (o OneOrMany[T]) Len() int {
	return len(o.items)
}
