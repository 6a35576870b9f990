package form

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ReadOnlyFields are never sent in a partial update
var ReadOnlyFields = []string{"id", "foto"}

// Diff returns the JSON fields of after that differ from before, keyed by JSON name.
// Read-only fields are skipped. The result is suitable as a PATCH body.
func Diff[T any](before, after T) (map[string]json.RawMessage, error) {
	old, err := fields(before)
	if err != nil {
		return nil, err
	}
	cur, err := fields(after)
	if err != nil {
		return nil, err
	}

	for _, f := range ReadOnlyFields {
		delete(cur, f)
	}

	changed := make(map[string]json.RawMessage)
	for name, value := range cur {
		prev, ok := old[name]
		if ok && bytes.Equal(prev, value) {
			continue
		}
		changed[name] = value
	}
	return changed, nil
}

func fields(v interface{}) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("record is not a JSON object: %w", err)
	}
	return out, nil
}
