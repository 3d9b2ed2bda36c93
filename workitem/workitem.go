// Package workitem models one unit of in-flight process state handed from a
// workflow engine to a participant.
//
// A WorkItem is a mutable mapping of fields. The engine owns it; a participant
// holds it for the duration of one invocation, reads the nested "params"
// sub-mapping for per-invocation overrides and writes its results back as
// top-level fields.
package workitem

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// FieldParams is the field holding per-invocation overrides.
const FieldParams = "params"

// WorkItem is a thread-safe set of fields.
type WorkItem struct {
	id     string
	mu     sync.RWMutex
	fields map[string]any
}

// New creates a work item with a fresh ID holding a copy of fields.
func New(fields map[string]any) *WorkItem {
	return NewWithID(uuid.NewString(), fields)
}

// NewWithID creates a work item with the given ID holding a copy of fields.
func NewWithID(id string, fields map[string]any) *WorkItem {
	wi := &WorkItem{id: id, fields: make(map[string]any, len(fields))}
	for k, v := range fields {
		wi.fields[k] = deepCopy(v)
	}
	return wi
}

// ID returns the work item identifier.
func (w *WorkItem) ID() string {
	return w.id
}

// Field returns the value of a top-level field.
func (w *WorkItem) Field(key string) (any, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.fields[key]
	return v, ok
}

// SetField stores a top-level field.
func (w *WorkItem) SetField(key string, value any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fields[key] = value
}

// DeleteField removes a top-level field.
func (w *WorkItem) DeleteField(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.fields, key)
}

// Fields returns a shallow copy of the top-level fields.
func (w *WorkItem) Fields() map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return maps.Clone(w.fields)
}

// Params returns the "params" sub-mapping. Missing or non-map params yield an
// empty map; the result is a copy.
func (w *WorkItem) Params() map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	params, _ := asStringMap(w.fields[FieldParams])
	if params == nil {
		return map[string]any{}
	}
	return maps.Clone(params)
}

// SetParams replaces the "params" sub-mapping.
func (w *WorkItem) SetParams(params map[string]any) {
	w.SetField(FieldParams, maps.Clone(params))
}

// ToMap serializes every field into a generic key/value structure. Nested maps
// and slices are copied so the result can be encoded or mutated freely.
func (w *WorkItem) ToMap() map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[string]any, len(w.fields))
	for k, v := range w.fields {
		out[k] = deepCopy(v)
	}
	return out
}

// Clone returns a deep copy with the same ID.
func (w *WorkItem) Clone() *WorkItem {
	return &WorkItem{id: w.id, fields: w.ToMap()}
}

type wireWorkItem struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// MarshalJSON encodes the work item as {"id": ..., "fields": {...}}.
func (w *WorkItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireWorkItem{ID: w.id, Fields: w.ToMap()})
}

// UnmarshalJSON decodes {"id": ..., "fields": {...}}. A bare object without
// those keys is taken as the field set itself and gets a fresh ID.
func (w *WorkItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("workitem: decode: %w", err)
	}

	_, hasID := raw["id"]
	_, hasFields := raw["fields"]
	var wire wireWorkItem
	if hasID && hasFields && len(raw) == 2 {
		if err := json.Unmarshal(data, &wire); err != nil {
			return fmt.Errorf("workitem: decode: %w", err)
		}
	} else {
		wire.ID = uuid.NewString()
		if err := json.Unmarshal(data, &wire.Fields); err != nil {
			return fmt.Errorf("workitem: decode fields: %w", err)
		}
	}
	if wire.Fields == nil {
		wire.Fields = make(map[string]any)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.id = wire.ID
	w.fields = wire.Fields
	return nil
}

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case map[any]any:
		// yaml decoders produce these.
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
