package tags

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tagrel/tagrel/pkg/errors"
)

// Entities are opaque, externally-owned values. The graph never copies or
// mutates an entity; it only records connections against it, compared by Go
// map identity. Any comparable value can be an entity. Non-comparable values
// (slices, maps, functions) are rejected at connect time with WRONG_TYPE so
// the failure is deterministic rather than a map-key panic.
//
// For serialization, an entity must have a JSON representation: either it
// implements json.Marshaler or it is a plain JSON-encodable value. Entities
// without one fail with FORMAT at save time.

// JSONValue is an entity decoded from serialized graph data whose value has
// no richer Go representation (JSON objects, arrays, and null). It preserves
// the compact JSON text so the entity round-trips byte-for-byte and can be
// used as a map key. Decoded strings, numbers, and booleans are returned as
// their native Go values instead, so primitive entities keep their identity
// across a save/load cycle.
type JSONValue string

// MarshalJSON returns the stored JSON text unchanged.
func (v JSONValue) MarshalJSON() ([]byte, error) { return []byte(v), nil }

// DecodeEntity converts raw JSON into an entity value: strings, numbers, and
// booleans become their native Go values; everything else becomes a
// [JSONValue] holding the compact JSON text. Fails with FORMAT on invalid
// JSON.
func DecodeEntity(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.CodeFormat, err, "invalid entity json %s", data)
	}
	switch v.(type) {
	case string, float64, bool:
		return v, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, errors.Wrap(errors.CodeFormat, err, "invalid entity json %s", data)
	}
	return JSONValue(buf.String()), nil
}

// encodeEntity serializes an entity for the graph's JSON form.
// Fails with FORMAT when the entity has no JSON representation.
func encodeEntity(entity any) (json.RawMessage, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, errors.Wrap(errors.CodeFormat, err, "entity %s has no json representation", entityLabel(entity))
	}
	return data, nil
}

// checkEntity validates that a value can participate in the graph as an
// entity. Fails with WRONG_TYPE for nil and for non-comparable values.
func checkEntity(entity any) error {
	if entity == nil {
		return errors.New(errors.CodeWrongType, "cannot use nil as an entity")
	}
	if !reflect.TypeOf(entity).Comparable() {
		return errors.New(errors.CodeWrongType,
			"entity of type %T is not comparable and cannot be tracked by identity", entity)
	}
	return nil
}

// entityLabel formats an entity for log and error messages.
func entityLabel(entity any) string {
	return fmt.Sprintf("%v", entity)
}
