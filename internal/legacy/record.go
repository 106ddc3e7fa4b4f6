// Package legacy reads payloads from the previous rental backend, whose
// serializer wraps lists in "$values" envelopes and is loose about key case.
package legacy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"carrental-backend/internal/rental"
)

var ErrMalformed = errors.New("malformed legacy payload")

// Unwrap returns the elements of a legacy list payload. It accepts a bare
// array, {"$values": [...]} and {"data": ...} in any nesting; a lone object
// is a one-element list and null is empty. Reference stubs ({"$ref": "3"})
// are dropped.
func Unwrap(raw []byte) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		out := items[:0]
		for _, it := range items {
			if !isRefStub(it) {
				out = append(out, it)
			}
		}
		return out, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		for k, v := range obj {
			switch strings.ToLower(k) {
			case "$values", "data":
				return Unwrap(v)
			}
		}
		if isRefStub(raw) {
			return nil, nil
		}
		return []json.RawMessage{raw}, nil
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrMalformed)
	}
}

func isRefStub(raw json.RawMessage) bool {
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return false
	}
	_, ok := obj["$ref"]
	return ok && len(obj) == 1
}

// Record is one legacy object with case-insensitive keys. Getters take
// aliases and use the first key present.
type Record map[string]interface{}

func NewRecord(raw json.RawMessage) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	r := make(Record, len(obj))
	for k, v := range obj {
		r[strings.ToLower(k)] = v
	}
	return r, nil
}

// Value returns the raw value under the first matching alias.
func (r Record) Value(keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := r[strings.ToLower(k)]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (r Record) String(keys ...string) string {
	v, ok := r.Value(keys...)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func (r Record) Int(keys ...string) int64 {
	v, ok := r.Value(keys...)
	if !ok {
		return 0
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, _ := n.Float64()
		return int64(f)
	}
	return cast.ToInt64(v)
}

func (r Record) Float(keys ...string) float64 {
	v, ok := r.Value(keys...)
	if !ok {
		return 0
	}
	if n, ok := v.(json.Number); ok {
		f, _ := n.Float64()
		return f
	}
	return cast.ToFloat64(v)
}

// Bool returns def when no alias is present or the value is not boolean.
func (r Record) Bool(def bool, keys ...string) bool {
	v, ok := r.Value(keys...)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Time parses a wall-clock timestamp in loc; offsets in the value win.
func (r Record) Time(loc *time.Location, keys ...string) (time.Time, bool) {
	s := r.String(keys...)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := rental.ParseLocal(s, loc); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}
