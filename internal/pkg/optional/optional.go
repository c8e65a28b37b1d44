// Package optional provides a three-state JSON field: absent, explicit null,
// or a value. Write payloads use it so "leave as is" and "clear" are
// distinct requests.
package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var null = []byte("null")

// Field holds a value of T that may be absent or explicitly null.
type Field[T any] struct {
	Set   bool // key was present in the payload
	Null  bool // key was present with a null value
	Value T
}

// Of returns a Field set to v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Clear returns a Field that is present and null.
func Clear[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// HasValue reports whether the field carries a non-null value.
func (f Field[T]) HasValue() bool {
	return f.Set && !f.Null
}

// Ptr returns a pointer to the value, or nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.HasValue() {
		return nil
	}
	v := f.Value
	return &v
}

// UnmarshalJSON is only invoked when the key exists in the payload.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), null) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes null for absent or null fields.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.HasValue() {
		return null, nil
	}
	return json.Marshal(f.Value)
}

// ZionID references a user by zion id in write payloads. It accepts a JSON
// number or a numeric string. Older clients send "" or "0" to mean "not
// provided"; those decode as absent.
type ZionID struct {
	Field[int64]
}

// ZionOf returns a ZionID set to id.
func ZionOf(id int64) ZionID {
	return ZionID{Field: Of(id)}
}

// UnmarshalJSON decodes number, numeric string, null and legacy sentinels.
func (z *ZionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		z.Field = Clear[int64]()
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	if raw == "" || raw == "0" {
		z.Field = Field[int64]{}
		return nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return fmt.Errorf("invalid zionId %q", raw)
	}
	z.Field = Of(id)
	return nil
}

// ZionIDs is an optional set of zion ids. Elements follow the ZionID rules;
// legacy sentinel elements are dropped. A null or empty list clears the set.
type ZionIDs struct {
	Field[[]int64]
}

// ZionsOf returns a ZionIDs set to ids.
func ZionsOf(ids ...int64) ZionIDs {
	return ZionIDs{Field: Of(ids)}
}

// UnmarshalJSON decodes a JSON array of numbers or numeric strings.
func (z *ZionIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		z.Field = Clear[[]int64]()
		return nil
	}

	var elems []ZionID
	if err := json.Unmarshal(data, &elems); err != nil {
		return err
	}

	ids := make([]int64, 0, len(elems))
	seen := make(map[int64]bool, len(elems))
	for _, e := range elems {
		if !e.HasValue() || seen[e.Value] {
			continue
		}
		seen[e.Value] = true
		ids = append(ids, e.Value)
	}
	z.Field = Of(ids)
	return nil
}

// Ref references a hierarchy record by id or by name, e.g. a zone sent as
// 3, "3" or "Kochi". "" and "0" decode as absent.
type Ref struct {
	Field[string]
}

// RefOf returns a Ref set to v.
func RefOf(v string) Ref {
	return Ref{Field: Of(v)}
}

// RefID returns a Ref set to a numeric id.
func RefID(id uint) Ref {
	return RefOf(strconv.FormatUint(uint64(id), 10))
}

// UnmarshalJSON decodes a number, a string or null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		r.Field = Clear[string]()
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	} else if _, err := strconv.ParseUint(raw, 10, 64); err != nil {
		return fmt.Errorf("invalid reference %s", raw)
	}

	if raw == "" || raw == "0" {
		r.Field = Field[string]{}
		return nil
	}
	r.Field = Of(raw)
	return nil
}

// ID returns the numeric id when the reference is one.
func (r Ref) ID() (uint, bool) {
	if !r.HasValue() {
		return 0, false
	}
	id, err := strconv.ParseUint(r.Value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Date accepts "2006-01-02" or RFC 3339 timestamps. An empty string decodes
// as absent.
type Date struct {
	Field[time.Time]
}

// DateOf returns a Date set to t.
func DateOf(t time.Time) Date {
	return Date{Field: Of(t)}
}

// UnmarshalJSON decodes a date string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		d.Field = Clear[time.Time]()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s", data)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Field = Field[time.Time]{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Field = Of(t.UTC())
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}
