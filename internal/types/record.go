package types

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Record is a single extracted data record. Field order is preserved in
// insertion order so that serialized output (JSON key order, CSV header
// order) is deterministic and mirrors the order the extractor produced.
type Record struct {
	keys   []string
	fields map[string]any
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{
		fields: make(map[string]any),
	}
}

// FromMap builds a Record from a plain map. Keys are added in sorted order
// since map iteration order is not stable.
func FromMap(m map[string]any) *Record {
	r := NewRecord()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// Set sets a field value. The key keeps its original position if it
// already exists.
func (r *Record) Set(key string, value any) *Record {
	if _, ok := r.fields[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.fields[key] = value
	return r
}

// Get retrieves a field value.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// GetString retrieves a field value as a string.
func (r *Record) GetString(key string) string {
	v, ok := r.fields[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// Has returns true if the field exists.
func (r *Record) Has(key string) bool {
	_, ok := r.fields[key]
	return ok
}

// Delete removes a field.
func (r *Record) Delete(key string) {
	if _, ok := r.fields[key]; !ok {
		return
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns all field names in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Clone creates a shallow copy of the record.
func (r *Record) Clone() *Record {
	clone := &Record{
		keys:   append([]string(nil), r.keys...),
		fields: make(map[string]any, len(r.fields)),
	}
	for k, v := range r.fields {
		clone.fields[k] = v
	}
	return clone
}

// MergeMap shallow-merges the given map into the record, overwriting
// existing fields. Keys are applied in sorted order for determinism.
func (r *Record) MergeMap(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.Set(k, m[k])
	}
}

// MarshalJSON serializes the record as a JSON object with keys in
// insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON deserializes a JSON object into the record. Key order
// follows Go's map iteration and is therefore not preserved; fields are
// added in sorted order.
func (r *Record) UnmarshalJSON(data []byte) error {
	m := make(map[string]any)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = *FromMap(m)
	return nil
}
