package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is a server-defined JSON object whose key order is preserved.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from alternating key/value pairs.
func NewRecord(pairs ...any) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		r.Set(key, pairs[i+1])
	}
	return r
}

// Keys returns the field names in server order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len reports the number of fields.
func (r Record) Len() int { return len(r.keys) }

// Get returns the raw value stored under key.
func (r Record) Get(key string) (any, bool) {
	if r.values == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Set stores a value, appending the key when new.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Map returns a shallow copy of the record as a plain map.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.values[k]
	}
	return out
}

// String returns the first non-empty value among keys, formatted as text.
func (r Record) String(keys ...string) string {
	for _, key := range keys {
		v, ok := r.Get(key)
		if !ok || v == nil {
			continue
		}
		if s := FormatValue(v); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Float returns the first numeric value among keys. Numeric strings are accepted.
func (r Record) Float(keys ...string) float64 {
	for _, key := range keys {
		v, ok := r.Get(key)
		if !ok || v == nil {
			continue
		}
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return 0
}

// Int returns the first integral value among keys.
func (r Record) Int(keys ...string) int64 {
	return int64(r.Float(keys...))
}

// Bool interprets common truthy encodings used by the backend.
func (r Record) Bool(keys ...string) bool {
	for _, key := range keys {
		v, ok := r.Get(key)
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case json.Number:
			return t.String() != "0"
		case float64:
			return t != 0
		case string:
			switch strings.ToLower(strings.TrimSpace(t)) {
			case "1", "true", "y", "yes", "active":
				return true
			case "":
				continue
			default:
				return false
			}
		}
	}
	return false
}

// Time parses the first value among keys that looks like a date.
func (r Record) Time(keys ...string) time.Time {
	for _, key := range keys {
		s := r.String(key)
		if s == "" {
			continue
		}
		if t, ok := ParseDate(s); ok {
			return t
		}
	}
	return time.Time{}
}

// Records returns a nested array of objects under key.
func (r Record) Records(key string) []Record {
	v, ok := r.Get(key)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []Record:
		return t
	case []any:
		out := make([]Record, 0, len(t))
		for _, item := range t {
			if rec, ok := item.(Record); ok {
				out = append(out, rec)
			}
		}
		return out
	}
	return nil
}

// MarshalJSON writes the object preserving key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object preserving key order. Numbers decode as json.Number.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("apiclient: record: expected object, got %v", tok)
	}
	rec, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func decodeObject(dec *json.Decoder) (Record, error) {
	var rec Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rec, err
		}
		key, ok := tok.(string)
		if !ok {
			return rec, fmt.Errorf("apiclient: record: unexpected key %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return rec, err
		}
		rec.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return rec, err
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		var items []any
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if items == nil {
			items = []any{}
		}
		return items, nil
	}
	return nil, fmt.Errorf("apiclient: record: unexpected delimiter %v", delim)
}

// FormatValue renders a decoded JSON value as plain text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"02-Jan-2006",
	"02 Jan 2006",
}

// ParseDate accepts the date encodings the backend emits.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
