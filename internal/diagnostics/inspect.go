// Package diagnostics inspects approval payloads before they are submitted
// and reports null, missing, empty and malformed fields.
package diagnostics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// Status classifies one payload field.
type Status string

const (
	StatusNull      Status = "null"
	StatusUndefined Status = "undefined"
	StatusEmpty     Status = "empty"
	StatusValid     Status = "valid"
)

// FieldReport is the verdict on a single field.
type FieldReport struct {
	Name   string   `json:"name"`
	Status Status   `json:"status"`
	Value  any      `json:"value,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

// Summary counts fields per status.
type Summary struct {
	Total      int `json:"total"`
	Valid      int `json:"valid"`
	Null       int `json:"null"`
	Undefined  int `json:"undefined"`
	Empty      int `json:"empty"`
	WithIssues int `json:"with_issues"`
}

// Report is the outcome of Inspect.
type Report struct {
	Schema          string        `json:"schema,omitempty"`
	GeneratedAt     time.Time     `json:"generated_at"`
	Summary         Summary       `json:"summary"`
	Fields          []FieldReport `json:"fields"`
	MissingRequired []string      `json:"missing_required"`
	Unexpected      []string      `json:"unexpected"`
	Recommendations []string      `json:"recommendations"`
}

var validate = validator.New()

// Inspect classifies every field of payload against schema. Fields of the
// schema come first in schema order, followed by unexpected payload fields.
func Inspect(payload map[string]any, schema Schema) Report {
	report := Report{
		Schema:          schema.Name,
		GeneratedAt:     time.Now().UTC(),
		MissingRequired: []string{},
		Unexpected:      []string{},
	}
	arrays := make(map[string]bool, len(schema.ArrayFields))
	for _, name := range schema.ArrayFields {
		arrays[name] = true
	}

	expected := append([]string{}, schema.Expected...)
	known := make(map[string]bool, len(expected))
	for _, name := range expected {
		known[name] = true
	}
	for _, name := range schema.Required {
		if !known[name] {
			expected = append(expected, name)
			known[name] = true
		}
	}
	var extra []string
	for name := range payload {
		if !known[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	if len(schema.Expected) > 0 {
		report.Unexpected = append(report.Unexpected, extra...)
	}

	statuses := make(map[string]Status)
	for _, name := range append(expected, extra...) {
		value, present := payload[name]
		field := FieldReport{Name: name, Status: classify(value, present)}
		if field.Status == StatusValid {
			field.Value = value
			field.Issues = checkShape(name, value, arrays[name])
		}
		statuses[name] = field.Status
		report.add(field)
	}
	for _, name := range schema.Required {
		if statuses[name] != StatusValid {
			report.MissingRequired = append(report.MissingRequired, name)
		}
	}
	report.Recommendations = report.recommend()
	return report
}

func (r *Report) add(f FieldReport) {
	r.Fields = append(r.Fields, f)
	r.Summary.Total++
	switch f.Status {
	case StatusNull:
		r.Summary.Null++
	case StatusUndefined:
		r.Summary.Undefined++
	case StatusEmpty:
		r.Summary.Empty++
	default:
		r.Summary.Valid++
	}
	if len(f.Issues) > 0 {
		r.Summary.WithIssues++
	}
}

// Field returns the report of the named field.
func (r Report) Field(name string) (FieldReport, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldReport{}, false
}

// Clean reports whether the payload has no missing, null or flagged fields.
func (r Report) Clean() bool {
	return len(r.MissingRequired) == 0 && r.Summary.Null == 0 && r.Summary.Undefined == 0 && r.Summary.WithIssues == 0
}

func (r Report) namesWith(match func(FieldReport) bool) []string {
	var out []string
	for _, f := range r.Fields {
		if match(f) {
			out = append(out, f.Name)
		}
	}
	return out
}

func (r Report) recommend() []string {
	var out []string
	if len(r.MissingRequired) > 0 {
		out = append(out, "Required fields are missing or blank: "+strings.Join(r.MissingRequired, ", ")+".")
	}
	if names := r.namesWith(func(f FieldReport) bool { return f.Status == StatusNull }); len(names) > 0 {
		out = append(out, "Replace null values with typed defaults before submitting: "+strings.Join(names, ", ")+".")
	}
	if names := r.namesWith(func(f FieldReport) bool { return f.Status == StatusUndefined }); len(names) > 0 {
		out = append(out, "Map the fields the endpoint expects but the payload omits: "+strings.Join(names, ", ")+".")
	}
	if names := r.namesWith(func(f FieldReport) bool { return f.Status == StatusEmpty }); len(names) > 0 {
		out = append(out, "Check whether these empty values are intended: "+strings.Join(names, ", ")+".")
	}
	for _, f := range r.Fields {
		for _, issue := range f.Issues {
			out = append(out, f.Name+": "+issue+".")
		}
	}
	if len(r.Unexpected) > 0 {
		out = append(out, "The endpoint does not expect: "+strings.Join(r.Unexpected, ", ")+".")
	}
	if len(out) == 0 {
		out = append(out, "No problems found.")
	}
	return out
}

// WriteJSON writes the report as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Filename is the download name of a report generated at t.
func Filename(t time.Time) string {
	return "payload-report-" + t.UTC().Format("20060102-150405") + ".json"
}

// ToMap converts a payload struct into the generic form Inspect reads.
// Numbers decode as json.Number.
func ToMap(payload any) (map[string]any, error) {
	if m, ok := payload.(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: encode payload: %w", err)
	}
	return Decode(raw)
}

// Decode parses a JSON object payload.
func Decode(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("diagnostics: decode payload: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("diagnostics: payload is not an object")
	}
	return m, nil
}

func classify(value any, present bool) Status {
	if !present {
		return StatusUndefined
	}
	if value == nil {
		return StatusNull
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return StatusEmpty
		}
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Map, reflect.Array:
			if rv.Len() == 0 {
				return StatusEmpty
			}
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return StatusNull
			}
		}
	}
	return StatusValid
}

func checkShape(name string, value any, array bool) []string {
	lower := strings.ToLower(name)
	switch {
	case array:
		s, ok := value.(string)
		if !ok {
			return []string{"expected a comma-separated string"}
		}
		if !strings.HasSuffix(s, ",") {
			return []string{"comma-separated list should end with a trailing comma"}
		}
	case strings.Contains(lower, "mail"):
		s, ok := value.(string)
		if !ok || validate.Var(s, "required,email") != nil {
			return []string{"not a valid email address"}
		}
	case strings.Contains(name, "Date") || strings.HasPrefix(name, "DOB") || strings.HasPrefix(name, "DOJ"):
		s, ok := value.(string)
		if !ok {
			return []string{"expected a date string"}
		}
		if _, ok := apiclient.ParseDate(s); !ok {
			return []string{"not a recognised date"}
		}
	case strings.HasSuffix(name, "Id") || strings.HasSuffix(name, "ID"):
		n, ok := number(value)
		if !ok {
			return []string{"expected a numeric identifier"}
		}
		if n <= 0 {
			return []string{"identifier should be a positive number"}
		}
	}
	return nil
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}
