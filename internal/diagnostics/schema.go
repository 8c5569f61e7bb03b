package diagnostics

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/odyssey-admin/internal/approval"
)

// Schema describes the fields an approval endpoint expects.
type Schema struct {
	Name        string   `yaml:"name" json:"name"`
	Expected    []string `yaml:"expected" json:"expected"`
	Required    []string `yaml:"required" json:"required"`
	ArrayFields []string `yaml:"array_fields" json:"array_fields"`
}

var minimalFields = []string{"Roleid", "Createdby", "Action", "Note"}

// Built-in schemas for the approval payloads.
var (
	StaffSchema = Schema{
		Name:        "staff",
		Expected:    FieldsOf(approval.StaffApprovalWire{}),
		Required:    append([]string{"EmpRefNo"}, minimalFields...),
		ArrayFields: approval.StaffArrayFields,
	}
	AppraisalSchema = Schema{
		Name:        "appraisal",
		Expected:    FieldsOf(approval.AppraisalWire{}),
		Required:    append([]string{"AppraisalId", "EmpRefNo"}, minimalFields...),
		ArrayFields: approval.AppraisalArrayFields,
	}
	VendorPaymentSchema = Schema{
		Name:        "vendor-payment",
		Expected:    FieldsOf(approval.VendorPaymentWire{}),
		Required:    append([]string{"RefNo"}, minimalFields...),
		ArrayFields: approval.VendorPaymentArrayFields,
	}
)

// ForAction narrows s to the payload of action. Reject payloads carry only
// the identifiers and the minimal workflow fields, which are s.Required.
func (s Schema) ForAction(action approval.Action) Schema {
	if action != approval.ActionReject || len(s.Required) == 0 {
		return s
	}
	fields := append([]string(nil), s.Required...)
	return Schema{Name: s.Name + "-reject", Expected: fields, Required: fields}
}

var builtin = map[string]Schema{
	StaffSchema.Name:         StaffSchema,
	AppraisalSchema.Name:     AppraisalSchema,
	VendorPaymentSchema.Name: VendorPaymentSchema,
}

// Builtin returns the named built-in schema.
func Builtin(name string) (Schema, bool) {
	s, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// BuiltinNames lists the built-in schema names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldsOf returns the JSON field names of a struct value in declaration order.
func FieldsOf(v any) []string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields = append(fields, name)
	}
	return fields
}

// LoadSchema decodes a YAML schema document.
func LoadSchema(r io.Reader) (Schema, error) {
	var s Schema
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return Schema{}, fmt.Errorf("diagnostics: decode schema: %w", err)
	}
	if len(s.Expected) == 0 && len(s.Required) == 0 {
		return Schema{}, fmt.Errorf("diagnostics: schema %q lists no fields", s.Name)
	}
	return s, nil
}

// LoadSchemaFile reads a YAML schema from path.
func LoadSchemaFile(path string) (Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return Schema{}, fmt.Errorf("diagnostics: open schema: %w", err)
	}
	defer f.Close()
	return LoadSchema(f)
}
