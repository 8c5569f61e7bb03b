package diagnostics

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/approval"
)

var testSchema = Schema{
	Name:        "test",
	Expected:    []string{"EmpRefNo", "Note", "MailId", "DOB", "DeptId", "FamilyNames", "MiddleName", "Gender"},
	Required:    []string{"EmpRefNo", "Note"},
	ArrayFields: []string{"FamilyNames"},
}

func TestInspectClassifiesFields(t *testing.T) {
	payload, err := Decode([]byte(`{
		"EmpRefNo": "E100",
		"Note": null,
		"MailId": "not-an-email",
		"DOB": "1990-02-30",
		"DeptId": "0",
		"FamilyNames": "Jane,Joe",
		"MiddleName": "",
		"Extra": 1
	}`))
	require.NoError(t, err)

	report := Inspect(payload, testSchema)

	assert.Equal(t, Summary{Total: 9, Valid: 6, Null: 1, Undefined: 1, Empty: 1, WithIssues: 4}, report.Summary)
	assert.Equal(t, []string{"Note"}, report.MissingRequired)
	assert.Equal(t, []string{"Extra"}, report.Unexpected)
	assert.False(t, report.Clean())

	cases := map[string]Status{
		"EmpRefNo":   StatusValid,
		"Note":       StatusNull,
		"MiddleName": StatusEmpty,
		"Gender":     StatusUndefined,
	}
	for name, want := range cases {
		f, ok := report.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, want, f.Status, name)
	}
	for _, name := range []string{"MailId", "DOB", "DeptId", "FamilyNames"} {
		f, _ := report.Field(name)
		assert.Len(t, f.Issues, 1, name)
	}
	assert.Equal(t, "Extra", report.Fields[len(report.Fields)-1].Name)
	assert.Contains(t, report.Recommendations[0], "Note")
}

func TestInspectAcceptsWellFormedValues(t *testing.T) {
	payload := map[string]any{
		"EmpRefNo":    "E100",
		"Note":        "HR : jdoe : ok",
		"MailId":      "john.doe@company.com",
		"DOB":         "15-08-1990",
		"DeptId":      json.Number("12"),
		"FamilyNames": "Jane,",
		"MiddleName":  "K",
		"Gender":      "Male",
	}
	report := Inspect(payload, testSchema)
	assert.True(t, report.Clean())
	assert.Equal(t, []string{"No problems found."}, report.Recommendations)
	assert.Empty(t, report.Unexpected)
}

func TestInspectWithoutSchemaExpectsPayloadFields(t *testing.T) {
	report := Inspect(map[string]any{"b": "x", "a": []any{}}, Schema{})
	require.Len(t, report.Fields, 2)
	assert.Equal(t, "a", report.Fields[0].Name)
	assert.Equal(t, StatusEmpty, report.Fields[0].Status)
	assert.Empty(t, report.Unexpected)
}

func TestInspectBuiltPayload(t *testing.T) {
	b := approval.Builder{}
	op := approval.Operator{UserID: "u1", UserName: "jdoe", RoleID: "7", RoleName: "HR"}
	payload, err := ToMap(b.BuildStaffPayload(approval.ActionReject, approval.Selection{Ref: "E100"}, nil, "no", op))
	require.NoError(t, err)

	report := Inspect(payload, StaffSchema)
	assert.Empty(t, report.MissingRequired)
	assert.Empty(t, report.Unexpected)
	assert.Equal(t, len(StaffSchema.Expected)-5, report.Summary.Undefined)
}

func TestInspectDoesNotMutateSchema(t *testing.T) {
	before := append([]string{}, StaffSchema.Expected...)
	_ = Inspect(map[string]any{"Zzz": "x"}, StaffSchema)
	_ = Inspect(map[string]any{"Yyy": "x"}, StaffSchema)
	assert.Equal(t, before, StaffSchema.Expected)
}

func TestReportWriteJSON(t *testing.T) {
	report := Inspect(map[string]any{"EmpRefNo": "E1"}, testSchema)
	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "test", decoded["schema"])
	assert.Contains(t, decoded, "recommendations")
	assert.Contains(t, decoded, "missing_required")
}

func TestDecodeRejectsNonObject(t *testing.T) {
	_, err := Decode([]byte(`null`))
	assert.Error(t, err)
	_, err = Decode([]byte(`[1]`))
	assert.Error(t, err)
}

func TestLoadSchema(t *testing.T) {
	doc := `
name: loan
expected: [LoanNo, Amount, LenderId]
required: [LoanNo]
array_fields: []
`
	s, err := LoadSchema(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "loan", s.Name)
	assert.Equal(t, []string{"LoanNo", "Amount", "LenderId"}, s.Expected)

	_, err = LoadSchema(strings.NewReader("name: x\nunknown: 1\n"))
	assert.Error(t, err)
	_, err = LoadSchema(strings.NewReader("name: empty\n"))
	assert.Error(t, err)
}

func TestFieldsOfFollowsJSONTags(t *testing.T) {
	type sample struct {
		A      string `json:"alpha"`
		B      int    `json:"beta,omitempty"`
		hidden string
		Skip   string `json:"-"`
		Plain  bool
	}
	assert.Equal(t, []string{"alpha", "beta", "Plain"}, FieldsOf(&sample{}))
	assert.Nil(t, FieldsOf(42))
	assert.Equal(t, []string{"appraisal", "staff", "vendor-payment"}, BuiltinNames())
}

func TestSchemaForRejectKeepsIdentifiersAndWorkflowFields(t *testing.T) {
	reject := VendorPaymentSchema.ForAction(approval.ActionReject)
	assert.Equal(t, "vendor-payment-reject", reject.Name)
	assert.Equal(t, []string{"RefNo", "Roleid", "Createdby", "Action", "Note"}, reject.Expected)
	assert.Equal(t, reject.Expected, reject.Required)
	assert.Empty(t, reject.ArrayFields)
	assert.Equal(t, FieldsOf(approval.VendorRejectPayload{}), reject.Expected)

	assert.Equal(t, StaffSchema, StaffSchema.ForAction(approval.ActionApprove))
}
