package apiclient

import (
	"encoding/json"
	"testing"
)

func TestRecordPreservesKeyOrder(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"Zeta":1,"Alpha":"a","Mid":null}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	keys := rec.Keys()
	want := []string{"Zeta", "Alpha", "Mid"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key %d: expected %s got %s", i, want[i], keys[i])
		}
	}
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"Zeta":1,"Alpha":"a","Mid":null}` {
		t.Fatalf("unexpected marshal output %s", out)
	}
}

func TestRecordFallbackKeys(t *testing.T) {
	rec := NewRecord("Reqno", "", "ReferenceNo", "REF-9", "Amount", "1,250.50")
	if got := rec.String("RequestNo", "Reqno", "ReferenceNo"); got != "REF-9" {
		t.Fatalf("expected REF-9, got %q", got)
	}
	if got := rec.Float("Amount"); got != 1250.5 {
		t.Fatalf("expected 1250.5, got %v", got)
	}
}

func TestRecordNestedArrays(t *testing.T) {
	var rec Record
	raw := `{"EmpRefNo":"E1","FamilyDetails":[{"Name":"A"},{"Name":"B"}]}`
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	family := rec.Records("FamilyDetails")
	if len(family) != 2 || family[1].String("Name") != "B" {
		t.Fatalf("unexpected family records %+v", family)
	}
}

func TestClassifyMessage(t *testing.T) {
	cases := []struct {
		raw    string
		kind   Kind
		column string
		field  string
	}{
		{"Cannot insert the value NULL into column 'Gender', table 'dbo.Staff'", KindConstraintViolation, "Gender", ""},
		{"Employee Already Exist", KindDuplicateKey, "", "Employee"},
		{"Error: Mobile No Already Exist", KindDuplicateKey, "", "Mobile No"},
		{"Mail Id john@x.com Already Exists", KindDuplicateKey, "", "Mail Id"},
		{"Employee with PAN ABCDE1234F Already Exist", KindDuplicateKey, "", "PAN"},
		{"Record for employee E100 in 2024 already exists", KindDuplicateKey, "", ""},
		{"ABCDE1234F Already Exist", KindDuplicateKey, "", ""},
		{"Timeout expired", KindUnknown, "", ""},
	}
	for _, tc := range cases {
		got := ClassifyMessage(tc.raw)
		if got.Kind != tc.kind || got.Column != tc.column || got.Field != tc.field {
			t.Fatalf("classify %q: got %+v", tc.raw, got)
		}
	}
}
