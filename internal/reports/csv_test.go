package reports

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

func TestConvertToCSVRoundTrip(t *testing.T) {
	rows := []apiclient.Record{
		apiclient.NewRecord("SaleNo", "S1", "Asset", "Lathe", "Amount", 100),
		apiclient.NewRecord("SaleNo", "S2", "Asset", "Crane", "Amount", 250.5),
	}
	out := ConvertToCSV(rows)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	want := [][]string{
		{"SaleNo", "Asset", "Amount"},
		{"S1", "Lathe", "100"},
		{"S2", "Crane", "250.5"},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(records))
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Fatalf("line %d: expected %v, got %v", i, want[i], records[i])
		}
	}
}

func TestConvertToCSVQuotesCommasOnly(t *testing.T) {
	rows := []apiclient.Record{
		apiclient.NewRecord("Name", "Acme, Ltd", "Note", `say "hi"`),
	}
	got := ConvertToCSV(rows)
	want := "Name,Note\n\"Acme, Ltd\",say \"hi\"\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if ConvertToCSV(nil) != "" {
		t.Fatalf("expected empty export for no rows")
	}
}

func TestConvertToCSVUsesFirstRowHeader(t *testing.T) {
	rows := []apiclient.Record{
		apiclient.NewRecord("A", 1),
		apiclient.NewRecord("B", 2, "A", 3),
	}
	if got := ConvertToCSV(rows); got != "A\n1\n3\n" {
		t.Fatalf("unexpected csv %q", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	rows := []apiclient.Record{
		apiclient.NewRecord("LoanNo", "L1", "Outstanding", 1500.25),
		apiclient.NewRecord("LoanNo", "L2", "Outstanding", nil),
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rows); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer func() { _ = f.Close() }()
	got, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(got) != 3 || got[0][0] != "LoanNo" || got[1][1] != "1500.25" || got[2][0] != "L2" {
		t.Fatalf("unexpected sheet %v", got)
	}
}
