package payslip

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

func decodeRecord(t *testing.T, raw string) apiclient.Record {
	t.Helper()
	var rec apiclient.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestBuildFromFlatHeads(t *testing.T) {
	rec := decodeRecord(t, `{"EmpRefNo":"E100","EmpName":"John Doe","Basic":25000.10,"HRA":"10,000.20","DA":0,"PF":3000,"PT":200,"TDS":1500.05,"NetPay":30300.25}`)
	s := Build(rec, time.March, 2024)

	require.Len(t, s.Earnings, 2)
	assert.Equal(t, "Basic", s.Earnings[0].Label)
	assert.Equal(t, "House Rent Allowance", s.Earnings[1].Label)
	require.Len(t, s.Deductions, 3)
	assert.True(t, s.Gross.Equal(decimal.RequireFromString("35000.30")), s.Gross.String())
	assert.True(t, s.TotalDeductions.Equal(decimal.RequireFromString("4700.05")), s.TotalDeductions.String())
	assert.True(t, s.Net.Equal(decimal.RequireFromString("30300.25")), s.Net.String())
	assert.False(t, s.Mismatch())
	assert.Equal(t, "March 2024", s.Period())
	assert.Equal(t, "payslip-E100-2024-03.pdf", s.Filename())
}

func TestBuildPrefersComponentArrays(t *testing.T) {
	rec := decodeRecord(t, `{
		"EmpRefNo":"E7",
		"Basic": 99999,
		"Earnings":[{"Head":"Basic","Amount":1000},{"Head":"Bonus","Amount":500}],
		"Deductions":[{"Head":"PF","Amount":120}],
		"NetPay": 1500
	}`)
	s := Build(rec, time.January, 2025)

	assert.Len(t, s.Earnings, 2)
	assert.Equal(t, "1380", s.Net.String())
	assert.True(t, s.Mismatch())

	rows := s.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Bonus", rows[1][0].Label)
	assert.Nil(t, rows[1][1])
}
