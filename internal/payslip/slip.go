// Package payslip renders an employee's monthly pay slip as HTML and PDF.
package payslip

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
)

// Line is one earning or deduction head.
type Line struct {
	Label  string
	Amount decimal.Decimal
}

// Slip is a computed pay slip. Totals are always derived from the lines.
type Slip struct {
	EmpRefNo    string
	Name        string
	Designation string
	Department  string
	PANNo       string
	BankAccount string
	DaysPaid    string
	Month       time.Month
	Year        int

	Earnings        []Line
	Deductions      []Line
	Gross           decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal
	ReportedNet     decimal.Decimal
}

type head struct {
	label string
	keys  []string
}

// Flat heads used when the backend sends no Earnings/Deductions arrays.
var (
	earningHeads = []head{
		{"Basic", []string{"Basic", "BasicPay"}},
		{"Dearness Allowance", []string{"DA"}},
		{"House Rent Allowance", []string{"HRA"}},
		{"Conveyance", []string{"Conveyance", "ConveyanceAllowance"}},
		{"Medical Allowance", []string{"Medical", "MedicalAllowance"}},
		{"Special Allowance", []string{"SpecialAllowance"}},
		{"Other Allowance", []string{"OtherAllowance", "OtherEarnings"}},
	}
	deductionHeads = []head{
		{"Provident Fund", []string{"PF", "EPF"}},
		{"ESI", []string{"ESI"}},
		{"Professional Tax", []string{"PT", "ProfessionalTax"}},
		{"Income Tax (TDS)", []string{"TDS", "IncomeTax"}},
		{"Loan Recovery", []string{"LoanRecovery", "Advance"}},
		{"Other Deductions", []string{"OtherDeduction", "OtherDeductions"}},
	}
)

// Build computes a slip from the backend record.
func Build(rec apiclient.Record, month time.Month, year int) Slip {
	s := Slip{
		EmpRefNo:    rec.String("EmpRefNo"),
		Name:        rec.String("EmpName", "EmployeeName", "Name"),
		Designation: rec.String("Designation"),
		Department:  rec.String("Department", "DeptName"),
		PANNo:       rec.String("PANNo", "PanNo"),
		BankAccount: rec.String("AccountNo", "BankAccountNo"),
		DaysPaid:    rec.String("DaysPaid", "PaidDays"),
		Month:       month,
		Year:        year,
		ReportedNet: reports.Amount(rec, "NetPay", "NetSalary"),
	}
	s.Earnings = lines(rec, "Earnings", earningHeads)
	s.Deductions = lines(rec, "Deductions", deductionHeads)
	s.Gross = total(s.Earnings)
	s.TotalDeductions = total(s.Deductions)
	s.Net = s.Gross.Sub(s.TotalDeductions)
	return s
}

func lines(rec apiclient.Record, key string, heads []head) []Line {
	var out []Line
	if rows := rec.Records(key); len(rows) > 0 {
		for _, row := range rows {
			out = append(out, Line{
				Label:  row.String("Head", "Name", "Component"),
				Amount: reports.Amount(row, "Amount", "Value"),
			})
		}
		return out
	}
	for _, h := range heads {
		amount := reports.Amount(rec, h.keys...)
		if amount.IsZero() {
			continue
		}
		out = append(out, Line{Label: h.label, Amount: amount})
	}
	return out
}

func total(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}

// Period is the slip's month and year, e.g. "March 2024".
func (s Slip) Period() string {
	return fmt.Sprintf("%s %d", s.Month, s.Year)
}

// Mismatch reports whether the backend's net pay differs from the computed one.
func (s Slip) Mismatch() bool {
	return !s.ReportedNet.IsZero() && !s.ReportedNet.Equal(s.Net)
}

// Rows pairs earnings and deductions side by side for the slip table.
func (s Slip) Rows() [][2]*Line {
	n := max(len(s.Earnings), len(s.Deductions))
	out := make([][2]*Line, n)
	for i := range out {
		if i < len(s.Earnings) {
			out[i][0] = &s.Earnings[i]
		}
		if i < len(s.Deductions) {
			out[i][1] = &s.Deductions[i]
		}
	}
	return out
}

// Filename is the PDF download name.
func (s Slip) Filename() string {
	return fmt.Sprintf("payslip-%s-%04d-%02d.pdf", s.EmpRefNo, s.Year, int(s.Month))
}
