// Package unsecuredloan defines the unsecured loan report.
package unsecuredloan

import (
	"context"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/lookup"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
)

// Source fetches loan data.
type Source interface {
	UnsecuredLoans(ctx context.Context, q apiclient.LoanQuery) ([]apiclient.Record, error)
	LoanRepayments(ctx context.Context, loanNo string) ([]apiclient.Record, error)
}

var (
	sanctionedKeys  = []string{"SanctionedAmount", "SanctionAmount", "LoanAmount"}
	outstandingKeys = []string{"OutstandingAmount", "Outstanding", "Balance"}
	rateKeys        = []string{"InterestRate", "ROI", "RateOfInterest"}
)

// New returns the report definition.
func New(src Source) *reports.Definition {
	return &reports.Definition{
		Slug:        "unsecured-loans",
		Title:       "Unsecured Loans",
		Description: "Outstanding unsecured loans as on a date.",
		ViewLabel:   "View Loans",
		Filters: []reports.Filter{
			{Name: "as_on_date", Label: "As On Date", Kind: reports.FilterDate, Rules: "required," + reports.DateRule},
			{Name: "lender", Label: "Lender", Kind: reports.FilterSelect, Default: reports.All,
				Options: []reports.Option{{Value: reports.All, Label: reports.All}}, Lookup: lookup.Lenders},
		},
		RefKeys:     []string{"LoanNo", "LoanId"},
		DetailTitle: "Repayment schedule",
		Fetch: func(ctx context.Context, f reports.Filters) ([]apiclient.Record, error) {
			return src.UnsecuredLoans(ctx, apiclient.LoanQuery{AsOnDate: f.Get("as_on_date"), Lender: f.Get("lender")})
		},
		FetchDetail: src.LoanRepayments,
		Summarize:   Summarize,
	}
}

// Summarize totals sanctioned and outstanding amounts and averages the rate.
func Summarize(rows []apiclient.Record) []reports.Card {
	return []reports.Card{
		reports.MoneyCard("Sanctioned", reports.Sum(rows, sanctionedKeys...)),
		reports.MoneyCard("Outstanding", reports.Sum(rows, outstandingKeys...)),
		{Label: "Average Rate", Value: reports.Average(rows, rateKeys...), Format: reports.FormatPercent},
		reports.CountCard("Loans", int64(len(rows))),
	}
}
