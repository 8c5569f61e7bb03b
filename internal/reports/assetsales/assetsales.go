// Package assetsales defines the asset sale report.
package assetsales

import (
	"context"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/lookup"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
)

// Source fetches asset sale data.
type Source interface {
	AssetSales(ctx context.Context, q apiclient.AssetSaleQuery) ([]apiclient.Record, error)
	AssetSaleDetails(ctx context.Context, saleNo string) ([]apiclient.Record, error)
}

var amountKeys = []string{"SaleAmount", "SaleValue", "Amount"}

// New returns the report definition.
func New(src Source) *reports.Definition {
	return &reports.Definition{
		Slug:        "asset-sales",
		Title:       "Asset Sales",
		Description: "Assets sold between two dates.",
		ViewLabel:   "View Asset Sales",
		Filters: []reports.Filter{
			{Name: "from_date", Label: "From Date", Kind: reports.FilterDate, Rules: "required," + reports.DateRule},
			{Name: "to_date", Label: "To Date", Kind: reports.FilterDate, Rules: "required," + reports.DateRule},
			{Name: "category", Label: "Category", Kind: reports.FilterSelect, Default: reports.All,
				Options: []reports.Option{{Value: reports.All, Label: reports.All}}, Lookup: lookup.AssetCategories},
		},
		RefKeys:     []string{"SaleNo", "SaleId", "VoucherNo"},
		DetailTitle: "Sale lines",
		Check:       reports.DateRange("from_date", "to_date"),
		Fetch: func(ctx context.Context, f reports.Filters) ([]apiclient.Record, error) {
			return src.AssetSales(ctx, apiclient.AssetSaleQuery{
				FromDate: f.Get("from_date"),
				ToDate:   f.Get("to_date"),
				Category: f.Get("category"),
			})
		},
		FetchDetail: src.AssetSaleDetails,
		Summarize:   Summarize,
	}
}

// Summarize computes total, average and count of the sales.
func Summarize(rows []apiclient.Record) []reports.Card {
	return []reports.Card{
		reports.MoneyCard("Total Sales", reports.Sum(rows, amountKeys...)),
		reports.MoneyCard("Average Sale", reports.Average(rows, amountKeys...)),
		reports.CountCard("Transactions", int64(len(rows))),
	}
}
