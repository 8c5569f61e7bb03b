// Package itemcode defines the item code listing.
package itemcode

import (
	"context"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/lookup"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
)

// Source fetches item codes.
type Source interface {
	ItemCodes(ctx context.Context, q apiclient.ItemCodeQuery) ([]apiclient.Record, error)
	ItemCodeDetail(ctx context.Context, itemCode string) ([]apiclient.Record, error)
}

// New returns the report definition. An unselected major group is sent as
// "Select All".
func New(src Source) *reports.Definition {
	return &reports.Definition{
		Slug:        "item-codes",
		Title:       "Item Codes",
		Description: "Item codes of a category, optionally narrowed to a major group.",
		ViewLabel:   "View Item Codes",
		Filters: []reports.Filter{
			{Name: "category", Label: "Item Category", Kind: reports.FilterSelect, Rules: "required", Lookup: lookup.ItemCategories},
			{Name: "mgc", Label: "Major Group", Kind: reports.FilterSelect, Default: apiclient.SelectAll,
				Options: []reports.Option{{Value: apiclient.SelectAll, Label: apiclient.SelectAll}}, Lookup: lookup.MajorGroups},
		},
		RefKeys:     []string{"ItemCode", "ItemId"},
		DetailTitle: "Item detail",
		Fetch: func(ctx context.Context, f reports.Filters) ([]apiclient.Record, error) {
			mgc := f.Get("mgc")
			if mgc == "" {
				mgc = apiclient.SelectAll
			}
			return src.ItemCodes(ctx, apiclient.ItemCodeQuery{MajorGroup: mgc, Category: f.Get("category")})
		},
		FetchDetail: src.ItemCodeDetail,
		Summarize:   Summarize,
	}
}

// Summarize counts items, active items and distinct DCA codes.
func Summarize(rows []apiclient.Record) []reports.Card {
	active := reports.Count(rows, func(row apiclient.Record) bool {
		if _, ok := row.Get("IsActive"); ok {
			return row.Bool("IsActive")
		}
		return reports.FieldEquals([]string{"Status"}, "Active", "A")(row)
	})
	return []reports.Card{
		reports.CountCard("Total Items", int64(len(rows))),
		reports.CountCard("Active Items", active),
		reports.CountCard("DCA Codes", reports.Distinct(rows, "DCACode", "DcaCode", "DCA")),
	}
}
