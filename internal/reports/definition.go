package reports

import (
	"context"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// Definition describes one report page.
type Definition struct {
	Slug        string
	Title       string
	Description string
	ViewLabel   string
	Filters     []Filter
	// RefKeys are the fallback names of the row field used for drill-down.
	RefKeys     []string
	DetailTitle string
	Policy      Policy
	// Check runs after the required filters are present.
	Check       func(Filters) error
	Fetch       func(ctx context.Context, f Filters) ([]apiclient.Record, error)
	FetchDetail func(ctx context.Context, ref string) ([]apiclient.Record, error)
	Summarize   func(rows []apiclient.Record) []Card
	PerPage     int
}

// RowRef returns the drill-down reference of row.
func (d *Definition) RowRef(row apiclient.Record) string {
	return strings.TrimSpace(row.String(d.RefKeys...))
}

// Lookups lists the lookup lists the filter bar needs.
func (d *Definition) Lookups() []string {
	var out []string
	for _, f := range d.Filters {
		if f.Lookup != "" {
			out = append(out, f.Lookup)
		}
	}
	return out
}

// Columns returns the table header, taken from the first row.
func Columns(rows []apiclient.Record) []string {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].Keys()
}
