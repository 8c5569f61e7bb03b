// Package lcbg defines the letter of credit / bank guarantee status report.
package lcbg

import (
	"context"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/lookup"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
)

// AnyYear leaves the year unconstrained.
const AnyYear = "Any Year"

// Source fetches LC/BG data.
type Source interface {
	LCBGStatus(ctx context.Context, q apiclient.LCBGQuery) ([]apiclient.Record, error)
	LCBGDetails(ctx context.Context, refNo string) ([]apiclient.Record, error)
}

// Options tune the page.
type Options struct {
	// LockOnAnyYear pins Month and Bank to All while Year is Any Year.
	LockOnAnyYear bool
	// Years is how many years back the Year dropdown offers.
	Years int
	Now   func() time.Time
}

var (
	amountKeys = []string{"Amount", "LCBGAmount", "LCAmount", "BGAmount"}
	statusKeys = []string{"Status", "LCBGStatus"}
	boeKeys    = []string{"BOECount", "NoOfBOE"}
)

// New returns the report definition.
func New(src Source, opts Options) *reports.Definition {
	def := &reports.Definition{
		Slug:        "lcbg-status",
		Title:       "LC / BG Status",
		Description: "Letters of credit and bank guarantees by year, month and bank.",
		ViewLabel:   "View LC/BG Status",
		Filters: []reports.Filter{
			{Name: "year", Label: "Year", Kind: reports.FilterSelect, Rules: "required", Options: yearOptions(opts)},
			{Name: "month", Label: "Month", Kind: reports.FilterSelect, Default: reports.All, Options: monthOptions()},
			{Name: "bank", Label: "Bank", Kind: reports.FilterSelect, Default: reports.All,
				Options: []reports.Option{{Value: reports.All, Label: reports.All}}, Lookup: lookup.Banks},
			{Name: "type", Label: "Type", Kind: reports.FilterSelect, Default: reports.All, Rules: "omitempty,oneof=All LC BG", Options: []reports.Option{
				{Value: reports.All, Label: reports.All},
				{Value: "LC", Label: "Letter of Credit"},
				{Value: "BG", Label: "Bank Guarantee"},
			}},
		},
		RefKeys:     []string{"RefNo", "LCBGNo", "ReferenceNo"},
		DetailTitle: "Bills of exchange",
		Fetch: func(ctx context.Context, f reports.Filters) ([]apiclient.Record, error) {
			return src.LCBGStatus(ctx, apiclient.LCBGQuery{
				Year:  f.Get("year"),
				Month: f.Get("month"),
				Bank:  f.Get("bank"),
				Type:  f.Get("type"),
			})
		},
		FetchDetail: src.LCBGDetails,
		Summarize:   Summarize,
	}
	if opts.LockOnAnyYear {
		def.Policy = reports.LockWhen("year", AnyYear, reports.All, "month", "bank")
	}
	return def
}

// Summarize counts instruments by status and totals their amounts.
func Summarize(rows []apiclient.Record) []reports.Card {
	return []reports.Card{
		reports.CountCard("Instruments", int64(len(rows))),
		reports.MoneyCard("Total Amount", reports.Sum(rows, amountKeys...)),
		reports.CountCard("Open", reports.Count(rows, reports.FieldEquals(statusKeys, "Open", "Active"))),
		reports.CountCard("Closed", reports.Count(rows, reports.FieldEquals(statusKeys, "Closed", "Settled"))),
		reports.CountCard("Bills of Exchange", reports.Sum(rows, boeKeys...).IntPart()),
	}
}

func yearOptions(opts Options) []reports.Option {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	n := opts.Years
	if n <= 0 {
		n = 10
	}
	out := []reports.Option{{Value: AnyYear, Label: AnyYear}}
	year := now().Year()
	for i := 0; i < n; i++ {
		y := strconv.Itoa(year - i)
		out = append(out, reports.Option{Value: y, Label: y})
	}
	return out
}

func monthOptions() []reports.Option {
	out := []reports.Option{{Value: reports.All, Label: reports.All}}
	for m := time.January; m <= time.December; m++ {
		out = append(out, reports.Option{Value: strconv.Itoa(int(m)), Label: m.String()})
	}
	return out
}
