package assetsales

import (
	"context"
	"errors"
	"testing"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
)

type stubSource struct {
	query apiclient.AssetSaleQuery
	rows  []apiclient.Record
}

func (s *stubSource) AssetSales(_ context.Context, q apiclient.AssetSaleQuery) ([]apiclient.Record, error) {
	s.query = q
	return s.rows, nil
}

func (s *stubSource) AssetSaleDetails(context.Context, string) ([]apiclient.Record, error) {
	return nil, nil
}

func TestSummarize(t *testing.T) {
	rows := []apiclient.Record{
		apiclient.NewRecord("SaleNo", "S1", "SaleAmount", 100),
		apiclient.NewRecord("SaleNo", "S2", "SaleAmount", "200"),
		apiclient.NewRecord("SaleNo", "S3", "Amount", 300.0),
	}
	cards := Summarize(rows)
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if got := cards[0].Value.String(); got != "600" {
		t.Fatalf("expected total 600, got %s", got)
	}
	if got := cards[1].Value.String(); got != "200" {
		t.Fatalf("expected average 200, got %s", got)
	}
	if got := cards[2].Value.IntPart(); got != 3 {
		t.Fatalf("expected count 3, got %d", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	cards := Summarize(nil)
	for _, c := range cards {
		if !c.Value.IsZero() {
			t.Fatalf("expected zero %s, got %s", c.Label, c.Value)
		}
	}
}

func TestFetchPassesFilters(t *testing.T) {
	src := &stubSource{}
	def := New(src)
	st := def.Initial()
	st = def.Reduce(st, reports.Action{Kind: reports.ActionSetFilter, Field: "from_date", Value: "2024-04-01"})
	st = def.Reduce(st, reports.Action{Kind: reports.ActionSetFilter, Field: "to_date", Value: "2024-06-30"})
	if err := def.Validate(st.Filters); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := def.Fetch(context.Background(), st.Filters); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	want := apiclient.AssetSaleQuery{FromDate: "2024-04-01", ToDate: "2024-06-30", Category: "All"}
	if src.query != want {
		t.Fatalf("expected %+v, got %+v", want, src.query)
	}
}

func TestValidateRejectsInvertedRange(t *testing.T) {
	def := New(&stubSource{})
	err := def.Validate(reports.Filters{"from_date": "2024-07-01", "to_date": "2024-06-30"})
	if !errors.Is(err, apiclient.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = def.Validate(reports.Filters{"from_date": "2024-07-01"})
	var missing *reports.MissingFiltersError
	if !errors.As(err, &missing) || len(missing.Labels) != 1 || missing.Labels[0] != "To Date" {
		t.Fatalf("expected missing To Date, got %v", err)
	}
}
