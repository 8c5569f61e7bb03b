package unsecuredloan

import (
	"context"
	"testing"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/reports"
)

type stubSource struct {
	query apiclient.LoanQuery
}

func (s *stubSource) UnsecuredLoans(_ context.Context, q apiclient.LoanQuery) ([]apiclient.Record, error) {
	s.query = q
	return nil, nil
}

func (s *stubSource) LoanRepayments(context.Context, string) ([]apiclient.Record, error) {
	return nil, nil
}

func TestSummarize(t *testing.T) {
	rows := []apiclient.Record{
		apiclient.NewRecord("LoanNo", "L1", "SanctionedAmount", 100000, "OutstandingAmount", 40000, "InterestRate", 9),
		apiclient.NewRecord("LoanNo", "L2", "SanctionAmount", "50,000", "Outstanding", 25000, "ROI", "10"),
	}
	cards := Summarize(rows)
	if len(cards) != 4 {
		t.Fatalf("expected 4 cards, got %d", len(cards))
	}
	if got := cards[0].Value.String(); got != "150000" {
		t.Fatalf("unexpected sanctioned %s", got)
	}
	if got := cards[1].Value.String(); got != "65000" {
		t.Fatalf("unexpected outstanding %s", got)
	}
	if got := cards[2].Display(); got != "9.50%" {
		t.Fatalf("unexpected rate %s", got)
	}
	if got := cards[3].Value.IntPart(); got != 2 {
		t.Fatalf("unexpected count %d", got)
	}
}

func TestFetchDefaultsLenderToAll(t *testing.T) {
	src := &stubSource{}
	def := New(src)
	st := def.Reduce(def.Initial(), reports.Action{Kind: reports.ActionSetFilter, Field: "as_on_date", Value: "2024-03-31"})
	if err := def.Validate(st.Filters); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := def.Fetch(context.Background(), st.Filters); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if src.query != (apiclient.LoanQuery{AsOnDate: "2024-03-31", Lender: "All"}) {
		t.Fatalf("unexpected query %+v", src.query)
	}
}
