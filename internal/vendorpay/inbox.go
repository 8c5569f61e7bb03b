// Package vendorpay serves the vendor payment approval inbox.
package vendorpay

import (
	"context"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/approval"
	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
	"github.com/odyssey-erp/odyssey-admin/internal/inbox"
)

// MOID identifies vendor payments in the backend's status lookup.
const MOID = 27

// Client is the slice of the backend API the inbox uses.
type Client interface {
	PendingVendorPayments(ctx context.Context, roleID string) ([]apiclient.Record, error)
	VendorPaymentDetail(ctx context.Context, refNo string) (apiclient.Record, error)
	ApproveVendorPayment(ctx context.Context, payload any) (string, error)
}

// Options carries the workflow collaborators.
type Options struct {
	Builder        approval.Builder
	Recorder       approval.Recorder
	Observer       approval.Observer
	SecondaryDelay time.Duration
	Logger         *slog.Logger
}

// Inbox configures the vendor payment inbox.
func Inbox(c Client, opts Options) *inbox.Definition {
	return &inbox.Definition{
		Module:  "vendor-payment",
		Title:   "Vendor Payments",
		Path:    "/purchase/vendor-payments",
		MOID:    MOID,
		RefKeys: approval.VendorPaymentRefKeys,
		Columns: []inbox.Column{
			{Label: "Request No", Keys: approval.VendorPaymentRefKeys},
			{Label: "Vendor", Keys: []string{"VendorName", "VendorCode"}},
			{Label: "PO No", Keys: []string{"PONo", "PoNo"}},
			{Label: "Amount", Keys: []string{"Amount", "PaymentAmount"}},
			{Label: "Requested On", Keys: []string{"RequestDate", "CreatedOn"}},
			{Label: "Status", Keys: []string{"Status"}},
		},
		Sections: []inbox.Section{
			{Title: "Payment", Fields: []inbox.Column{
				{Label: "Vendor Code", Keys: []string{"VendorCode", "VendorId"}},
				{Label: "Vendor", Keys: []string{"VendorName"}},
				{Label: "PO No", Keys: []string{"PONo", "PoNo"}},
				{Label: "Amount", Keys: []string{"Amount", "PaymentAmount"}},
				{Label: "TDS", Keys: []string{"TDSAmount", "TDS"}},
				{Label: "Net Amount", Keys: []string{"NetAmount"}},
				{Label: "Mode", Keys: []string{"PaymentMode"}},
				{Label: "Bank Account", Keys: []string{"BankAccount", "AccountNo"}},
			}},
		},
		ListSections: []inbox.ListSection{
			{Title: "Invoices", Key: "Invoices", Columns: []inbox.Column{
				{Label: "Invoice No", Keys: []string{"InvoiceNo", "BillNo"}},
				{Label: "Date", Keys: []string{"InvoiceDate", "BillDate"}},
				{Label: "Amount", Keys: []string{"InvoiceAmount", "Amount"}},
			}},
		},
		Schema:  diagnostics.VendorPaymentSchema,
		Pending: c.PendingVendorPayments,
		Detail:  c.VendorPaymentDetail,
		Workflow: &approval.Workflow{
			Module:         "vendor-payment",
			Build:          opts.Builder.BuildVendorPaymentPayload,
			Submit:         c.ApproveVendorPayment,
			Recorder:       opts.Recorder,
			Observer:       opts.Observer,
			SecondaryDelay: opts.SecondaryDelay,
			Logger:         opts.Logger,
		},
	}
}
