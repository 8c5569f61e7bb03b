package approval

import (
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// VendorPaymentRefKeys are the backend's alternative names for a payment reference.
var VendorPaymentRefKeys = []string{"RequestNo", "Reqno", "ReferenceNo"}

// VendorRejectPayload is the minimal body for rejecting a vendor payment.
type VendorRejectPayload struct {
	RefNo     string `json:"RefNo"`
	Roleid    string `json:"Roleid"`
	Createdby string `json:"Createdby"`
	Action    Action `json:"Action"`
	Note      string `json:"Note"`
}

// VendorPaymentWire is the verify/approve body for a vendor payment.
type VendorPaymentWire struct {
	RefNo       string  `json:"RefNo"`
	Roleid      string  `json:"Roleid"`
	Createdby   string  `json:"Createdby"`
	Action      Action  `json:"Action"`
	Note        string  `json:"Note"`
	VendorCode  string  `json:"VendorCode"`
	VendorName  string  `json:"VendorName"`
	PONo        string  `json:"PONo"`
	Amount      float64 `json:"Amount"`
	TDSAmount   float64 `json:"TDSAmount"`
	NetAmount   float64 `json:"NetAmount"`
	PaymentMode string  `json:"PaymentMode"`
	BankAccount string  `json:"BankAccount"`
	InvoiceNos  string  `json:"InvoiceNos"`
	InvoiceAmts string  `json:"InvoiceAmts"`
}

// VendorPaymentArrayFields lists the CSV-encoded wire fields.
var VendorPaymentArrayFields = []string{"InvoiceNos", "InvoiceAmts"}

// BuildVendorPaymentPayload assembles the body for a vendor payment transition.
func (b Builder) BuildVendorPaymentPayload(action Action, sel Selection, detail *apiclient.Record, comment string, op Operator) any {
	ref := strings.TrimSpace(sel.Ref)
	if ref == "" {
		ref = firstNonBlank(detail, "", VendorPaymentRefKeys...)
	}
	history := firstNonBlank(detail, sel.Remarks, "Remarks", "Note")
	note := AppendRemark(history, RemarkEntry(op.RoleName, op.UserName, comment))

	if action == ActionReject {
		return VendorRejectPayload{RefNo: ref, Roleid: op.RoleID, Createdby: op.UserID, Action: action, Note: note}
	}

	amount := coalesceFloat(detail, 0, "Amount", "PaymentAmount")
	tds := coalesceFloat(detail, 0, "TDSAmount", "TDS")
	w := VendorPaymentWire{
		RefNo:       ref,
		Roleid:      op.RoleID,
		Createdby:   op.UserID,
		Action:      action,
		Note:        note,
		VendorCode:  coalesce(detail, "", "VendorCode", "VendorId"),
		VendorName:  coalesce(detail, "", "VendorName"),
		PONo:        coalesce(detail, "", "PONo", "PoNo"),
		Amount:      amount,
		TDSAmount:   tds,
		NetAmount:   coalesceFloat(detail, amount-tds, "NetAmount"),
		PaymentMode: coalesce(detail, "NEFT", "PaymentMode"),
		BankAccount: coalesce(detail, "", "BankAccount", "AccountNo"),
	}
	if detail != nil {
		invoices := detail.Records("Invoices")
		w.InvoiceNos = FormatArrayForSP(column(invoices, "InvoiceNo", "BillNo"))
		w.InvoiceAmts = FormatArrayForSP(column(invoices, "InvoiceAmount", "Amount"))
	}
	return w
}
