package apiclient

import (
	"context"
	"net/url"
)

// SelectAll is the backend sentinel for an unconstrained dropdown.
const SelectAll = "Select All"

// ItemCodeQuery filters the item code listing.
type ItemCodeQuery struct {
	MajorGroup string
	Category   string
}

// ItemCodes fetches item codes for a category and major group.
func (c *Client) ItemCodes(ctx context.Context, q ItemCodeQuery) ([]Record, error) {
	mgc := q.MajorGroup
	if mgc == "" {
		mgc = SelectAll
	}
	values := url.Values{}
	values.Set("mgc", mgc)
	values.Set("category", q.Category)
	return c.records(ctx, "/Purchase/GetItemCodes", values)
}

// ItemCodeDetail fetches one item code with its DCA mapping.
func (c *Client) ItemCodeDetail(ctx context.Context, itemCode string) ([]Record, error) {
	return c.records(ctx, "/Purchase/GetItemCodeDetails", url.Values{"ItemCode": {itemCode}})
}

// MajorGroups lists item major groups.
func (c *Client) MajorGroups(ctx context.Context) ([]Record, error) {
	return c.records(ctx, "/Purchase/GetMajorGroups", nil)
}

// ItemCategories lists item categories.
func (c *Client) ItemCategories(ctx context.Context) ([]Record, error) {
	return c.records(ctx, "/Purchase/GetItemCategories", nil)
}

// PendingVendorPayments lists vendor payments awaiting the role's action.
func (c *Client) PendingVendorPayments(ctx context.Context, roleID string) ([]Record, error) {
	return c.records(ctx, "/Purchase/GetPendingVendorPayments", url.Values{"RoleId": {roleID}})
}

// VendorPaymentDetail fetches a vendor payment with its invoice lines.
func (c *Client) VendorPaymentDetail(ctx context.Context, refNo string) (Record, error) {
	return c.record(ctx, "/Purchase/GetVendorPaymentDetails", url.Values{"RefNo": {refNo}})
}

// ApproveVendorPayment submits a vendor payment workflow transition.
func (c *Client) ApproveVendorPayment(ctx context.Context, payload any) (string, error) {
	return c.submit(ctx, "/Purchase/ApproveVendorPayment", payload)
}

func (c *Client) submit(ctx context.Context, path string, payload any) (string, error) {
	body, err := c.Post(ctx, path, payload)
	if err != nil {
		return "", err
	}
	return DecodeMessage(body), nil
}
