package apiclient

import (
	"context"
	"net/url"
	"strconv"
)

// AssetSaleQuery filters the asset sale report.
type AssetSaleQuery struct {
	FromDate string
	ToDate   string
	Category string
}

// AssetSales fetches asset sale transactions.
func (c *Client) AssetSales(ctx context.Context, q AssetSaleQuery) ([]Record, error) {
	values := url.Values{}
	values.Set("FromDate", q.FromDate)
	values.Set("ToDate", q.ToDate)
	values.Set("Category", q.Category)
	return c.records(ctx, "/Accounts/GetAssetSaleReport", values)
}

// AssetSaleDetails fetches the line items of one sale.
func (c *Client) AssetSaleDetails(ctx context.Context, saleNo string) ([]Record, error) {
	return c.records(ctx, "/Accounts/GetAssetSaleDetails", url.Values{"SaleNo": {saleNo}})
}

// LCBGQuery filters the letter of credit / bank guarantee status report.
type LCBGQuery struct {
	Year  string
	Month string
	Bank  string
	Type  string
}

// LCBGStatus fetches LC/BG instruments.
func (c *Client) LCBGStatus(ctx context.Context, q LCBGQuery) ([]Record, error) {
	values := url.Values{}
	values.Set("Year", q.Year)
	values.Set("Month", q.Month)
	values.Set("BankId", q.Bank)
	values.Set("Type", q.Type)
	return c.records(ctx, "/Accounts/GetLCBGStatusReport", values)
}

// LCBGDetails fetches bills of exchange settled against an instrument.
func (c *Client) LCBGDetails(ctx context.Context, refNo string) ([]Record, error) {
	return c.records(ctx, "/Accounts/GetLCBGBOEDetails", url.Values{"RefNo": {refNo}})
}

// LoanQuery filters the unsecured loan report.
type LoanQuery struct {
	AsOnDate string
	Lender   string
}

// UnsecuredLoans fetches outstanding unsecured loans.
func (c *Client) UnsecuredLoans(ctx context.Context, q LoanQuery) ([]Record, error) {
	values := url.Values{}
	values.Set("AsOnDate", q.AsOnDate)
	values.Set("Lender", q.Lender)
	return c.records(ctx, "/Accounts/GetUnsecuredLoanReport", values)
}

// LoanRepayments fetches the repayment schedule of a loan.
func (c *Client) LoanRepayments(ctx context.Context, loanNo string) ([]Record, error) {
	return c.records(ctx, "/Accounts/GetUnsecuredLoanRepayments", url.Values{"LoanNo": {loanNo}})
}

// Banks lists banks for filter dropdowns.
func (c *Client) Banks(ctx context.Context) ([]Record, error) {
	return c.records(ctx, "/Accounts/GetBanks", nil)
}

// AssetCategories lists asset categories for the asset sale filter.
func (c *Client) AssetCategories(ctx context.Context) ([]Record, error) {
	return c.records(ctx, "/Accounts/GetAssetCategories", nil)
}

// Lenders lists unsecured loan lenders.
func (c *Client) Lenders(ctx context.Context) ([]Record, error) {
	return c.records(ctx, "/Accounts/GetLenders", nil)
}

// StatusActions returns the workflow actions the role may take on a module,
// identified by its MOID.
func (c *Client) StatusActions(ctx context.Context, moid int, roleID string) ([]Record, error) {
	values := url.Values{}
	values.Set("MOID", strconv.Itoa(moid))
	values.Set("RoleId", roleID)
	return c.records(ctx, "/Accounts/GetStatusActions", values)
}

// Remarks returns the remarks history recorded for a reference.
func (c *Client) Remarks(ctx context.Context, moid int, refNo string) ([]Record, error) {
	values := url.Values{}
	values.Set("MOID", strconv.Itoa(moid))
	values.Set("RefNo", refNo)
	return c.records(ctx, "/Accounts/GetRemarks", values)
}

func (c *Client) records(ctx context.Context, path string, query url.Values) ([]Record, error) {
	payload, err := c.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return DecodeData[[]Record](payload)
}

func (c *Client) record(ctx context.Context, path string, query url.Values) (Record, error) {
	payload, err := c.Get(ctx, path, query)
	if err != nil {
		return Record{}, err
	}
	// Single-record endpoints sometimes wrap the object in a one-element array.
	if rows, err := DecodeData[[]Record](payload); err == nil {
		if len(rows) == 0 {
			return Record{}, nil
		}
		return rows[0], nil
	}
	return DecodeData[Record](payload)
}
