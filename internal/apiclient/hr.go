package apiclient

import (
	"context"
	"net/url"
)

// PendingStaff lists staff registrations awaiting the role's action.
func (c *Client) PendingStaff(ctx context.Context, roleID string) ([]Record, error) {
	return c.records(ctx, "/HR/GetPendingStaffRegistrations", url.Values{"RoleId": {roleID}})
}

// StaffDetails fetches the full registration of one employee, including the
// FamilyDetails, AcademicDetails and ExperienceDetails arrays.
func (c *Client) StaffDetails(ctx context.Context, empRefNo string) (Record, error) {
	return c.record(ctx, "/HR/GetStaffDetails", url.Values{"EmpRefNo": {empRefNo}})
}

// ApproveStaff submits a staff registration workflow transition.
func (c *Client) ApproveStaff(ctx context.Context, payload any) (string, error) {
	return c.submit(ctx, "/HR/ApproveStaffRegistration", payload)
}

// PendingAppraisals lists appraisals whose objectives await verification.
func (c *Client) PendingAppraisals(ctx context.Context, roleID string) ([]Record, error) {
	return c.records(ctx, "/HR/GetPendingAppraisals", url.Values{"RoleId": {roleID}})
}

// AppraisalDetails fetches an appraisal with its Objectives array.
func (c *Client) AppraisalDetails(ctx context.Context, appraisalID string) (Record, error) {
	return c.record(ctx, "/HR/GetAppraisalDetails", url.Values{"AppraisalId": {appraisalID}})
}

// ApproveAppraisal submits an appraisal workflow transition.
func (c *Client) ApproveAppraisal(ctx context.Context, payload any) (string, error) {
	return c.submit(ctx, "/HR/ApproveAppraisal", payload)
}

// PaySlip fetches the pay slip of an employee for a month.
func (c *Client) PaySlip(ctx context.Context, empRefNo, month, year string) (Record, error) {
	values := url.Values{}
	values.Set("EmpRefNo", empRefNo)
	values.Set("Month", month)
	values.Set("Year", year)
	return c.record(ctx, "/Payroll/GetPaySlip", values)
}
