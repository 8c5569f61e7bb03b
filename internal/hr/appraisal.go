package hr

import (
	"github.com/odyssey-erp/odyssey-admin/internal/approval"
	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
	"github.com/odyssey-erp/odyssey-admin/internal/inbox"
)

// AppraisalInbox configures the appraisal objectives inbox.
func AppraisalInbox(c Client, opts Options) *inbox.Definition {
	return &inbox.Definition{
		Module:  "appraisal",
		Title:   "Appraisal Verification",
		Path:    "/hr/appraisals",
		MOID:    AppraisalMOID,
		RefKeys: []string{"AppraisalId", "AppraisalID"},
		Columns: []inbox.Column{
			{Label: "Appraisal", Keys: []string{"AppraisalId", "AppraisalID"}},
			{Label: "Emp Ref No", Keys: []string{"EmpRefNo"}},
			{Label: "Employee", Keys: []string{"EmpName", "EmployeeName"}},
			{Label: "Year", Keys: []string{"AppraisalYear", "Year"}},
			{Label: "Overall Rating", Keys: []string{"OverallRating"}},
			{Label: "Status", Keys: []string{"Status"}},
		},
		Sections: []inbox.Section{
			{Title: "Appraisal", Fields: []inbox.Column{
				{Label: "Employee", Keys: []string{"EmpName", "EmployeeName"}},
				{Label: "Designation", Keys: []string{"Designation"}},
				{Label: "Reviewer", Keys: []string{"ReviewerName", "Reviewer"}},
				{Label: "Year", Keys: []string{"AppraisalYear", "Year"}},
				{Label: "Overall Rating", Keys: []string{"OverallRating"}},
			}},
		},
		ListSections: []inbox.ListSection{
			{Title: "Objectives", Key: "Objectives", Columns: []inbox.Column{
				{Label: "Objective", Keys: []string{"Objective", "ObjectiveName", "Description"}},
				{Label: "Weightage", Keys: []string{"Weightage", "Weight"}},
				{Label: "Rating", Keys: []string{"Rating", "SelfRating"}},
				{Label: "Reviewer Comment", Keys: []string{"ReviewerComment", "Comments"}},
				{Label: "Verified", Keys: []string{"IsVerified", "Verified"}},
			}},
		},
		Schema:  diagnostics.AppraisalSchema,
		Pending: c.PendingAppraisals,
		Detail:  c.AppraisalDetails,
		Workflow: &approval.Workflow{
			Module:         "appraisal",
			Build:          opts.Builder.BuildAppraisalPayload,
			Submit:         c.ApproveAppraisal,
			Recorder:       opts.Recorder,
			Observer:       opts.Observer,
			SecondaryDelay: opts.SecondaryDelay,
			Logger:         opts.logger(),
		},
	}
}
