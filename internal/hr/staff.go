// Package hr serves the staff registration and appraisal verification
// inboxes.
package hr

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/approval"
	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
	"github.com/odyssey-erp/odyssey-admin/internal/inbox"
)

// Module ids of the HR workflows in the backend's status lookup.
const (
	StaffMOID     = 41
	AppraisalMOID = 43
)

// Client is the slice of the backend API the HR inboxes use.
type Client interface {
	PendingStaff(ctx context.Context, roleID string) ([]apiclient.Record, error)
	StaffDetails(ctx context.Context, empRefNo string) (apiclient.Record, error)
	ApproveStaff(ctx context.Context, payload any) (string, error)
	PendingAppraisals(ctx context.Context, roleID string) ([]apiclient.Record, error)
	AppraisalDetails(ctx context.Context, appraisalID string) (apiclient.Record, error)
	ApproveAppraisal(ctx context.Context, payload any) (string, error)
}

// AccountNotice tells a newly approved employee their login id.
type AccountNotice struct {
	EmpRefNo string
	Name     string
	MailID   string
	LoginID  string
}

// Notifier queues account notices.
type Notifier interface {
	NotifyAccountReady(ctx context.Context, n AccountNotice) error
}

// Options carries the collaborators shared by the HR inboxes.
type Options struct {
	Builder        approval.Builder
	Recorder       approval.Recorder
	Observer       approval.Observer
	Notifier       Notifier
	SecondaryDelay time.Duration
	Logger         *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// StaffInbox configures the staff registration inbox.
func StaffInbox(c Client, opts Options) *inbox.Definition {
	wf := &approval.Workflow{
		Module:              "staff",
		Build:               opts.Builder.BuildStaffPayload,
		Submit:              c.ApproveStaff,
		Recorder:            opts.Recorder,
		Observer:            opts.Observer,
		ExtraLabel:          "Login id",
		SecondaryDelay:      opts.SecondaryDelay,
		RequireConfirmation: true,
		Logger:              opts.logger(),
	}
	if opts.Notifier != nil {
		wf.OnSuccess = accountNotice(opts.Notifier, opts.logger())
	}
	return &inbox.Definition{
		Module:  "staff",
		Title:   "Staff Verification",
		Path:    "/hr/staff",
		MOID:    StaffMOID,
		RefKeys: []string{"EmpRefNo", "EmpRefno"},
		Columns: []inbox.Column{
			{Label: "Emp Ref No", Keys: []string{"EmpRefNo", "EmpRefno"}},
			{Label: "Name", Keys: []string{"EmpName", "FullName", "FirstName"}},
			{Label: "Department", Keys: []string{"Department", "DeptName"}},
			{Label: "Designation", Keys: []string{"Designation"}},
			{Label: "Joining Date", Keys: []string{"DOJ", "DateOfJoining"}},
			{Label: "Status", Keys: []string{"Status"}},
		},
		Sections: []inbox.Section{
			{Title: "Personal", Fields: []inbox.Column{
				{Label: "First Name", Keys: []string{"FirstName"}},
				{Label: "Middle Name", Keys: []string{"MiddleName"}},
				{Label: "Last Name", Keys: []string{"LastName"}},
				{Label: "Gender", Keys: []string{"Gender"}},
				{Label: "Date of Birth", Keys: []string{"DOB", "DateOfBirth"}},
				{Label: "Blood Group", Keys: []string{"BloodGroup"}},
				{Label: "Marital Status", Keys: []string{"MaritalStatus"}},
				{Label: "Father's Name", Keys: []string{"FatherName"}},
			}},
			{Title: "Employment", Fields: []inbox.Column{
				{Label: "Department", Keys: []string{"Department", "DeptName"}},
				{Label: "Designation", Keys: []string{"Designation"}},
				{Label: "Category", Keys: []string{"Category"}},
				{Label: "Date of Joining", Keys: []string{"DOJ", "DateOfJoining"}},
				{Label: "Total Experience", Keys: []string{"TotalExperience"}},
			}},
			{Title: "Contact & Identity", Fields: []inbox.Column{
				{Label: "Mobile", Keys: []string{"MobileNo", "Mobile", "PhoneNo"}},
				{Label: "Mail", Keys: []string{"WorkEmail", "MailId", "Email", "EmailAddress"}},
				{Label: "PAN", Keys: []string{"PANNo", "PanNo"}},
				{Label: "Aadhar", Keys: []string{"AadharNo"}},
				{Label: "Present Address", Keys: []string{"PresentAddress"}},
				{Label: "Permanent Address", Keys: []string{"PermanentAddress"}},
			}},
			{Title: "Bank", Fields: []inbox.Column{
				{Label: "Bank", Keys: []string{"BankName"}},
				{Label: "Account No", Keys: []string{"AccountNo", "BankAccountNo"}},
				{Label: "IFSC", Keys: []string{"IFSCCode"}},
			}},
		},
		ListSections: []inbox.ListSection{
			{Title: "Family", Key: "FamilyDetails", Columns: []inbox.Column{
				{Label: "Name", Keys: []string{"Name", "MemberName"}},
				{Label: "Relation", Keys: []string{"Relation", "Relationship"}},
				{Label: "Date of Birth", Keys: []string{"DOB", "DateOfBirth"}},
				{Label: "Occupation", Keys: []string{"Occupation"}},
			}},
			{Title: "Academics", Key: "AcademicDetails", Columns: []inbox.Column{
				{Label: "Qualification", Keys: []string{"Qualification"}},
				{Label: "Institute", Keys: []string{"Institute", "University"}},
				{Label: "Year", Keys: []string{"YearOfPassing", "PassingYear"}},
				{Label: "Percentage", Keys: []string{"Percentage", "Grade"}},
			}},
			{Title: "Experience", Key: "ExperienceDetails", Columns: []inbox.Column{
				{Label: "Company", Keys: []string{"Company", "CompanyName"}},
				{Label: "Designation", Keys: []string{"Designation"}},
				{Label: "From", Keys: []string{"FromDate"}},
				{Label: "To", Keys: []string{"ToDate"}},
			}},
		},
		Schema:   diagnostics.StaffSchema,
		Pending:  c.PendingStaff,
		Detail:   c.StaffDetails,
		Workflow: wf,
	}
}

// accountNotice queues the login id mail after a staff approval whose
// response carries one.
func accountNotice(n Notifier, logger *slog.Logger) approval.SuccessHook {
	return func(ctx context.Context, req approval.Request, payload any, extra string) {
		if req.Action != approval.ActionApprove || extra == "" {
			return
		}
		wire, ok := payload.(approval.StaffApprovalWire)
		if !ok {
			return
		}
		notice := AccountNotice{
			EmpRefNo: wire.EmpRefNo,
			Name:     strings.TrimSpace(strings.Join([]string{wire.FirstName, wire.LastName}, " ")),
			MailID:   wire.MailId,
			LoginID:  extra,
		}
		if err := n.NotifyAccountReady(ctx, notice); err != nil {
			logger.Warn("queue account notice", slog.String("emp_ref_no", wire.EmpRefNo), slog.Any("error", err))
		}
	}
}
