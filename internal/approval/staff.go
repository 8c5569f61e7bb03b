package approval

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// DefaultEmailDomain is used for generated fallback mail ids.
const DefaultEmailDomain = "company.com"

// Builder assembles approval payloads. The zero value is usable.
type Builder struct {
	EmailDomain string
	Logger      *slog.Logger
}

// RejectPayload is the minimal body for rejecting a staff registration.
type RejectPayload struct {
	EmpRefNo  string `json:"EmpRefNo"`
	Roleid    string `json:"Roleid"`
	Createdby string `json:"Createdby"`
	Action    Action `json:"Action"`
	Note      string `json:"Note"`
}

// FamilyMember is one dependant of the employee.
type FamilyMember struct {
	Name       string
	Relation   string
	DOB        string
	Occupation string
}

// AcademicRecord is one qualification of the employee.
type AcademicRecord struct {
	Qualification string
	Institute     string
	YearOfPassing string
	Percentage    string
}

// ExperienceRecord is one previous employment.
type ExperienceRecord struct {
	Company     string
	Designation string
	FromDate    string
	ToDate      string
}

// StaffApproval is the verify/approve transition for a staff registration.
type StaffApproval struct {
	EmpRefNo  string
	RoleID    string
	CreatedBy string
	Action    Action
	Note      string

	FirstName        string
	MiddleName       string
	LastName         string
	Gender           string
	DOB              string
	DOJ              string
	MobileNo         string
	MailID           string
	Department       string
	Designation      string
	Category         string
	BloodGroup       string
	MaritalStatus    string
	FatherName       string
	PANNo            string
	AadharNo         string
	BankName         string
	AccountNo        string
	IFSCCode         string
	PresentAddress   string
	PermanentAddress string
	NoOfDependents   int64
	TotalExperience  float64

	Family     []FamilyMember
	Academics  []AcademicRecord
	Experience []ExperienceRecord
}

// StaffApprovalWire is the backend's parameter contract for StaffApproval.
type StaffApprovalWire struct {
	EmpRefNo         string  `json:"EmpRefNo"`
	Roleid           string  `json:"Roleid"`
	Createdby        string  `json:"Createdby"`
	Action           Action  `json:"Action"`
	Note             string  `json:"Note"`
	FirstName        string  `json:"FirstName"`
	MiddleName       string  `json:"MiddleName"`
	LastName         string  `json:"LastName"`
	Gender           string  `json:"Gender"`
	DOB              string  `json:"DOB"`
	DOJ              string  `json:"DOJ"`
	MobileNo         string  `json:"MobileNo"`
	MailId           string  `json:"MailId"`
	Department       string  `json:"Department"`
	Designation      string  `json:"Designation"`
	Category         string  `json:"Category"`
	BloodGroup       string  `json:"BloodGroup"`
	MaritalStatus    string  `json:"MaritalStatus"`
	FatherName       string  `json:"FatherName"`
	PANNo            string  `json:"PANNo"`
	AadharNo         string  `json:"AadharNo"`
	BankName         string  `json:"BankName"`
	AccountNo        string  `json:"AccountNo"`
	IFSCCode         string  `json:"IFSCCode"`
	PresentAddress   string  `json:"PresentAddress"`
	PermanentAddress string  `json:"PermanentAddress"`
	NoOfDependents   int64   `json:"NoOfDependents"`
	TotalExperience  float64 `json:"TotalExperience"`

	FamilyNames       string `json:"FamilyNames"`
	FamilyRelations   string `json:"FamilyRelations"`
	FamilyDOBs        string `json:"FamilyDOBs"`
	FamilyOccupations string `json:"FamilyOccupations"`

	Qualifications string `json:"Qualifications"`
	Institutes     string `json:"Institutes"`
	PassingYears   string `json:"PassingYears"`
	Percentages    string `json:"Percentages"`

	PrevCompanies    string `json:"PrevCompanies"`
	PrevDesignations string `json:"PrevDesignations"`
	ExpFromDates     string `json:"ExpFromDates"`
	ExpToDates       string `json:"ExpToDates"`
}

// StaffArrayFields lists the wire fields that carry CSV-encoded lists.
var StaffArrayFields = []string{
	"FamilyNames", "FamilyRelations", "FamilyDOBs", "FamilyOccupations",
	"Qualifications", "Institutes", "PassingYears", "Percentages",
	"PrevCompanies", "PrevDesignations", "ExpFromDates", "ExpToDates",
}

// EncodeStaffApproval flattens list-valued sub-records into the comma-joined
// strings the stored procedure expects.
func EncodeStaffApproval(a StaffApproval) StaffApprovalWire {
	w := StaffApprovalWire{
		EmpRefNo:         a.EmpRefNo,
		Roleid:           a.RoleID,
		Createdby:        a.CreatedBy,
		Action:           a.Action,
		Note:             a.Note,
		FirstName:        a.FirstName,
		MiddleName:       a.MiddleName,
		LastName:         a.LastName,
		Gender:           a.Gender,
		DOB:              a.DOB,
		DOJ:              a.DOJ,
		MobileNo:         a.MobileNo,
		MailId:           a.MailID,
		Department:       a.Department,
		Designation:      a.Designation,
		Category:         a.Category,
		BloodGroup:       a.BloodGroup,
		MaritalStatus:    a.MaritalStatus,
		FatherName:       a.FatherName,
		PANNo:            a.PANNo,
		AadharNo:         a.AadharNo,
		BankName:         a.BankName,
		AccountNo:        a.AccountNo,
		IFSCCode:         a.IFSCCode,
		PresentAddress:   a.PresentAddress,
		PermanentAddress: a.PermanentAddress,
		NoOfDependents:   a.NoOfDependents,
		TotalExperience:  a.TotalExperience,
	}

	names := make([]string, 0, len(a.Family))
	relations := make([]string, 0, len(a.Family))
	dobs := make([]string, 0, len(a.Family))
	occupations := make([]string, 0, len(a.Family))
	for _, m := range a.Family {
		names = append(names, m.Name)
		relations = append(relations, m.Relation)
		dobs = append(dobs, m.DOB)
		occupations = append(occupations, m.Occupation)
	}
	w.FamilyNames = FormatArrayForSP(names)
	w.FamilyRelations = FormatArrayForSP(relations)
	w.FamilyDOBs = FormatArrayForSP(dobs)
	w.FamilyOccupations = FormatArrayForSP(occupations)

	quals := make([]string, 0, len(a.Academics))
	institutes := make([]string, 0, len(a.Academics))
	years := make([]string, 0, len(a.Academics))
	percentages := make([]string, 0, len(a.Academics))
	for _, r := range a.Academics {
		quals = append(quals, r.Qualification)
		institutes = append(institutes, r.Institute)
		years = append(years, r.YearOfPassing)
		percentages = append(percentages, r.Percentage)
	}
	w.Qualifications = FormatArrayForSP(quals)
	w.Institutes = FormatArrayForSP(institutes)
	w.PassingYears = FormatArrayForSP(years)
	w.Percentages = FormatArrayForSP(percentages)

	companies := make([]string, 0, len(a.Experience))
	designations := make([]string, 0, len(a.Experience))
	from := make([]string, 0, len(a.Experience))
	to := make([]string, 0, len(a.Experience))
	for _, e := range a.Experience {
		companies = append(companies, e.Company)
		designations = append(designations, e.Designation)
		from = append(from, e.FromDate)
		to = append(to, e.ToDate)
	}
	w.PrevCompanies = FormatArrayForSP(companies)
	w.PrevDesignations = FormatArrayForSP(designations)
	w.ExpFromDates = FormatArrayForSP(from)
	w.ExpToDates = FormatArrayForSP(to)
	return w
}

// ResolveMailID picks the employee mail id in priority order WorkEmail, MailId,
// Email, EmailAddress, falling back to "<first>.<last>.<EmpRefNo>@<domain>".
func (b Builder) ResolveMailID(rec *apiclient.Record, empRefNo string) string {
	if rec != nil {
		if v := strings.TrimSpace(rec.String("WorkEmail", "MailId", "Email", "EmailAddress")); v != "" {
			return v
		}
	}
	first := strings.ToLower(strings.TrimSpace(coalesce(rec, "", "FirstName")))
	last := strings.ToLower(strings.TrimSpace(coalesce(rec, "", "LastName")))
	return fmt.Sprintf("%s.%s.%s@%s", first, last, empRefNo, b.emailDomain())
}

// BuildStaffPayload assembles the body for a staff registration transition.
// Reject yields a RejectPayload; Verify and Approve yield a StaffApprovalWire.
func (b Builder) BuildStaffPayload(action Action, staff Selection, staffData *apiclient.Record, comment string, op Operator) any {
	empRefNo := strings.TrimSpace(staff.Ref)
	if empRefNo == "" {
		empRefNo = firstNonBlank(staffData, "", "EmpRefNo", "EmpRefno")
	}
	history := firstNonBlank(staffData, staff.Remarks, "Remarks", "Note")
	note := AppendRemark(history, RemarkEntry(op.RoleName, op.UserName, comment))

	if action == ActionReject {
		return RejectPayload{
			EmpRefNo:  empRefNo,
			Roleid:    op.RoleID,
			Createdby: op.UserID,
			Action:    action,
			Note:      note,
		}
	}

	b.logMissing(staffData, empRefNo)
	payload := StaffApproval{
		EmpRefNo:         empRefNo,
		RoleID:           op.RoleID,
		CreatedBy:        op.UserID,
		Action:           action,
		Note:             note,
		FirstName:        coalesce(staffData, "", "FirstName"),
		MiddleName:       coalesce(staffData, "", "MiddleName"),
		LastName:         coalesce(staffData, "", "LastName"),
		Gender:           coalesce(staffData, "Male", "Gender"),
		DOB:              coalesce(staffData, "", "DOB", "DateOfBirth"),
		DOJ:              coalesce(staffData, "", "DOJ", "DateOfJoining"),
		MobileNo:         coalesce(staffData, "", "MobileNo", "Mobile", "PhoneNo"),
		MailID:           b.ResolveMailID(staffData, empRefNo),
		Department:       coalesce(staffData, "", "Department", "DeptName"),
		Designation:      coalesce(staffData, "", "Designation"),
		Category:         coalesce(staffData, "", "Category"),
		BloodGroup:       coalesce(staffData, "", "BloodGroup"),
		MaritalStatus:    coalesce(staffData, "Single", "MaritalStatus"),
		FatherName:       coalesce(staffData, "", "FatherName"),
		PANNo:            coalesce(staffData, "", "PANNo", "PanNo"),
		AadharNo:         coalesce(staffData, "", "AadharNo"),
		BankName:         coalesce(staffData, "", "BankName"),
		AccountNo:        coalesce(staffData, "", "AccountNo", "BankAccountNo"),
		IFSCCode:         coalesce(staffData, "", "IFSCCode"),
		PresentAddress:   coalesce(staffData, "", "PresentAddress"),
		PermanentAddress: coalesce(staffData, "", "PermanentAddress"),
		NoOfDependents:   coalesceInt(staffData, 0, "NoOfDependents"),
		TotalExperience:  coalesceFloat(staffData, 0, "TotalExperience"),
	}
	if staffData != nil {
		for _, row := range staffData.Records("FamilyDetails") {
			payload.Family = append(payload.Family, FamilyMember{
				Name:       row.String("Name", "MemberName"),
				Relation:   row.String("Relation", "Relationship"),
				DOB:        row.String("DOB", "DateOfBirth"),
				Occupation: row.String("Occupation"),
			})
		}
		for _, row := range staffData.Records("AcademicDetails") {
			payload.Academics = append(payload.Academics, AcademicRecord{
				Qualification: row.String("Qualification"),
				Institute:     row.String("Institute", "University"),
				YearOfPassing: row.String("YearOfPassing", "PassingYear"),
				Percentage:    row.String("Percentage", "Grade"),
			})
		}
		for _, row := range staffData.Records("ExperienceDetails") {
			payload.Experience = append(payload.Experience, ExperienceRecord{
				Company:     row.String("Company", "CompanyName"),
				Designation: row.String("Designation"),
				FromDate:    row.String("FromDate"),
				ToDate:      row.String("ToDate"),
			})
		}
	}
	return EncodeStaffApproval(payload)
}

var staffMappedFields = []string{"FirstName", "LastName", "Gender", "DOB", "DOJ", "MobileNo", "Department", "Designation"}

func (b Builder) logMissing(rec *apiclient.Record, ref string) {
	if b.Logger == nil {
		return
	}
	if rec == nil {
		b.Logger.Debug("staff detail missing, using defaults", slog.String("emp_ref_no", ref))
		return
	}
	var missing []string
	for _, f := range staffMappedFields {
		if rec.String(f) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		b.Logger.Debug("staff payload fields defaulted", slog.String("emp_ref_no", ref), slog.Any("fields", missing))
	}
}

func (b Builder) emailDomain() string {
	if d := strings.TrimSpace(b.EmailDomain); d != "" {
		return d
	}
	return DefaultEmailDomain
}
