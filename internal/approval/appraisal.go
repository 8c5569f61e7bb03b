package approval

import (
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
)

// AppraisalRejectPayload is the minimal body for rejecting an appraisal.
type AppraisalRejectPayload struct {
	AppraisalId string `json:"AppraisalId"`
	EmpRefNo    string `json:"EmpRefNo"`
	Roleid      string `json:"Roleid"`
	Createdby   string `json:"Createdby"`
	Action      Action `json:"Action"`
	Note        string `json:"Note"`
}

// AppraisalWire is the verify/approve body for an appraisal's objectives.
type AppraisalWire struct {
	AppraisalId        string  `json:"AppraisalId"`
	EmpRefNo           string  `json:"EmpRefNo"`
	Roleid             string  `json:"Roleid"`
	Createdby          string  `json:"Createdby"`
	Action             Action  `json:"Action"`
	Note               string  `json:"Note"`
	AppraisalYear      string  `json:"AppraisalYear"`
	OverallRating      float64 `json:"OverallRating"`
	ObjectiveIds       string  `json:"ObjectiveIds"`
	ObjectiveWeights   string  `json:"ObjectiveWeights"`
	Ratings            string  `json:"Ratings"`
	ReviewerComments   string  `json:"ReviewerComments"`
	ObjectivesCount    int64   `json:"ObjectivesCount"`
	VerifiedObjectives int64   `json:"VerifiedObjectives"`
}

// AppraisalArrayFields lists the CSV-encoded wire fields.
var AppraisalArrayFields = []string{"ObjectiveIds", "ObjectiveWeights", "Ratings", "ReviewerComments"}

// BuildAppraisalPayload assembles the body for an appraisal transition. The
// selection reference is the appraisal id.
func (b Builder) BuildAppraisalPayload(action Action, sel Selection, detail *apiclient.Record, comment string, op Operator) any {
	id := strings.TrimSpace(sel.Ref)
	if id == "" {
		id = firstNonBlank(detail, "", "AppraisalId", "AppraisalID")
	}
	empRefNo := firstNonBlank(detail, "", "EmpRefNo")
	history := firstNonBlank(detail, sel.Remarks, "Remarks", "Note")
	note := AppendRemark(history, RemarkEntry(op.RoleName, op.UserName, comment))

	if action == ActionReject {
		return AppraisalRejectPayload{AppraisalId: id, EmpRefNo: empRefNo, Roleid: op.RoleID, Createdby: op.UserID, Action: action, Note: note}
	}

	w := AppraisalWire{
		AppraisalId:   id,
		EmpRefNo:      empRefNo,
		Roleid:        op.RoleID,
		Createdby:     op.UserID,
		Action:        action,
		Note:          note,
		AppraisalYear: coalesce(detail, "", "AppraisalYear", "Year"),
		OverallRating: coalesceFloat(detail, 0, "OverallRating"),
	}
	if detail != nil {
		objectives := detail.Records("Objectives")
		w.ObjectiveIds = FormatArrayForSP(column(objectives, "ObjectiveId", "ObjectiveID"))
		w.ObjectiveWeights = FormatArrayForSP(column(objectives, "Weightage", "Weight"))
		w.Ratings = FormatArrayForSP(column(objectives, "Rating", "SelfRating"))
		w.ReviewerComments = FormatArrayForSP(column(objectives, "ReviewerComment", "Comments"))
		w.ObjectivesCount = int64(len(objectives))
		for _, o := range objectives {
			if o.Bool("IsVerified", "Verified") {
				w.VerifiedObjectives++
			}
		}
	}
	return w
}
