// Package approval builds workflow transition payloads for the backend's
// approval endpoints and drives one operator action from validation to the
// final notice.
package approval

import (
	"fmt"
	"strings"
	"time"
)

// Action enumerates workflow transitions an operator can request.
type Action string

const (
	// ActionVerify moves a record to the verified state.
	ActionVerify Action = "Verify"
	// ActionApprove finalises a verified record.
	ActionApprove Action = "Approve"
	// ActionReject sends a record back with a note.
	ActionReject Action = "Reject"
)

// ParseAction resolves a form value to an Action.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "verify":
		return ActionVerify, nil
	case "approve":
		return ActionApprove, nil
	case "reject":
		return ActionReject, nil
	}
	return "", fmt.Errorf("approval: unknown action %q", raw)
}

// RequiresDetail reports whether the action re-submits the full record.
func (a Action) RequiresDetail() bool {
	return a == ActionVerify || a == ActionApprove
}

func (a Action) pastTense() string {
	switch a {
	case ActionVerify:
		return "verified"
	case ActionApprove:
		return "approved"
	case ActionReject:
		return "rejected"
	}
	return "processed"
}

// Operator identifies who performs the action.
type Operator struct {
	UserID   string
	UserName string
	RoleID   string
	RoleName string
}

// Selection references the inbox record the operator picked.
type Selection struct {
	Ref     string
	Label   string
	Remarks string
}

// Phase is a step of a single workflow run.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseBuilding   Phase = "building"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailure    Phase = "failure"
)

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeWarning NoticeKind = "warning"
	NoticeError   NoticeKind = "error"
)

// Notice is a toast-style message shown to the operator. Delay postpones its
// display after the page loads.
type Notice struct {
	Kind    NoticeKind
	Message string
	Delay   time.Duration
}
