package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Validation failures detected before any backend call.
var (
	ErrNoSelection      = fmt.Errorf("%w: no record selected", apiclient.ErrValidation)
	ErrMissingReference = fmt.Errorf("%w: selected record has no reference", apiclient.ErrValidation)
	ErrCommentRequired  = fmt.Errorf("%w: comment is required", apiclient.ErrValidation)
	ErrDetailNotLoaded  = fmt.Errorf("%w: record details not loaded", apiclient.ErrValidation)
	ErrNotConfirmed     = fmt.Errorf("%w: details not confirmed", apiclient.ErrValidation)
)

var validationMessages = map[error]string{
	ErrNoSelection:      "Please select a record first.",
	ErrMissingReference: "The selected record has no reference number.",
	ErrCommentRequired:  "Please enter a comment before submitting.",
	ErrDetailNotLoaded:  "Record details are still loading. Please try again in a moment.",
	ErrNotConfirmed:     "Please confirm that you have verified the details.",
}

// DefaultSecondaryDelay postpones the informational notice after an approval.
const DefaultSecondaryDelay = 1500 * time.Millisecond

// BuildFunc produces the request body for one transition.
type BuildFunc func(action Action, sel Selection, detail *apiclient.Record, comment string, op Operator) any

// Submitter sends a payload to the approval endpoint and returns its message.
type Submitter func(ctx context.Context, payload any) (string, error)

// Recorder appends completed runs to the audit trail.
type Recorder interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// Observer counts workflow outcomes.
type Observer interface {
	ApprovalOutcome(module, action, result string)
}

// SuccessHook runs after a successful submission. extra is the part of the
// response after the '$' separator, if any.
type SuccessHook func(ctx context.Context, req Request, payload any, extra string)

// Request is one operator action.
type Request struct {
	Action   Action
	Selected *Selection
	Detail   *apiclient.Record
	Comment  string
	Verified bool
	Operator Operator
}

// Outcome reports how a run ended and what the page should do next.
type Outcome struct {
	Phase          Phase
	Notices        []Notice
	Payload        any
	Refresh        bool
	ClearState     bool
	Classification apiclient.Classification
	Err            error
}

// Workflow drives a single approval action through
// validating → building → submitting → success|failure.
type Workflow struct {
	Module              string
	Build               BuildFunc
	Submit              Submitter
	Recorder            Recorder
	Observer            Observer
	OnSuccess           SuccessHook
	ExtraLabel          string
	SecondaryDelay      time.Duration
	RequireConfirmation bool
	Logger              *slog.Logger
}

// CheckInput checks what the operator typed: a selected record with a
// reference and a non-blank comment. It needs no backend data.
func (w *Workflow) CheckInput(req Request) error {
	if req.Selected == nil {
		return ErrNoSelection
	}
	if strings.TrimSpace(req.Selected.Ref) == "" {
		return ErrMissingReference
	}
	if strings.TrimSpace(req.Comment) == "" {
		return ErrCommentRequired
	}
	return nil
}

// Validate checks the preconditions of req without side effects.
func (w *Workflow) Validate(req Request) error {
	if err := w.CheckInput(req); err != nil {
		return err
	}
	if req.Action.RequiresDetail() {
		if req.Detail == nil {
			return ErrDetailNotLoaded
		}
		if w.RequireConfirmation && !req.Verified {
			return ErrNotConfirmed
		}
	}
	return nil
}

// Run executes one action. It never retries.
func (w *Workflow) Run(ctx context.Context, req Request) Outcome {
	logger := w.logger().With(slog.String("module", w.Module), slog.String("action", string(req.Action)))

	if err := w.Validate(req); err != nil {
		logger.Info("approval rejected before submit", slog.Any("error", err))
		w.observe(req.Action, "invalid")
		return Outcome{
			Phase:          PhaseValidating,
			Notices:        []Notice{{Kind: NoticeError, Message: ValidationMessage(err)}},
			Classification: apiclient.Classify(err),
			Err:            err,
		}
	}
	if w.Build == nil || w.Submit == nil {
		err := errors.New("approval: workflow not configured")
		return Outcome{Phase: PhaseBuilding, Notices: []Notice{{Kind: NoticeError, Message: err.Error()}}, Err: err}
	}

	payload := w.Build(req.Action, *req.Selected, req.Detail, req.Comment, req.Operator)

	logger.Info("submitting approval", slog.String("ref", req.Selected.Ref))
	message, err := w.Submit(ctx, payload)
	if err != nil {
		class := apiclient.Classify(err)
		logger.Warn("approval submit failed", slog.String("ref", req.Selected.Ref), slog.String("kind", string(class.Kind)), slog.Any("error", err))
		w.record(ctx, req, "failure", class.Raw)
		w.observe(req.Action, "failure")
		return Outcome{
			Phase:          PhaseFailure,
			Notices:        []Notice{{Kind: NoticeError, Message: FriendlyMessage(class)}},
			Payload:        payload,
			Classification: class,
			Err:            err,
		}
	}

	status, extra, compound := ParseResponse(message)
	notices := make([]Notice, 0, 2)
	if compound {
		notices = append(notices, Notice{Kind: NoticeSuccess, Message: status})
		if req.Action == ActionApprove && extra != "" {
			notices = append(notices, Notice{Kind: NoticeInfo, Message: w.extraMessage(extra), Delay: w.secondaryDelay()})
		}
	} else {
		notices = append(notices, Notice{Kind: NoticeSuccess, Message: fmt.Sprintf("Record %s successfully.", req.Action.pastTense())})
	}

	w.record(ctx, req, "success", message)
	w.observe(req.Action, "success")
	if w.OnSuccess != nil {
		w.OnSuccess(ctx, req, payload, extra)
	}
	return Outcome{
		Phase:      PhaseSuccess,
		Notices:    notices,
		Payload:    payload,
		Refresh:    true,
		ClearState: true,
	}
}

// ParseResponse splits a "<status>$<extra>" response. compound is false when
// the response carries no '$'.
func ParseResponse(message string) (status, extra string, compound bool) {
	idx := strings.IndexByte(message, '$')
	if idx < 0 {
		return strings.TrimSpace(message), "", false
	}
	return strings.TrimSpace(message[:idx]), strings.TrimSpace(message[idx+1:]), true
}

// ValidationMessage returns the operator-facing text for a validation error.
func ValidationMessage(err error) string {
	for sentinel, msg := range validationMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// FriendlyMessage maps a backend error classification to operator text.
func FriendlyMessage(c apiclient.Classification) string {
	switch c.Kind {
	case apiclient.KindConstraintViolation:
		if c.Column != "" {
			return fmt.Sprintf("Required field %s is missing. Please complete the record before submitting.", c.Column)
		}
		return "A required field is missing. Please complete the record before submitting."
	case apiclient.KindDuplicateKey:
		if c.Field != "" {
			return fmt.Sprintf("A record with this %s already exists.", c.Field)
		}
		return "This record already exists."
	case apiclient.KindValidation:
		return c.Raw
	}
	if c.Raw == "" {
		return "The request could not be completed."
	}
	return c.Raw
}

func (w *Workflow) record(ctx context.Context, req Request, result, detail string) {
	if w.Recorder == nil {
		return
	}
	entry := shared.ApprovalLog{
		Module: w.Module,
		Ref:    req.Selected.Ref,
		Actor:  req.Operator.UserID,
		Role:   req.Operator.RoleID,
		Action: string(req.Action),
		Result: result,
		Note:   strings.TrimSpace(req.Comment),
		Detail: detail,
	}
	if err := w.Recorder.Record(ctx, entry); err != nil {
		w.logger().Warn("record approval audit", slog.Any("error", err))
	}
}

func (w *Workflow) observe(action Action, result string) {
	if w.Observer != nil {
		w.Observer.ApprovalOutcome(w.Module, string(action), result)
	}
}

func (w *Workflow) extraMessage(extra string) string {
	if w.ExtraLabel == "" {
		return extra
	}
	return w.ExtraLabel + ": " + extra
}

func (w *Workflow) secondaryDelay() time.Duration {
	if w.SecondaryDelay > 0 {
		return w.SecondaryDelay
	}
	return DefaultSecondaryDelay
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
