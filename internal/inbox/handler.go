package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/approval"
	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

// Backend exposes the shared workflow lookups.
type Backend interface {
	StatusActions(ctx context.Context, moid int, roleID string) ([]apiclient.Record, error)
	Remarks(ctx context.Context, moid int, refNo string) ([]apiclient.Record, error)
}

// Handler serves one inbox.
type Handler struct {
	def       *Definition
	backend   Backend
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	now       func() time.Time
}

// NewHandler constructs an inbox handler.
func NewHandler(def *Definition, backend Backend, logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{def: def, backend: backend, logger: logger.With(slog.String("inbox", def.Module)), templates: templates, csrf: csrf, now: time.Now}
}

// Path is the mount point of the inbox.
func (h *Handler) Path() string { return h.def.Path }

// MountRoutes registers HTTP routes relative to Path.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/act", h.act)
	r.Post("/diagnose", h.diagnose)
	r.Post("/reset", h.reset)
}

// selection is everything loaded for the selected record.
type selection struct {
	Ref       string
	Detail    *apiclient.Record
	Remarks   string
	Actions   []approval.Action
	DetailErr error
	// ActionsErr is set when the status lookup failed, so Actions is unknown
	// rather than empty.
	ActionsErr error
}

// load fetches detail, remarks and allowed actions concurrently. A failed
// detail fetch aborts; a failed remarks lookup degrades to no history.
func (h *Handler) load(ctx context.Context, ref string, op shared.Identity) selection {
	sel := selection{Ref: ref}
	var (
		detail     apiclient.Record
		remarks    []apiclient.Record
		actions    []apiclient.Record
		actionsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = h.def.Detail(gctx, ref)
		return err
	})
	if h.backend != nil {
		g.Go(func() error {
			rows, err := h.backend.Remarks(gctx, h.def.MOID, ref)
			if err != nil {
				h.logger.Warn("load remarks", slog.String("ref", ref), slog.Any("error", err))
				return nil
			}
			remarks = rows
			return nil
		})
		g.Go(func() error {
			rows, err := h.backend.StatusActions(gctx, h.def.MOID, op.RoleID)
			if err != nil {
				h.logger.Warn("load status actions", slog.Any("error", err))
				actionsErr = err
				return nil
			}
			actions = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sel.DetailErr = err
		return sel
	}
	if detail.Len() > 0 {
		sel.Detail = &detail
	}
	sel.Remarks = RemarksHistory(remarks)
	sel.Actions = AllowedActions(actions)
	sel.ActionsErr = actionsErr
	return sel
}

type cellRow struct {
	Ref      string
	Cells    []string
	Selected bool
}

type fieldView struct {
	Label string
	Value string
}

type sectionView struct {
	Title  string
	Fields []fieldView
}

type listView struct {
	Title   string
	Columns []string
	Rows    [][]string
}

type pageData struct {
	Inbox    *Definition
	BasePath string
	Columns  []string
	Rows     []cellRow
	Selected string
	Detail   []sectionView
	Lists    []listView
	Remarks  []string
	Actions  []approval.Action
	State    approval.VerificationState
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	op := sess.Identity()
	st := approval.LoadState(sess, h.def.Module)
	var notices []shared.FlashMessage

	data := pageData{Inbox: h.def, BasePath: h.Path()}
	for _, c := range h.def.Columns {
		data.Columns = append(data.Columns, c.Label)
	}

	if op.RoleID == "" {
		notices = append(notices, shared.FlashMessage{Kind: shared.FlashWarning, Message: "Your role is not known. Sign in again to see pending records."})
	} else {
		rows, err := h.def.Pending(ctx, op.RoleID)
		if err != nil {
			h.logger.Warn("load pending records", slog.Any("error", err))
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashDanger, Message: "Failed to load " + h.def.Title + ": " + err.Error()})
		}
		if ref := strings.TrimSpace(r.URL.Query().Get("ref")); ref != "" {
			st = st.Select(ref)
			approval.SaveState(sess, h.def.Module, st)
		}
		for _, row := range rows {
			ref := h.def.RowRef(row)
			cr := cellRow{Ref: ref, Selected: ref != "" && ref == st.SelectedRef}
			for _, c := range h.def.Columns {
				cr.Cells = append(cr.Cells, c.value(row))
			}
			data.Rows = append(data.Rows, cr)
		}
		if len(rows) == 0 && err == nil {
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashInfo, Message: "Nothing is waiting for your action."})
		}
	}

	if st.SelectedRef != "" && op.RoleID != "" {
		sel := h.load(ctx, st.SelectedRef, op)
		if sel.DetailErr != nil {
			h.logger.Warn("load record detail", slog.String("ref", sel.Ref), slog.Any("error", sel.DetailErr))
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashDanger, Message: "Failed to load details: " + sel.DetailErr.Error()})
		}
		data.Selected = sel.Ref
		data.Actions = sel.Actions
		data.Remarks = approval.SplitRemarks(sel.Remarks)
		if sel.Detail != nil {
			data.Detail, data.Lists = h.detailView(*sel.Detail)
			if len(data.Remarks) == 0 {
				data.Remarks = approval.SplitRemarks(sel.Detail.String("Remarks", "Note"))
			}
		}
		switch {
		case sel.DetailErr != nil:
		case sel.ActionsErr != nil:
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashDanger, Message: actionsFailedMessage(sel.ActionsErr)})
		case len(sel.Actions) == 0:
			notices = append(notices, shared.FlashMessage{Kind: shared.FlashInfo, Message: "No actions are available to your role for this record."})
		}
	}
	data.State = st

	if err := h.templates.Page(w, r, h.csrf, "pages/inbox/inbox.html", h.def.Title, data, http.StatusOK, notices...); err != nil {
		h.logger.Error("render inbox", slog.Any("error", err))
	}
}

func (h *Handler) detailView(rec apiclient.Record) ([]sectionView, []listView) {
	var sections []sectionView
	for _, s := range h.def.Sections {
		sv := sectionView{Title: s.Title}
		for _, f := range s.Fields {
			sv.Fields = append(sv.Fields, fieldView{Label: f.Label, Value: f.value(rec)})
		}
		sections = append(sections, sv)
	}
	var lists []listView
	for _, l := range h.def.ListSections {
		lv := listView{Title: l.Title}
		for _, c := range l.Columns {
			lv.Columns = append(lv.Columns, c.Label)
		}
		for _, row := range rec.Records(l.Key) {
			cells := make([]string, 0, len(l.Columns))
			for _, c := range l.Columns {
				cells = append(cells, c.value(row))
			}
			lv.Rows = append(lv.Rows, cells)
		}
		lists = append(lists, lv)
	}
	return sections, lists
}

// form is the submitted verification form.
type form struct {
	Ref      string
	Action   approval.Action
	Comment  string
	Verified bool
}

func (h *Handler) readForm(r *http.Request) (form, error) {
	if err := r.ParseForm(); err != nil {
		return form{}, err
	}
	f := form{
		Ref:      strings.TrimSpace(r.PostFormValue("ref")),
		Comment:  r.PostFormValue("comment"),
		Verified: r.PostFormValue("verified") != "",
	}
	action, err := approval.ParseAction(r.PostFormValue("action"))
	if err != nil {
		return f, err
	}
	f.Action = action
	return f, nil
}

func (h *Handler) act(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	f, err := h.readForm(r)
	if err != nil {
		view.RedirectWithFlash(w, r, h.Path(), shared.FlashWarning, "Choose Verify, Approve or Reject.")
		return
	}
	st := approval.VerificationState{SelectedRef: f.Ref, Verified: f.Verified, Comment: f.Comment}
	approval.SaveState(sess, h.def.Module, st)

	op := sess.Identity()
	req := approval.Request{
		Action:   f.Action,
		Comment:  f.Comment,
		Verified: f.Verified,
		Operator: operator(op),
	}
	if f.Ref != "" {
		req.Selected = &approval.Selection{Ref: f.Ref}
	}
	// Input errors are reported before any backend call.
	if err := h.def.Workflow.CheckInput(req); err != nil {
		h.finish(w, r, sess, f.Ref, h.def.Workflow.Run(ctx, req))
		return
	}

	sel := h.load(ctx, f.Ref, op)
	if sel.DetailErr != nil {
		h.logger.Warn("load record detail", slog.String("ref", f.Ref), slog.Any("error", sel.DetailErr))
		view.RedirectWithFlash(w, r, h.selectedPath(f.Ref), shared.FlashDanger, "Failed to load details: "+sel.DetailErr.Error())
		return
	}
	if sel.ActionsErr != nil {
		view.RedirectWithFlash(w, r, h.selectedPath(f.Ref), shared.FlashDanger, actionsFailedMessage(sel.ActionsErr))
		return
	}
	if !slices.Contains(sel.Actions, f.Action) {
		view.RedirectWithFlash(w, r, h.selectedPath(f.Ref), shared.FlashDanger, fmt.Sprintf("%s is not available to your role for this record.", f.Action))
		return
	}
	req.Selected.Remarks = sel.Remarks
	req.Detail = sel.Detail
	h.finish(w, r, sess, f.Ref, h.def.Workflow.Run(ctx, req))
}

// finish turns a workflow outcome into flashes and the follow-up redirect.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, sess *shared.Session, ref string, out approval.Outcome) {
	for _, n := range out.Notices {
		sess.AddFlash(shared.FlashMessage{Kind: flashKind(n.Kind), Message: n.Message, DelayMs: n.Delay.Milliseconds()})
	}
	if out.ClearState {
		approval.ClearState(sess, h.def.Module)
	}
	if out.Refresh {
		http.Redirect(w, r, h.Path(), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, h.selectedPath(ref), http.StatusSeeOther)
}

func actionsFailedMessage(err error) string {
	return "Could not load the actions allowed for your role: " + err.Error()
}

// diagnose inspects the payload the form would submit without sending it.
func (h *Handler) diagnose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := shared.SessionFromContext(ctx)
	f, err := h.readForm(r)
	if err != nil {
		f.Action = approval.ActionVerify
	}
	if f.Ref == "" {
		view.RedirectWithFlash(w, r, h.Path(), shared.FlashWarning, "Please select a record first.")
		return
	}
	op := sess.Identity()
	sel := h.load(ctx, f.Ref, op)
	if sel.DetailErr != nil {
		view.RedirectWithFlash(w, r, h.selectedPath(f.Ref), shared.FlashDanger, "Failed to load details: "+sel.DetailErr.Error())
		return
	}
	payload := h.def.Workflow.Build(f.Action, approval.Selection{Ref: f.Ref, Remarks: sel.Remarks}, sel.Detail, f.Comment, operator(op))
	m, err := diagnostics.ToMap(payload)
	if err != nil {
		h.logger.Error("encode payload for diagnostics", slog.Any("error", err))
		view.RedirectWithFlash(w, r, h.selectedPath(f.Ref), shared.FlashDanger, "Failed to build the payload.")
		return
	}
	report := diagnostics.Inspect(m, h.def.Schema.ForAction(f.Action))
	h.logger.Info("payload diagnosed", slog.String("ref", f.Ref), slog.String("action", string(f.Action)), slog.Bool("clean", report.Clean()))
	diagnostics.WriteAttachment(w, report, h.now())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	approval.ClearState(shared.SessionFromContext(r.Context()), h.def.Module)
	view.RedirectWithFlash(w, r, h.Path(), shared.FlashInfo, "Selection cleared.")
}

func (h *Handler) selectedPath(ref string) string {
	if ref == "" {
		return h.Path()
	}
	return h.Path() + "?ref=" + url.QueryEscape(ref)
}

func operator(id shared.Identity) approval.Operator {
	return approval.Operator{UserID: id.UserID, UserName: id.UserName, RoleID: id.RoleID, RoleName: id.RoleName}
}

func flashKind(k approval.NoticeKind) string {
	if k == approval.NoticeError {
		return shared.FlashDanger
	}
	return string(k)
}
