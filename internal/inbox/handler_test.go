package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-admin/internal/apiclient"
	"github.com/odyssey-erp/odyssey-admin/internal/approval"
	"github.com/odyssey-erp/odyssey-admin/internal/diagnostics"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/view"
)

type fakeBackend struct {
	actions    []string
	actionsErr error
	remarks    string
	moids      []int
	mu         sync.Mutex
}

func (f *fakeBackend) StatusActions(_ context.Context, moid int, roleID string) ([]apiclient.Record, error) {
	f.mu.Lock()
	f.moids = append(f.moids, moid)
	f.mu.Unlock()
	if f.actionsErr != nil {
		return nil, f.actionsErr
	}
	var out []apiclient.Record
	for _, a := range f.actions {
		out = append(out, apiclient.NewRecord("Action", a, "RoleId", roleID))
	}
	return out, nil
}

func (f *fakeBackend) Remarks(context.Context, int, string) ([]apiclient.Record, error) {
	if f.remarks == "" {
		return nil, nil
	}
	return []apiclient.Record{apiclient.NewRecord("Remarks", f.remarks)}, nil
}

type harness struct {
	handler  *Handler
	sess     *shared.Session
	backend  *fakeBackend
	payloads []any
	response string
	detail   error
	details  int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	templates, err := view.NewEngine()
	require.NoError(t, err)

	hr := &harness{backend: &fakeBackend{actions: []string{"Verify", "Approve", "Reject"}, remarks: "HR : asmith : documents ok"}}
	def := &Definition{
		Module:  "staff",
		Title:   "Staff Verification",
		Path:    "/hr/staff",
		MOID:    41,
		RefKeys: []string{"EmpRefNo"},
		Columns: []Column{{Label: "Emp Ref", Keys: []string{"EmpRefNo"}}, {Label: "Name", Keys: []string{"FullName", "FirstName"}}},
		Sections: []Section{{Title: "Personal", Fields: []Column{{Label: "First Name", Keys: []string{"FirstName"}}}}},
		ListSections: []ListSection{{Title: "Family", Key: "FamilyDetails", Columns: []Column{{Label: "Name", Keys: []string{"Name"}}}}},
		Schema:  diagnostics.StaffSchema,
		Pending: func(context.Context, string) ([]apiclient.Record, error) {
			return []apiclient.Record{apiclient.NewRecord("EmpRefNo", "E100", "FirstName", "John")}, nil
		},
		Detail: func(_ context.Context, ref string) (apiclient.Record, error) {
			hr.details++
			if hr.detail != nil {
				return apiclient.Record{}, hr.detail
			}
			rec := apiclient.NewRecord("EmpRefNo", ref, "FirstName", "John", "LastName", "Doe")
			rec.Set("FamilyDetails", []apiclient.Record{apiclient.NewRecord("Name", "Jane")})
			return rec, nil
		},
		Workflow: &approval.Workflow{
			Module: "staff",
			Build:  approval.Builder{}.BuildStaffPayload,
			Submit: func(_ context.Context, payload any) (string, error) {
				hr.payloads = append(hr.payloads, payload)
				return hr.response, nil
			},
			ExtraLabel: "Login id",
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hr.handler = NewHandler(def, hr.backend, logger, templates, shared.NewCSRFManager("csrfsecret"))
	hr.handler.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	req := httptest.NewRequest(http.MethodGet, "/hr/staff", nil)
	hr.sess, err = sessions.Load(context.Background(), req)
	require.NoError(t, err)
	hr.sess.SetIdentity(shared.Identity{UserID: "u42", UserName: "jdoe", RoleID: "7", RoleName: "HR Manager"})
	return hr
}

func (hr *harness) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), hr.sess))
	rr := httptest.NewRecorder()
	hr.handler.show(rr, req)
	return rr
}

func (hr *harness) post(fn http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hr/staff", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(shared.ContextWithSession(req.Context(), hr.sess))
	rr := httptest.NewRecorder()
	fn(rr, req)
	return rr
}

func TestShowRendersListAndSelectedRecord(t *testing.T) {
	hr := newHarness(t)
	rr := hr.get("/hr/staff?ref=E100")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, want := range []string{"Staff Verification", "E100", "Personal", "Jane", "HR : asmith : documents ok", `value="Approve"`, `data-confirm="Reject this record?"`, "/hr/staff/diagnose"} {
		assert.Contains(t, body, want)
	}
	assert.Equal(t, "E100", approval.LoadState(hr.sess, "staff").SelectedRef)
	assert.Contains(t, hr.backend.moids, 41)
}

func TestShowWithoutRoleWarns(t *testing.T) {
	hr := newHarness(t)
	hr.sess.SetIdentity(shared.Identity{UserID: "u42"})
	rr := hr.get("/hr/staff")
	assert.Contains(t, rr.Body.String(), "Your role is not known")
}

func TestActBlankCommentKeepsSelection(t *testing.T) {
	hr := newHarness(t)
	rr := hr.post(hr.handler.act, url.Values{"ref": {"E100"}, "action": {"Approve"}, "comment": {"  "}, "verified": {"1"}})

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/hr/staff?ref=E100", rr.Header().Get("Location"))
	assert.Empty(t, hr.payloads)
	flashes := hr.sess.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, "danger", flashes[0].Kind)
	assert.Equal(t, "Please enter a comment before submitting.", flashes[0].Message)
	st := approval.LoadState(hr.sess, "staff")
	assert.True(t, st.Verified)
	assert.Equal(t, "E100", st.SelectedRef)
}

func TestActBlankCommentMakesNoBackendCalls(t *testing.T) {
	hr := newHarness(t)
	hr.detail = errors.New("backend down")
	rr := hr.post(hr.handler.act, url.Values{"ref": {"E100"}, "action": {"Verify"}, "comment": {"  "}})

	assert.Equal(t, "/hr/staff?ref=E100", rr.Header().Get("Location"))
	assert.Zero(t, hr.details)
	assert.Empty(t, hr.backend.moids)
	flash := hr.sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Please enter a comment before submitting.", flash.Message)
}

func TestActWithoutSelectionMakesNoBackendCalls(t *testing.T) {
	hr := newHarness(t)
	rr := hr.post(hr.handler.act, url.Values{"action": {"Verify"}, "comment": {"ok"}})

	assert.Equal(t, "/hr/staff", rr.Header().Get("Location"))
	assert.Zero(t, hr.details)
	assert.Empty(t, hr.backend.moids)
	flash := hr.sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Please select a record first.", flash.Message)
}

func TestActReportsStatusLookupFailure(t *testing.T) {
	hr := newHarness(t)
	hr.backend.actionsErr = errors.New("status service unavailable")
	rr := hr.post(hr.handler.act, url.Values{"ref": {"E100"}, "action": {"Verify"}, "comment": {"ok"}})

	assert.Equal(t, "/hr/staff?ref=E100", rr.Header().Get("Location"))
	assert.Empty(t, hr.payloads)
	flash := hr.sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "danger", flash.Kind)
	assert.Equal(t, "Could not load the actions allowed for your role: status service unavailable", flash.Message)
}

func TestShowReportsStatusLookupFailure(t *testing.T) {
	hr := newHarness(t)
	hr.backend.actionsErr = errors.New("status service unavailable")
	body := hr.get("/hr/staff?ref=E100").Body.String()

	assert.Contains(t, body, "Could not load the actions allowed for your role")
	assert.NotContains(t, body, "No actions are available to your role")
}

func TestActApproveSucceeds(t *testing.T) {
	hr := newHarness(t)
	hr.response = "Approved Successfully$jdoe01"
	rr := hr.post(hr.handler.act, url.Values{"ref": {"E100"}, "action": {"approve"}, "comment": {"looks good"}})

	assert.Equal(t, "/hr/staff", rr.Header().Get("Location"))
	require.Len(t, hr.payloads, 1)
	wire, ok := hr.payloads[0].(approval.StaffApprovalWire)
	require.True(t, ok)
	assert.Equal(t, "HR : asmith : documents ok||HR Manager : jdoe : looks good", wire.Note)
	assert.Equal(t, "Jane,", wire.FamilyNames)

	flashes := hr.sess.PopFlashes()
	require.Len(t, flashes, 2)
	assert.Equal(t, shared.FlashMessage{Kind: "success", Message: "Approved Successfully"}, flashes[0])
	assert.Equal(t, shared.FlashMessage{Kind: "info", Message: "Login id: jdoe01", DelayMs: 1500}, flashes[1])
	assert.Equal(t, approval.VerificationState{}, approval.LoadState(hr.sess, "staff"))
}

func TestActRefusesActionOutsideRole(t *testing.T) {
	hr := newHarness(t)
	hr.backend.actions = []string{"Verify"}
	rr := hr.post(hr.handler.act, url.Values{"ref": {"E100"}, "action": {"Reject"}, "comment": {"no"}})

	assert.Equal(t, "/hr/staff?ref=E100", rr.Header().Get("Location"))
	assert.Empty(t, hr.payloads)
	flash := hr.sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Reject is not available to your role for this record.", flash.Message)
}

func TestActReportsDetailFailure(t *testing.T) {
	hr := newHarness(t)
	hr.detail = errors.New("backend down")
	hr.post(hr.handler.act, url.Values{"ref": {"E100"}, "action": {"Verify"}, "comment": {"x"}})

	assert.Empty(t, hr.payloads)
	flash := hr.sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Failed to load details: backend down", flash.Message)
}

func TestActUnknownAction(t *testing.T) {
	hr := newHarness(t)
	rr := hr.post(hr.handler.act, url.Values{"ref": {"E100"}, "action": {"Escalate"}, "comment": {"x"}})
	assert.Equal(t, "/hr/staff", rr.Header().Get("Location"))
	assert.Empty(t, hr.payloads)
}

func TestDiagnoseReturnsReport(t *testing.T) {
	hr := newHarness(t)
	rr := hr.post(hr.handler.diagnose, url.Values{"ref": {"E100"}, "action": {"Verify"}, "comment": {"ok"}})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "attachment; filename=payload-report-20240506-070809.json", rr.Header().Get("Content-Disposition"))
	var report diagnostics.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "staff", report.Schema)
	assert.Empty(t, report.MissingRequired)
	assert.Empty(t, hr.payloads)
}

func TestDiagnoseRejectUsesRejectFields(t *testing.T) {
	hr := newHarness(t)
	rr := hr.post(hr.handler.diagnose, url.Values{"ref": {"E100"}, "action": {"Reject"}, "comment": {"incomplete"}})

	require.Equal(t, http.StatusOK, rr.Code)
	var report diagnostics.Report
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, "staff-reject", report.Schema)
	assert.Len(t, report.Fields, 5)
	assert.Zero(t, report.Summary.Undefined)
	assert.Empty(t, report.Unexpected)
	assert.Empty(t, report.MissingRequired)
}

func TestResetClearsSelection(t *testing.T) {
	hr := newHarness(t)
	approval.SaveState(hr.sess, "staff", approval.VerificationState{SelectedRef: "E100", Comment: "draft"})
	rr := hr.post(hr.handler.reset, url.Values{})
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, approval.VerificationState{}, approval.LoadState(hr.sess, "staff"))
}

func TestAllowedActionsAndRemarks(t *testing.T) {
	rows := []apiclient.Record{
		apiclient.NewRecord("ActionName", "verify"),
		apiclient.NewRecord("Action", "Verify"),
		apiclient.NewRecord("Action", "Escalate"),
		apiclient.NewRecord("Status", "Reject"),
	}
	assert.Equal(t, []approval.Action{approval.ActionVerify, approval.ActionReject}, AllowedActions(rows))

	remarks := []apiclient.Record{
		apiclient.NewRecord("Remarks", "A : b : c||D : e : f"),
		apiclient.NewRecord("Remark", "G : h : i"),
		apiclient.NewRecord("Remarks", ""),
	}
	assert.Equal(t, "A : b : c||D : e : f||G : h : i", RemarksHistory(remarks))
}
