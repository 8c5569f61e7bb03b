package diagnostics

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-admin/internal/platform/httpx"
)

const maxPayloadBytes = 1 << 20

// Handler exposes the payload debugger over HTTP.
type Handler struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler constructs the diagnostics handler.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, now: time.Now}
}

// MountRoutes registers the diagnostics endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/payload", h.inspectPayload)
	r.Get("/schemas", h.listSchemas)
}

// inspectPayload reads a JSON payload and answers with the report as an
// attachment. ?schema selects a built-in schema; without one every payload
// field is expected.
func (h *Handler) inspectPayload(w http.ResponseWriter, r *http.Request) {
	schema := Schema{Name: "adhoc"}
	if name := r.URL.Query().Get("schema"); name != "" {
		s, ok := Builtin(name)
		if !ok {
			httpx.RespondError(w, fmt.Errorf("%w: unknown schema %q", httpx.ErrValidation, name))
			return
		}
		schema = s
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	payload, err := Decode(raw)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	report := Inspect(payload, schema)
	h.logger.Info("payload inspected", slog.String("schema", schema.Name), slog.Int("issues", len(report.Recommendations)))
	WriteAttachment(w, report, h.now())
}

func (h *Handler) listSchemas(w http.ResponseWriter, r *http.Request) {
	out := make([]Schema, 0, len(builtin))
	for _, name := range BuiltinNames() {
		out = append(out, builtin[name])
	}
	httpx.JSON(w, http.StatusOK, out)
}

// WriteAttachment sends report as a JSON download.
func WriteAttachment(w http.ResponseWriter, report Report, at time.Time) {
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+Filename(at))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
