package view

import (
	"net/http"

	"github.com/odyssey-erp/odyssey-admin/internal/shared"
)

// Page renders a page with the request's session flashes, CSRF token and
// operator. notices are shown after the queued flashes.
func (e *Engine) Page(w http.ResponseWriter, r *http.Request, csrf *shared.CSRFManager, name, title string, data any, status int, notices ...shared.FlashMessage) error {
	sess := shared.SessionFromContext(r.Context())
	var token string
	if csrf != nil {
		token, _ = csrf.EnsureToken(r.Context(), sess)
	}
	var flashes []shared.FlashMessage
	if sess != nil {
		flashes = sess.PopFlashes()
	}
	flashes = append(flashes, notices...)
	if !e.Has(name) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return errTemplateMissing(name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return e.Execute(w, name, TemplateData{
		Title:       title,
		CSRFToken:   token,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Operator:    sess.Identity(),
		Data:        data,
	})
}

// RedirectWithFlash queues a flash message and redirects with 303 See Other.
func RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
