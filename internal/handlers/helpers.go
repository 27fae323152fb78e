package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alextreichler/orderdesk/internal/forms"
	"github.com/alextreichler/orderdesk/internal/store"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

// Deps is what every page handler needs.
type Deps struct {
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

func (d Deps) session(r *http.Request) *sessions.Session {
	session, err := d.SessionStore.Get(r, AuthScheme)
	if err != nil {
		// A cookie signed with an old key; Get still returns a fresh session.
		slog.Debug("Discarding unreadable session", "error", err)
	}
	return session
}

// render consumes the flashes, saves the session and writes the page.
func (d Deps) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]interface{}) {
	session := d.session(r)
	page := pageData(r, session)
	for k, v := range data {
		page[k] = v
	}
	session.Save(r, w)
	d.Templates.Render(w, status, name, page)
}

func (d Deps) redirect(w http.ResponseWriter, r *http.Request, url, flashType, msg string) {
	if msg != "" {
		session := d.session(r)
		session.AddFlash(FlashMessage{Type: flashType, Message: msg})
		session.Save(r, w)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// storeError answers the errors a page cannot recover from. Missing rows are
// 404; anything else, concurrency conflicts included, is a logged 500.
func (d Deps) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func pageData(r *http.Request, session *sessions.Session) map[string]interface{} {
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Errors":    forms.Errors{},
	}
	if id, ok := IdentityFrom(r.Context()); ok {
		data["User"] = id
	}
	return data
}

// queryID reads a positive integer id from the query string.
func queryID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireID answers 404 when the id parameter is missing or malformed.
func requireID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := queryID(r, "id")
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
	}
	return id, ok
}
