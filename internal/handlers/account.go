package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alextreichler/orderdesk/internal/forms"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AuthScheme names the session cookie that marks protected routes.
	AuthScheme = "CookieAuth"
	// SessionTTL is fixed; sessions are never renewed.
	SessionTTL = 30 * time.Minute

	loginPath = "/Account/Login"

	msgInvalidLogin = "Invalid email or password."
	msgLocked       = "Account is locked."
)

// NewSessionStore builds the cookie store. Cookies carry no Max-Age so they
// end with the browser session; expiry is enforced from the session values.
func NewSessionStore(key []byte, secure bool, domain string) *sessions.CookieStore {
	st := sessions.NewCookieStore(key)
	st.MaxAge(0)
	st.Options.HttpOnly = true
	st.Options.Secure = secure
	st.Options.SameSite = http.SameSiteLaxMode
	st.Options.Path = "/"
	if domain != "" {
		st.Options.Domain = domain
	}
	return st
}

// Identity is the signed-in user carried by the session.
type Identity struct {
	UserID   int
	UserName string
	Email    string
}

type identityKey struct{}

// IdentityFrom returns the user set by AuthMiddleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type AccountHandler struct {
	Deps
	Now func() time.Time
}

func (h *AccountHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// renderLogin never echoes the password back.
func (h *AccountHandler) renderLogin(w http.ResponseWriter, r *http.Request, form forms.LoginForm, errs forms.Errors) {
	form.Password = ""
	h.render(w, r, http.StatusOK, "login.html", map[string]interface{}{
		"Form":      form,
		"Errors":    errs,
		"ReturnUrl": returnURL(r),
	})
}

func (h *AccountHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, forms.LoginForm{}, forms.Errors{})
}

// LoginPost checks the credentials. Passwords are bcrypt hashes; unknown
// email and wrong password share one message, a locked account gets its own.
func (h *AccountHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	var form forms.LoginForm
	if errs := forms.Bind(r, &form); errs.Any() {
		h.renderLogin(w, r, form, errs)
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), form.Email)
	if err != nil {
		slog.Error("Failed to look up user", "error", err)
		h.renderLogin(w, r, form, forms.Errors{"": "Internal Server Error"})
		return
	}

	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)) != nil {
		slog.Info("Login rejected", "email", form.Email)
		h.renderLogin(w, r, form, forms.Errors{"": msgInvalidLogin})
		return
	}

	if user.Lock {
		slog.Info("Login rejected for locked account", "user_id", user.UserID)
		h.renderLogin(w, r, form, forms.Errors{"": msgLocked})
		return
	}

	session := h.session(r)
	session.Values["authenticated"] = true
	session.Values["user_id"] = user.UserID
	session.Values["user_name"] = user.UserName
	session.Values["email"] = user.Email
	session.Values["expires_at"] = h.now().Add(SessionTTL).Unix()
	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome, " + user.UserName + "!"})

	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("Login successful", "user_id", user.UserID)
	http.Redirect(w, r, returnURL(r), http.StatusSeeOther)
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	clearIdentity(session)
	session.AddFlash(FlashMessage{Type: "success", Message: "Logged out successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// AuthMiddleware ensures the user is logged in and the session has not expired.
func (h *AccountHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := h.session(r)
		auth, _ := session.Values["authenticated"].(bool)
		expiresAt, _ := session.Values["expires_at"].(int64)

		if !auth || h.now().Unix() >= expiresAt {
			msg := "You must be logged in to access this page."
			if auth {
				msg = "Your session has expired. Please log in again."
				clearIdentity(session)
			}
			slog.Debug("AuthMiddleware: redirecting to login", "path", r.URL.Path, "expired", auth)
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
			session.Save(r, w)
			http.Redirect(w, r, loginPath+"?ReturnUrl="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}

		id := Identity{}
		id.UserID, _ = session.Values["user_id"].(int)
		id.UserName, _ = session.Values["user_name"].(string)
		id.Email, _ = session.Values["email"].(string)
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	}
}

func clearIdentity(session *sessions.Session) {
	for _, key := range []string{"authenticated", "user_id", "user_name", "email", "expires_at"} {
		delete(session.Values, key)
	}
}

// returnURL only follows local paths.
func returnURL(r *http.Request) string {
	u := r.URL.Query().Get("ReturnUrl")
	if u == "" || !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return "/"
	}
	return u
}
