package handlers

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/alextreichler/orderdesk/internal/models"
	"github.com/alextreichler/orderdesk/internal/store"
	"github.com/alextreichler/orderdesk/templates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "s3cret-pass"

// testApp drives the full router against an in-memory database and keeps the
// cookies a browser would.
type testApp struct {
	t       *testing.T
	store   *store.Store
	now     time.Time
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, t.Name())
	s, err := store.NewStore(store.DriverSQLite, "file:handlers_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { _ = s.Close() })

	tc := NewTemplateCache()
	require.NoError(t, tc.Load(templates.FS))
	static, err := fs.Sub(templates.FS, "static")
	require.NoError(t, err)

	app := &testApp{
		t:       t,
		store:   s,
		now:     time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		cookies: map[string]*http.Cookie{},
	}
	clock := func() time.Time { return app.now }
	s.SetClock(clock)

	app.handler = Router{
		Deps: Deps{
			Store:        s,
			Templates:    tc,
			SessionStore: NewSessionStore([]byte("0123456789abcdef0123456789abcdef"), false, ""),
		},
		Static: static,
		Now:    clock,
	}.Handler()
	return app
}

// do sends a request; a non-nil form is posted url-encoded.
func (a *testApp) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	a.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range a.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		a.cookies[c.Name] = c
	}
	return rec
}

func (a *testApp) get(target string) *httptest.ResponseRecorder {
	return a.do(http.MethodGet, target, nil)
}

func (a *testApp) post(target string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return a.do(http.MethodPost, target, form)
}

func (a *testApp) addUser(name, email string, locked bool) *models.User {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(a.t, err)
	user := &models.User{UserName: name, Email: email, Password: string(hash), Lock: locked}
	require.NoError(a.t, a.store.CreateUser(context.Background(), user))
	return user
}

// login signs in a fresh user and fails the test if it does not work.
func (a *testApp) login() {
	a.t.Helper()
	a.addUser("Ann", "ann@example.com", false)
	rec := a.post("/Account/Login", url.Values{"Email": {"ann@example.com"}, "Password": {testPassword}})
	require.Equal(a.t, http.StatusSeeOther, rec.Code)
	require.Equal(a.t, "/", rec.Header().Get("Location"))
}

type seeded struct {
	agents []models.Agent
	items  []models.Item
}

// seed creates agents "Alice Trading", "Bob Supplies" and items ItemA (2.50),
// ItemB (10.00), ItemC (1.25).
func (a *testApp) seed() seeded {
	a.t.Helper()
	ctx := context.Background()
	sd := seeded{
		agents: []models.Agent{{AgentName: "Alice Trading"}, {AgentName: "Bob Supplies"}},
		items: []models.Item{
			{ItemName: "ItemA", UnitPrice: decimal.RequireFromString("2.50")},
			{ItemName: "ItemB", UnitPrice: decimal.RequireFromString("10")},
			{ItemName: "ItemC", UnitPrice: decimal.RequireFromString("1.25")},
		},
	}
	for i := range sd.agents {
		require.NoError(a.t, a.store.CreateAgent(ctx, &sd.agents[i]))
	}
	for i := range sd.items {
		require.NoError(a.t, a.store.CreateItem(ctx, &sd.items[i]))
	}
	return sd
}

func (a *testApp) saveOrder(agentID int, lines ...store.OrderLine) *models.Order {
	a.t.Helper()
	order, err := a.store.SaveOrder(context.Background(), store.OrderDraft{AgentID: agentID, Lines: lines})
	require.NoError(a.t, err)
	return order
}
