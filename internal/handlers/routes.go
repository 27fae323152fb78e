package handlers

import (
	"io/fs"
	"net/http"
	"time"
)

// Router wires every page. Static may be nil.
type Router struct {
	Deps
	LoginLimiter *RateLimiter
	Static       fs.FS
	Now          func() time.Time
}

func (rt Router) Handler() *http.ServeMux {
	account := &AccountHandler{Deps: rt.Deps, Now: rt.Now}
	home := &HomeHandler{Deps: rt.Deps, Now: rt.Now}
	agents := &AgentHandler{Deps: rt.Deps}
	items := &ItemHandler{Deps: rt.Deps}
	orders := &OrderHandler{Deps: rt.Deps}
	details := &OrderDetailHandler{Deps: rt.Deps}
	editor := &OrderEditorHandler{Deps: rt.Deps}

	mux := http.NewServeMux()

	if rt.Static != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServer(http.FS(rt.Static))))
	}

	loginPost := account.LoginPost
	if rt.LoginLimiter != nil {
		loginPost = rt.LoginLimiter.Middleware(loginPost)
	}
	mux.HandleFunc("GET /Account/Login", account.LoginGet)
	mux.HandleFunc("POST /Account/Login", loginPost)
	mux.HandleFunc("POST /Account/Logout", account.Logout)

	auth := account.AuthMiddleware

	// Protected Routes
	mux.HandleFunc("GET /{$}", auth(home.Index))
	mux.HandleFunc("GET /Index", auth(home.Index))

	mux.HandleFunc("GET /Agents", auth(agents.List))
	mux.HandleFunc("GET /Agents/Create", auth(agents.CreateGet))
	mux.HandleFunc("POST /Agents/Create", auth(agents.CreatePost))
	mux.HandleFunc("GET /Agents/Edit", auth(agents.EditGet))
	mux.HandleFunc("POST /Agents/Edit", auth(agents.EditPost))
	mux.HandleFunc("GET /Agents/Delete", auth(agents.DeleteGet))
	mux.HandleFunc("POST /Agents/Delete", auth(agents.DeletePost))

	mux.HandleFunc("GET /Items", auth(items.List))
	mux.HandleFunc("GET /Items/Create", auth(items.CreateGet))
	mux.HandleFunc("POST /Items/Create", auth(items.CreatePost))
	mux.HandleFunc("GET /Items/Edit", auth(items.EditGet))
	mux.HandleFunc("POST /Items/Edit", auth(items.EditPost))
	mux.HandleFunc("GET /Items/Delete", auth(items.DeleteGet))
	mux.HandleFunc("POST /Items/Delete", auth(items.DeletePost))

	mux.HandleFunc("GET /Orders", auth(orders.List))
	mux.HandleFunc("GET /Orders/Create", auth(orders.CreateGet))
	mux.HandleFunc("POST /Orders/Create", auth(orders.CreatePost))
	mux.HandleFunc("GET /Orders/Edit", auth(orders.EditGet))
	mux.HandleFunc("POST /Orders/Edit", auth(orders.EditPost))
	mux.HandleFunc("GET /Orders/Delete", auth(orders.DeleteGet))
	mux.HandleFunc("POST /Orders/Delete", auth(orders.DeletePost))
	mux.HandleFunc("GET /Orders/DisplayOrders", auth(orders.DisplayOrders))
	mux.HandleFunc("GET /Orders/CreateOrder", auth(editor.Get))
	mux.HandleFunc("POST /Orders/CreateOrder", auth(editor.Post))

	mux.HandleFunc("GET /OrderDetails", auth(details.List))
	mux.HandleFunc("GET /OrderDetails/Create", auth(details.CreateGet))
	mux.HandleFunc("POST /OrderDetails/Create", auth(details.CreatePost))
	mux.HandleFunc("GET /OrderDetails/Edit", auth(details.EditGet))
	mux.HandleFunc("POST /OrderDetails/Edit", auth(details.EditPost))
	mux.HandleFunc("GET /OrderDetails/Delete", auth(details.DeleteGet))
	mux.HandleFunc("POST /OrderDetails/Delete", auth(details.DeletePost))

	return mux
}
