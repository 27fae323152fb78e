package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alextreichler/orderdesk/internal/forms"
	"github.com/alextreichler/orderdesk/internal/models"
	"github.com/alextreichler/orderdesk/internal/store"
)

type OrderHandler struct {
	Deps
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Store.GetAllOrders(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "orders.html", map[string]interface{}{"Orders": orders})
}

// DisplayOrders lists orders newest first with their lines and totals.
func (h *OrderHandler) DisplayOrders(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("agentNameFilter")
	orders, err := h.Store.DisplayOrders(r.Context(), filter)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "display_orders.html", map[string]interface{}{
		"Orders":          orders,
		"AgentNameFilter": filter,
	})
}

func (h *OrderHandler) renderForm(w http.ResponseWriter, r *http.Request, form forms.OrderForm, errs forms.Errors) {
	title, action := "Create Order", "/Orders/Create"
	if form.OrderID != 0 {
		title, action = "Edit Order", fmt.Sprintf("/Orders/Edit?id=%d", form.OrderID)
	}
	agents, err := h.Store.GetAllAgents(r.Context())
	if err != nil {
		slog.Error("Failed to load agents", "error", err)
	}
	h.render(w, r, http.StatusOK, "order_form.html", map[string]interface{}{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
		"Agents": agents,
	})
}

func (h *OrderHandler) CreateGet(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, forms.OrderForm{}, forms.Errors{})
}

func (h *OrderHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var form forms.OrderForm
	errs := forms.Bind(r, &form)
	form.OrderID = 0
	if errs.Any() {
		h.renderForm(w, r, form, errs)
		return
	}

	order := &models.Order{AgentID: form.AgentID, OrderDate: form.OrderDate}
	if err := h.Store.CreateOrder(r.Context(), order); err != nil {
		slog.Warn("Failed to create order", "error", err)
		h.renderForm(w, r, form, saveErrors(err, "order"))
		return
	}

	slog.Info("Order created", "order_id", order.OrderID)
	h.redirect(w, r, "/Orders", "success", "Order created successfully!")
}

func (h *OrderHandler) EditGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	order, err := h.Store.GetOrderByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.renderForm(w, r, forms.OrderForm{OrderID: order.OrderID, AgentID: order.AgentID, OrderDate: order.OrderDate}, forms.Errors{})
}

func (h *OrderHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var form forms.OrderForm
	errs := forms.Bind(r, &form)
	form.OrderID = id
	if form.OrderDate.IsZero() {
		errs.Add("OrderDate", "The OrderDate field is required.")
	}
	if errs.Any() {
		h.renderForm(w, r, form, errs)
		return
	}

	err := h.Store.UpdateOrder(r.Context(), &models.Order{OrderID: id, AgentID: form.AgentID, OrderDate: form.OrderDate})
	if errors.Is(err, store.ErrInvalidReference) {
		h.renderForm(w, r, form, saveErrors(err, "order"))
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	slog.Info("Order updated", "order_id", id)
	h.redirect(w, r, "/Orders", "success", "Order updated successfully!")
}

func (h *OrderHandler) DeleteGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	order, err := h.Store.GetOrderByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "confirm_delete.html", map[string]interface{}{
		"Title":  "Delete Order",
		"Action": fmt.Sprintf("/Orders/Delete?id=%d", id),
		"Cancel": "/Orders",
		"Details": []Field{
			{"Order ID", fmt.Sprint(order.OrderID)},
			{"Order Date", order.OrderDate.UTC().Format("2006-01-02 15:04")},
			{"Agent", order.Agent.AgentName},
			{"Lines", fmt.Sprint(len(order.OrderDetails))},
		},
	})
}

// DeletePost removes the order together with its details.
func (h *OrderHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteOrder(r.Context(), id); err != nil {
		h.storeError(w, r, err)
		return
	}
	slog.Info("Order deleted", "order_id", id)
	h.redirect(w, r, "/Orders", "success", "Order deleted.")
}

// saveErrors turns a failed insert or update into a form-level message.
func saveErrors(err error, what string) forms.Errors {
	if errors.Is(err, store.ErrInvalidReference) {
		return forms.Errors{"": "The selected agent, order or item no longer exists."}
	}
	return forms.Errors{"": "Unable to save the " + what + "."}
}
