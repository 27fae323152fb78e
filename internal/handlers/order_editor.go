package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alextreichler/orderdesk/internal/forms"
	"github.com/alextreichler/orderdesk/internal/store"
)

const (
	editorPath  = "/Orders/CreateOrder"
	displayPath = "/Orders/DisplayOrders"

	msgNoValidLines = "At least one valid order detail is required."
)

// OrderEditorHandler edits an order and all of its lines on one page.
type OrderEditorHandler struct {
	Deps
}

func (h *OrderEditorHandler) renderEditor(w http.ResponseWriter, r *http.Request, form forms.OrderEditorForm, errs forms.Errors) {
	if len(form.Lines) == 0 {
		form.Lines = append(form.Lines, forms.BlankLine())
	}
	agents, err := h.Store.GetAllAgents(r.Context())
	if err != nil {
		slog.Error("Failed to load agents", "error", err)
	}
	items, err := h.Store.GetAllItems(r.Context())
	if err != nil {
		slog.Error("Failed to load items", "error", err)
	}
	title := "Create Order"
	if form.OrderID != 0 {
		title = fmt.Sprintf("Edit Order #%d", form.OrderID)
	}
	h.render(w, r, http.StatusOK, "order_editor.html", map[string]interface{}{
		"Title":  title,
		"Form":   form,
		"Errors": errs,
		"Agents": agents,
		"Items":  items,
	})
}

// Get shows the editor. With a known orderId the order's lines are loaded
// for editing; otherwise a new order starts with one blank line.
func (h *OrderEditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	form := forms.OrderEditorForm{}
	if id, ok := queryID(r, "orderId"); ok {
		order, err := h.Store.GetOrderByID(r.Context(), id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			slog.Debug("Order not found, starting a new one", "order_id", id)
		case err != nil:
			h.storeError(w, r, err)
			return
		default:
			form.OrderID = order.OrderID
			form.AgentID = order.AgentID
			for _, d := range order.OrderDetails {
				form.Lines = append(form.Lines, forms.OrderLineForm{ID: d.ID, ItemID: d.ItemID, Quantity: d.Quantity})
			}
		}
	}
	h.renderEditor(w, r, form, forms.Errors{})
}

// Post dispatches on the handler query parameter.
func (h *OrderEditorHandler) Post(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("handler") {
	case "", "CreateOrUpdate":
		h.createOrUpdate(w, r)
	case "AddLine":
		h.addLine(w, r)
	case "DeleteOrder":
		h.deleteOrder(w, r)
	case "DeleteOrderDetail":
		h.deleteOrderDetail(w, r)
	default:
		http.Error(w, "Unknown handler", http.StatusBadRequest)
	}
}

func (h *OrderEditorHandler) createOrUpdate(w http.ResponseWriter, r *http.Request) {
	var form forms.OrderEditorForm
	if errs := forms.Bind(r, &form); errs.Any() {
		h.renderEditor(w, r, form, errs)
		return
	}

	draft := store.OrderDraft{OrderID: form.OrderID, AgentID: form.AgentID}
	for _, l := range form.Lines {
		draft.Lines = append(draft.Lines, store.OrderLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	order, err := h.Store.SaveOrder(r.Context(), draft)
	switch {
	case err == nil:
		slog.Info("Order saved", "order_id", order.OrderID, "lines", len(order.OrderDetails))
		h.redirect(w, r, displayPath, "success", fmt.Sprintf("Order #%d saved.", order.OrderID))
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, store.ErrNoValidLines):
		h.renderEditor(w, r, form, forms.Errors{"": msgNoValidLines})
	case errors.Is(err, store.ErrInvalidReference):
		slog.Warn("Order references a missing agent or item", "error", err)
		h.renderEditor(w, r, form, forms.Errors{"": "The selected agent or item no longer exists."})
	default:
		slog.Error("Failed to save order", "order_id", form.OrderID, "error", err)
		h.renderEditor(w, r, form, forms.Errors{"": "Unable to save the order. Please try again."})
	}
}

// addLine redisplays the posted order with one more blank line.
func (h *OrderEditorHandler) addLine(w http.ResponseWriter, r *http.Request) {
	var form forms.OrderEditorForm
	forms.Bind(r, &form)
	form.Lines = append(form.Lines, forms.BlankLine())
	h.renderEditor(w, r, form, forms.Errors{})
}

func (h *OrderEditorHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("orderId"))
	if err != nil || id <= 0 {
		h.redirect(w, r, displayPath, "", "")
		return
	}
	if err := h.Store.DeleteOrder(r.Context(), id); err != nil {
		h.storeError(w, r, err)
		return
	}
	slog.Info("Order deleted", "order_id", id)
	h.redirect(w, r, displayPath, "success", fmt.Sprintf("Order #%d deleted.", id))
}

// deleteOrderDetail removes one saved line and returns to its order.
func (h *OrderEditorHandler) deleteOrderDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil || id <= 0 {
		h.redirect(w, r, displayPath, "", "")
		return
	}
	orderID, found, err := h.Store.DeleteOrderDetail(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if !found {
		h.redirect(w, r, displayPath, "", "")
		return
	}
	slog.Info("Order detail deleted", "id", id, "order_id", orderID)
	h.redirect(w, r, fmt.Sprintf("%s?orderId=%d", editorPath, orderID), "success", "Order line removed.")
}
