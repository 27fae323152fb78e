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

type OrderDetailHandler struct {
	Deps
}

func (h *OrderDetailHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.Store.GetAllOrderDetails(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "order_details.html", map[string]interface{}{"OrderDetails": details})
}

func (h *OrderDetailHandler) renderForm(w http.ResponseWriter, r *http.Request, form forms.OrderDetailForm, errs forms.Errors) {
	title, action := "Create Order Detail", "/OrderDetails/Create"
	if form.ID != 0 {
		title, action = "Edit Order Detail", fmt.Sprintf("/OrderDetails/Edit?id=%d", form.ID)
	}
	orders, err := h.Store.GetAllOrders(r.Context())
	if err != nil {
		slog.Error("Failed to load orders", "error", err)
	}
	items, err := h.Store.GetAllItems(r.Context())
	if err != nil {
		slog.Error("Failed to load items", "error", err)
	}
	h.render(w, r, http.StatusOK, "order_detail_form.html", map[string]interface{}{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
		"Orders": orders,
		"Items":  items,
	})
}

func (h *OrderDetailHandler) CreateGet(w http.ResponseWriter, r *http.Request) {
	form := forms.OrderDetailForm{Quantity: 1}
	if orderID, ok := queryID(r, "orderId"); ok {
		form.OrderID = orderID
	}
	h.renderForm(w, r, form, forms.Errors{})
}

func (h *OrderDetailHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var form forms.OrderDetailForm
	errs := forms.Bind(r, &form)
	form.ID = 0
	if errs.Any() {
		h.renderForm(w, r, form, errs)
		return
	}

	detail := &models.OrderDetail{OrderID: form.OrderID, ItemID: form.ItemID, Quantity: form.Quantity}
	if err := h.Store.CreateOrderDetail(r.Context(), detail); err != nil {
		slog.Warn("Failed to create order detail", "error", err)
		h.renderForm(w, r, form, saveErrors(err, "order detail"))
		return
	}

	slog.Info("Order detail created", "id", detail.ID, "order_id", detail.OrderID)
	h.redirect(w, r, "/OrderDetails", "success", "Order detail created successfully!")
}

func (h *OrderDetailHandler) EditGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	detail, err := h.Store.GetOrderDetailByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.renderForm(w, r, forms.OrderDetailForm{
		ID:       detail.ID,
		OrderID:  detail.OrderID,
		ItemID:   detail.ItemID,
		Quantity: detail.Quantity,
	}, forms.Errors{})
}

func (h *OrderDetailHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var form forms.OrderDetailForm
	errs := forms.Bind(r, &form)
	form.ID = id
	if errs.Any() {
		h.renderForm(w, r, form, errs)
		return
	}

	detail := &models.OrderDetail{ID: id, OrderID: form.OrderID, ItemID: form.ItemID, Quantity: form.Quantity}
	err := h.Store.UpdateOrderDetail(r.Context(), detail)
	if errors.Is(err, store.ErrInvalidReference) {
		h.renderForm(w, r, form, saveErrors(err, "order detail"))
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	slog.Info("Order detail updated", "id", id)
	h.redirect(w, r, "/OrderDetails", "success", "Order detail updated successfully!")
}

func (h *OrderDetailHandler) DeleteGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	detail, err := h.Store.GetOrderDetailByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "confirm_delete.html", map[string]interface{}{
		"Title":  "Delete Order Detail",
		"Action": fmt.Sprintf("/OrderDetails/Delete?id=%d", id),
		"Cancel": "/OrderDetails",
		"Details": []Field{
			{"Order ID", fmt.Sprint(detail.OrderID)},
			{"Item", detail.Item.ItemName},
			{"Quantity", fmt.Sprint(detail.Quantity)},
			{"Total", detail.Total().StringFixed(2)},
		},
	})
}

func (h *OrderDetailHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if _, _, err := h.Store.DeleteOrderDetail(r.Context(), id); err != nil {
		h.storeError(w, r, err)
		return
	}
	slog.Info("Order detail deleted", "id", id)
	h.redirect(w, r, "/OrderDetails", "success", "Order detail deleted.")
}
