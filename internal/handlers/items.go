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

type ItemHandler struct {
	Deps
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.GetAllItems(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "items.html", map[string]interface{}{"Items": items})
}

func (h *ItemHandler) renderForm(w http.ResponseWriter, r *http.Request, form forms.ItemForm, errs forms.Errors) {
	title, action := "Create Item", "/Items/Create"
	if form.ItemID != 0 {
		title, action = "Edit Item", fmt.Sprintf("/Items/Edit?id=%d", form.ItemID)
	}
	h.render(w, r, http.StatusOK, "item_form.html", map[string]interface{}{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
	})
}

func (h *ItemHandler) CreateGet(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, forms.ItemForm{}, forms.Errors{})
}

func (h *ItemHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var form forms.ItemForm
	errs := forms.Bind(r, &form)
	form.ItemID = 0
	if errs.Any() {
		h.renderForm(w, r, form, errs)
		return
	}

	item := &models.Item{ItemName: form.ItemName, UnitPrice: form.UnitPrice}
	if err := h.Store.CreateItem(r.Context(), item); err != nil {
		slog.Warn("Failed to create item", "error", err)
		h.renderForm(w, r, form, forms.Errors{"": "Unable to save the item."})
		return
	}

	slog.Info("Item created", "item_id", item.ItemID)
	h.redirect(w, r, "/Items", "success", "Item created successfully!")
}

func (h *ItemHandler) EditGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	item, err := h.Store.GetItemByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.renderForm(w, r, forms.ItemForm{ItemID: item.ItemID, ItemName: item.ItemName, UnitPrice: item.UnitPrice}, forms.Errors{})
}

func (h *ItemHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var form forms.ItemForm
	errs := forms.Bind(r, &form)
	form.ItemID = id
	if errs.Any() {
		h.renderForm(w, r, form, errs)
		return
	}

	err := h.Store.UpdateItem(r.Context(), &models.Item{ItemID: id, ItemName: form.ItemName, UnitPrice: form.UnitPrice})
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	slog.Info("Item updated", "item_id", id)
	h.redirect(w, r, "/Items", "success", "Item updated successfully!")
}

func (h *ItemHandler) DeleteGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	item, err := h.Store.GetItemByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "confirm_delete.html", map[string]interface{}{
		"Title":  "Delete Item",
		"Action": fmt.Sprintf("/Items/Delete?id=%d", id),
		"Cancel": "/Items",
		"Details": []Field{
			{"Item ID", fmt.Sprint(item.ItemID)},
			{"Item Name", item.ItemName},
			{"Unit Price", item.UnitPrice.StringFixed(2)},
		},
	})
}

func (h *ItemHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	err := h.Store.DeleteItem(r.Context(), id)
	if errors.Is(err, store.ErrInvalidReference) {
		h.redirect(w, r, "/Items", "error", "This item is used by order details and cannot be deleted.")
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	slog.Info("Item deleted", "item_id", id)
	h.redirect(w, r, "/Items", "success", "Item deleted.")
}
