package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alextreichler/orderdesk/internal/store"
)

// HomeHandler serves the sales dashboard.
type HomeHandler struct {
	Deps
	Now func() time.Time
}

// Index shows this month's best sellers plus the per-agent and per-item
// reports for whichever agent and item are selected.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}

	bestSellers, err := h.Store.BestSellingItems(ctx, now)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	stats, err := h.Store.GetDashboardStats(ctx)
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	agents, err := h.Store.GetAllAgents(ctx)
	if err != nil {
		slog.Error("Failed to load agents", "error", err)
	}
	items, err := h.Store.GetAllItems(ctx)
	if err != nil {
		slog.Error("Failed to load items", "error", err)
	}

	selectedAgentID, _ := queryID(r, "selectedAgentId")
	selectedItemID, _ := queryID(r, "selectedItemId")

	var byAgent []store.AgentPurchaseDetail
	if selectedAgentID > 0 {
		if byAgent, err = h.Store.ItemsByAgent(ctx, selectedAgentID); err != nil {
			h.storeError(w, r, err)
			return
		}
	}
	var byItem []store.ItemPurchaseDetail
	if selectedItemID > 0 {
		if byItem, err = h.Store.AgentsByItem(ctx, selectedItemID); err != nil {
			h.storeError(w, r, err)
			return
		}
	}

	start, _ := store.MonthRange(now.UTC())
	h.render(w, r, http.StatusOK, "dashboard.html", map[string]interface{}{
		"Month":           start,
		"Stats":           stats,
		"BestSellers":     bestSellers,
		"Agents":          agents,
		"Items":           items,
		"SelectedAgentID": selectedAgentID,
		"SelectedItemID":  selectedItemID,
		"ItemsByAgent":    byAgent,
		"AgentsByItem":    byItem,
	})
}
