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

type AgentHandler struct {
	Deps
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	agents, err := h.Store.GetAllAgents(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "agents.html", map[string]interface{}{"Agents": agents})
}

func (h *AgentHandler) renderForm(w http.ResponseWriter, r *http.Request, form forms.AgentForm, errs forms.Errors) {
	title, action := "Create Agent", "/Agents/Create"
	if form.AgentID != 0 {
		title, action = "Edit Agent", fmt.Sprintf("/Agents/Edit?id=%d", form.AgentID)
	}
	h.render(w, r, http.StatusOK, "agent_form.html", map[string]interface{}{
		"Title":  title,
		"Action": action,
		"Form":   form,
		"Errors": errs,
	})
}

func (h *AgentHandler) CreateGet(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, forms.AgentForm{}, forms.Errors{})
}

func (h *AgentHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var form forms.AgentForm
	if errs := forms.Bind(r, &form); errs.Any() {
		form.AgentID = 0
		h.renderForm(w, r, form, errs)
		return
	}

	agent := &models.Agent{AgentName: form.AgentName}
	if err := h.Store.CreateAgent(r.Context(), agent); err != nil {
		slog.Warn("Failed to create agent", "error", err)
		form.AgentID = 0
		h.renderForm(w, r, form, forms.Errors{"": "Unable to save the agent."})
		return
	}

	slog.Info("Agent created", "agent_id", agent.AgentID)
	h.redirect(w, r, "/Agents", "success", "Agent created successfully!")
}

func (h *AgentHandler) EditGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	agent, err := h.Store.GetAgentByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.renderForm(w, r, forms.AgentForm{AgentID: agent.AgentID, AgentName: agent.AgentName}, forms.Errors{})
}

func (h *AgentHandler) EditPost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var form forms.AgentForm
	errs := forms.Bind(r, &form)
	form.AgentID = id
	if errs.Any() {
		h.renderForm(w, r, form, errs)
		return
	}

	err := h.Store.UpdateAgent(r.Context(), &models.Agent{AgentID: id, AgentName: form.AgentName})
	if err != nil {
		h.storeError(w, r, err)
		return
	}

	slog.Info("Agent updated", "agent_id", id)
	h.redirect(w, r, "/Agents", "success", "Agent updated successfully!")
}

func (h *AgentHandler) DeleteGet(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	agent, err := h.Store.GetAgentByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "confirm_delete.html", map[string]interface{}{
		"Title":   "Delete Agent",
		"Action":  fmt.Sprintf("/Agents/Delete?id=%d", id),
		"Cancel":  "/Agents",
		"Details": []Field{{"Agent ID", fmt.Sprint(agent.AgentID)}, {"Agent Name", agent.AgentName}},
	})
}

func (h *AgentHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	err := h.Store.DeleteAgent(r.Context(), id)
	if errors.Is(err, store.ErrInvalidReference) {
		h.redirect(w, r, "/Agents", "error", "This agent still has orders and cannot be deleted.")
		return
	}
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	slog.Info("Agent deleted", "agent_id", id)
	h.redirect(w, r, "/Agents", "success", "Agent deleted.")
}

// Field is one label/value pair on a confirmation page.
type Field struct {
	Label string
	Value string
}
