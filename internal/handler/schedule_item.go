package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mjholt/crewdeck/internal/model"
	"github.com/mjholt/crewdeck/internal/store"
	"github.com/mjholt/crewdeck/internal/websocket"
)

type ScheduleItemHandler struct {
	itemStore    *store.ScheduleItemStore
	projectStore *store.ProjectStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewScheduleItemHandler(is *store.ScheduleItemStore, ps *store.ProjectStore, hub *websocket.Hub, logger *slog.Logger) *ScheduleItemHandler {
	return &ScheduleItemHandler{itemStore: is, projectStore: ps, hub: hub, logger: logger}
}

type scheduleItemRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     *string          `json:"due_date"`
	Status      model.ItemStatus `json:"status"`
	AssignedTo  []int64          `json:"assigned_to"`
}

func (req *scheduleItemRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Status == "" {
		req.Status = model.ItemNotStarted
	}
	if !model.ValidItemStatus(req.Status) {
		return "status must be not_started, in_progress, completed, at_risk, or blocked"
	}
	if req.DueDate != nil && !validDate(*req.DueDate) {
		return "due_date must be YYYY-MM-DD"
	}
	return ""
}

func (h *ScheduleItemHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	items, err := h.itemStore.ListByProject(projectID)
	if err != nil {
		h.logger.Error("list schedule items", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list schedule items")
		return
	}
	if items == nil {
		items = []model.ScheduleItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ScheduleItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := h.projectStore.GetByID(projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	var req scheduleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.itemStore.Create(projectID, req.Title, req.Description, req.DueDate, req.Status, req.AssignedTo)
	if err != nil {
		h.logger.Error("create schedule item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create schedule item")
		return
	}

	h.hub.Broadcast(websocket.NewEvent("schedule_item", "created", item.ID, projectID, nil))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ScheduleItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req scheduleItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.itemStore.Update(id, req.Title, req.Description, req.DueDate, req.Status, req.AssignedTo)
	if err != nil {
		h.logger.Error("update schedule item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update schedule item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "schedule item not found")
		return
	}

	h.hub.Broadcast(websocket.NewEvent("schedule_item", "updated", id, item.ProjectID, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *ScheduleItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.itemStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get schedule item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "schedule item not found")
		return
	}

	deleted, err := h.itemStore.Delete(id)
	if err != nil {
		h.logger.Error("delete schedule item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete schedule item")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "schedule item not found")
		return
	}

	h.hub.Broadcast(websocket.NewEvent("schedule_item", "deleted", id, existing.ProjectID, nil))
	w.WriteHeader(http.StatusNoContent)
}
