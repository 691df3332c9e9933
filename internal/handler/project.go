package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mjholt/crewdeck/internal/auth"
	"github.com/mjholt/crewdeck/internal/model"
	"github.com/mjholt/crewdeck/internal/store"
	"github.com/mjholt/crewdeck/internal/websocket"
)

type ProjectHandler struct {
	store  *store.ProjectStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewProjectHandler(s *store.ProjectStore, hub *websocket.Hub, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{store: s, hub: hub, logger: logger}
}

type projectRequest struct {
	Name           string              `json:"name"`
	Address        string              `json:"address"`
	ContractNumber string              `json:"contract_number"`
	Status         model.ProjectStatus `json:"status"`
	StartDate      *string             `json:"start_date"`
	EndDate        *string             `json:"end_date"`
	MemberIDs      []int64             `json:"member_ids"`
}

func (req *projectRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Status == "" {
		req.Status = model.ProjectActive
	}
	if !model.ValidProjectStatus(req.Status) {
		return "status must be active, on_hold, or completed"
	}
	if req.StartDate != nil && !validDate(*req.StartDate) {
		return "start_date must be YYYY-MM-DD"
	}
	if req.EndDate != nil && !validDate(*req.EndDate) {
		return "end_date must be YYYY-MM-DD"
	}
	return ""
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	project, err := h.store.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// The creator is always a member, so the project shows up in their
	// listing and unread totals.
	userID := auth.UserID(r.Context())
	members := req.MemberIDs
	if !containsID(members, userID) {
		members = append(members, userID)
	}

	project, err := h.store.Create(req.Name, req.Address, req.ContractNumber, req.Status, req.StartDate, req.EndDate, members)
	if err != nil {
		h.logger.Error("create project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	h.hub.Broadcast(websocket.NewEvent("project", "created", project.ID, project.ID, nil))
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	project, err := h.store.Update(id, req.Name, req.Address, req.ContractNumber, req.Status, req.StartDate, req.EndDate)
	if err != nil {
		h.logger.Error("update project", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}

	if req.MemberIDs != nil {
		if err := h.store.SetMembers(id, req.MemberIDs); err != nil {
			h.logger.Error("set project members", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update members")
			return
		}
		project, err = h.store.GetByID(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to get project")
			return
		}
	}

	h.hub.Broadcast(websocket.NewEvent("project", "updated", id, id, nil))
	writeJSON(w, http.StatusOK, project)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
