package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mjholt/crewdeck/internal/logparse"
	"github.com/mjholt/crewdeck/internal/model"
	"github.com/mjholt/crewdeck/internal/store"
	"github.com/mjholt/crewdeck/internal/websocket"
)

type DailyLogHandler struct {
	logStore     *store.DailyLogStore
	itemStore    *store.ScheduleItemStore
	projectStore *store.ProjectStore
	parser       *logparse.Service
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewDailyLogHandler(ls *store.DailyLogStore, is *store.ScheduleItemStore, ps *store.ProjectStore, parser *logparse.Service, hub *websocket.Hub, logger *slog.Logger) *DailyLogHandler {
	return &DailyLogHandler{logStore: ls, itemStore: is, projectStore: ps, parser: parser, hub: hub, logger: logger}
}

func (h *DailyLogHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	logs, err := h.logStore.ListByProject(projectID)
	if err != nil {
		h.logger.Error("list daily logs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list daily logs")
		return
	}
	if logs == nil {
		logs = []model.DailyLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *DailyLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	date := r.PathValue("date")
	if !validDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	log, err := h.logStore.GetByDate(projectID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get daily log")
		return
	}
	if log == nil {
		writeError(w, http.StatusNotFound, "daily log not found")
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// Upsert saves the log for (project, date), inserting or overwriting in
// place. Saving never depends on parsing; the raw entry is durable before
// any classification attempt.
func (h *DailyLogHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	date := r.PathValue("date")
	if !validDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
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

	var req struct {
		RawEntry  string `json:"raw_entry"`
		Weather   string `json:"weather"`
		CrewCount *int   `json:"crew_count"`
		Visitors  string `json:"visitors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	log, err := h.logStore.Upsert(projectID, date, req.RawEntry, req.Weather, req.CrewCount, req.Visitors)
	if err != nil {
		h.logger.Error("upsert daily log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save daily log")
		return
	}

	h.hub.Broadcast(websocket.NewEvent("daily_log", "saved", log.ID, projectID, map[string]any{"date": date}))
	writeJSON(w, http.StatusOK, log)
}

// Parse submits the saved entry to the classification service and stores the
// structured result. The entry itself is already durable; failure here
// degrades to "no structured insights".
func (h *DailyLogHandler) Parse(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	date := r.PathValue("date")
	if !validDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	log, err := h.logStore.GetByDate(projectID, date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get daily log")
		return
	}
	if log == nil {
		writeError(w, http.StatusNotFound, "daily log not found")
		return
	}

	// Unchanged entry: return the existing annotation instead of
	// re-submitting the same text.
	if log.Parsed != nil && log.ParsedEntry == log.RawEntry {
		writeJSON(w, http.StatusOK, log)
		return
	}

	if !h.parser.Configured() {
		writeError(w, http.StatusInternalServerError, "parse service not configured")
		return
	}

	items, err := h.itemStore.ListByProject(projectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list schedule items")
		return
	}

	parsed, err := h.parser.Parse(r.Context(), log.RawEntry, items)
	if errors.Is(err, logparse.ErrEntryTooShort) {
		writeError(w, http.StatusBadRequest, "log entry must be at least 50 characters to parse")
		return
	}
	if err != nil {
		h.logger.Warn("parse daily log", "project_id", projectID, "date", date, "error", err)
		writeError(w, http.StatusBadGateway, "failed to parse log entry")
		return
	}

	updated, err := h.logStore.SetParsedData(log.ID, parsed, log.RawEntry)
	if err != nil {
		h.logger.Error("store parsed data", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store parsed data")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "daily log not found")
		return
	}

	h.hub.Broadcast(websocket.NewEvent("daily_log", "parsed", log.ID, projectID, map[string]any{"date": date}))
	writeJSON(w, http.StatusOK, updated)
}
