package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mjholt/crewdeck/internal/auth"
	"github.com/mjholt/crewdeck/internal/model"
	"github.com/mjholt/crewdeck/internal/store"
	"github.com/mjholt/crewdeck/internal/tag"
	"github.com/mjholt/crewdeck/internal/websocket"
)

type MessageHandler struct {
	messageStore *store.MessageStore
	projectStore *store.ProjectStore
	detector     *tag.Detector
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewMessageHandler(ms *store.MessageStore, ps *store.ProjectStore, detector *tag.Detector, hub *websocket.Hub, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messageStore: ms, projectStore: ps, detector: detector, hub: hub, logger: logger}
}

// messageView is a message plus its derived tags. Tags are recomputed on
// every read, never stored.
type messageView struct {
	model.Message
	Tags []tag.Tag `json:"tags"`
}

func (h *MessageHandler) withTags(msgs []model.Message) []messageView {
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{Message: m, Tags: h.detector.Detect(m.Content)})
	}
	return views
}

// threadRefFromRequest resolves the thread from the path project id and the
// optional item_id query parameter.
func threadRefFromRequest(r *http.Request, projectID int64) (model.ThreadRef, error) {
	itemParam := r.URL.Query().Get("item_id")
	if itemParam == "" {
		return model.GeneralThread(projectID), nil
	}
	itemID, err := strconv.ParseInt(itemParam, 10, 64)
	if err != nil {
		return model.ThreadRef{}, err
	}
	return model.ItemThread(projectID, itemID), nil
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ref, err := threadRefFromRequest(r, projectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item_id")
		return
	}

	msgs, err := h.messageStore.ListByThread(ref)
	if err != nil {
		h.logger.Error("list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	writeJSON(w, http.StatusOK, h.withTags(msgs))
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Content        string `json:"content"`
		ScheduleItemID *int64 `json:"schedule_item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	ref := model.GeneralThread(projectID)
	if req.ScheduleItemID != nil {
		ref = model.ItemThread(projectID, *req.ScheduleItemID)
	}

	ac, _ := auth.FromContext(r.Context())
	msg, err := h.messageStore.Create(ref, ac.UserID, ac.Name, ac.Role, req.Content)
	if err != nil {
		h.logger.Error("create message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create message")
		return
	}

	extra := map[string]any{}
	if msg.ScheduleItemID != nil {
		extra["schedule_item_id"] = *msg.ScheduleItemID
	}
	h.hub.Broadcast(websocket.NewEvent("message", "created", msg.ID, projectID, extra))

	writeJSON(w, http.StatusCreated, messageView{Message: *msg, Tags: h.detector.Detect(msg.Content)})
}
