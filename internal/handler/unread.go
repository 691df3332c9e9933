package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mjholt/crewdeck/internal/auth"
	"github.com/mjholt/crewdeck/internal/channel"
	"github.com/mjholt/crewdeck/internal/model"
	"github.com/mjholt/crewdeck/internal/store"
	"github.com/mjholt/crewdeck/internal/unread"
)

type UnreadHandler struct {
	calculator *unread.Calculator
	readStore  *store.ReadStore
	registry   *channel.Registry
	logger     *slog.Logger
}

func NewUnreadHandler(calc *unread.Calculator, rs *store.ReadStore, registry *channel.Registry, logger *slog.Logger) *UnreadHandler {
	return &UnreadHandler{calculator: calc, readStore: rs, registry: registry, logger: logger}
}

// Thread returns the unread count for a single thread. The item_id query
// selects a schedule item thread; absent means the general thread.
func (h *UnreadHandler) Thread(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.calculator.ThreadUnread(auth.UserID(r.Context()), ref)
	if err != nil {
		h.logger.Error("thread unread", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute unread count")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Channels returns unread counts for every channel in a project, keyed by
// channel id.
func (h *UnreadHandler) Channels(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	counts, err := h.calculator.ChannelUnreads(auth.UserID(r.Context()), projectID)
	if err != nil {
		h.logger.Error("channel unreads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute unread counts")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// Total returns the feed badge count: per-thread unread summed across every
// project the user belongs to.
func (h *UnreadHandler) Total(w http.ResponseWriter, r *http.Request) {
	count, err := h.calculator.TotalUnread(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("total unread", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute unread total")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkThreadRead records the current time as the user's last view of a
// thread. The channel ledger is untouched.
func (h *UnreadHandler) MarkThreadRead(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req struct {
		ScheduleItemID *int64 `json:"schedule_item_id"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	ref := model.GeneralThread(projectID)
	if req.ScheduleItemID != nil {
		ref = model.ItemThread(projectID, *req.ScheduleItemID)
	}

	if err := h.readStore.MarkThreadRead(auth.UserID(r.Context()), ref, time.Now().UTC()); err != nil {
		h.logger.Error("mark thread read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark thread read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkChannelRead records the current time as the user's last view of a
// channel. The thread ledger is untouched.
func (h *UnreadHandler) MarkChannelRead(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	channelID := r.PathValue("channel_id")
	if _, ok := h.registry.ByID(channelID); !ok {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}

	if err := h.readStore.MarkChannelRead(auth.UserID(r.Context()), projectID, channelID, time.Now().UTC()); err != nil {
		h.logger.Error("mark channel read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark channel read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
