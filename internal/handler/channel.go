package handler

import (
	"log/slog"
	"net/http"

	"github.com/mjholt/crewdeck/internal/channel"
	"github.com/mjholt/crewdeck/internal/store"
	"github.com/mjholt/crewdeck/internal/unread"
)

type ChannelHandler struct {
	registry     *channel.Registry
	messageStore *store.MessageStore
	calculator   *unread.Calculator
	messages     *MessageHandler
	logger       *slog.Logger
}

func NewChannelHandler(registry *channel.Registry, ms *store.MessageStore, calc *unread.Calculator, mh *MessageHandler, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{registry: registry, messageStore: ms, calculator: calc, messages: mh, logger: logger}
}

func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.All())
}

func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	ch, ok := h.registry.ByID(r.PathValue("channel_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// Messages returns a channel's filtered message view for a project. General
// channels pass through the general thread; tag-filter and schedule-view
// channels select tag-matched messages from every thread. Navigation
// channels carry no messages.
func (h *ChannelHandler) Messages(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ch, ok := h.registry.ByID(r.PathValue("channel_id"))
	if !ok {
		writeError(w, http.StatusNotFound, "channel not found")
		return
	}
	if ch.Type == channel.TypeNavigation {
		writeError(w, http.StatusNotFound, "channel has no message view")
		return
	}

	msgs, err := h.messageStore.ListByProject(projectID)
	if err != nil {
		h.logger.Error("list project messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	filtered := h.calculator.FilterByChannel(ch, msgs)
	writeJSON(w, http.StatusOK, h.messages.withTags(filtered))
}
