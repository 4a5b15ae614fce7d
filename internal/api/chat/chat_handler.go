package chat

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/internal/api"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/auth"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ProcessMessage(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	chatService Service
	logger      *slog.Logger
}

func NewHandlerImpl(chatService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		chatService: chatService,
		logger:      logger,
	}
}

func (h *HandlerImpl) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "ProcessMessage"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversationId,omitempty"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message must not be empty")
		return
	}

	turn, err := h.chatService.ProcessMessage(ctx, username, req.Message, req.ConversationID)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}

	metrics.Get().ChatMessagesTotal.Add(ctx, 1)
	api.WriteJSONResponse(w, r, http.StatusOK, turn)
}

func (h *HandlerImpl) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetHistory"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	turns, err := h.chatService.History(ctx, username, r.URL.Query().Get("conversationId"))
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	if turns == nil {
		turns = []types.ChatHistory{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, turns)
}
