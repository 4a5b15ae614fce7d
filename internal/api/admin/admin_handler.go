package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sukhpreet-s/travel-planner-api/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetAllUsers(w http.ResponseWriter, r *http.Request)
	GetAllTrips(w http.ResponseWriter, r *http.Request)
	GetAllChats(w http.ResponseWriter, r *http.Request)
	GetUserTrips(w http.ResponseWriter, r *http.Request)
	GetUserChats(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
	DeleteTrip(w http.ResponseWriter, r *http.Request)
	DeleteChat(w http.ResponseWriter, r *http.Request)
	GetConversationStats(w http.ResponseWriter, r *http.Request)
	DeleteConversation(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	adminService Service
	logger       *slog.Logger
}

func NewHandlerImpl(adminService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		adminService: adminService,
		logger:       logger,
	}
}

func (h *HandlerImpl) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetAllUsers"))
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, users)
}

func (h *HandlerImpl) GetAllTrips(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetAllTrips"))
	trips, err := h.adminService.ListTrips(r.Context())
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

func (h *HandlerImpl) GetAllChats(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetAllChats"))
	chats, err := h.adminService.ListChats(r.Context())
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, chats)
}

func (h *HandlerImpl) GetUserTrips(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetUserTrips"))
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	trips, err := h.adminService.GetUserTrips(r.Context(), userID)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

func (h *HandlerImpl) GetUserChats(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetUserChats"))
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	chats, err := h.adminService.GetUserChats(r.Context(), userID)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, chats)
}

func (h *HandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteUser"))
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.adminService.DeleteUser(r.Context(), userID); err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"message":       "User deleted successfully",
		"deletedUserId": userID,
	})
}

func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteTrip"))
	tripID, ok := pathID(w, r, "tripID")
	if !ok {
		return
	}
	if err := h.adminService.DeleteTrip(r.Context(), tripID); err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"message":       "Trip deleted successfully",
		"deletedTripId": tripID,
	})
}

func (h *HandlerImpl) DeleteChat(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteChat"))
	chatID, ok := pathID(w, r, "chatID")
	if !ok {
		return
	}
	if err := h.adminService.DeleteChat(r.Context(), chatID); err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]any{
		"message":       "Chat message deleted successfully",
		"deletedChatId": chatID,
	})
}

func (h *HandlerImpl) GetConversationStats(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetConversationStats"))
	stats, err := h.adminService.GetConversationStats(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, stats)
}

func (h *HandlerImpl) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteConversation"))
	result, err := h.adminService.DeleteConversation(r.Context(), chi.URLParam(r, "conversationID"))
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, result)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}
