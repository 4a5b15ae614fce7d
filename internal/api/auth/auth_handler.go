package auth

import (
	"log/slog"
	"net/http"

	"github.com/sukhpreet-s/travel-planner-api/internal/api"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	RegisterAdmin(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService Service
	logger      *slog.Logger
}

func NewHandlerImpl(authService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.HandleError(w, r, l, err)
		return
	}

	resp, err := h.authService.Register(ctx, req)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

func (h *HandlerImpl) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "RegisterAdmin"))

	var req types.AdminRegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.HandleError(w, r, l, err)
		return
	}

	resp, err := h.authService.RegisterAdmin(ctx, req)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.HandleError(w, r, l, err)
		return
	}

	resp, err := h.authService.Login(ctx, req)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
