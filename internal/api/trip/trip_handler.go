package trip

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sukhpreet-s/travel-planner-api/internal/api"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/auth"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateTrip(w http.ResponseWriter, r *http.Request)
	GetUserTrips(w http.ResponseWriter, r *http.Request)
	GetTrip(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	tripService Service
	logger      *slog.Logger
}

func NewHandlerImpl(tripService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		tripService: tripService,
		logger:      logger,
	}
}

func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateTrip"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.TripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.HandleError(w, r, l, err)
		return
	}

	trip, err := h.tripService.CreateTrip(ctx, req, username)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, types.NewTripResponse(trip))
}

func (h *HandlerImpl) GetUserTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetUserTrips"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	trips, err := h.tripService.GetUserTrips(ctx, username)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}

	responses := make([]types.TripResponse, 0, len(trips))
	for i := range trips {
		responses = append(responses, types.NewTripResponse(&trips[i]))
	}
	api.WriteJSONResponse(w, r, http.StatusOK, responses)
}

func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetTrip"))

	username, ok := auth.GetUsernameFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	tripID, err := strconv.ParseInt(chi.URLParam(r, "tripID"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return
	}

	trip, err := h.tripService.GetUserTrip(ctx, tripID, username)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.NewTripResponse(trip))
}
