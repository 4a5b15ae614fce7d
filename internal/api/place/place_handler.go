package place

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sukhpreet-s/travel-planner-api/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetAllPlaces(w http.ResponseWriter, r *http.Request)
	GetPlaceByID(w http.ResponseWriter, r *http.Request)
	GetPlacesByCity(w http.ResponseWriter, r *http.Request)
	GetPlacesByCityAndCategory(w http.ResponseWriter, r *http.Request)
	GetTopRatedPlaces(w http.ResponseWriter, r *http.Request)
	GetAIRecommendations(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	placeService Service
	logger       *slog.Logger
}

func NewHandlerImpl(placeService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		placeService: placeService,
		logger:       logger,
	}
}

func (h *HandlerImpl) GetAllPlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetAllPlaces"))

	places, err := h.placeService.GetAllPlaces(ctx)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

func (h *HandlerImpl) GetPlaceByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetPlaceByID"))

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid place id")
		return
	}

	place, err := h.placeService.GetPlaceByID(ctx, id)
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, place)
}

func (h *HandlerImpl) GetPlacesByCity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetPlacesByCity"))

	places, err := h.placeService.GetPlacesByCity(ctx, chi.URLParam(r, "city"))
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

func (h *HandlerImpl) GetPlacesByCityAndCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetPlacesByCityAndCategory"))

	places, err := h.placeService.GetPlacesByCityAndCategory(ctx,
		chi.URLParam(r, "city"), chi.URLParam(r, "category"))
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

func (h *HandlerImpl) GetTopRatedPlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetTopRatedPlaces"))

	places, err := h.placeService.GetTopRatedPlacesInCity(ctx, chi.URLParam(r, "city"))
	if err != nil {
		api.HandleError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

func (h *HandlerImpl) GetAIRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	city := r.URL.Query().Get("city")
	if city == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city query parameter is required")
		return
	}

	input := RecommendationInput{
		City:         city,
		DurationDays: 3,
		Budget:       1000,
		Companions:   "solo",
	}
	if v := r.URL.Query().Get("interests"); v != "" {
		input.Interests = strings.Split(v, ",")
	}
	if v := r.URL.Query().Get("duration"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			input.DurationDays = d
		}
	}
	if v := r.URL.Query().Get("budget"); v != "" {
		if b, err := strconv.ParseFloat(v, 64); err == nil && b >= 0 {
			input.Budget = b
		}
	}
	if v := r.URL.Query().Get("companions"); v != "" {
		input.Companions = v
	}

	rec := h.placeService.RecommendPlaces(ctx, input)
	api.WriteJSONResponse(w, r, http.StatusOK, rec)
}
