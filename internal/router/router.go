package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sukhpreet-s/travel-planner-api/internal/api/admin"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/auth"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/chat"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/place"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/trip"
)

// Config contains the handlers and middleware the router wires together.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
type Config struct {
	AuthHandler  auth.Handler
	TripHandler  trip.Handler
	ChatHandler  chat.Handler
	PlaceHandler place.Handler
	AdminHandler admin.Handler

	AuthenticateMiddleware func(http.Handler) http.Handler
	RequireAdmin           func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/register-admin", cfg.AuthHandler.RegisterAdmin)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/trips", cfg.TripHandler.CreateTrip)
			r.Get("/trips", cfg.TripHandler.GetUserTrips)
			r.Get("/trips/{tripID}", cfg.TripHandler.GetTrip)

			r.Post("/chat", cfg.ChatHandler.ProcessMessage)
			r.Get("/chat/history", cfg.ChatHandler.GetHistory)

			r.Get("/places", cfg.PlaceHandler.GetAllPlaces)
			r.Get("/places/ai-recommendations", cfg.PlaceHandler.GetAIRecommendations)
			r.Get("/places/city/{city}", cfg.PlaceHandler.GetPlacesByCity)
			r.Get("/places/city/{city}/category/{category}", cfg.PlaceHandler.GetPlacesByCityAndCategory)
			r.Get("/places/city/{city}/top-rated", cfg.PlaceHandler.GetTopRatedPlaces)
			r.Get("/places/{id}", cfg.PlaceHandler.GetPlaceByID)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Use(cfg.RequireAdmin)

			r.Get("/admin/users", cfg.AdminHandler.GetAllUsers)
			r.Get("/admin/trips", cfg.AdminHandler.GetAllTrips)
			r.Get("/admin/chats", cfg.AdminHandler.GetAllChats)
			r.Get("/admin/users/{userID}/trips", cfg.AdminHandler.GetUserTrips)
			r.Get("/admin/users/{userID}/chats", cfg.AdminHandler.GetUserChats)
			r.Delete("/admin/users/{userID}", cfg.AdminHandler.DeleteUser)
			r.Delete("/admin/trips/{tripID}", cfg.AdminHandler.DeleteTrip)
			r.Delete("/admin/chats/{chatID}", cfg.AdminHandler.DeleteChat)
			r.Get("/admin/conversations/{conversationID}/stats", cfg.AdminHandler.GetConversationStats)
			r.Delete("/admin/conversations/{conversationID}", cfg.AdminHandler.DeleteConversation)
		})
	})

	return r
}
