package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/hoteldesk/internal/api/handlers"
	"github.com/hugh/hoteldesk/internal/api/middleware"
	"github.com/hugh/hoteldesk/internal/auth"
	"github.com/hugh/hoteldesk/internal/records"
	"github.com/hugh/hoteldesk/internal/store"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	Store         store.Store
	Logger        *slog.Logger
	JWTService    auth.TokenService
	AuthService   auth.Authenticator
	RecordService *records.Service
	CORSOrigin    string // Single browser origin allowed to call the API
	PublicBaseURL string // Overrides the request host in approval links
	Development   bool   // Echo internal error details to clients
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecureHeaders(cfg.Development))

	allowedOrigin := cfg.CORSOrigin
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Options)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONMessage(w, http.StatusNotFound, "Không tìm thấy")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONMessage(w, http.StatusMethodNotAllowed, "Phương thức không được hỗ trợ")
	})

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.Store)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.PublicBaseURL, cfg.Logger, cfg.Development)
	recordHandler := handlers.NewRecordHandler(cfg.RecordService, cfg.Logger, cfg.Development)

	r.Route("/api", func(r chi.Router) {
		// Health endpoints
		r.Get("/health", healthHandler.Health)
		r.Get("/ready", healthHandler.Ready)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Get("/approve", authHandler.Approve)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot", authHandler.Forgot)

			r.With(middleware.Auth(cfg.JWTService)).Get("/me", authHandler.Me)
		})

		r.Route("/data/{table}", func(r chi.Router) {
			r.Get("/", recordHandler.List)
			r.Post("/", recordHandler.Create)
			r.Put("/{id}", recordHandler.Update)
			r.Delete("/{id}", recordHandler.Delete)
		})
	})

	return &Router{r}
}

func writeJSONMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
