package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/metrics"
	"github.com/kimamovic21/real-estate-marketplace/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler serves the JSON API under /api.
type Handler struct {
	auth     *usecase.AuthUsecase
	listings *usecase.ListingUsecase
	users    *usecase.UserUsecase
	tokens   *auth.TokenService
	limits   UploadLimits
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
}

// UploadLimits bounds multipart listing bodies.
type UploadLimits struct {
	MaxImages     int
	MaxImageBytes int64
}

type Deps struct {
	Auth     *usecase.AuthUsecase
	Listings *usecase.ListingUsecase
	Users    *usecase.UserUsecase
	Tokens   *auth.TokenService
	Limits   UploadLimits
	Metrics  *metrics.MetricsManager
}

func New(deps Deps, log *logger.Logger) *Handler {
	return &Handler{
		auth:     deps.Auth,
		listings: deps.Listings,
		users:    deps.Users,
		tokens:   deps.Tokens,
		limits:   deps.Limits,
		metrics:  deps.Metrics,
		logger:   log.Named("HTTPHandler"),
	}
}

// Routes builds the chi router with every API route mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(h.logger, h.metrics))

	r.Route("/api", func(r chi.Router) {
		r.Get("/test", h.HandleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.HandleSignUp)
			r.Post("/signin", h.HandleSignIn)
			r.Post("/google", h.HandleGoogle)
			r.Get("/signout", h.HandleSignOut)
		})

		r.Route("/listing", func(r chi.Router) {
			r.Post("/create", h.HandleCreateListing)
			r.Put("/update/{id}", h.HandleUpdateListing)
			r.Post("/update/{id}", h.HandleUpdateListing)
			r.Delete("/delete/{id}", h.HandleDeleteListing)
			r.Get("/get/{id}", h.HandleGetListing)
			r.Get("/get", h.HandleSearchListings)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/{id}", h.HandleGetUser)
			r.Post("/update/{id}", h.HandleUpdateUser)
			r.Delete("/delete/{id}", h.HandleDeleteUser)
			r.Get("/listings/{id}", h.HandleUserListings)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{StatusCode: http.StatusNotFound, Error: "NotFound", Message: "Route not found"})
	})

	return otelhttp.NewHandler(r, "estate-http")
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "API is working!",
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
