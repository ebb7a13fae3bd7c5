package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/notes-be/internal/api/handlers"
	"github.com/isdelr/notes-be/internal/auth"
	"github.com/isdelr/notes-be/internal/services"
	"github.com/isdelr/notes-be/internal/websocket"
)

// Dependencies groups everything the router hands to its handlers.
type Dependencies struct {
	Tokens         auth.TokenValidator
	Notes          services.NoteServiceProvider
	Users          services.UserServiceProvider
	Login          services.LoginServiceProvider
	Teams          services.TeamServiceProvider
	Health         handlers.Pinger
	Hub            *websocket.Hub
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Identity is optional here; handlers that need it check the claims.
	r.Use(auth.Middleware(deps.Tokens))

	// Initialize handlers
	noteHandler := handlers.NewNoteHandler(deps.Notes)
	userHandler := handlers.NewUserHandler(deps.Users)
	loginHandler := handlers.NewLoginHandler(deps.Login)
	teamHandler := handlers.NewTeamHandler(deps.Teams)
	healthHandler := handlers.NewHealthHandler(deps.Health)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)

	requireAdmin := auth.RequireAdmin(deps.Users)

	r.Get("/healthz", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Handle(loginHandler.Login))

		r.Route("/notes", func(r chi.Router) {
			r.Get("/ws", wsHandler.Serve)
			r.Get("/", handlers.Handle(noteHandler.GetAll))
			r.Post("/", handlers.Handle(noteHandler.Create))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.Handle(noteHandler.Get))
				r.Put("/", handlers.Handle(noteHandler.Update))
				r.Delete("/", handlers.Handle(noteHandler.Delete))
				r.Post("/mark", handlers.Handle(noteHandler.Mark))
				r.Delete("/mark", handlers.Handle(noteHandler.Unmark))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", handlers.Handle(userHandler.GetAll))
			r.Post("/", handlers.Handle(userHandler.Create))
			r.Get("/{id}", handlers.Handle(userHandler.Get))
			r.With(requireAdmin).Put("/{username}", handlers.Handle(userHandler.SetDisabled))
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", handlers.Handle(teamHandler.GetAll))
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", handlers.Handle(teamHandler.Create))
				r.Post("/{id}/members", handlers.Handle(teamHandler.AddMember))
				r.Delete("/{id}/members/{userId}", handlers.Handle(teamHandler.RemoveMember))
			})
		})
	})

	r.NotFound(handlers.NotFound)

	return r
}
