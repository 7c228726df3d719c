package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/swiss-tournament/docs"
	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AllowedOrigins []string
	AuthRateLimit  int // requests per minute per IP
	TokenParser    middleware.TokenParser
}

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Player     *handlers.PlayerHandler
	Round      *handlers.RoundHandler
	Standings  *handlers.StandingsHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	editorOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.TokenParser))
		r.Use(middleware.RequireEditor("tournamentID"))
	}

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Post("/", h.Tournament.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			// Публичные маршруты для зрителей
			r.Get("/", h.Tournament.GetByIDHandler)
			r.Get("/players", h.Player.ListPlayers)
			r.Get("/rounds", h.Round.ListRounds)
			r.Get("/standings", h.Standings.GetStandings)
			r.Get("/progress", h.Standings.GetProgress)

			r.With(middleware.RateLimit(opts.AuthRateLimit, time.Minute)).Post("/auth", h.Auth.Login)

			// Маршруты редактора
			r.Group(func(r chi.Router) {
				editorOnly(r)

				r.Delete("/", h.Tournament.DeleteHandler)
				r.Post("/players", h.Player.AddPlayer)
				r.Delete("/players/{playerID}", h.Player.RemovePlayer)
				r.Post("/start", h.Round.StartTournament)
				r.Put("/pairings/{pairingID}/result", h.Round.RecordResult)
				r.Post("/rounds/current/finish", h.Round.FinishRound)
				r.Post("/rounds/next", h.Round.NextRound)
				r.Post("/finish", h.Round.FinishTournament)
			})
		})
	})
}
