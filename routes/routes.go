package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/beachpoint/portal/handlers"
	"github.com/beachpoint/portal/middleware"
)

// SetupRoutes настраивает маршруты портала.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	rateLimitPerMinute int,
	flowHandler *handlers.FlowHandler,
	pairingHandler *handlers.PairingHandler,
	submissionHandler *handlers.SubmissionHandler,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RateLimit(rateLimitPerMinute, time.Minute))

	router.Get("/swagger/*", httpSwagger.Handler())

	// Живые обновления сетки: токен сокету не нужен, комната публичная,
	// как и сама страница групп.
	router.Get("/ws/tournaments/{tournamentID}/categories/{categoryID}", webSocketHandler.ServeBracket)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Route("/flows", func(r chi.Router) {
			r.Post("/", flowHandler.Start)
			r.Route("/{flowID}", func(r chi.Router) {
				r.Get("/", flowHandler.Get)
				r.Delete("/", flowHandler.Abandon)
				r.Post("/selections", flowHandler.Select)
				r.Post("/submit", submissionHandler.Submit)

				r.Route("/pairing", func(r chi.Router) {
					r.Post("/open", pairingHandler.Open)
					r.Get("/candidates", pairingHandler.Search)
					r.Post("/partner", pairingHandler.Choose)
					r.Delete("/partner", pairingHandler.Remove)
					r.Post("/shirt-size", pairingHandler.SetShirtSize)
					r.Post("/confirm", pairingHandler.Confirm)
					r.Delete("/", pairingHandler.CancelPairing)
				})
			})
		})

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/categories/{categoryID}/bracket", bracketHandler.GetBracket)
			r.Get("/submission-outcomes", submissionHandler.Outcomes)
		})
	})
}
