package api

import (
	"log/slog"
	"net/http"
	"time"
	"travel-ticket-service/internal/api/handlers"
	"travel-ticket-service/internal/ports"
	"travel-ticket-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Deps struct {
	Session *services.Session
	// Device position source for /stations?near=me. Optional.
	Positions ports.PositionProvider
	// Sink for POST /position updates. Optional.
	PositionSink   handlers.PositionSink
	LocateTimeout  time.Duration
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	regHandler := &handlers.RegistrationHandler{Session: d.Session}
	stationHandler := &handlers.StationHandler{
		Session:       d.Session,
		Positions:     d.Positions,
		LocateTimeout: d.LocateTimeout,
	}
	linkHandler := &handlers.LinkHandler{Session: d.Session, Positions: d.PositionSink}
	ticketHandler := &handlers.TicketHandler{Session: d.Session}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(d.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)

	r.Post("/registration", regHandler.Create)
	r.Get("/registration", regHandler.Get)

	r.Get("/stations", stationHandler.Search)
	r.Get("/location/reverse", stationHandler.Reverse)

	r.Route("/link", func(r chi.Router) {
		r.Get("/", linkHandler.Get)
		r.Post("/", linkHandler.Create)
		r.Delete("/", linkHandler.Delete)
	})
	r.Post("/position", linkHandler.Position)

	r.Route("/ticket", func(r chi.Router) {
		r.Get("/", ticketHandler.Status)
		r.Post("/", ticketHandler.Open)
		r.Delete("/", ticketHandler.Close)
		r.Post("/resync", ticketHandler.Resync)
	})

	return r
}
