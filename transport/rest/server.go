package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 30 * time.Second
)

// NewRouter - builds the chi router with the ping and game routes.
func NewRouter(logger *slog.Logger, games gameUseCase) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	ping := NewPingHandler()
	handlers := NewGameHandlers(logger, games)

	router.Get("/ping", ping.PingHandler)
	router.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", handlers.GetGame)
		r.Get("/hint", handlers.GetHint)
	})

	return router
}

// NewServer - wraps handler into an http.Server listening on port.
func NewServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}
