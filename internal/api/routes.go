package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(securityHeaders)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(withTimeout(s.requestTimeout()))
		r.Post("/", s.handleStartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(sessionScope)
			r.Get("/", s.handleGetSession)
			r.Post("/gestures", s.handleGesture)
			r.Post("/frames", s.handleFrames)
			r.Post("/hint", s.handleHint)
			r.Post("/submit", s.handleRetrySubmit)
			r.Get("/results", s.handleResults)
			r.Get("/recap", s.handleRecap)
		})
	})
	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.RequestTimeout > 0 {
		return s.RequestTimeout
	}
	return 30 * time.Second
}
