package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(15 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)

		r.Get("/session", s.handleSession)
		r.Post("/session/start", s.handleStartSession)
		r.Post("/session/answer", s.handleSubmitAnswer)
		r.Post("/session/next", s.handleAdvance)
		r.Post("/session/finish", s.handleFinish)
		r.Post("/session/reset", s.handleReset)
		r.Get("/session/summary", s.handleSummary)
		r.Get("/session/explanation", s.handleSessionExplanation)

		r.Get("/explanations/{category}", s.handleExplanation)
		r.Get("/reference", s.handleReference)
		r.Get("/mastery", s.handleMastery)
		r.Get("/mastery/{imageID}", s.handleImageMastery)
		r.Get("/sessions", s.handleSessions)
		r.Get("/pool", s.handlePool)
	})

	r.Get("/images/{category}/{filename}", s.handleImage)
	return r
}
