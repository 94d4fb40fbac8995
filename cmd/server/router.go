package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/traderoom/journal-api/internal/api"
	apimiddleware "github.com/traderoom/journal-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.NewRequestLogger(app.logger))

	aiHandler := api.NewAIHandler(app.insights, app.usageGate, app.profileStore, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.tokenVerifier)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/ai", func(r chi.Router) {
				r.Post("/journal-summary", aiHandler.SummarizeJournal)
				r.Post("/pattern-scan", aiHandler.ScanPatterns)
				r.Post("/voice-trade", aiHandler.ParseVoiceTrade)
				r.Post("/checkin", aiHandler.AnalyzeCheckIn)
				r.Post("/weekly-summary", aiHandler.WeeklySummary)
				r.Post("/copilot", aiHandler.Copilot)
				r.Get("/usage", aiHandler.Usage)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
