package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
	"github.com/DoyleJ11/bingo-tracker/internal/tracker"
	"github.com/DoyleJ11/bingo-tracker/internal/ws"
)

type Options struct {
	FeedOrigins []string        // websocket origin patterns
	DefaultSort engine.SortMode // board order when ?sort is absent
}

func SetupRoutes(svc *tracker.Service, opts Options, log *zap.Logger) http.Handler {
	h := &handlers{svc: svc, log: log, defaultSort: opts.DefaultSort}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/patterns", listPatterns)
	r.Post("/patterns/cells", patternCells)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.createSession)
		r.Get("/", h.listSessions)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getSession)
			r.Delete("/", h.deleteSession)

			r.Get("/cards", h.listCards)
			r.Post("/cards", h.addCard)
			r.Post("/cards/validate", h.validateCard)
			r.Post("/cards/paste", h.pasteCard)
			r.Put("/cards/{cardID}", h.updateCard)
			r.Delete("/cards/{cardID}", h.deleteCard)

			r.Get("/drawn", h.listDrawn)
			r.Post("/drawn", h.drawNumber)
			r.Post("/drawn/undo", h.undoDrawn)
			r.Delete("/drawn/{value}", h.removeDrawn)

			r.Get("/pattern", h.getPattern)
			r.Put("/pattern", h.setPattern)

			r.Get("/board", h.getBoard)
			r.Get("/feed", ws.Handler(svc, opts.FeedOrigins, log.Named("feed")))
		})
	})
	return r
}
