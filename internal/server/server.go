// Package server exposes the local state store and sync engine over HTTP so
// other UIs on the same machine can render and mutate habits. It does not
// talk to the remote store itself; every write goes through the engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/brk3/habitcal/internal/logger"
	"github.com/brk3/habitcal/internal/syncer"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	engine *syncer.Engine
	hub    *Hub
	now    func() time.Time
}

// New returns a server for engine. The server's hub becomes the engine's
// renderer.
func New(engine *syncer.Engine) *Server {
	s := &Server{
		engine: engine,
		hub:    NewHub(),
		now:    time.Now,
	}
	engine.SetRenderer(s.hub)
	return s
}

func (s *Server) Hub() *Hub { return s.hub }

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	// The websocket route sits outside the metrics middleware, whose
	// response writer cannot be hijacked.
	r.Get("/events", s.hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(metricsMiddleware)

		r.Get("/version", s.getVersionInfo)
		r.Handle("/metrics", promhttp.Handler())
		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.listHabits)
			r.Post("/", s.createHabit)
		})
		r.Post("/series", s.createSeries)
		r.Route("/days/{date}", func(r chi.Router) {
			r.Get("/", s.getDay)
			r.Post("/completions/{habit_id}", s.completeHabit)
		})
		r.Post("/sync", s.sync)
		r.Get("/writes", s.listWrites)
		r.Delete("/writes/failed", s.clearFailedWrites)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
