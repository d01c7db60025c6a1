// Package httpapi exposes the read-only status API over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/excoffierleonard/downdetector/internal/domain"
	"github.com/excoffierleonard/downdetector/internal/httpapi/middleware"
)

// StateSource hands out the current state of every monitored site.
type StateSource interface {
	States() []domain.SiteState
}

type Server struct {
	Logger *zap.Logger
	Source StateSource
}

func NewServer(l *zap.Logger, src StateSource) *Server {
	return &Server{Logger: l, Source: src}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(120, 60))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/api/sites", s.handleListSites)
	r.Get("/api/summary", s.handleSummary)

	return r
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Source.States())
}

type summary struct {
	Total   int `json:"total"`
	Up      int `json:"up"`
	Down    int `json:"down"`
	Unknown int `json:"unknown"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var out summary
	for _, st := range s.Source.States() {
		out.Total++
		switch st.Status {
		case domain.StatusUp:
			out.Up++
		case domain.StatusDown:
			out.Down++
		default:
			out.Unknown++
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("api_listen", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Logger.Info("api_stopped")
	return err
}
