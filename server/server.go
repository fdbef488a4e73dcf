// Package server 是推荐引擎的 HTTP 外壳：路由、请求校验、访问日志与指标暴露。
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/big5rec/engine"
	"github.com/rushteam/big5rec/pkg/logging"
)

// Server 持有引擎与 http.Server。
type Server struct {
	engine   *engine.Engine
	settings engine.ServerSettings
	http     *http.Server
}

// New 创建 Server。
func New(e *engine.Engine, s engine.ServerSettings) *Server {
	srv := &Server{engine: e, settings: s}
	srv.http = &http.Server{
		Addr:         s.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
	}
	return srv
}

// Handler 返回完整路由。
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(correlationID)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend/personality", s.handleRecommendPersonality)
		r.Post("/recommend/similar", s.handleRecommendSimilar)
		r.Post("/neighbors", s.handleNeighbors)
		r.Get("/personality/questions", s.handleQuestions)
		r.Post("/personality/score", s.handleScore)
	})
	return r
}

// ListenAndServe 阻塞直到 Shutdown。
func (s *Server) ListenAndServe() error {
	logging.Info().Str("listen", s.settings.Listen).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭。
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
