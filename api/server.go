// Package api serves the machine state over HTTP and streams every tick to
// websocket clients.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/engine"
)

// RoleHeader carries the caller's role, set by the fronting auth layer.
const RoleHeader = "X-Role"

// Server wires an engine, its announcement gate and metrics into routes.
type Server struct {
	eng     *engine.Engine
	gate    *engine.Gate
	metrics *engine.MetricsStore
	hub     *Hub
	log     *zap.Logger

	upgrader websocket.Upgrader
	// registerTimeout bounds how long a new websocket waits for the hub.
	registerTimeout time.Duration
}

// NewServer creates a server. metrics may be nil, in which case /metrics
// reports no data.
func NewServer(eng *engine.Engine, gate *engine.Gate, metrics *engine.MetricsStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = engine.NewMetricsStore()
	}
	return &Server{
		eng:     eng,
		gate:    gate,
		metrics: metrics,
		hub:     NewHub(log.Named("ws")),
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		registerTimeout: 5 * time.Second,
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// OnTick broadcasts the tick and the refreshed state to websocket clients.
func (s *Server) OnTick(res engine.TickResult) {
	if s.hub.Clients() == 0 {
		return
	}
	if len(res.Alerts) > 0 {
		s.hub.Broadcast("alerts", res.Alerts)
	}
	s.hub.Broadcast("state", s.eng.State())
}

// Router builds the chi route tree. Websocket clients are only served while
// the hub's Run loop is running; ListenAndServe starts it.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(zapLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/readings", s.handleReadings)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/history/{metric}", s.handleHistory)
		r.Get("/rul", s.handleRUL)
		r.Get("/power", s.handlePower)
		r.Get("/logs", s.handleLogs)
		r.Get("/tasks", s.handleTasks)
		r.Get("/voice", s.handleVoice)

		r.Group(func(r chi.Router) {
			r.Use(s.withControls)
			r.Post("/eco", s.handleEco)
			r.Post("/voice/pause", s.handleVoicePause)
			r.Post("/voice/resume", s.handleVoiceResume)
			r.Post("/tasks/optimize", s.handleOptimize)
		})
	})
	return r
}

// ListenAndServe runs the hub and HTTP server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("api stopped")
		return nil
	}
}

// zapLogger is chi's request logger routed through zap.
func zapLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
				zap.String("req_id", middleware.GetReqID(r.Context())))
		})
	}
}
