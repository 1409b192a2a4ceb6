package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-radar-service/internal/display"
	"github.com/couchcryptid/storm-radar-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Radar is what the server needs from the running pipeline.
type Radar interface {
	sharedobs.ReadinessChecker
	Latest() (domain.Frame, bool)
	Zoom() int
	SetZoom(zoom int) error
}

// Server exposes health, readiness, metrics and frame HTTP endpoints.
type Server struct {
	httpServer *http.Server
	radar      Radar
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, /frame
// and /zoom routes.
func NewServer(addr string, radar Radar, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		radar:  radar,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(radar))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /frame", s.handleFrame)
	mux.HandleFunc("GET /zoom", s.handleGetZoom)
	mux.HandleFunc("POST /zoom", s.handleSetZoom)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleFrame serves the latest frame as text (default), ansi or json.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "ansi" && format != "json" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "format must be text, ansi or json"})
		return
	}

	frame, ok := s.radar.Latest()
	if !ok || frame.Grid == nil {
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no frame rendered yet"})
		return
	}

	switch format {
	case "json":
		data, err := display.EncodeFrame(frame)
		if err != nil {
			s.logger.Error("encode frame", "error", err)
			sharedobs.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "encode frame"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data) //nolint:errcheck // client went away
	case "ansi":
		writeText(w, display.ANSI(frame.Grid))
	default:
		writeText(w, display.Text(frame.Grid))
	}
}

func (s *Server) handleGetZoom(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]int{"zoom": s.radar.Zoom()})
}

// handleSetZoom changes the zoom level via ?level=N.
func (s *Server) handleSetZoom(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "level must be an integer"})
		return
	}
	if err := s.radar.SetZoom(level); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Info("zoom changed", "zoom", level)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]int{"zoom": level})
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body + "\n")) //nolint:errcheck // client went away
}
