// Package http exposes the hazard engine over HTTP: health, readiness,
// and metrics endpoints plus a per-site hazard calculation endpoint.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/geo"
)

// HazardService computes a hazard result for a site.
type HazardService interface {
	Curves(ctx context.Context, site calc.Site) (*calc.Result, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes health, readiness, metrics, and hazard HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and
// POST /hazard routes.
func NewServer(addr string, svc HazardService, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	// Plain paths with an explicit method check: the module's go directive
	// selects the ServeMux without method-prefixed patterns.
	route := func(method, path string, h http.Handler) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
				return
			}
			h.ServeHTTP(w, r)
		})
	}
	route(http.MethodGet, "/healthz", http.HandlerFunc(s.handleHealth))
	route(http.MethodGet, "/readyz", handleReady(ready))
	route(http.MethodGet, "/metrics", promhttp.Handler())
	route(http.MethodPost, "/hazard", s.handleHazard(svc))

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// HazardRequest is the POST /hazard payload.
type HazardRequest struct {
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Vs30       *float64 `json:"vs30,omitempty"`
	VsMeasured bool     `json:"vs_measured,omitempty"`
	Z1p0       *float64 `json:"z1p0,omitempty"`
	Z2p5       *float64 `json:"z2p5,omitempty"`
}

// HazardResponse carries per-IMT curves in the linear-amplitude,
// Poisson-probability domain.
type HazardResponse struct {
	ID         string               `json:"id"`
	Site       string               `json:"site"`
	ComputedAt time.Time            `json:"computed_at"`
	Curves     map[string]CurveJSON `json:"curves"`
}

// CurveJSON is one exceedance curve.
type CurveJSON struct {
	Amplitudes    []float64 `json:"amplitudes"`
	Probabilities []float64 `json:"probabilities"`
}

func (s *Server) handleHazard(svc HazardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()

		var req HazardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		b := calc.NewSiteBuilder().
			Name(req.Name).
			Location(geo.NewLocation(req.Lat, req.Lon)).
			VsInferred(!req.VsMeasured)
		if req.Vs30 != nil {
			b.Vs30(*req.Vs30)
		}
		if req.Z1p0 != nil {
			b.Z1p0(*req.Z1p0)
		}
		if req.Z2p5 != nil {
			b.Z2p5(*req.Z2p5)
		}
		site, err := b.Build()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		result, err := svc.Curves(r.Context(), site)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, calc.ErrCanceled) {
				status = http.StatusRequestTimeout
			}
			s.logger.Error("hazard calculation failed", "request_id", id, "site", site.Name, "error", err)
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		resp := HazardResponse{
			ID:         id,
			Site:       site.Name,
			ComputedAt: result.ComputedAt,
			Curves:     make(map[string]CurveJSON),
		}
		for _, imt := range result.Config.Imts() {
			c := result.Curve(imt)
			resp.Curves[string(imt)] = CurveJSON{
				Amplitudes:    append([]float64(nil), c.Xs()...),
				Probabilities: append([]float64(nil), c.Ys()...),
			}
		}
		s.logger.Info("hazard calculation served", "request_id", id, "site", site.Name)
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
