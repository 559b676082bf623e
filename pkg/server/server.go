package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/log"
	"github.com/chewxy/math32"
	"github.com/gorilla/mux"

	"github.com/oxygene76/vecmath/pkg/analysis"
	"github.com/oxygene76/vecmath/pkg/utils"
	"github.com/oxygene76/vecmath/pkg/vecmath"
)

// maxSamples bounds the sampling endpoint so one request cannot pin a CPU.
const maxSamples = 100000

// Server exposes vecmath operations as a JSON API
type Server struct {
	cfg    *utils.Config
	logger log.Logger
	router *mux.Router
}

// New creates a server and registers its routes
func New(cfg *utils.Config, logger log.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.With("module", "server"),
		router: mux.NewRouter(),
	}

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods("GET")
	api.HandleFunc("/spherical", s.handleSpherical).Methods("POST")
	api.HandleFunc("/spherical/{up}", s.handleSpherical).Methods("POST")
	api.HandleFunc("/cartesian", s.handleCartesian).Methods("POST")
	api.HandleFunc("/rotate", s.handleRotate).Methods("POST")
	api.HandleFunc("/frame", s.handleFrame).Methods("POST")
	api.HandleFunc("/reflect", s.handleReflect).Methods("POST")
	api.HandleFunc("/normalize", s.handleNormalize).Methods("POST")
	api.HandleFunc("/sample", s.handleSample).Methods("GET")

	s.router.Use(s.loggingMiddleware)

	return s
}

// Handler returns the HTTP handler for the API. CORS wraps the router rather
// than running as router middleware, since mux answers an OPTIONS preflight
// with 405 before any middleware sees it.
func (s *Server) Handler() http.Handler {
	if s.cfg.Server.CORS {
		return corsMiddleware(s.router)
	}
	return s.router
}

// Start serves on the configured port until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

// vectorResult carries a vector that may have been contaminated by NaN or
// Inf, which JSON cannot encode.
type vectorResult struct {
	Vector *vecmath.Vector3 `json:"vector"`
	NaN    bool             `json:"nan"`
}

func newVectorResult(v vecmath.Vector3) vectorResult {
	if !finite(v[0]) || !finite(v[1]) || !finite(v[2]) {
		return vectorResult{NaN: v.IsNaN()}
	}
	return vectorResult{Vector: &v}
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func finitePtr(f float32) *float32 {
	if !finite(f) {
		return nil
	}
	return &f
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"up":     s.cfg.UpDirection().String(),
	})
}

func (s *Server) handleSpherical(w http.ResponseWriter, r *http.Request) {
	var req struct {
		R     float32 `json:"r"`
		Theta float32 `json:"theta"`
		Phi   float32 `json:"phi"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	up := s.cfg.UpDirection()
	if name, ok := mux.Vars(r)["up"]; ok {
		parsed, err := vecmath.ParseUpDirection(name)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		up = parsed
	}

	v, err := vecmath.FromSphericalUp(req.R, req.Theta, req.Phi, up)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, newVectorResult(v))
}

func (s *Server) handleCartesian(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vector vecmath.Vector3 `json:"vector"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	theta, phi := vecmath.ToSpherical(req.Vector)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"theta": finitePtr(theta),
		"phi":   finitePtr(phi),
		"nan":   math32.IsNaN(theta) || math32.IsNaN(phi),
	})
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vector vecmath.Vector3 `json:"vector"`
		Theta  float32         `json:"theta"`
		Phi    float32         `json:"phi"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, newVectorResult(vecmath.Rotate(req.Vector, req.Theta, req.Phi)))
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Normal vecmath.Vector3 `json:"normal"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	tangent, binormal := vecmath.MakeBiNormalTangent(req.Normal)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tangent":  newVectorResult(tangent),
		"binormal": newVectorResult(binormal),
	})
}

func (s *Server) handleReflect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vector vecmath.Vector3 `json:"vector"`
		Normal vecmath.Vector3 `json:"normal"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, newVectorResult(vecmath.Reflect(req.Vector, req.Normal)))
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Vector vecmath.Vector3 `json:"vector"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	unit := vecmath.Normalize(req.Vector)
	if unit.IsNaN() {
		s.logger.Debug("normalize produced NaN", "vector", req.Vector.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vector": newVectorResult(unit).Vector,
		"length": finitePtr(vecmath.Length(req.Vector)),
		"nan":    unit.IsNaN(),
	})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	count := s.cfg.Sample.Count
	seed := s.cfg.Sample.Seed
	tolerance := s.cfg.Math.Epsilon
	q := r.URL.Query()
	if c := q.Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid count: %w", err))
			return
		}
		count = n
	}
	if sd := q.Get("seed"); sd != "" {
		n, err := strconv.ParseInt(sd, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid seed: %w", err))
			return
		}
		seed = n
	}
	if tol := q.Get("tolerance"); tol != "" {
		f, err := strconv.ParseFloat(tol, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid tolerance: %w", err))
			return
		}
		tolerance = f
	}
	if count > maxSamples {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("count exceeds %d", maxSamples))
		return
	}

	report, err := analysis.SampleFrames(count, seed, tolerance)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("request failed", "status", status, "err", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start).String())
	})
}

// corsMiddleware enables CORS for browser clients
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
