package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Router on the standard library http.ServeMux with method patterns
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// ServeHTTP dispatches to the mux, writes one access log entry per request
// and turns a handler panic into a 500 envelope.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Handler panic",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Any("panic", p),
				zap.Stack("stack"),
			)
			if !rec.wrote {
				respond(rec, http.StatusInternalServerError, Fail("internal error"))
			}
		}

		r.logger.Debug("HTTP request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	r.mux.ServeHTTP(rec, req)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wrote {
		s.status = code
		s.wrote = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wrote = true
	return s.ResponseWriter.Write(b)
}

// RegisterResultsRoutes per-user analytics endpoints
func (r *Router) RegisterResultsRoutes(h *ResultsHandler) {
	r.Handle("GET /api/v1/users/{user_id}/results", h.GetResults)
	r.Handle("GET /api/v1/users/{user_id}/recordings", h.ListRecordings)
	r.Handle("POST /api/v1/users/{user_id}/recordings", h.AddRecording)
	r.Handle("GET /api/v1/users/{user_id}/smoothed", h.GetSmoothed)
	r.Handle("GET /api/v1/users/{user_id}/histogram", h.GetHistogram)
	r.Handle("GET /api/v1/users/{user_id}/distribution", h.GetDistribution)
	r.Handle("GET /api/v1/users/{user_id}/export", h.Export)
}

// RegisterHealthRoute liveness probe
func (r *Router) RegisterHealthRoute() {
	r.Handle("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		respondOk(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
