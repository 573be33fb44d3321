package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
	"github.com/Mohanmohan007/BSC-CARE/internal/service"
)

// ResultsHandler /api/v1/users/{user_id}/... endpoints
type ResultsHandler struct {
	results service.ResultsService
	logger  *zap.Logger
}

func NewResultsHandler(results service.ResultsService, logger *zap.Logger) *ResultsHandler {
	return &ResultsHandler{
		results: results,
		logger:  logger,
	}
}

// GetResults GET /api/v1/users/{user_id}/results
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	resp, err := h.results.GetResults(r.Context(), service.GetResultsRequest{UserID: r.PathValue("user_id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOk(w, http.StatusOK, resp)
}

// ListRecordings GET /api/v1/users/{user_id}/recordings
func (h *ResultsHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	resp, err := h.results.ListRecordings(r.Context(), service.ListRecordingsRequest{UserID: r.PathValue("user_id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOk(w, http.StatusOK, resp)
}

// AddRecording POST /api/v1/users/{user_id}/recordings
func (h *ResultsHandler) AddRecording(w http.ResponseWriter, r *http.Request) {
	var rec models.Recording
	if err := readBodyJSON(r, maxBodyBytes, &rec); err != nil {
		badRequest(w, "invalid body: %v", err)
		return
	}

	resp, err := h.results.AddRecording(r.Context(), service.AddRecordingRequest{
		UserID:    r.PathValue("user_id"),
		Recording: rec,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOk(w, http.StatusCreated, resp)
}

// GetSmoothed GET /api/v1/users/{user_id}/smoothed?field=&window=
func (h *ResultsHandler) GetSmoothed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := parseInt(q.Get("window"), 0)
	if err != nil {
		badRequest(w, "window must be an integer")
		return
	}

	resp, err := h.results.GetSmoothed(r.Context(), service.GetSmoothedRequest{
		UserID: r.PathValue("user_id"),
		Field:  q.Get("field"),
		Window: window,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOk(w, http.StatusOK, resp)
}

// GetHistogram GET /api/v1/users/{user_id}/histogram?field=&buckets=&last=
func (h *ResultsHandler) GetHistogram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	buckets, err := parseInt(q.Get("buckets"), 0)
	if err != nil {
		badRequest(w, "buckets must be an integer")
		return
	}
	last, err := parseInt(q.Get("last"), 0)
	if err != nil {
		badRequest(w, "last must be an integer")
		return
	}

	resp, err := h.results.GetHistogram(r.Context(), service.GetHistogramRequest{
		UserID:  r.PathValue("user_id"),
		Field:   q.Get("field"),
		Buckets: buckets,
		Last:    last,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOk(w, http.StatusOK, resp)
}

// GetDistribution GET /api/v1/users/{user_id}/distribution
func (h *ResultsHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	resp, err := h.results.GetDistribution(r.Context(), service.GetDistributionRequest{UserID: r.PathValue("user_id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondOk(w, http.StatusOK, resp)
}

// Export GET /api/v1/users/{user_id}/export, history as .xlsx
func (h *ResultsHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	resp, err := h.results.GetResults(r.Context(), service.GetResultsRequest{UserID: userID})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data, err := GenerateRecordingsExport(resp.History)
	if err != nil {
		h.logger.Error("Failed to generate export", zap.String("user_id", userID), zap.Error(err))
		respond(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("bsc-care-%s-%s.xlsx", userID, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *ResultsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("Request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondErr(w, err)
}
