package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mohanmohan007/BSC-CARE/internal/analytics"
	"github.com/Mohanmohan007/BSC-CARE/internal/models"
	"github.com/Mohanmohan007/BSC-CARE/internal/repository"
)

var (
	// ErrInvalidArgument request is missing or has a malformed parameter
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDuplicateRecording recording id already stored for the user
	ErrDuplicateRecording = errors.New("recording already exists")
)

// AttentionNotifier receives newly stored recordings that classify as Attention
type AttentionNotifier interface {
	NotifyAttention(ctx context.Context, userID string, rec models.Recording, status models.HealthStatus) error
}

// AnalyticsOptions defaults applied when a request leaves a parameter unset
type AnalyticsOptions struct {
	SmoothingWindow  int
	HistogramBuckets int
	HistogramRecent  int
}

// ResultsService results dashboard and recording history
type ResultsService interface {
	GetResults(ctx context.Context, req GetResultsRequest) (*GetResultsResponse, error)
	ListRecordings(ctx context.Context, req ListRecordingsRequest) (*ListRecordingsResponse, error)
	AddRecording(ctx context.Context, req AddRecordingRequest) (*AddRecordingResponse, error)
	GetSmoothed(ctx context.Context, req GetSmoothedRequest) (*GetSmoothedResponse, error)
	GetHistogram(ctx context.Context, req GetHistogramRequest) (*GetHistogramResponse, error)
	GetDistribution(ctx context.Context, req GetDistributionRequest) (*GetDistributionResponse, error)
}

// ResultsCache short-lived per-user dashboard cache. Get returns nil on a
// miss along with the user's cache version; Put must be given that version so
// a dashboard built before an Invalidate is never served after it.
type ResultsCache interface {
	Get(ctx context.Context, userID string) (*GetResultsResponse, int64, error)
	Put(ctx context.Context, userID string, version int64, resp *GetResultsResponse) error
	Invalidate(ctx context.Context, userID string) error
}

type resultsService struct {
	repo     repository.RecordingRepository
	notifier AttentionNotifier // optional
	cache    ResultsCache      // optional
	opts     AnalyticsOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewResultsService creates a ResultsService. notifier and cache may be nil.
func NewResultsService(repo repository.RecordingRepository, notifier AttentionNotifier, cache ResultsCache, opts AnalyticsOptions, logger *zap.Logger) ResultsService {
	return &resultsService{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// HistoryEntry one history row with its derived status
type HistoryEntry struct {
	models.Recording
	Status       models.HealthStatus `json:"status"`
	SymptomCount int                 `json:"symptomCount"`
	Temperature  *analytics.Band     `json:"temperatureBand,omitempty"`
}

// GetResultsRequest
type GetResultsRequest struct {
	UserID string // required
}

// GetResultsResponse everything the results screen shows
type GetResultsResponse struct {
	UserID          string               `json:"userId"`
	TotalRecordings int                  `json:"totalRecordings"`
	Latest          *models.Recording    `json:"latest"`
	Status          *models.HealthStatus `json:"status"`
	Score           int                  `json:"score"`
	Temperature     *analytics.Band      `json:"temperatureBand,omitempty"`

	HeartRateDelta       *string `json:"heartRateDelta"`
	RespiratoryRateDelta *string `json:"respiratoryRateDelta"`

	AverageHeartRate       float64 `json:"averageHeartRate"`
	AverageRespiratoryRate float64 `json:"averageRespiratoryRate"`

	HeartRateTrend       []models.SmoothedPoint      `json:"heartRateTrend"`
	RespiratoryRateTrend []models.SmoothedPoint      `json:"respiratoryRateTrend"`
	Distribution         []models.DistributionBucket `json:"distribution"`
	HeartRateHistogram   []models.HistogramBin       `json:"heartRateHistogram"`
	History              []HistoryEntry              `json:"history"` // newest first
}

// GetResults builds the dashboard from the user's current history
func (s *resultsService) GetResults(ctx context.Context, req GetResultsRequest) (*GetResultsResponse, error) {
	cacheable := false
	var version int64
	if s.cache != nil && req.UserID != "" {
		cached, v, err := s.cache.Get(ctx, req.UserID)
		switch {
		case err != nil:
			s.logger.Warn("Results cache unavailable", zap.String("user_id", req.UserID), zap.Error(err))
		case cached != nil:
			return cached, nil
		default:
			cacheable, version = true, v
		}
	}

	resp, err := s.buildResults(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Put(ctx, req.UserID, version, resp); err != nil {
			s.logger.Warn("Failed to cache results", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *resultsService) buildResults(ctx context.Context, userID string) (*GetResultsResponse, error) {
	series, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &GetResultsResponse{
		UserID:          userID,
		TotalRecordings: len(series),
		Distribution:    analytics.Aggregate(series),
		History:         history(series),
	}

	if resp.HeartRateTrend, err = analytics.Smooth(series, analytics.FieldHeartRate, s.opts.SmoothingWindow); err != nil {
		return nil, err
	}
	if resp.RespiratoryRateTrend, err = analytics.Smooth(series, analytics.FieldRespiratoryRate, s.opts.SmoothingWindow); err != nil {
		return nil, err
	}
	if resp.AverageHeartRate, err = analytics.Average(series, analytics.FieldHeartRate); err != nil {
		return nil, err
	}
	if resp.AverageRespiratoryRate, err = analytics.Average(series, analytics.FieldRespiratoryRate); err != nil {
		return nil, err
	}

	recent, err := analytics.Values(analytics.Tail(series, s.opts.HistogramRecent), analytics.FieldHeartRate)
	if err != nil {
		return nil, err
	}
	resp.HeartRateHistogram = analytics.Histogram(recent, s.opts.HistogramBuckets)

	if len(series) == 0 {
		return resp, nil
	}

	latest := series[len(series)-1]
	status := analytics.Classify(latest)
	resp.Latest = &latest
	resp.Status = &status
	resp.Score = analytics.Score(status.Status)
	if latest.Survey != nil {
		band := analytics.TemperatureBand(latest.Survey.BodyTemperature, latest.Survey.TemperatureUnit())
		resp.Temperature = &band
	}

	var prevHR, prevRR *float64
	if len(series) > 1 {
		prev := series[len(series)-2]
		hr, rr := float64(prev.HeartRate), float64(prev.RespiratoryRate)
		prevHR, prevRR = &hr, &rr
	}
	resp.HeartRateDelta = analytics.Delta(float64(latest.HeartRate), prevHR)
	resp.RespiratoryRateDelta = analytics.Delta(float64(latest.RespiratoryRate), prevRR)

	return resp, nil
}

// ListRecordingsRequest
type ListRecordingsRequest struct {
	UserID string // required
}

// ListRecordingsResponse chronological history, oldest first
type ListRecordingsResponse struct {
	Items []models.Recording `json:"items"`
	Total int                `json:"total"`
}

func (s *resultsService) ListRecordings(ctx context.Context, req ListRecordingsRequest) (*ListRecordingsResponse, error) {
	series, err := s.load(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &ListRecordingsResponse{Items: series, Total: len(series)}, nil
}

// AddRecordingRequest
type AddRecordingRequest struct {
	UserID    string // required
	Recording models.Recording
}

// AddRecordingResponse stored recording and its classification
type AddRecordingResponse struct {
	Recording models.Recording    `json:"recording"`
	Status    models.HealthStatus `json:"status"`
}

// AddRecording appends a completed recording. A missing id or timestamp is
// filled in server side.
func (s *resultsService) AddRecording(ctx context.Context, req AddRecordingRequest) (*AddRecordingResponse, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}

	rec := req.Recording
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now().UTC()
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	inserted, err := s.repo.Insert(ctx, req.UserID, rec)
	if err != nil {
		s.logger.Error("AddRecording failed",
			zap.String("user_id", req.UserID),
			zap.String("recording_id", rec.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to store recording: %w", err)
	}
	if !inserted {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRecording, rec.ID)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, req.UserID); err != nil {
			s.logger.Warn("Failed to invalidate results cache", zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	status := analytics.Classify(rec)
	if status.Status == models.StatusAttention && s.notifier != nil {
		if err := s.notifier.NotifyAttention(ctx, req.UserID, rec, status); err != nil {
			s.logger.Warn("Failed to notify attention",
				zap.String("user_id", req.UserID),
				zap.String("recording_id", rec.ID),
				zap.Error(err),
			)
		}
	}

	return &AddRecordingResponse{Recording: rec, Status: status}, nil
}

// GetSmoothedRequest
type GetSmoothedRequest struct {
	UserID string // required
	Field  string // heartRate (default) or respiratoryRate
	Window int    // <= 0 uses the configured window
}

// GetSmoothedResponse
type GetSmoothedResponse struct {
	Field  string                 `json:"field"`
	Window int                    `json:"window"`
	Points []models.SmoothedPoint `json:"points"`
}

func (s *resultsService) GetSmoothed(ctx context.Context, req GetSmoothedRequest) (*GetSmoothedResponse, error) {
	field := fieldOrDefault(req.Field)
	window := req.Window
	if window <= 0 {
		window = s.opts.SmoothingWindow
	}
	if window <= 0 {
		window = analytics.DefaultWindow
	}

	series, err := s.load(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	points, err := analytics.Smooth(series, field, window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &GetSmoothedResponse{Field: field, Window: window, Points: points}, nil
}

// GetHistogramRequest
type GetHistogramRequest struct {
	UserID  string // required
	Field   string // heartRate (default) or respiratoryRate
	Buckets int    // <= 0 uses the configured bucket count, at most analytics.MaxBuckets
	Last    int    // only the most recent N recordings, <= 0 uses the configured window
}

// GetHistogramResponse
type GetHistogramResponse struct {
	Field   string                `json:"field"`
	Samples int                   `json:"samples"`
	Bins    []models.HistogramBin `json:"bins"`
}

func (s *resultsService) GetHistogram(ctx context.Context, req GetHistogramRequest) (*GetHistogramResponse, error) {
	field := fieldOrDefault(req.Field)
	buckets := req.Buckets
	if buckets > analytics.MaxBuckets {
		return nil, fmt.Errorf("%w: buckets must be at most %d, got %d", ErrInvalidArgument, analytics.MaxBuckets, buckets)
	}
	if buckets <= 0 {
		buckets = s.opts.HistogramBuckets
	}
	last := req.Last
	if last <= 0 {
		last = s.opts.HistogramRecent
	}

	series, err := s.load(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	values, err := analytics.Values(analytics.Tail(series, last), field)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &GetHistogramResponse{
		Field:   field,
		Samples: len(values),
		Bins:    analytics.Histogram(values, buckets),
	}, nil
}

// GetDistributionRequest
type GetDistributionRequest struct {
	UserID string // required
}

// GetDistributionResponse
type GetDistributionResponse struct {
	Total   int                         `json:"total"`
	Buckets []models.DistributionBucket `json:"buckets"`
}

func (s *resultsService) GetDistribution(ctx context.Context, req GetDistributionRequest) (*GetDistributionResponse, error) {
	series, err := s.load(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	return &GetDistributionResponse{Total: len(series), Buckets: analytics.Aggregate(series)}, nil
}

// load chronological snapshot of a user's recordings
func (s *resultsService) load(ctx context.Context, userID string) ([]models.Recording, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidArgument)
	}

	recs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("ListByUser failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to load recordings: %w", err)
	}
	return analytics.Normalize(recs), nil
}

func history(series []models.Recording) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(series))
	for i := len(series) - 1; i >= 0; i-- {
		rec := series[i]
		entry := HistoryEntry{
			Recording:    rec,
			Status:       analytics.Classify(rec),
			SymptomCount: analytics.SymptomCount(rec.Survey),
		}
		if rec.Survey != nil {
			band := analytics.TemperatureBand(rec.Survey.BodyTemperature, rec.Survey.TemperatureUnit())
			entry.Temperature = &band
		}
		out = append(out, entry)
	}
	return out
}

func fieldOrDefault(field string) string {
	if field == "" {
		return analytics.FieldHeartRate
	}
	return field
}
