package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Mohanmohan007/BSC-CARE/internal/models"
)

// EventTypeAttention event_type of an Attention notification
const EventTypeAttention = "health.attention"

// AttentionEvent webhook body
type AttentionEvent struct {
	EventType       string        `json:"event_type"`
	UserID          string        `json:"user_id"`
	RecordingID     string        `json:"recording_id"`
	Status          models.Status `json:"status"`
	Color           string        `json:"color"`
	HeartRate       int           `json:"heart_rate"`
	RespiratoryRate int           `json:"respiratory_rate"`
	Timestamp       time.Time     `json:"timestamp"`
}

// WebhookNotifier posts Attention events to a clinician webhook
type WebhookNotifier struct {
	httpClient *resty.Client
	limiter    *rate.Limiter
	url        string
	logger     *zap.Logger
}

// NewWebhookNotifier creates a notifier sending at most ratePerSecond events per
// second (<= 0 is unlimited). 5xx responses and transport errors are retried.
func NewWebhookNotifier(url string, timeout time.Duration, ratePerSecond float64, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if ratePerSecond > 0 {
		burst := int(ratePerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}

	return &WebhookNotifier{
		httpClient: client,
		limiter:    limiter,
		url:        url,
		logger:     logger,
	}
}

// NotifyAttention posts one AttentionEvent
func (n *WebhookNotifier) NotifyAttention(ctx context.Context, userID string, rec models.Recording, status models.HealthStatus) error {
	event := AttentionEvent{
		EventType:       EventTypeAttention,
		UserID:          userID,
		RecordingID:     rec.ID,
		Status:          status.Status,
		Color:           status.Color,
		HeartRate:       rec.HeartRate,
		RespiratoryRate: rec.RespiratoryRate,
		Timestamp:       rec.Timestamp,
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notification rate limit: %w", err)
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}

	n.logger.Info("Attention notification sent",
		zap.String("user_id", userID),
		zap.String("recording_id", rec.ID),
		zap.Int("status_code", resp.StatusCode()),
	)
	return nil
}
