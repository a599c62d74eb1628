package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	alarmapp "github.com/mhdr/Monitoring2025-sub018/internal/alarms/application"
)

// WebhookNotifier forwards alarm lifecycle events to a webhook endpoint.
// Delivery failures are logged and dropped; notification is best effort and
// must never stall evaluation.
type WebhookNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string, logger *zap.Logger) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("webhook notifier: empty url")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}, nil
}

// Notify posts the event as JSON.
func (n *WebhookNotifier) Notify(ctx context.Context, event alarmapp.Event) {
	if n == nil || n.url == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("webhook encode failed", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("webhook request failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("alarm_id", event.AlarmID),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected event",
			zap.String("alarm_id", event.AlarmID),
			zap.Int("status", resp.StatusCode),
		)
	}
}
