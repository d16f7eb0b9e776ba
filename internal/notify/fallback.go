package notify

import (
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Fallback is the out-of-band delivery collaborator (SMS/voice). It is
// consulted only when live delivery of a high-value event fails.
type Fallback interface {
	SendAlert(ctx context.Context, actorID, message string) bool
}

// WebhookFallback posts alerts to the messaging gateway.
type WebhookFallback struct {
	client *resty.Client
	log    zerolog.Logger
}

func NewWebhookFallback(baseURL string, log zerolog.Logger) *WebhookFallback {
	return &WebhookFallback{
		client: resty.New().SetBaseURL(baseURL),
		log:    log,
	}
}

func (f *WebhookFallback) SendAlert(ctx context.Context, actorID, message string) bool {
	resp, err := f.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"actorId": actorID, "message": message}).
		Post("/alerts")
	if err != nil {
		f.log.Warn().Err(err).Str("actor_id", actorID).Msg("fallback alert failed")
		return false
	}
	if resp.IsError() {
		f.log.Warn().Int("status", resp.StatusCode()).Str("actor_id", actorID).Msg("fallback alert rejected")
		return false
	}
	return true
}

// NoopFallback drops alerts; used when no gateway is configured.
type NoopFallback struct{}

func (NoopFallback) SendAlert(context.Context, string, string) bool { return false }
