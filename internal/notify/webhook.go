package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Notification is one outbound message
type Notification struct {
	Type    string
	ID      string
	Payload any
}

// Config configures webhook delivery
type Config struct {
	URL        string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
}

// WebhookClient posts notifications to a single endpoint
type WebhookClient struct {
	httpClient *resty.Client
	url        string
}

// NewWebhookClient builds a resty-backed webhook client
func NewWebhookClient(cfg Config) (*WebhookClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 500 * time.Millisecond
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &WebhookClient{httpClient: restyClient, url: cfg.URL}, nil
}

// Deliver posts n; a 4xx answer is not retried
func (c *WebhookClient) Deliver(ctx context.Context, n Notification) error {
	carrier := propagation.HeaderCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	req := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Event-Type", n.Type).
		SetHeader("X-Event-Id", n.ID).
		SetBody(n.Payload)
	for key := range carrier {
		req.SetHeader(key, carrier.Get(key))
	}

	resp, err := req.Post(c.url)
	if err != nil {
		return fmt.Errorf("deliver %s %s: %w", n.Type, n.ID, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook rejected %s %s: status=%d", n.Type, n.ID, resp.StatusCode())
	}
	return nil
}
