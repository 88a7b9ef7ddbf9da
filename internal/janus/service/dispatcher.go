package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Notification audiences.  Credential notifications are deliberately routed
// to the operator, not the visitor: a supervising human relays the code.
const (
	AudienceOperator = "operator"
	AudienceVisitor  = "visitor"
)

type Notification struct {
	Audience string
	Subject  string
	Body     string
}

// Dispatcher delivers a notification to a human.  Best-effort from the
// engine's viewpoint: failures are surfaced so they can be logged, but the
// core never retries (retry policy belongs to the sink).
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// LogDispatcher writes notifications to the operator log.  Default sink for
// dev; also the fallback when no webhook is configured.
type LogDispatcher struct {
	logger *log.Logger
}

func NewLogDispatcher(logger *log.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.logger.Printf("notify %s: %s | %s", n.Audience, n.Subject, n.Body)
	return nil
}

// WebhookDispatcher POSTs notifications as JSON to a configured endpoint
// (the deployment's pager/mail bridge).
type WebhookDispatcher struct {
	url    string
	client *http.Client
}

func NewWebhookDispatcher(url string) *WebhookDispatcher {
	return &WebhookDispatcher{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookPayload struct {
	MessageID string `json:"messageId"`
	Audience  string `json:"audience"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	SentAt    string `json:"sentAt"`
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload := webhookPayload{
		MessageID: uuid.NewString(),
		Audience:  n.Audience,
		Subject:   n.Subject,
		Body:      n.Body,
		SentAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook post: unexpected status %d", resp.StatusCode)
	}
	return nil
}
