package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/obraguard/obraguard/internal/models"
)

const (
	// webhookUserAgent identifies ObraGuard to webhook consumers.
	webhookUserAgent = "ObraGuard-Alerts/1.0"

	// webhookTimeout bounds every outbound webhook call.
	webhookTimeout = 10 * time.Second
)

// WebhookSender delivers notifications by POSTing the fixed JSON payload to
// the URL configured on the notification.
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender creates a webhook sender with a bounded HTTP client.
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{
		client: &http.Client{Timeout: webhookTimeout},
	}
}

// Channel returns WEBHOOK.
func (s *WebhookSender) Channel() models.Channel {
	return models.ChannelWebhook
}

// Send POSTs the notification's webhook body. A non-2xx response or any
// transport failure (including timeout) is a failed attempt.
func (s *WebhookSender) Send(ctx context.Context, n *models.Notification) error {
	payload := n.Payload.Webhook
	if payload == nil || payload.URL == "" {
		return fmt.Errorf("notification %s has no webhook payload", n.ID)
	}
	return post(ctx, s.client, payload.URL, payload.Body)
}

// testPayload is the synthetic body used to validate a webhook endpoint
// before the channel is enabled.
type testPayload struct {
	Test      bool   `json:"test"`
	Source    string `json:"source"`
	AlertType string `json:"alert_type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// TestWebhook POSTs a synthetic payload to the given URL and reports the
// outcome. It never touches the notification store.
func TestWebhook(ctx context.Context, url string) (string, error) {
	if url == "" || !strings.HasPrefix(url, "http") {
		return "", fmt.Errorf("invalid webhook URL")
	}

	payload := testPayload{
		Test:      true,
		Source:    "ObraGuard-Webhook-Test",
		AlertType: "TEST",
		Message:   "This is a test message from ObraGuard.",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	client := &http.Client{Timeout: webhookTimeout}
	if err := post(ctx, client, url, payload); err != nil {
		return "", err
	}
	return "webhook responded with success", nil
}

// post marshals body and POSTs it with the fixed headers.
func post(ctx context.Context, client *http.Client, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", webhookUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
