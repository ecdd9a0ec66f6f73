package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Notifier delivers webhook notifications. Slack and Chatwork only
// differ in payload shape.
type Notifier struct {
	http *http.Client
}

func NewNotifier(timeout time.Duration) *Notifier {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout
	return &Notifier{http: rc.StandardClient()}
}

func (n *Notifier) SendSlack(ctx context.Context, webhookURL, message string) error {
	payload := map[string]string{
		"text":       message,
		"username":   "AdPilot Alert",
		"icon_emoji": ":warning:",
	}
	return n.post(ctx, webhookURL, payload)
}

func (n *Notifier) SendChatwork(ctx context.Context, webhookURL, message string) error {
	return n.post(ctx, webhookURL, map[string]string{"body": message})
}

func (n *Notifier) post(ctx context.Context, webhookURL string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
