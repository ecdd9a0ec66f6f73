package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// APIError is a structured Graph API rejection.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// IsParameterError reports whether the API rejected the request payload
// itself rather than failing transiently.
func (e *APIError) IsParameterError() bool {
	return e.StatusCode == http.StatusBadRequest
}

// Client is a thin Graph API HTTP client. Transport-level retries are
// handled by retryablehttp; business-level retry policy belongs to the
// caller.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc.StandardClient(),
		log:     log,
	}
}

// PostForm sends a form-encoded POST to the given Graph API path and
// decodes the JSON object response.
func (c *Client) PostForm(ctx context.Context, path, token string, params url.Values) (map[string]any, error) {
	params.Set("access_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+strings.TrimLeft(path, "/"), strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

// Get sends a GET to the given Graph API path.
func (c *Client) Get(ctx context.Context, path, token string, params url.Values) (map[string]any, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimLeft(path, "/")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (map[string]any, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var wrapper struct {
			Error APIError `json:"error"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error.Message != "" {
			apiErr.Message = wrapper.Error.Message
			apiErr.Type = wrapper.Error.Type
			apiErr.Code = wrapper.Error.Code
		}
		c.log.Warn("graph api request rejected",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode graph api response: %w", err)
	}
	return result, nil
}
