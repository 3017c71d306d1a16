package safety

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const moderationDefaultTimeout = 20 * time.Second

// ClientOptions configures the remote moderation client.
type ClientOptions struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client calls the moderation backend. Without an API key every asset passes,
// which keeps local development unblocked.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type moderationRequest struct {
	Image moderationImage `json:"image"`
}

type moderationImage struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type moderationResponse struct {
	Flagged  bool   `json:"flagged"`
	Category string `json:"category,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: moderationDefaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		client:  client,
	}
}

func (c *Client) Validate(ctx context.Context, payload []byte) (Verdict, error) {
	if c.apiKey == "" {
		return Verdict{Safe: true}, nil
	}

	body, err := json.Marshal(moderationRequest{
		Image: moderationImage{
			MimeType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(payload),
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("marshal moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images:moderate", bytes.NewReader(body))
	if err != nil {
		return Verdict{}, fmt.Errorf("create moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, fmt.Errorf("invoke moderation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return Verdict{}, fmt.Errorf("moderation status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Verdict{}, fmt.Errorf("decode moderation response: %w", err)
	}

	if decoded.Flagged {
		reason := decoded.Category
		if decoded.Detail != "" {
			reason = fmt.Sprintf("%s: %s", decoded.Category, decoded.Detail)
		}
		if reason == "" {
			reason = "flagged by content check"
		}
		return Verdict{Safe: false, Reason: reason}, nil
	}
	return Verdict{Safe: true}, nil
}

var _ Validator = (*Client)(nil)
