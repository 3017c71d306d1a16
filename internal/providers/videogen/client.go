package videogen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/infra"
)

// Options controls how the synthesis client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client speaks to the remote synthesis API. When no API key is configured it
// produces deterministic synthetic handles instead, which keeps the queue,
// merge, and download paths exercisable in local and CI environments.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type synthRequest struct {
	Prompt      string           `json:"prompt"`
	AspectRatio string           `json:"aspect_ratio,omitempty"`
	Resolution  string           `json:"resolution,omitempty"`
	Kind        string           `json:"kind,omitempty"`
	StartFrame  *synthInlineData `json:"start_frame,omitempty"`
	EndFrame    *synthInlineData `json:"end_frame,omitempty"`
}

type synthInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type synthResponse struct {
	Video struct {
		URI      string `json:"uri,omitempty"`
		MimeType string `json:"mimeType,omitempty"`
		Data     string `json:"data,omitempty"`
		Seconds  int    `json:"seconds,omitempty"`
	} `json:"video"`
}

type synthErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a synthesis client with sane defaults. Callers may
// provide a nil HTTP client; a reusable one with a generous timeout is
// created, matching how long remote video synthesis is allowed to run.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "veo-2"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Generate runs one synthesis call. Remote failures are returned to the
// caller unchanged so the scheduler can classify them; only the keyless dev
// mode substitutes a synthetic result.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.apiKey == "" {
		return c.syntheticResult(req), nil
	}

	payload := synthRequest{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Resolution:  req.Resolution,
		Kind:        req.Kind,
	}
	if len(req.Primary) > 0 {
		payload.StartFrame = &synthInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(req.Primary)}
	}
	if len(req.Secondary) > 0 {
		payload.EndFrame = &synthInlineData{MimeType: "image/png", Data: base64.StdEncoding.EncodeToString(req.Secondary)}
	}

	var response synthResponse
	path := fmt.Sprintf("/models/%s:generateVideo", url.PathEscape(c.model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}

	result := &Result{
		Handle: response.Video.URI,
		Format: response.Video.MimeType,
		Length: response.Video.Seconds,
	}
	if response.Video.Data != "" {
		data, err := base64.StdEncoding.DecodeString(response.Video.Data)
		if err != nil {
			return nil, fmt.Errorf("decode inline video: %w", err)
		}
		result.Data = data
	}
	if result.Handle == "" && len(result.Data) == 0 {
		return nil, fmt.Errorf("no video content returned")
	}
	if result.Format == "" {
		result.Format = "video/mp4"
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Msg("videogen: generated remote clip")

	return result, nil
}

func (c *Client) syntheticResult(req Request) *Result {
	seed := deterministicSeed(req.RequestID, req.Prompt, req.Kind)
	handle := fmt.Sprintf("synthetic/videos/%s/%s.mp4", c.model, seed[:16])

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Msg("videogen: generated synthetic clip")

	return &Result{
		Handle: handle,
		Format: "video/mp4",
		Length: estimateClipLength(req.Prompt),
		Data:   []byte("SYNTH" + seed),
	}
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	endpoint := c.baseURL + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke synthesis: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr synthErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("synthesis status %d: %s %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("synthesis status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("synthesis status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode synthesis response: %w", err)
	}
	return nil
}

func deterministicSeed(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func estimateClipLength(prompt string) int {
	words := len(strings.Fields(prompt))
	switch {
	case words == 0:
		return 4
	case words > 40:
		return 12
	default:
		return 4 + words/5
	}
}

var _ Generator = (*Client)(nil)
