package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const rewriteDefaultTimeout = 15 * time.Second

// ClientOptions configures the remote rewrite client.
type ClientOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client asks a generative text model to rewrite a video prompt. The response
// is plain text; the first candidate wins.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type rewriteRequest struct {
	Contents         []rewriteContent `json:"contents"`
	GenerationConfig *rewriteConfig   `json:"generationConfig,omitempty"`
}

type rewriteContent struct {
	Role  string        `json:"role"`
	Parts []rewritePart `json:"parts"`
}

type rewritePart struct {
	Text string `json:"text,omitempty"`
}

type rewriteConfig struct {
	Temperature    float64 `json:"temperature,omitempty"`
	CandidateCount int     `json:"candidateCount,omitempty"`
}

type rewriteResponse struct {
	Candidates []struct {
		Content rewriteContent `json:"content"`
	} `json:"candidates"`
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("rewrite api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: rewriteDefaultTimeout}
	}
	return &Client{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

func (c *Client) Rewrite(ctx context.Context, prompt string) (string, error) {
	instruction := fmt.Sprintf(
		"Rewrite the following video generation prompt to be more vivid and specific. Reply with the rewritten prompt only, no commentary.\n\n%s",
		strings.TrimSpace(prompt),
	)
	payload := rewriteRequest{
		Contents: []rewriteContent{{
			Role:  "user",
			Parts: []rewritePart{{Text: instruction}},
		}},
		GenerationConfig: &rewriteConfig{Temperature: 0.7, CandidateCount: 1},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal rewrite request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create rewrite request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoke rewrite: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("rewrite status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var decoded rewriteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode rewrite response: %w", err)
	}

	for _, candidate := range decoded.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", errors.New("rewrite returned no text")
}

var _ Rewriter = (*Client)(nil)
