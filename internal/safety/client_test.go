package safety

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientKeylessAlwaysSafe(t *testing.T) {
	c := NewClient(ClientOptions{})
	v, err := c.Validate(context.Background(), []byte{0xDE, 0xAD})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !v.Safe {
		t.Fatal("keyless client flagged an asset")
	}
}

func TestClientFlaggedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images:moderate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		var req moderationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Image.Data == "" {
			t.Error("request carried no image data")
		}
		json.NewEncoder(w).Encode(moderationResponse{Flagged: true, Category: "violence", Detail: "weapons"})
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIKey: "secret", BaseURL: srv.URL, HTTPClient: srv.Client()})
	v, err := c.Validate(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if v.Safe {
		t.Fatal("flagged asset reported safe")
	}
	if v.Reason != "violence: weapons" {
		t.Errorf("reason = %q", v.Reason)
	}
}

func TestClientErrorStatusSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service melting", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{APIKey: "secret", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if _, err := c.Validate(context.Background(), []byte("x")); err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("err = %v, want status in message", err)
	}
}
