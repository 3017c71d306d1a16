package prompt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(ClientOptions{}); err == nil {
		t.Fatal("keyless client constructed")
	}
}

func TestRewriteReturnsFirstCandidateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req rewriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || !strings.Contains(req.Contents[0].Parts[0].Text, "a dog running") {
			t.Error("prompt not embedded in instruction")
		}

		var resp rewriteResponse
		resp.Candidates = []struct {
			Content rewriteContent `json:"content"`
		}{
			{Content: rewriteContent{Parts: []rewritePart{{Text: "  A golden retriever sprinting across a meadow.  "}}}},
			{Content: rewriteContent{Parts: []rewritePart{{Text: "second candidate"}}}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := c.Rewrite(context.Background(), "a dog running")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if got != "A golden retriever sprinting across a meadow." {
		t.Errorf("rewritten = %q", got)
	}
}

func TestRewriteEmptyCandidatesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(rewriteResponse{})
	}))
	defer srv.Close()

	c, err := NewClient(ClientOptions{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Rewrite(context.Background(), "x"); err == nil {
		t.Fatal("empty candidate list accepted")
	}
}

func TestStaticRewriterAppendsStyle(t *testing.T) {
	var r StaticRewriter
	got, err := r.Rewrite(context.Background(), "a dog running")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if !strings.HasPrefix(got, "a dog running,") {
		t.Errorf("rewritten = %q, want original prompt kept", got)
	}
	if got == "a dog running" {
		t.Error("static rewriter changed nothing")
	}
}
