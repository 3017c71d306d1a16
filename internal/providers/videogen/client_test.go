package videogen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateKeylessIsDeterministic(t *testing.T) {
	c, err := NewClient(Options{Model: "veo-2"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	req := Request{Prompt: "a boat crossing a lake at dusk", Kind: "text", RequestID: "job-1"}
	first, err := c.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := c.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if first.Handle != second.Handle || string(first.Data) != string(second.Data) {
		t.Fatal("same request produced different synthetic results")
	}
	if !strings.HasPrefix(first.Handle, "synthetic/videos/veo-2/") {
		t.Errorf("handle = %q", first.Handle)
	}
	if first.Length <= 0 {
		t.Errorf("length = %d, want positive", first.Length)
	}

	other, err := c.Generate(context.Background(), Request{Prompt: "a different scene", Kind: "text", RequestID: "job-2"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if other.Handle == first.Handle {
		t.Error("distinct requests share a synthetic handle")
	}
}

func TestGenerateRemoteInlineVideo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/veo-2:generateVideo") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k123" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		var req synthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Prompt != "start to end" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		if req.StartFrame == nil || req.EndFrame == nil {
			t.Error("frame images not forwarded")
		}

		var resp synthResponse
		resp.Video.Data = base64.StdEncoding.EncodeToString([]byte("mp4-bytes"))
		resp.Video.Seconds = 6
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := NewClient(Options{APIKey: "k123", BaseURL: srv.URL, Model: "veo-2", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	res, err := c.Generate(context.Background(), Request{
		Prompt:    "start to end",
		Kind:      "transition",
		Primary:   []byte("png-a"),
		Secondary: []byte("png-b"),
		RequestID: "job-3",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(res.Data) != "mp4-bytes" {
		t.Errorf("data = %q", res.Data)
	}
	if res.Format != "video/mp4" {
		t.Errorf("format = %q, want default mime", res.Format)
	}
	if res.Length != 6 {
		t.Errorf("length = %d", res.Length)
	}
}

func TestGenerateRemoteErrorTextPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		var apiErr synthErrorResponse
		apiErr.Error.Code = 429
		apiErr.Error.Status = "RESOURCE_EXHAUSTED"
		apiErr.Error.Message = "quota exceeded for model"
		json.NewEncoder(w).Encode(apiErr)
	}))
	defer srv.Close()

	c, err := NewClient(Options{APIKey: "k123", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Generate(context.Background(), Request{Prompt: "p", RequestID: "job-4"})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"429", "RESOURCE_EXHAUSTED", "quota exceeded"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestGenerateEmptyRemoteResponseRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(synthResponse{})
	}))
	defer srv.Close()

	c, err := NewClient(Options{APIKey: "k123", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Generate(context.Background(), Request{Prompt: "p", RequestID: "job-5"}); err == nil {
		t.Fatal("response with no video content accepted")
	}
}

func TestEstimateClipLength(t *testing.T) {
	if got := estimateClipLength(""); got != 4 {
		t.Errorf("empty prompt length = %d", got)
	}
	long := strings.Repeat("word ", 50)
	if got := estimateClipLength(long); got != 12 {
		t.Errorf("long prompt length = %d, want cap of 12", got)
	}
	if got := estimateClipLength("five short words in prompt"); got != 5 {
		t.Errorf("medium prompt length = %d", got)
	}
}
