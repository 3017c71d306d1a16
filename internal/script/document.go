package script

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"studio/internal/domain"
)

// Document is a stored story/script asset. Authoring produces either a flat
// scene list or an episodic structure; a document may carry both shapes and
// flat scenes are read first.
type Document struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Scenes   []Scene   `json:"scenes,omitempty"`
	Episodes []Episode `json:"episodes,omitempty"`
}

// Episode groups scenes in episodic documents.
type Episode struct {
	Title  string  `json:"title"`
	Scenes []Scene `json:"scenes"`
}

// Scene is one storyboard beat. Image holds the already-generated still as
// base64 (optionally a data URI); scenes without one are not importable.
type Scene struct {
	Description string `json:"description"`
	Dialogue    string `json:"dialogue,omitempty"`
	Character   string `json:"character,omitempty"`
	Image       string `json:"image,omitempty"`
}

// ParseDocument decodes a stored document payload.
func ParseDocument(payload []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImportParse, err)
	}
	return &doc, nil
}

// AllScenes flattens the document into one ordered scene list.
func (d *Document) AllScenes() []Scene {
	if len(d.Scenes) > 0 {
		return d.Scenes
	}
	var out []Scene
	for _, ep := range d.Episodes {
		out = append(out, ep.Scenes...)
	}
	return out
}

// DecodeImage returns the scene's embedded still image bytes.
func (s Scene) DecodeImage() ([]byte, error) {
	raw := strings.TrimSpace(s.Image)
	if raw == "" {
		return nil, fmt.Errorf("scene has no image")
	}
	if idx := strings.Index(raw, "base64,"); idx >= 0 {
		raw = raw[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode scene image: %w", err)
	}
	return data, nil
}
