// Package script converts externally authored story documents into batch
// entries. Only scenes that already carry a generated still image qualify;
// the import is all-or-nothing in the sense that zero qualifying scenes
// rejects the whole document.
package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"studio/internal/compose"
	"studio/internal/domain"
	"studio/internal/library"
)

// Importer turns library documents into composer entries.
type Importer struct {
	store    library.Store
	composer *compose.Composer
	voiceID  string
	logger   zerolog.Logger
}

func NewImporter(store library.Store, composer *compose.Composer, voiceID string, logger zerolog.Logger) *Importer {
	return &Importer{store: store, composer: composer, voiceID: voiceID, logger: logger}
}

// List returns the importable documents in the user's library.
func (im *Importer) List(ctx context.Context) ([]library.Meta, error) {
	return im.store.List(ctx)
}

// Import loads the document, builds one entry per qualifying scene, appends
// them to the composer, and switches it to image-driven mode. It returns the
// number of entries created. No entry is created when the import fails.
func (im *Importer) Import(ctx context.Context, documentID string) (int, error) {
	payload, err := im.store.Get(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("load script: %w", err)
	}
	doc, err := ParseDocument(payload)
	if err != nil {
		return 0, err
	}

	entries, err := im.Entries(doc)
	if err != nil {
		return 0, err
	}

	im.composer.Append(entries)
	im.composer.SetMode(compose.ModeImage)
	im.logger.Info().Str("document_id", documentID).Int("entries", len(entries)).Msg("script: import complete")
	return len(entries), nil
}

// Entries builds batch entries from the document without touching the
// composer. Scenes lacking a generated image are skipped entirely.
func (im *Importer) Entries(doc *Document) ([]domain.BatchEntry, error) {
	scenes := doc.AllScenes()
	var entries []domain.BatchEntry
	for i, scene := range scenes {
		if strings.TrimSpace(scene.Image) == "" {
			continue
		}
		img, err := scene.DecodeImage()
		if err != nil {
			return nil, fmt.Errorf("%w: scene %d: %v", domain.ErrImportParse, i+1, err)
		}
		entry := domain.NewBatchEntry(fmt.Sprintf("%s / scene %d", doc.Title, i+1), img)
		entry.Prompt = im.scenePrompt(scene)
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: document %q has no scenes with a generated image", domain.ErrImportEmpty, doc.Title)
	}
	return entries, nil
}

// scenePrompt is the deterministic prompt synthesis: the newline-stripped
// visual description followed by a labeled voice segment carrying the
// configured voice id and, when present, the speaking character's name.
func (im *Importer) scenePrompt(scene Scene) string {
	desc := strings.Join(strings.Fields(scene.Description), " ")
	dialogue := strings.TrimSpace(scene.Dialogue)
	if dialogue == "" {
		return desc
	}

	label := fmt.Sprintf("Voice [%s]", im.voiceID)
	if character := strings.TrimSpace(scene.Character); character != "" {
		titled := cases.Title(language.Und).String(character)
		label = fmt.Sprintf("%s as %s", label, titled)
	}
	if desc == "" {
		return fmt.Sprintf("%s: %s", label, dialogue)
	}
	return fmt.Sprintf("%s %s: %s", desc, label, dialogue)
}
