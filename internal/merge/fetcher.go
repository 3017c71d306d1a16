package merge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studio/internal/storage"
)

// MediaFetcher resolves result handles. Absolute URLs are downloaded;
// anything else is treated as a key in the local store.
type MediaFetcher struct {
	client *http.Client
	store  *storage.FileStore
}

func NewMediaFetcher(client *http.Client, store *storage.FileStore) *MediaFetcher {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	return &MediaFetcher{client: client, store: store}
}

func (m *MediaFetcher) Fetch(ctx context.Context, handle string) ([]byte, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, fmt.Errorf("empty media handle")
	}

	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, handle, nil)
		if err != nil {
			return nil, fmt.Errorf("create media request: %w", err)
		}
		resp, err := m.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download media: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, fmt.Errorf("download media status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	return m.store.Read(ctx, handle)
}

var _ Fetcher = (*MediaFetcher)(nil)
