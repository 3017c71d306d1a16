package domain

import "github.com/google/uuid"

// BatchEntry is a pre-submission staging row owned by the composer. Entries
// are copied into Jobs at submission time; an entry edited afterwards never
// mutates a queued job.
type BatchEntry struct {
	ID             string
	Prompt         string
	PrimaryAsset   []byte
	SecondaryAsset []byte
	SourceName     string
}

// NewBatchEntry assigns a fresh id to a staging row.
func NewBatchEntry(sourceName string, primary []byte) BatchEntry {
	return BatchEntry{
		ID:           uuid.New().String(),
		SourceName:   sourceName,
		PrimaryAsset: primary,
	}
}

// Clone copies the entry with the same id. Asset bytes are duplicated so the
// copy cannot alias the composer's buffers.
func (e BatchEntry) Clone() BatchEntry {
	out := e
	out.PrimaryAsset = cloneBytes(e.PrimaryAsset)
	out.SecondaryAsset = cloneBytes(e.SecondaryAsset)
	return out
}
