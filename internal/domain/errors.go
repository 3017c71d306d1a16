package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAssetUnsafe     = errors.New("asset rejected by safety check")
	ErrCheckInProgress = errors.New("safety check already in progress")
	ErrEmptySubmission = errors.New("nothing to submit")
	ErrMissingPairs    = errors.New("transition entries missing images")
	ErrQuotaDenied     = errors.New("quota denied")
	ErrImportEmpty     = errors.New("no importable scenes")
	ErrImportParse     = errors.New("script parse failed")
	ErrMergeFailed     = errors.New("merge failed")
	ErrTooFewClips     = errors.New("merge requires at least two clips")
	ErrNotFound        = errors.New("not found")
)

// PairingError reports how many transition entries were missing a start or
// end frame. Submission is all-or-nothing, so the count covers the whole
// rejected batch.
type PairingError struct {
	Missing int
}

func (e *PairingError) Error() string {
	return fmt.Sprintf("%d transition entries missing a start or end frame", e.Missing)
}

func (e *PairingError) Is(target error) bool { return target == ErrMissingPairs }

// UnsafeAssetError carries the gate's verdict reason for a rejected upload.
type UnsafeAssetError struct {
	Name   string
	Reason string
}

func (e *UnsafeAssetError) Error() string {
	return fmt.Sprintf("asset %q rejected: %s", e.Name, e.Reason)
}

func (e *UnsafeAssetError) Is(target error) bool { return target == ErrAssetUnsafe }
