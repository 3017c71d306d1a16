package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobKind enumerates the supported generation request categories.
type JobKind string

const (
	JobKindText       JobKind = "text"
	JobKindImage      JobKind = "image"
	JobKindTransition JobKind = "transition"
	JobKindCharSync   JobKind = "charsync"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
)

// FailureClass buckets generation failures into the short set of reasons
// shown to the user.
type FailureClass string

const (
	FailureSafety   FailureClass = "safety"
	FailureOverload FailureClass = "overload"
	FailureGeneric  FailureClass = "generic"
)

// Job is one submitted, trackable generation request. Lifecycle fields are
// unexported and only move through the transition methods below, so a record
// can never hold a result handle and an error reason at the same time.
type Job struct {
	ID               string
	Kind             JobKind
	Prompt           string
	PrimaryImage     []byte
	SecondaryImage   []byte
	AspectRatio      string
	Resolution       string
	SelectedForMerge bool
	CreatedAt        time.Time

	status    JobStatus
	result    string
	failure   FailureClass
	errReason string
}

// NewJob builds a pending job. Generation parameters are snapshotted here and
// never read back from the composer afterwards.
func NewJob(kind JobKind, prompt string, primary, secondary []byte, aspect, resolution string) *Job {
	return &Job{
		ID:             uuid.New().String(),
		Kind:           kind,
		Prompt:         prompt,
		PrimaryImage:   cloneBytes(primary),
		SecondaryImage: cloneBytes(secondary),
		AspectRatio:    aspect,
		Resolution:     resolution,
		CreatedAt:      time.Now(),
		status:         JobStatusPending,
	}
}

func (j *Job) Status() JobStatus { return j.status }

// ResultHandle is non-empty iff the job is completed.
func (j *Job) ResultHandle() string { return j.result }

// ErrorReason is non-empty iff the job is in the error state.
func (j *Job) ErrorReason() string { return j.errReason }

// Failure returns the classified failure bucket for an errored job.
func (j *Job) Failure() FailureClass { return j.failure }

// MarkProcessing moves a pending job into processing.
func (j *Job) MarkProcessing() error {
	if j.status != JobStatusPending {
		return fmt.Errorf("job %s: cannot start from status %q", j.ID, j.status)
	}
	j.status = JobStatusProcessing
	return nil
}

// Complete records the generated media handle. Completed jobs default to
// being selected for merge.
func (j *Job) Complete(handle string) error {
	if j.status != JobStatusProcessing {
		return fmt.Errorf("job %s: cannot complete from status %q", j.ID, j.status)
	}
	j.status = JobStatusCompleted
	j.result = handle
	j.failure = ""
	j.errReason = ""
	j.SelectedForMerge = true
	return nil
}

// Fail records a classified failure reason.
func (j *Job) Fail(class FailureClass, reason string) error {
	if j.status != JobStatusProcessing {
		return fmt.Errorf("job %s: cannot fail from status %q", j.ID, j.status)
	}
	j.status = JobStatusError
	j.result = ""
	j.failure = class
	j.errReason = reason
	return nil
}

// Reset returns a finished job to pending for regeneration, clearing the
// previous outcome. A non-empty prompt replaces the current one. The job
// keeps its queue slot; eligibility order is decided by the scheduler.
func (j *Job) Reset(prompt string) error {
	if j.status != JobStatusCompleted && j.status != JobStatusError {
		return fmt.Errorf("job %s: cannot regenerate from status %q", j.ID, j.status)
	}
	if prompt != "" {
		j.Prompt = prompt
	}
	j.status = JobStatusPending
	j.result = ""
	j.failure = ""
	j.errReason = ""
	j.SelectedForMerge = false
	return nil
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
