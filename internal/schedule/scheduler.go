// Package schedule owns the generation job queue. Jobs are admitted in
// source order after validation, drained one at a time under the
// application-wide render permit, and tracked through their lifecycle until
// the user deletes them.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
	"studio/internal/providers/videogen"
	"studio/internal/quota"
)

// concurrencyCeiling is the number of jobs one scheduler may run at once.
// The unconditional permit release in finish relies on this staying 1: with
// a higher ceiling a finishing job would drop the permit while a sibling is
// still mid-flight, and the release would have to be gated on "no other
// local job processing" instead.
const concurrencyCeiling = 1

// Settings are the batch-wide generation parameters in effect at submission
// time. They are copied onto every job created from the batch.
type Settings struct {
	Kind        domain.JobKind
	AspectRatio string
	Resolution  string
}

// JobSnapshot is a read-only copy of one job's state for callers outside
// the scheduler.
type JobSnapshot struct {
	ID               string              `json:"id"`
	Kind             domain.JobKind      `json:"kind"`
	Prompt           string              `json:"prompt"`
	Status           domain.JobStatus    `json:"status"`
	ResultHandle     string              `json:"result_handle,omitempty"`
	ErrorReason      string              `json:"error_reason,omitempty"`
	Failure          domain.FailureClass `json:"failure,omitempty"`
	SelectedForMerge bool                `json:"selected_for_merge"`
	AspectRatio      string              `json:"aspect_ratio"`
	Resolution       string              `json:"resolution"`
	CreatedAt        time.Time           `json:"created_at"`
}

// Options wires one scheduler instance.
type Options struct {
	FeatureID string
	UserID    string
	Permit    RenderPermit
	Generator videogen.Generator
	Quota     quota.Service
	Logger    zerolog.Logger
	// OnCompleted, when set, runs after a job completes and quota is
	// debited. The host uses it for the automatic download side effect.
	OnCompleted func(jobID string, result *videogen.Result)
}

// Scheduler is one feature area's job queue. All state is owned by the
// instance; the only resource shared with other instances is the permit.
type Scheduler struct {
	mu          sync.Mutex
	jobs        []*domain.Job
	results     map[string]*videogen.Result
	feature     string
	userID      string
	permit      RenderPermit
	gen         videogen.Generator
	quota       quota.Service
	logger      zerolog.Logger
	onCompleted func(jobID string, result *videogen.Result)
}

func NewScheduler(opts Options) *Scheduler {
	s := &Scheduler{
		results:     make(map[string]*videogen.Result),
		feature:     opts.FeatureID,
		userID:      opts.UserID,
		permit:      opts.Permit,
		gen:         opts.Generator,
		quota:       opts.Quota,
		logger:      opts.Logger.With().Str("feature", opts.FeatureID).Logger(),
		onCompleted: opts.OnCompleted,
	}
	// Wake up whenever another feature area releases the permit.
	s.permit.Notify(s.Evaluate)
	return s
}

// SubmitEntries validates a composed batch and, only if every check passes,
// creates one pending job per entry in source order. Nothing is queued on a
// validation failure.
func (s *Scheduler) SubmitEntries(ctx context.Context, entries []domain.BatchEntry, settings Settings) ([]string, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptySubmission
	}
	if settings.Kind == domain.JobKindTransition {
		missing := 0
		for _, e := range entries {
			if len(e.PrimaryAsset) == 0 || len(e.SecondaryAsset) == 0 {
				missing++
			}
		}
		if missing > 0 {
			return nil, &domain.PairingError{Missing: missing}
		}
	}
	if err := s.quota.Check(ctx, s.userID, s.feature, len(entries)); err != nil {
		return nil, err
	}

	jobs := make([]*domain.Job, 0, len(entries))
	for _, e := range entries {
		jobs = append(jobs, domain.NewJob(settings.Kind, e.Prompt, e.PrimaryAsset, e.SecondaryAsset, settings.AspectRatio, settings.Resolution))
	}
	return s.enqueue(jobs), nil
}

// SubmitBulkText creates one text-driven job per non-empty line, in line
// order. Validation mirrors SubmitEntries.
func (s *Scheduler) SubmitBulkText(ctx context.Context, text string, settings Settings) ([]string, error) {
	var prompts []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			prompts = append(prompts, trimmed)
		}
	}
	if len(prompts) == 0 {
		return nil, domain.ErrEmptySubmission
	}
	if err := s.quota.Check(ctx, s.userID, s.feature, len(prompts)); err != nil {
		return nil, err
	}

	jobs := make([]*domain.Job, 0, len(prompts))
	for _, p := range prompts {
		jobs = append(jobs, domain.NewJob(domain.JobKindText, p, nil, nil, settings.AspectRatio, settings.Resolution))
	}
	return s.enqueue(jobs), nil
}

func (s *Scheduler) enqueue(jobs []*domain.Job) []string {
	s.mu.Lock()
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.ID
	}
	s.jobs = append(s.jobs, jobs...)
	s.mu.Unlock()

	s.logger.Info().Int("count", len(jobs)).Msg("schedule: jobs queued")
	s.Evaluate()
	return ids
}

// Evaluate is the level-triggered drain step. It runs after every queue
// change and every permit release: if this instance is below its concurrency
// ceiling and the permit is free, the earliest pending job starts.
func (s *Scheduler) Evaluate() {
	s.mu.Lock()
	if s.processingLocked() >= concurrencyCeiling {
		s.mu.Unlock()
		return
	}
	var job *domain.Job
	for _, j := range s.jobs {
		if j.Status() == domain.JobStatusPending {
			job = j
			break
		}
	}
	if job == nil {
		s.mu.Unlock()
		return
	}
	// The permit being busy here means another feature area owns the
	// in-flight call; this instance waits for the release notification.
	if !s.permit.TryAcquire(s.feature) {
		s.mu.Unlock()
		return
	}
	if err := job.MarkProcessing(); err != nil {
		// Release re-enters Evaluate through the permit observers, so it
		// must never run while s.mu is held.
		s.mu.Unlock()
		s.permit.Release(s.feature)
		return
	}
	req := videogen.Request{
		Prompt:      job.Prompt,
		AspectRatio: job.AspectRatio,
		Resolution:  job.Resolution,
		Primary:     job.PrimaryImage,
		Secondary:   job.SecondaryImage,
		Kind:        string(job.Kind),
		RequestID:   job.ID,
	}
	s.mu.Unlock()

	s.logger.Info().Str("job_id", req.RequestID).Str("kind", req.Kind).Msg("schedule: job started")
	go s.run(req.RequestID, req)
}

func (s *Scheduler) run(jobID string, req videogen.Request) {
	// No local timeout: a stalled adapter call leaves the job processing
	// until the adapter itself resolves.
	result, err := s.gen.Generate(context.Background(), req)
	s.finish(jobID, result, err)
}

func (s *Scheduler) finish(jobID string, result *videogen.Result, genErr error) {
	s.mu.Lock()
	job := s.findLocked(jobID)
	if job == nil {
		// The job was deleted while processing; its resolution has no
		// record to land in and is discarded without surfacing an error.
		s.mu.Unlock()
		s.logger.Debug().Str("job_id", jobID).Msg("schedule: result for removed job discarded")
		s.permit.Release(s.feature)
		return
	}

	completed := false
	if genErr != nil {
		class, reason := classify(genErr)
		if err := job.Fail(class, reason); err != nil {
			s.logger.Error().Err(err).Str("job_id", jobID).Msg("schedule: invalid failure transition")
		} else {
			s.logger.Warn().Err(genErr).Str("job_id", jobID).Str("class", string(class)).Msg("schedule: job failed")
		}
	} else {
		if err := job.Complete(result.Handle); err != nil {
			s.logger.Error().Err(err).Str("job_id", jobID).Msg("schedule: invalid completion transition")
		} else {
			s.results[jobID] = result
			completed = true
			s.logger.Info().Str("job_id", jobID).Str("handle", result.Handle).Msg("schedule: job completed")
		}
	}
	s.mu.Unlock()

	if completed {
		if err := s.quota.Debit(context.Background(), s.userID, s.feature, 1); err != nil {
			s.logger.Error().Err(err).Str("job_id", jobID).Msg("schedule: quota debit failed")
		}
		if s.onCompleted != nil {
			s.onCompleted(jobID, result)
		}
	}

	// Released unconditionally; see concurrencyCeiling.
	s.permit.Release(s.feature)
	s.Evaluate()
}

// Regenerate returns a completed or errored job to pending, optionally with
// an edited prompt. The job keeps its queue slot, so it becomes eligible
// ahead of anything queued after it.
func (s *Scheduler) Regenerate(id, prompt string) error {
	s.mu.Lock()
	job := s.findLocked(id)
	if job == nil {
		s.mu.Unlock()
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if err := job.Reset(prompt); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.results, id)
	s.mu.Unlock()

	s.logger.Info().Str("job_id", id).Msg("schedule: job requeued")
	s.Evaluate()
	return nil
}

// Remove deletes a job outright at any status. An in-flight generation for
// the job is not interrupted; its eventual result is discarded.
func (s *Scheduler) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, j := range s.jobs {
		if j.ID == id {
			s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
			delete(s.results, id)
			return nil
		}
	}
	return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
}

// SetMergeSelected toggles a completed job's merge flag.
func (s *Scheduler) SetMergeSelected(id string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil {
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if job.Status() != domain.JobStatusCompleted {
		return fmt.Errorf("job %s: only completed jobs can be selected for merge", id)
	}
	job.SelectedForMerge = selected
	return nil
}

// Jobs returns queue-ordered snapshots of every job.
func (s *Scheduler) Jobs() []JobSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobSnapshot, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = snapshotLocked(j)
	}
	return out
}

// Job returns a snapshot of one job.
func (s *Scheduler) Job(id string) (JobSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.findLocked(id)
	if job == nil {
		return JobSnapshot{}, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	return snapshotLocked(job), nil
}

// Result returns the full adapter result for a completed job, used by the
// merge engine to fetch clip bytes without re-downloading.
func (s *Scheduler) Result(id string) (*videogen.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	return r, ok
}

// ProcessingCount reports how many of this instance's jobs are mid-flight.
func (s *Scheduler) ProcessingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processingLocked()
}

func (s *Scheduler) processingLocked() int {
	n := 0
	for _, j := range s.jobs {
		if j.Status() == domain.JobStatusProcessing {
			n++
		}
	}
	return n
}

func (s *Scheduler) findLocked(id string) *domain.Job {
	for _, j := range s.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func snapshotLocked(j *domain.Job) JobSnapshot {
	return JobSnapshot{
		ID:               j.ID,
		Kind:             j.Kind,
		Prompt:           j.Prompt,
		Status:           j.Status(),
		ResultHandle:     j.ResultHandle(),
		ErrorReason:      j.ErrorReason(),
		Failure:          j.Failure(),
		SelectedForMerge: j.SelectedForMerge,
		AspectRatio:      j.AspectRatio,
		Resolution:       j.Resolution,
		CreatedAt:        j.CreatedAt,
	}
}

// classify buckets an adapter failure into the short list of user-facing
// reasons by inspecting the error text, mirroring how the backing APIs
// report policy and capacity problems.
func classify(err error) (domain.FailureClass, string) {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "safety") || strings.Contains(msg, "blocked") || strings.Contains(msg, "prohibited"):
		return domain.FailureSafety, "prompt or image rejected by content policy"
	case strings.Contains(msg, "overload") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429") || strings.Contains(msg, "unavailable"):
		return domain.FailureOverload, "system is busy, try again shortly"
	default:
		return domain.FailureGeneric, "generation failed"
	}
}
