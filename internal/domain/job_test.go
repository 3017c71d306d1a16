package domain

import "testing"

func TestJobOutcomeExclusivity(t *testing.T) {
	j := NewJob(JobKindText, "a prompt", nil, nil, "16:9", "720p")
	if j.Status() != JobStatusPending {
		t.Fatalf("new job status = %q, want pending", j.Status())
	}
	if j.ResultHandle() != "" || j.ErrorReason() != "" {
		t.Fatal("fresh job carries an outcome")
	}

	if err := j.Complete("media/x"); err == nil {
		t.Fatal("completed a pending job without processing")
	}
	if err := j.MarkProcessing(); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := j.Complete("media/x"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if j.ResultHandle() != "media/x" || j.ErrorReason() != "" {
		t.Fatal("completed job outcome inconsistent")
	}
	if !j.SelectedForMerge {
		t.Fatal("completed job not selected for merge by default")
	}

	if err := j.Fail(FailureGeneric, "nope"); err == nil {
		t.Fatal("failed a completed job")
	}

	if err := j.Reset("new prompt"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if j.Status() != JobStatusPending || j.ResultHandle() != "" || j.ErrorReason() != "" {
		t.Fatal("reset did not clear the outcome")
	}
	if j.Prompt != "new prompt" {
		t.Fatalf("prompt = %q, want replacement", j.Prompt)
	}

	if err := j.MarkProcessing(); err != nil {
		t.Fatalf("MarkProcessing after reset: %v", err)
	}
	if err := j.Fail(FailureSafety, "blocked"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	if j.ResultHandle() != "" || j.ErrorReason() != "blocked" || j.Failure() != FailureSafety {
		t.Fatal("errored job outcome inconsistent")
	}
}

func TestJobResetKeepsPromptWhenEmpty(t *testing.T) {
	j := NewJob(JobKindImage, "keep me", []byte{1}, nil, "9:16", "720p")
	if err := j.MarkProcessing(); err != nil {
		t.Fatal(err)
	}
	if err := j.Fail(FailureGeneric, "boom"); err != nil {
		t.Fatal(err)
	}
	if err := j.Reset(""); err != nil {
		t.Fatal(err)
	}
	if j.Prompt != "keep me" {
		t.Fatalf("prompt = %q, want original", j.Prompt)
	}
}

func TestNewJobCopiesImageBuffers(t *testing.T) {
	primary := []byte{1, 2, 3}
	j := NewJob(JobKindTransition, "p", primary, []byte{4}, "16:9", "720p")
	primary[0] = 9
	if j.PrimaryImage[0] != 1 {
		t.Fatal("job aliases the caller's image buffer")
	}
}
