package labeling

import (
	"time"

	"github.com/pexcode/qds-print-sdk/internal/domain/shared"
)

// LabelJob tracks one PrintOne/PrintBatch call. It lives only for the
// duration of that call and is never persisted.
type LabelJob struct {
	shared.BaseAggregateRoot
	RecordIDs  []string
	Status     JobStatus
	Failure    *Failure
	FinishedAt *time.Time
}

// NewLabelJob creates a job in the idle state for the given records
func NewLabelJob(recordIDs []string) *LabelJob {
	ids := make([]string, len(recordIDs))
	copy(ids, recordIDs)

	job := &LabelJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RecordIDs:         ids,
		Status:            JobStatusIdle,
	}
	job.AddDomainEvent(NewLabelJobCreatedEvent(job))
	return job
}

// RecordCount returns the number of records in the batch
func (j *LabelJob) RecordCount() int {
	return len(j.RecordIDs)
}

// StartGenerating marks the job as generating codes
func (j *LabelJob) StartGenerating() error {
	return j.transition(JobStatusGenerating)
}

// StartComposing marks the job as composing the document
func (j *LabelJob) StartComposing() error {
	return j.transition(JobStatusComposing)
}

// StartRendering marks the job as handing the document to the render target
func (j *LabelJob) StartRendering() error {
	return j.transition(JobStatusRendering)
}

// MarkPrinted completes the job after the print trigger fired
func (j *LabelJob) MarkPrinted() error {
	if err := j.transition(JobStatusPrinted); err != nil {
		return err
	}
	j.finish()
	j.AddDomainEvent(NewLabelJobPrintedEvent(j))
	return nil
}

// Fail moves the job to the failed state with the given reason
func (j *LabelJob) Fail(failure *Failure) error {
	if failure == nil {
		return shared.NewDomainError("INVALID_FAILURE", "Failure reason cannot be empty")
	}
	if err := j.transition(JobStatusFailed); err != nil {
		return err
	}
	j.Failure = failure
	j.finish()
	j.AddDomainEvent(NewLabelJobFailedEvent(j))
	return nil
}

// IsPrinted returns true if the job printed
func (j *LabelJob) IsPrinted() bool {
	return j.Status == JobStatusPrinted
}

// IsFailed returns true if the job failed
func (j *LabelJob) IsFailed() bool {
	return j.Status == JobStatusFailed
}

// IsTerminal returns true if the job is in a terminal state
func (j *LabelJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// Duration returns how long the job ran, or zero while it is still running
func (j *LabelJob) Duration() time.Duration {
	if j.FinishedAt == nil {
		return 0
	}
	return j.FinishedAt.Sub(j.CreatedAt)
}

func (j *LabelJob) transition(to JobStatus) error {
	if !j.Status.CanTransitionTo(to) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot move label job from "+j.Status.String()+" to "+to.String())
	}
	from := j.Status
	j.Status = to
	j.Touch()
	j.IncrementVersion()
	j.AddDomainEvent(NewLabelJobStatusChangedEvent(j, from, to))
	return nil
}

func (j *LabelJob) finish() {
	now := time.Now()
	j.FinishedAt = &now
}
