package labeling

import (
	"time"

	"github.com/google/uuid"
	"github.com/pexcode/qds-print-sdk/internal/domain/labeling"
	"github.com/pexcode/qds-print-sdk/internal/domain/shared"
)

// BatchResult is the outcome of one PrintOne/PrintBatch call. A call that
// did not print carries a Failure; nothing is ever returned as an error.
type BatchResult struct {
	JobID     uuid.UUID          `json:"job_id"`
	Status    labeling.JobStatus `json:"status"`
	RecordIDs []string           `json:"record_ids"`
	Failure   *labeling.Failure  `json:"failure,omitempty"`
	// LookupMisses lists records whose label was composed without codes
	LookupMisses []string             `json:"lookup_misses,omitempty"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   time.Time            `json:"finished_at"`
	Events       []shared.DomainEvent `json:"-"`
}

// Printed returns true if the print trigger fired
func (r *BatchResult) Printed() bool {
	return r.Status == labeling.JobStatusPrinted
}

// Err returns the failure as an error, or nil
func (r *BatchResult) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Duration returns the wall time of the call
func (r *BatchResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func idleResult(now time.Time) *BatchResult {
	return &BatchResult{
		Status:     labeling.JobStatusIdle,
		StartedAt:  now,
		FinishedAt: now,
	}
}

func resultFromJob(job *labeling.LabelJob, doc *labeling.LabelDocument, started, finished time.Time) *BatchResult {
	r := &BatchResult{
		JobID:      job.ID,
		Status:     job.Status,
		RecordIDs:  job.RecordIDs,
		Failure:    job.Failure,
		StartedAt:  started,
		FinishedAt: finished,
		Events:     job.GetDomainEvents(),
	}
	if doc != nil {
		r.LookupMisses = doc.LookupMisses
	}
	return r
}
