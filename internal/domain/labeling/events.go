package labeling

import (
	"github.com/pexcode/qds-print-sdk/internal/domain/shared"
)

// AggregateTypeLabelJob is the aggregate type of label job events
const AggregateTypeLabelJob = "LabelJob"

// Event type constants for LabelJob
const (
	EventTypeLabelJobCreated       = "LabelJobCreated"
	EventTypeLabelJobStatusChanged = "LabelJobStatusChanged"
	EventTypeLabelJobPrinted       = "LabelJobPrinted"
	EventTypeLabelJobFailed        = "LabelJobFailed"
)

// LabelJobCreatedEvent is raised when a batch print starts
type LabelJobCreatedEvent struct {
	shared.BaseDomainEvent
	RecordCount int `json:"record_count"`
}

// NewLabelJobCreatedEvent creates a new LabelJobCreatedEvent
func NewLabelJobCreatedEvent(job *LabelJob) *LabelJobCreatedEvent {
	return &LabelJobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLabelJobCreated, AggregateTypeLabelJob, job.ID),
		RecordCount:     job.RecordCount(),
	}
}

// LabelJobStatusChangedEvent is raised on every state transition
type LabelJobStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus JobStatus `json:"old_status"`
	NewStatus JobStatus `json:"new_status"`
}

// NewLabelJobStatusChangedEvent creates a new LabelJobStatusChangedEvent
func NewLabelJobStatusChangedEvent(job *LabelJob, from, to JobStatus) *LabelJobStatusChangedEvent {
	return &LabelJobStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLabelJobStatusChanged, AggregateTypeLabelJob, job.ID),
		OldStatus:       from,
		NewStatus:       to,
	}
}

// LabelJobPrintedEvent is raised once the print trigger fired
type LabelJobPrintedEvent struct {
	shared.BaseDomainEvent
	RecordIDs []string `json:"record_ids"`
}

// NewLabelJobPrintedEvent creates a new LabelJobPrintedEvent
func NewLabelJobPrintedEvent(job *LabelJob) *LabelJobPrintedEvent {
	return &LabelJobPrintedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLabelJobPrinted, AggregateTypeLabelJob, job.ID),
		RecordIDs:       job.RecordIDs,
	}
}

// LabelJobFailedEvent is raised when a batch ends without printing
type LabelJobFailedEvent struct {
	shared.BaseDomainEvent
	Kind     FailureKind `json:"kind"`
	Message  string      `json:"message"`
	RecordID string      `json:"record_id,omitempty"`
}

// NewLabelJobFailedEvent creates a new LabelJobFailedEvent
func NewLabelJobFailedEvent(job *LabelJob) *LabelJobFailedEvent {
	e := &LabelJobFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLabelJobFailed, AggregateTypeLabelJob, job.ID),
	}
	if job.Failure != nil {
		e.Kind = job.Failure.Kind
		e.Message = job.Failure.Message
		e.RecordID = job.Failure.RecordID
	}
	return e
}
