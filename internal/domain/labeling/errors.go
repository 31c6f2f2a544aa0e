package labeling

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a batch did not print
type FailureKind string

const (
	FailureKindInvalidBatch            FailureKind = "INVALID_BATCH"
	FailureKindEncoding                FailureKind = "ENCODING_FAILURE"
	FailureKindComposition             FailureKind = "COMPOSITION_FAILED"
	FailureKindRenderTargetUnavailable FailureKind = "RENDER_TARGET_UNAVAILABLE"
	FailureKindRender                  FailureKind = "RENDER_FAILED"
	FailureKindPrint                   FailureKind = "PRINT_FAILED"
)

// String returns the string representation of FailureKind
func (k FailureKind) String() string {
	return string(k)
}

// ErrRenderTargetUnavailable is returned when no ready render target exists
// at dispatch time.
var ErrRenderTargetUnavailable = errors.New("render target unavailable")

// Failure is the structured reason attached to a failed job
type Failure struct {
	Kind     FailureKind `json:"kind"`
	Message  string      `json:"message"`
	RecordID string      `json:"record_id,omitempty"`
	Cause    error       `json:"-"`
}

// NewFailure creates a Failure, pulling the record id out of an
// EncodingError cause when there is one.
func NewFailure(kind FailureKind, message string, cause error) *Failure {
	f := &Failure{Kind: kind, Message: message, Cause: cause}
	var encErr *EncodingError
	if errors.As(cause, &encErr) {
		f.RecordID = encErr.RecordID
	}
	return f
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// EncodingError reports that the symbol encoder rejected a payload
type EncodingError struct {
	RecordID  string
	Symbology Symbology
	Cause     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s for record %q: %v", e.Symbology, e.RecordID, e.Cause)
}

func (e *EncodingError) Unwrap() error {
	return e.Cause
}
