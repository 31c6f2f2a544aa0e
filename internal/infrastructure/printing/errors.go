package printing

import "errors"

// RenderError represents a failure while composing, rendering or storing a document
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout     = "RENDER_TIMEOUT"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeInvalidHTML       = "INVALID_HTML"
	ErrCodeInvalidPaperSize  = "INVALID_PAPER_SIZE"
	ErrCodeStorageFailed     = "STORAGE_FAILED"
	ErrCodeTargetNotLoaded   = "TARGET_NOT_LOADED"
	ErrCodeTargetUnavailable = "TARGET_UNAVAILABLE"
	ErrCodeUnsupportedLocale = "UNSUPPORTED_LOCALE"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasErrorCode reports whether err wraps a RenderError with the given code
func HasErrorCode(err error, code string) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Code == code
}
