package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidScope         = errors.New("invalid sync scope")
	ErrSyncLogNotFound      = errors.New("sync log not found")
	ErrFileNotFound         = errors.New("file not found")
	ErrInvalidFileFormat    = errors.New("invalid file format")
	ErrSchemaValidation     = errors.New("schema validation failed")
	ErrRunTimeout           = errors.New("sync run exceeded the configured timeout")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrDirectoryDisabled    = errors.New("directory lookup not available for this credential")
)

// PhaseError marks a failure of a whole reconciliation phase (the remote
// listing itself failed, or an aggregate step could not run). Only this class
// of error turns a run's status to failed; per-record errors are absorbed
// into counters.
type PhaseError struct {
	Phase string
	Err   error
}

func (e PhaseError) Error() string {
	return fmt.Sprintf("phase %s failed: %v", e.Phase, e.Err)
}

func (e PhaseError) Unwrap() error {
	return e.Err
}

func NewPhaseError(phase string, err error) error {
	return PhaseError{Phase: phase, Err: err}
}

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// IsRetryable reports whether err or anything it wraps is a RetryableError.
func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}
