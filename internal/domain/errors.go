package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("transcode already in progress")
	ErrProcessStart      = errors.New("failed to start conversion process")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// ValidationError reports a rejected input field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConflictError carries the id of the job already converting the same
// video to the same format.
type ConflictError struct {
	JobID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: job %s", ErrConflict.Error(), e.JobID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ProcessStartError is returned when the conversion process could not be
// spawned. The job row has already been marked failed when this surfaces.
type ProcessStartError struct {
	JobID string
	Err   error
}

func (e *ProcessStartError) Error() string {
	if e.JobID == "" {
		return fmt.Sprintf("%s: %v", ErrProcessStart.Error(), e.Err)
	}
	return fmt.Sprintf("%s for job %s: %v", ErrProcessStart.Error(), e.JobID, e.Err)
}

func (e *ProcessStartError) Is(target error) bool {
	return target == ErrProcessStart
}

func (e *ProcessStartError) Unwrap() error {
	return e.Err
}
