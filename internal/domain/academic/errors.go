package academic

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the enrollment engine. Callers match with errors.Is;
// the concrete error types below carry the entity context.
var (
	ErrCapacityExceeded     = errors.New("offering capacity exceeded")
	ErrDuplicateEnrollment  = errors.New("student already enrolled in offering")
	ErrGradeLocked          = errors.New("grade is locked on a completed enrollment")
	ErrInvalidTransition    = errors.New("invalid enrollment state transition")
	ErrReferentialViolation = errors.New("referential integrity violation")
	ErrContentionTimeout    = errors.New("transaction lock contention timeout")
	ErrNotFound             = errors.New("record not found")
	ErrInvalidGrade         = errors.New("invalid grade")
)

// CapacityError reports an enroll attempt against a full offering.
type CapacityError struct {
	OfferingID  uuid.UUID
	MaxStudents int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("offering %s is full (%d seats)", e.OfferingID, e.MaxStudents)
}

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }

// DuplicateEnrollmentError reports a live (student, offering) pair that
// already exists.
type DuplicateEnrollmentError struct {
	StudentID  uuid.UUID
	OfferingID uuid.UUID
	Status     EnrollmentStatus
}

func (e *DuplicateEnrollmentError) Error() string {
	return fmt.Sprintf("student %s already enrolled in offering %s (status %s)", e.StudentID, e.OfferingID, e.Status)
}

func (e *DuplicateEnrollmentError) Unwrap() error { return ErrDuplicateEnrollment }

// GradeLockError reports a grade mutation on a completed enrollment.
type GradeLockError struct {
	EnrollmentID uuid.UUID
	Grade        Grade
}

func (e *GradeLockError) Error() string {
	return fmt.Sprintf("enrollment %s is completed with grade %s and cannot be regraded", e.EnrollmentID, e.Grade)
}

func (e *GradeLockError) Unwrap() error { return ErrGradeLocked }

// TransitionError reports an operation attempted from a terminal state.
type TransitionError struct {
	EnrollmentID uuid.UUID
	From         EnrollmentStatus
	Op           string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s enrollment %s in status %s", e.Op, e.EnrollmentID, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ReferentialError reports a restricted delete or a broken reference,
// surfaced from the store's foreign key constraints.
type ReferentialError struct {
	Entity string
	ID     uuid.UUID
	Cause  error
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("%s %s has dependent records: %v", e.Entity, e.ID, e.Cause)
}

func (e *ReferentialError) Unwrap() error { return ErrReferentialViolation }

// ContentionError reports that a transaction could not acquire its locks
// within the configured bound. Safe for the caller to retry with backoff.
type ContentionError struct {
	Op      string
	Timeout time.Duration
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("%s aborted after lock wait of %s; retry with backoff", e.Op, e.Timeout)
}

func (e *ContentionError) Unwrap() error { return ErrContentionTimeout }

// NotFoundError reports a missing entity by id.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
