package domain

import "errors"

// Validation
var (
	ErrValidation = errors.New("validation failed")
)

// NotFound
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrTutorialNotInPath   = errors.New("tutorial not found in learning path")
	ErrTutorialNotInLedger = errors.New("tutorial not found in progress ledger")
)

// StateConflict
var (
	ErrTutorialAlreadyInProgress         = errors.New("a tutorial is already in progress")
	ErrTutorialAlreadyStartedOrCompleted = errors.New("tutorial is already started or completed")
	ErrInvalidTransition                 = errors.New("enrollment status does not allow this transition")
	ErrEnrollmentNotConfirmed            = errors.New("enrollment is not confirmed")
	ErrEnrollmentExists                  = errors.New("student is already enrolled in this course")
	ErrCourseTitleTaken                  = errors.New("course with this title already exists")
	ErrStudentAlreadyExists              = errors.New("student with this profile already exists")
	ErrProfileEmailTaken                 = errors.New("profile with this email already exists")
)

var (
	ErrEmptyPath       = errors.New("learning path is empty")
	ErrOperationFailed = errors.New("operation failed")
)
