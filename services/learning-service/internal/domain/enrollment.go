package domain

import (
	"fmt"
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentRequested EnrollmentStatus = "requested"
	EnrollmentConfirmed EnrollmentStatus = "confirmed"
	EnrollmentRejected  EnrollmentStatus = "rejected"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

func ParseEnrollmentStatus(s string) (EnrollmentStatus, error) {
	switch st := EnrollmentStatus(s); st {
	case EnrollmentRequested, EnrollmentConfirmed, EnrollmentRejected, EnrollmentCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown enrollment status %q", ErrValidation, s)
}

// IsTerminal reports whether no further transition is allowed.
func (s EnrollmentStatus) IsTerminal() bool {
	return s == EnrollmentRejected || s == EnrollmentCancelled
}

// Enrollment ties a student to a course. Requested is the only status that can be
// confirmed, rejected or cancelled; progress is tracked only once confirmed.
type Enrollment struct {
	ID              uint
	StudentRecordID StudentRecordID
	CourseID        uint
	Course          *Course
	Ledger          ProgressLedger

	status EnrollmentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewEnrollment(student StudentRecordID, course *Course) (*Enrollment, error) {
	if !student.IsSet() {
		return nil, fmt.Errorf("%w: student record id is required", ErrValidation)
	}
	if course == nil || course.ID == 0 {
		return nil, fmt.Errorf("%w: course is required", ErrValidation)
	}
	return &Enrollment{
		StudentRecordID: student,
		CourseID:        course.ID,
		Course:          course,
		status:          EnrollmentRequested,
	}, nil
}

// RestoreEnrollment rebuilds a stored enrollment. course may be nil when only the
// status is needed.
func RestoreEnrollment(id uint, student StudentRecordID, course *Course, courseID uint, status EnrollmentStatus, ledger ProgressLedger) *Enrollment {
	return &Enrollment{
		ID:              id,
		StudentRecordID: student,
		CourseID:        courseID,
		Course:          course,
		Ledger:          ledger,
		status:          status,
	}
}

func (e *Enrollment) Status() EnrollmentStatus {
	return e.status
}

func (e *Enrollment) IsConfirmed() bool { return e.status == EnrollmentConfirmed }
func (e *Enrollment) IsRejected() bool  { return e.status == EnrollmentRejected }
func (e *Enrollment) IsCancelled() bool { return e.status == EnrollmentCancelled }

// Confirm accepts the request and opens the first tutorial of the course's current path.
func (e *Enrollment) Confirm() error {
	if err := e.transition(EnrollmentConfirmed); err != nil {
		return err
	}
	if e.Course != nil {
		e.Ledger.Initialize(&e.Course.Path)
	}
	return nil
}

func (e *Enrollment) Reject() error {
	return e.transition(EnrollmentRejected)
}

func (e *Enrollment) Cancel() error {
	return e.transition(EnrollmentCancelled)
}

func (e *Enrollment) StartTutorial(tutorial TutorialID, now time.Time) error {
	if !e.IsConfirmed() {
		return ErrEnrollmentNotConfirmed
	}
	return e.Ledger.Start(tutorial, now)
}

// CompleteTutorial closes the tutorial's entry and returns the fact to publish. It
// returns nil when the entry was already completed, so a repeated completion is
// neither recorded nor published twice.
func (e *Enrollment) CompleteTutorial(tutorial TutorialID, now time.Time) (*TutorialCompleted, error) {
	if !e.IsConfirmed() {
		return nil, ErrEnrollmentNotConfirmed
	}
	if e.Course == nil {
		return nil, ErrCourseNotFound
	}
	entry, ok := e.Ledger.EntryFor(tutorial)
	if !ok {
		return nil, ErrTutorialNotInLedger
	}
	if entry.IsCompleted() {
		return nil, nil
	}
	if err := e.Ledger.Complete(tutorial, &e.Course.Path, now); err != nil {
		return nil, err
	}
	_, inPath := e.Course.Path.ItemFor(tutorial)
	return &TutorialCompleted{
		EnrollmentID:    e.ID,
		StudentRecordID: e.StudentRecordID,
		CourseID:        e.CourseID,
		Tutorial:        tutorial,
		CourseFinished:  inPath && e.Course.Path.IsTail(tutorial),
		OccurredAt:      now,
	}, nil
}

func (e *Enrollment) DaysElapsed(now time.Time) int64 {
	return e.Ledger.ElapsedDays(now)
}

func (e *Enrollment) transition(to EnrollmentStatus) error {
	if e.status != EnrollmentRequested {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.status, to)
	}
	e.status = to
	return nil
}
