package domain

import "time"

// TutorialCompleted is published after an enrollment closes a tutorial. CourseFinished
// is set when the tutorial is the tail of the course's learning path.
type TutorialCompleted struct {
	EnrollmentID    uint
	StudentRecordID StudentRecordID
	CourseID        uint
	Tutorial        TutorialID
	CourseFinished  bool
	OccurredAt      time.Time
}
