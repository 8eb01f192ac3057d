package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StudentRecordID is the learning context's public identifier for a student.
type StudentRecordID string

func NewStudentRecordID() StudentRecordID {
	return StudentRecordID(uuid.NewString())
}

func ParseStudentRecordID(s string) (StudentRecordID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: student record id is required", ErrValidation)
	}
	return StudentRecordID(s), nil
}

func (id StudentRecordID) IsSet() bool {
	return strings.TrimSpace(string(id)) != ""
}

func (id StudentRecordID) String() string {
	return string(id)
}

// ProfileID references a profile owned by the profile service.
type ProfileID int64

func NewProfileID(v int64) (ProfileID, error) {
	if v < 1 {
		return 0, fmt.Errorf("%w: profile id must be greater than 0", ErrValidation)
	}
	return ProfileID(v), nil
}

// PerformanceMetrics is an immutable snapshot of a student's counters.
type PerformanceMetrics struct {
	totalCompletedCourses   int
	totalCompletedTutorials int
}

func NewPerformanceMetrics(courses, tutorials int) (PerformanceMetrics, error) {
	if courses < 0 {
		return PerformanceMetrics{}, fmt.Errorf("%w: total completed courses cannot be negative", ErrValidation)
	}
	if tutorials < 0 {
		return PerformanceMetrics{}, fmt.Errorf("%w: total completed tutorials cannot be negative", ErrValidation)
	}
	return PerformanceMetrics{totalCompletedCourses: courses, totalCompletedTutorials: tutorials}, nil
}

func (m PerformanceMetrics) TotalCompletedCourses() int   { return m.totalCompletedCourses }
func (m PerformanceMetrics) TotalCompletedTutorials() int { return m.totalCompletedTutorials }

func (m PerformanceMetrics) WithCourseCompleted() PerformanceMetrics {
	return PerformanceMetrics{
		totalCompletedCourses:   m.totalCompletedCourses + 1,
		totalCompletedTutorials: m.totalCompletedTutorials,
	}
}

func (m PerformanceMetrics) WithTutorialCompleted() PerformanceMetrics {
	return PerformanceMetrics{
		totalCompletedCourses:   m.totalCompletedCourses,
		totalCompletedTutorials: m.totalCompletedTutorials + 1,
	}
}

type Student struct {
	ID        uint
	RecordID  StudentRecordID
	ProfileID ProfileID
	metrics   PerformanceMetrics

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewStudent(profile ProfileID) (*Student, error) {
	if profile < 1 {
		return nil, fmt.Errorf("%w: profile id must be greater than 0", ErrValidation)
	}
	return &Student{RecordID: NewStudentRecordID(), ProfileID: profile}, nil
}

func RestoreStudent(id uint, record StudentRecordID, profile ProfileID, metrics PerformanceMetrics) *Student {
	return &Student{ID: id, RecordID: record, ProfileID: profile, metrics: metrics}
}

func (s *Student) Metrics() PerformanceMetrics {
	return s.metrics
}

func (s *Student) RecordTutorialCompleted() {
	s.metrics = s.metrics.WithTutorialCompleted()
}

func (s *Student) RecordCourseCompleted() {
	s.metrics = s.metrics.WithCourseCompleted()
}
