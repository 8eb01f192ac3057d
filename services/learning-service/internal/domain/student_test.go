package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudent(t *testing.T) {
	s, err := NewStudent(5)
	require.NoError(t, err)

	_, err = uuid.Parse(s.RecordID.String())
	assert.NoError(t, err)
	assert.Equal(t, ProfileID(5), s.ProfileID)
	assert.Equal(t, 0, s.Metrics().TotalCompletedCourses())
	assert.Equal(t, 0, s.Metrics().TotalCompletedTutorials())

	_, err = NewStudent(0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStudentMetricsReplacedOnIncrement(t *testing.T) {
	s, err := NewStudent(1)
	require.NoError(t, err)
	before := s.Metrics()

	s.RecordTutorialCompleted()
	s.RecordTutorialCompleted()
	s.RecordCourseCompleted()

	assert.Equal(t, 0, before.TotalCompletedTutorials())
	assert.Equal(t, 2, s.Metrics().TotalCompletedTutorials())
	assert.Equal(t, 1, s.Metrics().TotalCompletedCourses())
}

func TestPerformanceMetricsRejectNegative(t *testing.T) {
	_, err := NewPerformanceMetrics(-1, 0)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = NewPerformanceMetrics(0, -1)
	assert.ErrorIs(t, err, ErrValidation)

	m, err := NewPerformanceMetrics(2, 9)
	require.NoError(t, err)
	next := m.WithCourseCompleted().WithTutorialCompleted()
	assert.Equal(t, 3, next.TotalCompletedCourses())
	assert.Equal(t, 10, next.TotalCompletedTutorials())
	assert.Equal(t, 2, m.TotalCompletedCourses())
}

func TestStudentRecordAndProfileIDs(t *testing.T) {
	_, err := ParseStudentRecordID("  ")
	assert.ErrorIs(t, err, ErrValidation)

	id, err := ParseStudentRecordID(" abc ")
	require.NoError(t, err)
	assert.Equal(t, StudentRecordID("abc"), id)

	_, err = NewProfileID(0)
	assert.ErrorIs(t, err, ErrValidation)
	p, err := NewProfileID(3)
	require.NoError(t, err)
	assert.Equal(t, ProfileID(3), p)
}
