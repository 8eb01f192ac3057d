package handlers

import (
	"time"

	"learningcenter/services/learning-service/internal/application/usecase"
	"learningcenter/services/learning-service/internal/domain"
)

type courseResource struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tutorials   []int64   `json:"tutorials"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toCourseResource(c *domain.Course) courseResource {
	items := c.Path.Items()
	tutorials := make([]int64, len(items))
	for i, it := range items {
		tutorials[i] = it.Tutorial.Int64()
	}
	return courseResource{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Tutorials:   tutorials,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type pathItemResource struct {
	ID           uint   `json:"id"`
	TutorialID   int64  `json:"tutorialId"`
	NextTutorial *int64 `json:"nextTutorialId"`
	IsTail       bool   `json:"isTail"`
}

func toPathItemResource(v usecase.PathItemView) pathItemResource {
	r := pathItemResource{ID: v.ID, TutorialID: v.Tutorial.Int64(), IsTail: v.IsTail}
	if v.Next.IsSet() {
		next := v.Next.Int64()
		r.NextTutorial = &next
	}
	return r
}

type studentResource struct {
	RecordID                string `json:"studentRecordId"`
	ProfileID               int64  `json:"profileId"`
	TotalCompletedCourses   int    `json:"totalCompletedCourses"`
	TotalCompletedTutorials int    `json:"totalCompletedTutorials"`
}

func toStudentResource(s *domain.Student) studentResource {
	m := s.Metrics()
	return studentResource{
		RecordID:                s.RecordID.String(),
		ProfileID:               int64(s.ProfileID),
		TotalCompletedCourses:   m.TotalCompletedCourses(),
		TotalCompletedTutorials: m.TotalCompletedTutorials(),
	}
}

type progressEntryResource struct {
	TutorialID  int64      `json:"tutorialId"`
	Status      string     `json:"status"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

type enrollmentResource struct {
	ID              uint                    `json:"id"`
	StudentRecordID string                  `json:"studentRecordId"`
	CourseID        uint                    `json:"courseId"`
	Status          string                  `json:"status"`
	Progress        []progressEntryResource `json:"progress"`
	DaysElapsed     int64                   `json:"daysElapsed"`
}

func toEnrollmentResource(e *domain.Enrollment, now time.Time) enrollmentResource {
	entries := e.Ledger.Entries()
	progress := make([]progressEntryResource, len(entries))
	for i, en := range entries {
		progress[i] = progressEntryResource{
			TutorialID:  en.Tutorial.Int64(),
			Status:      string(en.Status),
			StartedAt:   en.StartedAt,
			CompletedAt: en.CompletedAt,
		}
	}
	return enrollmentResource{
		ID:              e.ID,
		StudentRecordID: e.StudentRecordID.String(),
		CourseID:        e.CourseID,
		Status:          string(e.Status()),
		Progress:        progress,
		DaysElapsed:     e.DaysElapsed(now),
	}
}

func toEnrollmentResources(list []*domain.Enrollment, now time.Time) []enrollmentResource {
	out := make([]enrollmentResource, len(list))
	for i, e := range list {
		out[i] = toEnrollmentResource(e, now)
	}
	return out
}
