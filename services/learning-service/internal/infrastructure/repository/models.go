package repository

import (
	"time"

	"learningcenter/services/learning-service/internal/domain"
)

type courseModel struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"uniqueIndex;not null"`
	Description string `gorm:"not null"`

	Items []pathItemModel `gorm:"foreignKey:CourseID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (courseModel) TableName() string { return "courses" }

// pathItemModel stores a path item by its position in the path. NextPosition is the
// position of the successor item, nil for no successor.
type pathItemModel struct {
	ID           uint  `gorm:"primaryKey"`
	CourseID     uint  `gorm:"index;not null"`
	Position     int   `gorm:"not null"`
	TutorialID   int64 `gorm:"not null"`
	NextPosition *int
}

func (pathItemModel) TableName() string { return "learning_path_items" }

type enrollmentModel struct {
	ID              uint   `gorm:"primaryKey"`
	StudentRecordID string `gorm:"index;not null"`
	CourseID        uint   `gorm:"index;not null"`
	Status          string `gorm:"not null"`

	Entries []progressEntryModel `gorm:"foreignKey:EnrollmentID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (enrollmentModel) TableName() string { return "enrollments" }

type progressEntryModel struct {
	ID           uint   `gorm:"primaryKey"`
	EnrollmentID uint   `gorm:"index;not null"`
	Position     int    `gorm:"not null"`
	TutorialID   int64  `gorm:"not null"`
	Status       string `gorm:"not null"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

func (progressEntryModel) TableName() string { return "progress_entries" }

type studentModel struct {
	ID                      uint   `gorm:"primaryKey"`
	RecordID                string `gorm:"uniqueIndex;not null"`
	ProfileID               int64  `gorm:"uniqueIndex;not null"`
	TotalCompletedCourses   int    `gorm:"not null;default:0"`
	TotalCompletedTutorials int    `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (studentModel) TableName() string { return "students" }

// Models lists every table owned by the learning service, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&courseModel{},
		&pathItemModel{},
		&enrollmentModel{},
		&progressEntryModel{},
		&studentModel{},
	}
}

func pathFromModels(items []pathItemModel) domain.LearningPath {
	out := make([]domain.PathItem, len(items))
	for i, m := range items {
		next := domain.NoNext
		if m.NextPosition != nil {
			next = *m.NextPosition
		}
		out[i] = domain.PathItem{ID: m.ID, Tutorial: domain.TutorialID(m.TutorialID), Next: next}
	}
	return domain.RestoreLearningPath(out)
}

func courseFromModel(m *courseModel) *domain.Course {
	return &domain.Course{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Path:        pathFromModels(m.Items),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ledgerFromModels(entries []progressEntryModel) domain.ProgressLedger {
	out := make([]domain.ProgressEntry, len(entries))
	for i, m := range entries {
		out[i] = domain.ProgressEntry{
			ID:          m.ID,
			Tutorial:    domain.TutorialID(m.TutorialID),
			Status:      domain.ProgressStatus(m.Status),
			StartedAt:   m.StartedAt,
			CompletedAt: m.CompletedAt,
		}
	}
	return domain.RestoreProgressLedger(out)
}

func studentFromModel(m *studentModel) (*domain.Student, error) {
	metrics, err := domain.NewPerformanceMetrics(m.TotalCompletedCourses, m.TotalCompletedTutorials)
	if err != nil {
		return nil, err
	}
	s := domain.RestoreStudent(m.ID, domain.StudentRecordID(m.RecordID), domain.ProfileID(m.ProfileID), metrics)
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	return s, nil
}
