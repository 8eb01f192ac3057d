package repository

import (
	"errors"

	"learningcenter/pkg/dbctx"
	"learningcenter/services/learning-service/internal/domain"

	"gorm.io/gorm"
)

var activeEnrollmentStatuses = []string{
	string(domain.EnrollmentRequested),
	string(domain.EnrollmentConfirmed),
}

type EnrollmentRepository struct {
	db      *gorm.DB
	courses *CourseRepository
}

func NewEnrollmentRepository(db *gorm.DB, courses *CourseRepository) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, courses: courses}
}

// Save inserts or updates the enrollment and its ledger. Entries are matched by id;
// entries without one are inserted at their position.
func (r *EnrollmentRepository) Save(dbc dbctx.Context, e *domain.Enrollment) error {
	tx := dbc.DB(r.db)

	m := enrollmentModel{
		ID:              e.ID,
		StudentRecordID: e.StudentRecordID.String(),
		CourseID:        e.CourseID,
		Status:          string(e.Status()),
		CreatedAt:       e.CreatedAt,
	}
	if e.ID == 0 {
		if err := tx.Omit("Entries").Create(&m).Error; err != nil {
			return translate(err, nil, nil)
		}
	} else {
		res := tx.Model(&enrollmentModel{}).Where("id = ?", e.ID).Update("status", m.Status)
		if res.Error != nil {
			return translate(res.Error, nil, nil)
		}
		if res.RowsAffected == 0 {
			return domain.ErrEnrollmentNotFound
		}
		if err := tx.First(&m, e.ID).Error; err != nil {
			return translate(err, domain.ErrEnrollmentNotFound, nil)
		}
	}

	entries := e.Ledger.Entries()
	for i, entry := range entries {
		pm := progressEntryModel{
			ID:           entry.ID,
			EnrollmentID: m.ID,
			Position:     i,
			TutorialID:   entry.Tutorial.Int64(),
			Status:       string(entry.Status),
			StartedAt:    entry.StartedAt,
			CompletedAt:  entry.CompletedAt,
		}
		if entry.ID == 0 {
			if err := tx.Create(&pm).Error; err != nil {
				return translate(err, nil, nil)
			}
			entries[i].ID = pm.ID
			continue
		}
		err := tx.Model(&progressEntryModel{}).Where("id = ?", entry.ID).
			Updates(map[string]interface{}{
				"status":       pm.Status,
				"started_at":   pm.StartedAt,
				"completed_at": pm.CompletedAt,
			}).Error
		if err != nil {
			return translate(err, nil, nil)
		}
	}

	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	e.UpdatedAt = m.UpdatedAt
	e.Ledger = domain.RestoreProgressLedger(entries)
	return nil
}

// FindByID locks the enrollment row when called inside a transaction.
func (r *EnrollmentRepository) FindByID(dbc dbctx.Context, id uint) (*domain.Enrollment, error) {
	var m enrollmentModel
	err := forUpdate(dbc, r.preloaded(dbc)).First(&m, id).Error
	if err != nil {
		return nil, translate(err, domain.ErrEnrollmentNotFound, nil)
	}
	out, err := r.toDomain(dbc, []enrollmentModel{m})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ExistsActive reports whether the student holds a requested or confirmed enrollment
// in the course.
func (r *EnrollmentRepository) ExistsActive(dbc dbctx.Context, student domain.StudentRecordID, courseID uint) (bool, error) {
	var count int64
	err := dbc.DB(r.db).Model(&enrollmentModel{}).
		Where("student_record_id = ? AND course_id = ? AND status IN ?", student.String(), courseID, activeEnrollmentStatuses).
		Count(&count).Error
	return count > 0, translate(err, nil, nil)
}

// FindByStudentAndCourse returns the most recent enrollment of the student in the course.
func (r *EnrollmentRepository) FindByStudentAndCourse(dbc dbctx.Context, student domain.StudentRecordID, courseID uint) (*domain.Enrollment, error) {
	var m enrollmentModel
	err := r.preloaded(dbc).
		Where("student_record_id = ? AND course_id = ?", student.String(), courseID).
		Order("id desc").
		First(&m).Error
	if err != nil {
		return nil, translate(err, domain.ErrEnrollmentNotFound, nil)
	}
	out, err := r.toDomain(dbc, []enrollmentModel{m})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *EnrollmentRepository) List(dbc dbctx.Context) ([]*domain.Enrollment, error) {
	return r.find(dbc, r.preloaded(dbc))
}

func (r *EnrollmentRepository) ListByStudent(dbc dbctx.Context, student domain.StudentRecordID) ([]*domain.Enrollment, error) {
	return r.find(dbc, r.preloaded(dbc).Where("student_record_id = ?", student.String()))
}

func (r *EnrollmentRepository) ListByCourse(dbc dbctx.Context, courseID uint) ([]*domain.Enrollment, error) {
	return r.find(dbc, r.preloaded(dbc).Where("course_id = ?", courseID))
}

func (r *EnrollmentRepository) preloaded(dbc dbctx.Context) *gorm.DB {
	return dbc.DB(r.db).Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") })
}

func (r *EnrollmentRepository) find(dbc dbctx.Context, q *gorm.DB) ([]*domain.Enrollment, error) {
	var models []enrollmentModel
	if err := q.Order("id asc").Find(&models).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return r.toDomain(dbc, models)
}

// toDomain attaches each enrollment's course, loading every course once. A deleted
// course leaves Course nil.
func (r *EnrollmentRepository) toDomain(dbc dbctx.Context, models []enrollmentModel) ([]*domain.Enrollment, error) {
	courses := make(map[uint]*domain.Course)
	out := make([]*domain.Enrollment, len(models))
	for i, m := range models {
		course, seen := courses[m.CourseID]
		if !seen {
			c, err := r.courses.FindByID(dbc, m.CourseID)
			if err != nil && !errors.Is(err, domain.ErrCourseNotFound) {
				return nil, err
			}
			course = c
			courses[m.CourseID] = c
		}
		status, err := domain.ParseEnrollmentStatus(m.Status)
		if err != nil {
			return nil, err
		}
		e := domain.RestoreEnrollment(m.ID, domain.StudentRecordID(m.StudentRecordID), course, m.CourseID, status, ledgerFromModels(m.Entries))
		e.CreatedAt = m.CreatedAt
		e.UpdatedAt = m.UpdatedAt
		out[i] = e
	}
	return out, nil
}
