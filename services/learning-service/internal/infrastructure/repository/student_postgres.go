package repository

import (
	"learningcenter/pkg/dbctx"
	"learningcenter/services/learning-service/internal/domain"

	"gorm.io/gorm"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) Save(dbc dbctx.Context, s *domain.Student) error {
	tx := dbc.DB(r.db)
	metrics := s.Metrics()
	m := studentModel{
		ID:                      s.ID,
		RecordID:                s.RecordID.String(),
		ProfileID:               int64(s.ProfileID),
		TotalCompletedCourses:   metrics.TotalCompletedCourses(),
		TotalCompletedTutorials: metrics.TotalCompletedTutorials(),
		CreatedAt:               s.CreatedAt,
	}
	if s.ID == 0 {
		if err := tx.Create(&m).Error; err != nil {
			return translate(err, nil, domain.ErrStudentAlreadyExists)
		}
	} else {
		res := tx.Model(&studentModel{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
			"total_completed_courses":   m.TotalCompletedCourses,
			"total_completed_tutorials": m.TotalCompletedTutorials,
		})
		if res.Error != nil {
			return translate(res.Error, nil, nil)
		}
		if res.RowsAffected == 0 {
			return domain.ErrStudentNotFound
		}
		if err := tx.First(&m, s.ID).Error; err != nil {
			return translate(err, domain.ErrStudentNotFound, nil)
		}
	}
	s.ID = m.ID
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	return nil
}

// FindByRecordID locks the student row when called inside a transaction.
func (r *StudentRepository) FindByRecordID(dbc dbctx.Context, id domain.StudentRecordID) (*domain.Student, error) {
	var m studentModel
	if err := forUpdate(dbc, dbc.DB(r.db)).Where("record_id = ?", id.String()).First(&m).Error; err != nil {
		return nil, translate(err, domain.ErrStudentNotFound, nil)
	}
	return studentFromModel(&m)
}

func (r *StudentRepository) FindByProfileID(dbc dbctx.Context, id domain.ProfileID) (*domain.Student, error) {
	var m studentModel
	if err := dbc.DB(r.db).Where("profile_id = ?", int64(id)).First(&m).Error; err != nil {
		return nil, translate(err, domain.ErrStudentNotFound, nil)
	}
	return studentFromModel(&m)
}

func (r *StudentRepository) ExistsByRecordID(dbc dbctx.Context, id domain.StudentRecordID) (bool, error) {
	var count int64
	err := dbc.DB(r.db).Model(&studentModel{}).Where("record_id = ?", id.String()).Count(&count).Error
	return count > 0, translate(err, nil, nil)
}

func (r *StudentRepository) List(dbc dbctx.Context) ([]*domain.Student, error) {
	var models []studentModel
	if err := dbc.DB(r.db).Order("id asc").Find(&models).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	out := make([]*domain.Student, 0, len(models))
	for i := range models {
		s, err := studentFromModel(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
