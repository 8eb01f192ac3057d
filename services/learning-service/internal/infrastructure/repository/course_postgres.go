package repository

import (
	"context"

	"learningcenter/pkg/dbctx"
	"learningcenter/pkg/logger"
	"learningcenter/services/learning-service/internal/domain"

	"gorm.io/gorm"
)

// CourseCache is the read-through cache in front of FindByID.
type CourseCache interface {
	Get(ctx context.Context, id uint) (*domain.Course, bool)
	Set(ctx context.Context, course *domain.Course)
	Invalidate(ctx context.Context, id uint)
}

type noopCourseCache struct{}

func (noopCourseCache) Get(context.Context, uint) (*domain.Course, bool) { return nil, false }
func (noopCourseCache) Set(context.Context, *domain.Course)              {}
func (noopCourseCache) Invalidate(context.Context, uint)                 {}

type CourseRepository struct {
	db    *gorm.DB
	cache CourseCache
	log   *logger.Logger
}

// NewCourseRepository wires the repository. cache may be nil.
func NewCourseRepository(db *gorm.DB, cache CourseCache, log *logger.Logger) *CourseRepository {
	if cache == nil {
		cache = noopCourseCache{}
	}
	return &CourseRepository{db: db, cache: cache, log: log.With("repo", "CourseRepository")}
}

// Save inserts or updates the course and its path. Items already stored only get their
// successor link rewritten; new items are inserted at their position.
func (r *CourseRepository) Save(dbc dbctx.Context, course *domain.Course) error {
	tx := dbc.DB(r.db)

	m := courseModel{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		CreatedAt:   course.CreatedAt,
	}
	if course.ID == 0 {
		if err := tx.Omit("Items").Create(&m).Error; err != nil {
			return translate(err, nil, domain.ErrCourseTitleTaken)
		}
	} else {
		res := tx.Model(&courseModel{}).Where("id = ?", course.ID).
			Updates(map[string]interface{}{"title": m.Title, "description": m.Description})
		if res.Error != nil {
			return translate(res.Error, nil, domain.ErrCourseTitleTaken)
		}
		if res.RowsAffected == 0 {
			return domain.ErrCourseNotFound
		}
		if err := tx.First(&m, course.ID).Error; err != nil {
			return translate(err, domain.ErrCourseNotFound, nil)
		}
	}

	items := course.Path.Items()
	for i, item := range items {
		var next *int
		if item.HasNext() {
			n := item.Next
			next = &n
		}
		if item.ID == 0 {
			im := pathItemModel{CourseID: m.ID, Position: i, TutorialID: item.Tutorial.Int64(), NextPosition: next}
			if err := tx.Create(&im).Error; err != nil {
				return translate(err, nil, nil)
			}
			items[i].ID = im.ID
			continue
		}
		if err := tx.Model(&pathItemModel{}).Where("id = ?", item.ID).
			Update("next_position", next).Error; err != nil {
			return translate(err, nil, nil)
		}
	}

	course.ID = m.ID
	course.CreatedAt = m.CreatedAt
	course.UpdatedAt = m.UpdatedAt
	course.Path = domain.RestoreLearningPath(items)
	r.invalidate(dbc, course.ID)
	return nil
}

// FindByID serves from the cache outside transactions.
func (r *CourseRepository) FindByID(dbc dbctx.Context, id uint) (*domain.Course, error) {
	if !dbc.InTx() {
		if c, ok := r.cache.Get(dbc.Ctx, id); ok {
			return c, nil
		}
	}

	var m courseModel
	err := dbc.DB(r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&m, id).Error
	if err != nil {
		return nil, translate(err, domain.ErrCourseNotFound, nil)
	}
	course := courseFromModel(&m)
	if !dbc.InTx() {
		r.cache.Set(dbc.Ctx, course)
	}
	return course, nil
}

func (r *CourseRepository) List(dbc dbctx.Context) ([]*domain.Course, error) {
	var models []courseModel
	err := dbc.DB(r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Order("id asc").
		Find(&models).Error
	if err != nil {
		return nil, translate(err, nil, nil)
	}
	out := make([]*domain.Course, len(models))
	for i := range models {
		out[i] = courseFromModel(&models[i])
	}
	return out, nil
}

func (r *CourseRepository) ExistsByID(dbc dbctx.Context, id uint) (bool, error) {
	var count int64
	err := dbc.DB(r.db).Model(&courseModel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translate(err, nil, nil)
}

func (r *CourseRepository) ExistsByTitle(dbc dbctx.Context, title string) (bool, error) {
	var count int64
	err := dbc.DB(r.db).Model(&courseModel{}).Where("title = ?", title).Count(&count).Error
	return count > 0, translate(err, nil, nil)
}

// ExistsByTitleExcept ignores the course with the given id.
func (r *CourseRepository) ExistsByTitleExcept(dbc dbctx.Context, title string, id uint) (bool, error) {
	var count int64
	err := dbc.DB(r.db).Model(&courseModel{}).Where("title = ? AND id <> ?", title, id).Count(&count).Error
	return count > 0, translate(err, nil, nil)
}

// Delete removes the course and its path. Enrollments are kept and lose their course.
func (r *CourseRepository) Delete(dbc dbctx.Context, id uint) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("course_id = ?", id).Delete(&pathItemModel{}).Error; err != nil {
		return translate(err, nil, nil)
	}
	res := tx.Delete(&courseModel{}, id)
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCourseNotFound
	}
	r.invalidate(dbc, id)
	r.log.Info("course deleted", "course_id", id)
	return nil
}

// invalidate drops the cached course once the write is committed.
func (r *CourseRepository) invalidate(dbc dbctx.Context, id uint) {
	ctx := context.WithoutCancel(dbc.Ctx)
	dbc.AfterCommit(func() { r.cache.Invalidate(ctx, id) })
}
