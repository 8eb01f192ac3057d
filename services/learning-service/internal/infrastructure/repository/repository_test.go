package repository

import (
	"context"
	"testing"
	"time"

	"learningcenter/pkg/dbctx"
	"learningcenter/pkg/logger"
	"learningcenter/services/learning-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

type mapCache struct {
	items       map[uint]*domain.Course
	hits        int
	invalidated []uint
}

func newMapCache() *mapCache { return &mapCache{items: map[uint]*domain.Course{}} }

func (c *mapCache) Get(_ context.Context, id uint) (*domain.Course, bool) {
	v, ok := c.items[id]
	if ok {
		c.hits++
	}
	return v, ok
}
func (c *mapCache) Set(_ context.Context, course *domain.Course) { c.items[course.ID] = course }
func (c *mapCache) Invalidate(_ context.Context, id uint) {
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
}

func savedCourse(t *testing.T, repo *CourseRepository, title string, tutorials ...domain.TutorialID) *domain.Course {
	t.Helper()
	c, err := domain.NewCourse(title, "desc")
	require.NoError(t, err)
	for _, tut := range tutorials {
		c.AddTutorial(tut)
	}
	require.NoError(t, repo.Save(dbctx.New(context.Background()), c))
	return c
}

func TestCourseRepositorySaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db, nil, logger.Nop())
	dbc := dbctx.New(context.Background())

	c := savedCourse(t, repo, "Go", 1, 2)
	require.NotZero(t, c.ID)
	for _, item := range c.Path.Items() {
		assert.NotZero(t, item.ID)
	}

	c.AddTutorial(3)
	c.AddTutorialBefore(4, 2)
	require.NoError(t, repo.Save(dbc, c))

	got, err := repo.FindByID(dbc, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go", got.Title)
	assert.Equal(t, c.Path.Items(), got.Path.Items())
	assert.Equal(t, domain.TutorialID(3), got.Path.Successor(2))
	assert.Equal(t, domain.TutorialID(2), got.Path.Successor(4))
	assert.True(t, got.Path.IsTail(3))

	_, err = repo.FindByID(dbc, 999)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestCourseRepositoryTitles(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db, nil, logger.Nop())
	dbc := dbctx.New(context.Background())

	a := savedCourse(t, repo, "Go")
	savedCourse(t, repo, "Rust")

	exists, err := repo.ExistsByTitle(dbc, "Go")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByTitleExcept(dbc, "Go", a.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	dup, err := domain.NewCourse("Rust", "again")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(dbc, dup), domain.ErrCourseTitleTaken)

	require.NoError(t, a.UpdateInformation("Go 2", "new"))
	require.NoError(t, repo.Save(dbc, a))
	got, err := repo.FindByID(dbc, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go 2", got.Title)

	list, err := repo.List(dbc)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCourseRepositoryDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db, nil, logger.Nop())
	dbc := dbctx.New(context.Background())
	c := savedCourse(t, repo, "Go", 1, 2)

	require.NoError(t, repo.Delete(dbc, c.ID))

	exists, err := repo.ExistsByID(dbc, c.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	var items int64
	require.NoError(t, db.Model(&pathItemModel{}).Count(&items).Error)
	assert.Zero(t, items)
	assert.ErrorIs(t, repo.Delete(dbc, c.ID), domain.ErrCourseNotFound)
}

func TestCourseRepositoryCache(t *testing.T) {
	db := newTestDB(t)
	cache := newMapCache()
	repo := NewCourseRepository(db, cache, logger.Nop())
	ctx := context.Background()
	c := savedCourse(t, repo, "Go", 1)

	_, err := repo.FindByID(dbctx.New(ctx), c.ID)
	require.NoError(t, err)
	_, err = repo.FindByID(dbctx.New(ctx), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	err = dbctx.NewRunner(db).InTx(ctx, func(dbc dbctx.Context) error {
		_, err := repo.FindByID(dbc, c.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	c.AddTutorial(2)
	require.NoError(t, repo.Save(dbctx.New(ctx), c))
	assert.Contains(t, cache.invalidated, c.ID)
	got, err := repo.FindByID(dbctx.New(ctx), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Path.Len())
}

func TestCourseRepositoryInvalidatesAfterCommit(t *testing.T) {
	db := newTestDB(t)
	cache := newMapCache()
	repo := NewCourseRepository(db, cache, logger.Nop())
	ctx := context.Background()
	c := savedCourse(t, repo, "Go", 1)
	cache.invalidated = nil

	err := dbctx.NewRunner(db).InTx(ctx, func(dbc dbctx.Context) error {
		c.AddTutorial(2)
		require.NoError(t, repo.Save(dbc, c))
		assert.Empty(t, cache.invalidated)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID}, cache.invalidated)

	err = dbctx.NewRunner(db).InTx(ctx, func(dbc dbctx.Context) error {
		require.NoError(t, repo.Delete(dbc, c.ID))
		assert.Len(t, cache.invalidated, 1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{c.ID, c.ID}, cache.invalidated)
}

func TestCourseRepositoryKeepsCacheOnRollback(t *testing.T) {
	db := newTestDB(t)
	cache := newMapCache()
	repo := NewCourseRepository(db, cache, logger.Nop())
	ctx := context.Background()
	c := savedCourse(t, repo, "Go", 1)
	cache.invalidated = nil

	err := dbctx.NewRunner(db).InTx(ctx, func(dbc dbctx.Context) error {
		require.NoError(t, repo.Delete(dbc, c.ID))
		return domain.ErrOperationFailed
	})
	assert.ErrorIs(t, err, domain.ErrOperationFailed)
	assert.Empty(t, cache.invalidated)

	_, err = repo.FindByID(dbctx.New(ctx), c.ID)
	require.NoError(t, err)
}

func TestForUpdateLocksOnlyInsideTransactions(t *testing.T) {
	db := newTestDB(t).Session(&gorm.Session{DryRun: true})
	ctx := context.Background()
	locked := func(dbc dbctx.Context) bool {
		var m studentModel
		stmt := forUpdate(dbc, db).Where("record_id = ?", "r-1").First(&m).Statement
		c, ok := stmt.Clauses["FOR"]
		if !ok {
			return false
		}
		l, ok := c.Expression.(clause.Locking)
		return ok && l.Strength == clause.LockingStrengthUpdate
	}

	assert.False(t, locked(dbctx.New(ctx)))
	assert.True(t, locked(dbctx.Context{Ctx: ctx, Tx: db}))
}

func TestLockedLoadsWorkInsideTransactions(t *testing.T) {
	db := newTestDB(t)
	courses := NewCourseRepository(db, nil, logger.Nop())
	enrollments := NewEnrollmentRepository(db, courses)
	students := NewStudentRepository(db)
	ctx := context.Background()
	c := savedCourse(t, courses, "Go", 1)

	s, err := domain.NewStudent(5)
	require.NoError(t, err)
	require.NoError(t, students.Save(dbctx.New(ctx), s))
	e, err := domain.NewEnrollment(s.RecordID, c)
	require.NoError(t, err)
	require.NoError(t, enrollments.Save(dbctx.New(ctx), e))

	err = dbctx.NewRunner(db).InTx(ctx, func(dbc dbctx.Context) error {
		got, err := enrollments.FindByID(dbc, e.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.Course.ID)
		_, err = students.FindByRecordID(dbc, s.RecordID)
		return err
	})
	require.NoError(t, err)
}

func TestEnrollmentRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	courses := NewCourseRepository(db, nil, logger.Nop())
	repo := NewEnrollmentRepository(db, courses)
	dbc := dbctx.New(context.Background())
	c := savedCourse(t, courses, "Go", 1, 2, 3)

	e, err := domain.NewEnrollment("student-1", c)
	require.NoError(t, err)
	require.NoError(t, repo.Save(dbc, e))
	require.NotZero(t, e.ID)

	require.NoError(t, e.Confirm())
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, e.StartTutorial(1, now))
	_, err = e.CompleteTutorial(1, now.Add(48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Save(dbc, e))

	got, err := repo.FindByID(dbc, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentConfirmed, got.Status())
	require.NotNil(t, got.Course)
	assert.Equal(t, c.ID, got.Course.ID)
	entries := got.Ledger.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsCompleted())
	assert.True(t, now.Equal(*entries[0].StartedAt))
	assert.Equal(t, domain.TutorialID(2), entries[1].Tutorial)
	assert.Equal(t, int64(2), got.DaysElapsed(now.Add(100*time.Hour)))

	_, err = repo.FindByID(dbc, 404)
	assert.ErrorIs(t, err, domain.ErrEnrollmentNotFound)
}

func TestEnrollmentRepositoryQueries(t *testing.T) {
	db := newTestDB(t)
	courses := NewCourseRepository(db, nil, logger.Nop())
	repo := NewEnrollmentRepository(db, courses)
	dbc := dbctx.New(context.Background())
	goCourse := savedCourse(t, courses, "Go", 1)
	rust := savedCourse(t, courses, "Rust", 1)

	first, err := domain.NewEnrollment("student-1", goCourse)
	require.NoError(t, err)
	require.NoError(t, repo.Save(dbc, first))
	other, err := domain.NewEnrollment("student-2", rust)
	require.NoError(t, err)
	require.NoError(t, repo.Save(dbc, other))

	active, err := repo.ExistsActive(dbc, "student-1", goCourse.ID)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, first.Cancel())
	require.NoError(t, repo.Save(dbc, first))
	active, err = repo.ExistsActive(dbc, "student-1", goCourse.ID)
	require.NoError(t, err)
	assert.False(t, active)

	found, err := repo.FindByStudentAndCourse(dbc, "student-1", goCourse.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	byStudent, err := repo.ListByStudent(dbc, "student-2")
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	assert.Equal(t, other.ID, byStudent[0].ID)

	byCourse, err := repo.ListByCourse(dbc, goCourse.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 1)

	all, err := repo.List(dbc)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestEnrollmentRepositoryCourseDeleted(t *testing.T) {
	db := newTestDB(t)
	courses := NewCourseRepository(db, nil, logger.Nop())
	repo := NewEnrollmentRepository(db, courses)
	dbc := dbctx.New(context.Background())
	c := savedCourse(t, courses, "Go", 1)
	e, err := domain.NewEnrollment("student-1", c)
	require.NoError(t, err)
	require.NoError(t, repo.Save(dbc, e))

	require.NoError(t, courses.Delete(dbc, c.ID))

	got, err := repo.FindByID(dbc, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Course)
	assert.Equal(t, c.ID, got.CourseID)
}

func TestStudentRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db)
	dbc := dbctx.New(context.Background())

	s, err := domain.NewStudent(7)
	require.NoError(t, err)
	require.NoError(t, repo.Save(dbc, s))
	require.NotZero(t, s.ID)

	s.RecordTutorialCompleted()
	s.RecordCourseCompleted()
	require.NoError(t, repo.Save(dbc, s))

	got, err := repo.FindByRecordID(dbc, s.RecordID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Metrics().TotalCompletedTutorials())
	assert.Equal(t, 1, got.Metrics().TotalCompletedCourses())

	got, err = repo.FindByProfileID(dbc, 7)
	require.NoError(t, err)
	assert.Equal(t, s.RecordID, got.RecordID)

	exists, err := repo.ExistsByRecordID(dbc, s.RecordID)
	require.NoError(t, err)
	assert.True(t, exists)

	dup, err := domain.NewStudent(7)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(dbc, dup), domain.ErrStudentAlreadyExists)

	_, err = repo.FindByRecordID(dbc, "missing")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)

	list, err := repo.List(dbc)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRunnerRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db)
	ctx := context.Background()

	err := dbctx.NewRunner(db).InTx(ctx, func(dbc dbctx.Context) error {
		s, err := domain.NewStudent(3)
		require.NoError(t, err)
		require.NoError(t, repo.Save(dbc, s))
		return domain.ErrOperationFailed
	})
	assert.ErrorIs(t, err, domain.ErrOperationFailed)

	_, err = repo.FindByProfileID(dbctx.New(ctx), 3)
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}
