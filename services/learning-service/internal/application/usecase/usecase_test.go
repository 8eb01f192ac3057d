package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"learningcenter/pkg/dbctx"
	"learningcenter/pkg/logger"
	"learningcenter/services/learning-service/internal/domain"
	"learningcenter/services/learning-service/internal/infrastructure/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeProfiles struct {
	byEmail map[string]domain.ProfileID
	nextID  domain.ProfileID
	created int
	err     error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{byEmail: map[string]domain.ProfileID{}, nextID: 100}
}

func (f *fakeProfiles) FetchProfileIDByEmail(_ context.Context, email string) (domain.ProfileID, bool, error) {
	if f.err != nil {
		return 0, false, f.err
	}
	id, ok := f.byEmail[email]
	return id, ok, nil
}

func (f *fakeProfiles) CreateProfile(_ context.Context, d ProfileDetails) (domain.ProfileID, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.created++
	f.byEmail[d.Email] = f.nextID
	return f.nextID, nil
}

type testEnv struct {
	courses     *CourseUseCase
	enrollments *EnrollmentUseCase
	students    *StudentUseCase
	profiles    *fakeProfiles
	bus         *EventBus
}

func newTestEnv(t *testing.T) *testEnv {
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
	require.NoError(t, db.AutoMigrate(repository.Models()...))

	log := logger.Nop()
	courseRepo := repository.NewCourseRepository(db, nil, log)
	enrollmentRepo := repository.NewEnrollmentRepository(db, courseRepo)
	studentRepo := repository.NewStudentRepository(db)
	tx := dbctx.NewRunner(db)
	bus := NewEventBus()
	profiles := newFakeProfiles()

	env := &testEnv{
		courses:     NewCourseUseCase(courseRepo, tx, log),
		enrollments: NewEnrollmentUseCase(enrollmentRepo, courseRepo, studentRepo, tx, bus, log),
		students:    NewStudentUseCase(studentRepo, profiles, tx, log),
		profiles:    profiles,
		bus:         bus,
	}
	bus.SubscribeTutorialCompleted(env.students.OnTutorialCompleted)
	return env
}

func (env *testEnv) course(t *testing.T, title string, tutorials ...domain.TutorialID) *domain.Course {
	t.Helper()
	c, err := env.courses.Create(context.Background(), title, "about "+title)
	require.NoError(t, err)
	for _, tut := range tutorials {
		_, err := env.courses.AddTutorial(context.Background(), c.ID, tut, domain.NoTutorial)
		require.NoError(t, err)
	}
	return c
}

func (env *testEnv) student(t *testing.T, email string) *domain.Student {
	t.Helper()
	s, err := env.students.Create(context.Background(), ProfileDetails{
		FirstName: "Ada", LastName: "Lovelace", Email: email,
		Street: "Main", Number: "1", City: "Lima", PostalCode: "15001", Country: "PE",
	})
	require.NoError(t, err)
	return s
}

func TestCourseUseCaseCreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := env.course(t, "Go")
	_, err := env.courses.Create(ctx, "Go", "again")
	assert.ErrorIs(t, err, domain.ErrCourseTitleTaken)

	_, err = env.courses.Create(ctx, " ", "desc")
	assert.ErrorIs(t, err, domain.ErrValidation)

	other := env.course(t, "Rust")
	_, err = env.courses.Update(ctx, other.ID, "Go", "dup")
	assert.ErrorIs(t, err, domain.ErrCourseTitleTaken)

	updated, err := env.courses.Update(ctx, c.ID, "Go", "new description")
	require.NoError(t, err)
	assert.Equal(t, "new description", updated.Description)

	_, err = env.courses.Update(ctx, 999, "X", "Y")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	list, err := env.courses.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, env.courses.Delete(ctx, other.ID))
	assert.ErrorIs(t, env.courses.Delete(ctx, other.ID), domain.ErrCourseNotFound)
}

func TestCourseUseCaseLearningPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.course(t, "Go", 10, 30)

	item, err := env.courses.AddTutorial(ctx, c.ID, 20, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.TutorialID(20), item.Tutorial)
	assert.Equal(t, domain.TutorialID(30), item.Next)
	assert.NotZero(t, item.ID)

	_, err = env.courses.AddTutorial(ctx, c.ID, domain.NoTutorial, domain.NoTutorial)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = env.courses.AddTutorial(ctx, 999, 1, domain.NoTutorial)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	views, err := env.courses.PathItems(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	// Inserting before 30 leaves 10's link alone.
	assert.Equal(t, domain.TutorialID(10), views[0].Tutorial)
	assert.Equal(t, domain.TutorialID(30), views[0].Next)
	assert.Equal(t, domain.TutorialID(30), views[1].Tutorial)
	assert.True(t, views[1].IsTail)
	assert.Equal(t, domain.TutorialID(20), views[2].Tutorial)
	assert.Equal(t, domain.TutorialID(30), views[2].Next)

	v, err := env.courses.PathItem(ctx, c.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, domain.TutorialID(30), v.Next)
	assert.False(t, v.IsTail)

	_, err = env.courses.PathItem(ctx, c.ID, 77)
	assert.ErrorIs(t, err, domain.ErrTutorialNotInPath)
}

func TestStudentUseCaseCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := env.student(t, "ada@example.com")
	assert.True(t, s.RecordID.IsSet())
	assert.Equal(t, 1, env.profiles.created)

	_, err := env.students.Create(ctx, ProfileDetails{Email: "ada@example.com"})
	assert.ErrorIs(t, err, domain.ErrStudentAlreadyExists)

	// A profile created elsewhere is reused.
	env.profiles.byEmail["grace@example.com"] = 7
	g, err := env.students.Create(ctx, ProfileDetails{Email: "grace@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProfileID(7), g.ProfileID)
	assert.Equal(t, 1, env.profiles.created)

	_, err = env.students.Create(ctx, ProfileDetails{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	env.profiles.err = errors.New("profile service down")
	_, err = env.students.Create(ctx, ProfileDetails{Email: "new@example.com"})
	assert.EqualError(t, err, "profile service down")

	got, err := env.students.Get(ctx, s.RecordID)
	require.NoError(t, err)
	assert.Equal(t, s.ProfileID, got.ProfileID)

	_, err = env.students.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

func TestEnrollmentUseCaseRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.course(t, "Go", 1)
	s := env.student(t, "ada@example.com")

	_, err := env.enrollments.Request(ctx, "missing", c.ID)
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
	_, err = env.enrollments.Request(ctx, s.RecordID, 999)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	e, err := env.enrollments.Request(ctx, s.RecordID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentRequested, e.Status())

	_, err = env.enrollments.Request(ctx, s.RecordID, c.ID)
	assert.ErrorIs(t, err, domain.ErrEnrollmentExists)

	_, err = env.enrollments.Reject(ctx, e.ID)
	require.NoError(t, err)

	again, err := env.enrollments.Request(ctx, s.RecordID, c.ID)
	require.NoError(t, err)
	assert.NotEqual(t, e.ID, again.ID)

	latest, err := env.enrollments.GetByStudentAndCourse(ctx, s.RecordID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, again.ID, latest.ID)

	byStudent, err := env.enrollments.ListByStudent(ctx, s.RecordID)
	require.NoError(t, err)
	assert.Len(t, byStudent, 2)
	byCourse, err := env.enrollments.ListByCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, byCourse, 2)

	_, err = env.enrollments.ListByStudent(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
	_, err = env.enrollments.ListByCourse(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestEnrollmentUseCaseTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.course(t, "Go", 1, 2)
	s := env.student(t, "ada@example.com")

	e, err := env.enrollments.Request(ctx, s.RecordID, c.ID)
	require.NoError(t, err)

	confirmed, err := env.enrollments.Confirm(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentConfirmed, confirmed.Status())
	require.Equal(t, 1, confirmed.Ledger.Len())
	assert.Equal(t, domain.TutorialID(1), confirmed.Ledger.Entries()[0].Tutorial)

	_, err = env.enrollments.Cancel(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := env.enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentConfirmed, stored.Status())

	_, err = env.enrollments.Confirm(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrEnrollmentNotFound)
}

func TestEnrollmentUseCaseProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.course(t, "Go", 1, 2, 3)
	s := env.student(t, "ada@example.com")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	env.enrollments.now = func() time.Time { return clock }

	e, err := env.enrollments.Request(ctx, s.RecordID, c.ID)
	require.NoError(t, err)

	_, err = env.enrollments.StartTutorial(ctx, e.ID, 1)
	assert.ErrorIs(t, err, domain.ErrEnrollmentNotConfirmed)

	_, err = env.enrollments.Confirm(ctx, e.ID)
	require.NoError(t, err)

	for i, tut := range []domain.TutorialID{1, 2, 3} {
		clock = base.Add(time.Duration(i) * 48 * time.Hour)
		_, err := env.enrollments.StartTutorial(ctx, e.ID, tut)
		require.NoError(t, err)
		if tut == 1 {
			_, err = env.enrollments.StartTutorial(ctx, e.ID, 1)
			assert.ErrorIs(t, err, domain.ErrTutorialAlreadyInProgress)
		}
		clock = clock.Add(30 * time.Hour)
		_, err = env.enrollments.CompleteTutorial(ctx, e.ID, tut)
		require.NoError(t, err)
	}

	_, err = env.enrollments.StartTutorial(ctx, e.ID, 1)
	assert.ErrorIs(t, err, domain.ErrTutorialAlreadyStartedOrCompleted)

	final, err := env.enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 3, final.Ledger.Len())
	for _, entry := range final.Ledger.Entries() {
		assert.True(t, entry.IsCompleted())
	}
	assert.Equal(t, int64(3), final.DaysElapsed(clock))

	student, err := env.students.Get(ctx, s.RecordID)
	require.NoError(t, err)
	assert.Equal(t, 3, student.Metrics().TotalCompletedTutorials())
	assert.Equal(t, 1, student.Metrics().TotalCompletedCourses())

	_, err = env.enrollments.CompleteTutorial(ctx, e.ID, 42)
	assert.ErrorIs(t, err, domain.ErrTutorialNotInLedger)
}

func TestEnrollmentUseCaseRepeatedCompletionCountsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.course(t, "Go", 1, 2)
	s := env.student(t, "ada@example.com")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	env.enrollments.now = func() time.Time { return clock }

	e, err := env.enrollments.Request(ctx, s.RecordID, c.ID)
	require.NoError(t, err)
	_, err = env.enrollments.Confirm(ctx, e.ID)
	require.NoError(t, err)
	_, err = env.enrollments.StartTutorial(ctx, e.ID, 1)
	require.NoError(t, err)

	clock = base.Add(72 * time.Hour)
	_, err = env.enrollments.CompleteTutorial(ctx, e.ID, 1)
	require.NoError(t, err)
	_, err = env.enrollments.CompleteTutorial(ctx, e.ID, 2)
	require.NoError(t, err)

	clock = base.Add(30 * 24 * time.Hour)
	for i := 0; i < 3; i++ {
		again, err := env.enrollments.CompleteTutorial(ctx, e.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, again.Ledger.Len())
	}
	_, err = env.enrollments.CompleteTutorial(ctx, e.ID, 1)
	require.NoError(t, err)

	stored, err := env.enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.DaysElapsed(clock))
	first, ok := stored.Ledger.EntryFor(1)
	require.True(t, ok)
	assert.True(t, first.CompletedAt.Equal(base.Add(72*time.Hour)))

	student, err := env.students.Get(ctx, s.RecordID)
	require.NoError(t, err)
	assert.Equal(t, 2, student.Metrics().TotalCompletedTutorials())
	assert.Equal(t, 1, student.Metrics().TotalCompletedCourses())
}

func TestEnrollmentUseCaseCompletionRollsBackOnHandlerError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.course(t, "Go", 1, 2)
	s := env.student(t, "ada@example.com")

	e, err := env.enrollments.Request(ctx, s.RecordID, c.ID)
	require.NoError(t, err)
	_, err = env.enrollments.Confirm(ctx, e.ID)
	require.NoError(t, err)
	_, err = env.enrollments.StartTutorial(ctx, e.ID, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	env.bus.SubscribeTutorialCompleted(func(dbctx.Context, domain.TutorialCompleted) error { return boom })

	_, err = env.enrollments.CompleteTutorial(ctx, e.ID, 1)
	assert.ErrorIs(t, err, boom)

	stored, err := env.enrollments.Get(ctx, e.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Ledger.Len())
	assert.True(t, stored.Ledger.Entries()[0].IsInProgress())

	student, err := env.students.Get(ctx, s.RecordID)
	require.NoError(t, err)
	assert.Zero(t, student.Metrics().TotalCompletedTutorials())
}

func TestEventBusStopsAtFirstError(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	bus.SubscribeTutorialCompleted(func(dbctx.Context, domain.TutorialCompleted) error {
		calls = append(calls, "first")
		return errors.New("stop")
	})
	bus.SubscribeTutorialCompleted(func(dbctx.Context, domain.TutorialCompleted) error {
		calls = append(calls, "second")
		return nil
	})

	err := bus.PublishTutorialCompleted(dbctx.New(context.Background()), domain.TutorialCompleted{})
	assert.EqualError(t, err, "stop")
	assert.Equal(t, []string{"first"}, calls)
}
