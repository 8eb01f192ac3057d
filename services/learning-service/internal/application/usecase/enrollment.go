package usecase

import (
	"context"
	"time"

	"learningcenter/pkg/dbctx"
	"learningcenter/pkg/logger"
	"learningcenter/services/learning-service/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

type EnrollmentUseCase struct {
	enrollments EnrollmentRepository
	courses     CourseRepository
	students    StudentRepository
	tx          TxRunner
	bus         *EventBus
	log         *logger.Logger
	now         func() time.Time
}

func NewEnrollmentUseCase(
	enrollments EnrollmentRepository,
	courses CourseRepository,
	students StudentRepository,
	tx TxRunner,
	bus *EventBus,
	log *logger.Logger,
) *EnrollmentUseCase {
	return &EnrollmentUseCase{
		enrollments: enrollments,
		courses:     courses,
		students:    students,
		tx:          tx,
		bus:         bus,
		log:         log.With("usecase", "enrollments"),
		now:         time.Now,
	}
}

// Request opens a new enrollment. A student may hold one requested or confirmed
// enrollment per course.
func (uc *EnrollmentUseCase) Request(ctx context.Context, student domain.StudentRecordID, courseID uint) (*domain.Enrollment, error) {
	ctx, span := tracer.Start(ctx, "EnrollmentUseCase.Request")
	defer span.End()
	span.SetAttributes(attribute.String("student.record_id", student.String()), attribute.Int64("course.id", int64(courseID)))

	var enrollment *domain.Enrollment
	err := uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		exists, err := uc.students.ExistsByRecordID(dbc, student)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrStudentNotFound
		}
		course, err := uc.courses.FindByID(dbc, courseID)
		if err != nil {
			return err
		}
		active, err := uc.enrollments.ExistsActive(dbc, student, courseID)
		if err != nil {
			return err
		}
		if active {
			return domain.ErrEnrollmentExists
		}
		e, err := domain.NewEnrollment(student, course)
		if err != nil {
			return err
		}
		enrollment = e
		return uc.enrollments.Save(dbc, e)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info("enrollment requested", "enrollment_id", enrollment.ID, "student", student, "course_id", courseID)
	return enrollment, nil
}

func (uc *EnrollmentUseCase) Confirm(ctx context.Context, id uint) (*domain.Enrollment, error) {
	return uc.transition(ctx, "Confirm", id, (*domain.Enrollment).Confirm)
}

func (uc *EnrollmentUseCase) Reject(ctx context.Context, id uint) (*domain.Enrollment, error) {
	return uc.transition(ctx, "Reject", id, (*domain.Enrollment).Reject)
}

func (uc *EnrollmentUseCase) Cancel(ctx context.Context, id uint) (*domain.Enrollment, error) {
	return uc.transition(ctx, "Cancel", id, (*domain.Enrollment).Cancel)
}

func (uc *EnrollmentUseCase) transition(ctx context.Context, name string, id uint, apply func(*domain.Enrollment) error) (*domain.Enrollment, error) {
	ctx, span := tracer.Start(ctx, "EnrollmentUseCase."+name)
	defer span.End()
	span.SetAttributes(attribute.Int64("enrollment.id", int64(id)))

	var enrollment *domain.Enrollment
	var from domain.EnrollmentStatus
	err := uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		e, err := uc.enrollments.FindByID(dbc, id)
		if err != nil {
			return err
		}
		from = e.Status()
		if err := apply(e); err != nil {
			return err
		}
		enrollment = e
		return uc.enrollments.Save(dbc, e)
	})
	if err != nil {
		uc.log.Debug("enrollment transition refused", "enrollment_id", id, "action", name, "error", err)
		return nil, err
	}
	uc.log.Info("enrollment status changed", "enrollment_id", id, "from", from, "to", enrollment.Status())
	return enrollment, nil
}

func (uc *EnrollmentUseCase) StartTutorial(ctx context.Context, id uint, tutorial domain.TutorialID) (*domain.Enrollment, error) {
	ctx, span := tracer.Start(ctx, "EnrollmentUseCase.StartTutorial")
	defer span.End()
	span.SetAttributes(attribute.Int64("enrollment.id", int64(id)), attribute.Int64("tutorial.id", tutorial.Int64()))

	var enrollment *domain.Enrollment
	err := uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		e, err := uc.enrollments.FindByID(dbc, id)
		if err != nil {
			return err
		}
		if err := e.StartTutorial(tutorial, uc.now()); err != nil {
			return err
		}
		enrollment = e
		return uc.enrollments.Save(dbc, e)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info("tutorial started", "enrollment_id", id, "tutorial_id", tutorial)
	return enrollment, nil
}

// CompleteTutorial closes the tutorial and publishes TutorialCompleted in the same
// transaction, so subscribers either all apply or the completion is rolled back.
// Completing an already completed tutorial returns the enrollment unchanged.
func (uc *EnrollmentUseCase) CompleteTutorial(ctx context.Context, id uint, tutorial domain.TutorialID) (*domain.Enrollment, error) {
	ctx, span := tracer.Start(ctx, "EnrollmentUseCase.CompleteTutorial")
	defer span.End()
	span.SetAttributes(attribute.Int64("enrollment.id", int64(id)), attribute.Int64("tutorial.id", tutorial.Int64()))

	var enrollment *domain.Enrollment
	var event *domain.TutorialCompleted
	err := uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		e, err := uc.enrollments.FindByID(dbc, id)
		if err != nil {
			return err
		}
		enrollment = e
		event, err = e.CompleteTutorial(tutorial, uc.now())
		if err != nil || event == nil {
			return err
		}
		if err := uc.enrollments.Save(dbc, e); err != nil {
			return err
		}
		return uc.bus.PublishTutorialCompleted(dbc, *event)
	})
	if err != nil {
		return nil, err
	}
	if event == nil {
		uc.log.Debug("tutorial already completed", "enrollment_id", id, "tutorial_id", tutorial)
		return enrollment, nil
	}
	uc.log.Info("tutorial completed",
		"enrollment_id", id, "tutorial_id", tutorial, "course_finished", event.CourseFinished)
	return enrollment, nil
}

func (uc *EnrollmentUseCase) Get(ctx context.Context, id uint) (*domain.Enrollment, error) {
	return uc.enrollments.FindByID(dbctx.New(ctx), id)
}

func (uc *EnrollmentUseCase) GetByStudentAndCourse(ctx context.Context, student domain.StudentRecordID, courseID uint) (*domain.Enrollment, error) {
	return uc.enrollments.FindByStudentAndCourse(dbctx.New(ctx), student, courseID)
}

func (uc *EnrollmentUseCase) List(ctx context.Context) ([]*domain.Enrollment, error) {
	return uc.enrollments.List(dbctx.New(ctx))
}

func (uc *EnrollmentUseCase) ListByStudent(ctx context.Context, student domain.StudentRecordID) ([]*domain.Enrollment, error) {
	dbc := dbctx.New(ctx)
	exists, err := uc.students.ExistsByRecordID(dbc, student)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrStudentNotFound
	}
	return uc.enrollments.ListByStudent(dbc, student)
}

func (uc *EnrollmentUseCase) ListByCourse(ctx context.Context, courseID uint) ([]*domain.Enrollment, error) {
	dbc := dbctx.New(ctx)
	exists, err := uc.courses.ExistsByID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrCourseNotFound
	}
	return uc.enrollments.ListByCourse(dbc, courseID)
}

// Now is the clock used for ledger timestamps and elapsed days.
func (uc *EnrollmentUseCase) Now() time.Time {
	return uc.now()
}
