package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"learningcenter/pkg/dbctx"
	"learningcenter/pkg/logger"
	"learningcenter/services/learning-service/internal/domain"
)

type StudentUseCase struct {
	students StudentRepository
	profiles ProfileService
	tx       TxRunner
	log      *logger.Logger
}

func NewStudentUseCase(students StudentRepository, profiles ProfileService, tx TxRunner, log *logger.Logger) *StudentUseCase {
	return &StudentUseCase{students: students, profiles: profiles, tx: tx, log: log.With("usecase", "students")}
}

// Create reuses the profile registered under the email, or creates one, and opens a
// student for it. A profile can back one student only.
func (uc *StudentUseCase) Create(ctx context.Context, details ProfileDetails) (*domain.Student, error) {
	ctx, span := tracer.Start(ctx, "StudentUseCase.Create")
	defer span.End()

	if strings.TrimSpace(details.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	profileID, found, err := uc.profiles.FetchProfileIDByEmail(ctx, details.Email)
	if err != nil {
		return nil, err
	}
	if found {
		_, err := uc.students.FindByProfileID(dbctx.New(ctx), profileID)
		if err == nil {
			return nil, domain.ErrStudentAlreadyExists
		}
		if !errors.Is(err, domain.ErrStudentNotFound) {
			return nil, err
		}
	} else {
		profileID, err = uc.profiles.CreateProfile(ctx, details)
		if err != nil {
			return nil, err
		}
	}

	student, err := domain.NewStudent(profileID)
	if err != nil {
		return nil, err
	}
	err = uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		return uc.students.Save(dbc, student)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info("student created", "record_id", student.RecordID, "profile_id", profileID)
	return student, nil
}

func (uc *StudentUseCase) Get(ctx context.Context, id domain.StudentRecordID) (*domain.Student, error) {
	return uc.students.FindByRecordID(dbctx.New(ctx), id)
}

func (uc *StudentUseCase) List(ctx context.Context) ([]*domain.Student, error) {
	return uc.students.List(dbctx.New(ctx))
}

// OnTutorialCompleted updates the student's metrics. It is subscribed to the event bus
// and runs in the publisher's transaction.
func (uc *StudentUseCase) OnTutorialCompleted(dbc dbctx.Context, event domain.TutorialCompleted) error {
	student, err := uc.students.FindByRecordID(dbc, event.StudentRecordID)
	if err != nil {
		return err
	}
	student.RecordTutorialCompleted()
	if event.CourseFinished {
		student.RecordCourseCompleted()
	}
	if err := uc.students.Save(dbc, student); err != nil {
		return err
	}
	m := student.Metrics()
	uc.log.Debug("student metrics updated",
		"record_id", student.RecordID,
		"tutorials", m.TotalCompletedTutorials(),
		"courses", m.TotalCompletedCourses())
	return nil
}
