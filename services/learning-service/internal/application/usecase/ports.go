package usecase

import (
	"context"

	"learningcenter/pkg/dbctx"
	"learningcenter/services/learning-service/internal/domain"
)

type CourseRepository interface {
	Save(dbc dbctx.Context, course *domain.Course) error
	FindByID(dbc dbctx.Context, id uint) (*domain.Course, error)
	List(dbc dbctx.Context) ([]*domain.Course, error)
	ExistsByID(dbc dbctx.Context, id uint) (bool, error)
	ExistsByTitle(dbc dbctx.Context, title string) (bool, error)
	ExistsByTitleExcept(dbc dbctx.Context, title string, id uint) (bool, error)
	Delete(dbc dbctx.Context, id uint) error
}

type EnrollmentRepository interface {
	Save(dbc dbctx.Context, enrollment *domain.Enrollment) error
	FindByID(dbc dbctx.Context, id uint) (*domain.Enrollment, error)
	FindByStudentAndCourse(dbc dbctx.Context, student domain.StudentRecordID, courseID uint) (*domain.Enrollment, error)
	ExistsActive(dbc dbctx.Context, student domain.StudentRecordID, courseID uint) (bool, error)
	List(dbc dbctx.Context) ([]*domain.Enrollment, error)
	ListByStudent(dbc dbctx.Context, student domain.StudentRecordID) ([]*domain.Enrollment, error)
	ListByCourse(dbc dbctx.Context, courseID uint) ([]*domain.Enrollment, error)
}

type StudentRepository interface {
	Save(dbc dbctx.Context, student *domain.Student) error
	FindByRecordID(dbc dbctx.Context, id domain.StudentRecordID) (*domain.Student, error)
	FindByProfileID(dbc dbctx.Context, id domain.ProfileID) (*domain.Student, error)
	ExistsByRecordID(dbc dbctx.Context, id domain.StudentRecordID) (bool, error)
	List(dbc dbctx.Context) ([]*domain.Student, error)
}

// TxRunner runs fn in one transaction; fn's error rolls it back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type ProfileDetails struct {
	FirstName  string
	LastName   string
	Email      string
	Street     string
	Number     string
	City       string
	PostalCode string
	Country    string
}

// ProfileService is the learning service's view of the profile context.
type ProfileService interface {
	// FetchProfileIDByEmail reports false when no profile holds the email.
	FetchProfileIDByEmail(ctx context.Context, email string) (domain.ProfileID, bool, error)
	CreateProfile(ctx context.Context, details ProfileDetails) (domain.ProfileID, error)
}
