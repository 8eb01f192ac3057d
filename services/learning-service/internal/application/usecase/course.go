package usecase

import (
	"context"
	"fmt"

	"learningcenter/pkg/dbctx"
	"learningcenter/pkg/logger"
	"learningcenter/services/learning-service/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("learning-service/usecase")

// PathItemView is a path item resolved for display.
type PathItemView struct {
	ID       uint
	Tutorial domain.TutorialID
	Next     domain.TutorialID
	IsTail   bool
}

type CourseUseCase struct {
	courses CourseRepository
	tx      TxRunner
	log     *logger.Logger
}

func NewCourseUseCase(courses CourseRepository, tx TxRunner, log *logger.Logger) *CourseUseCase {
	return &CourseUseCase{courses: courses, tx: tx, log: log.With("usecase", "courses")}
}

func (uc *CourseUseCase) Create(ctx context.Context, title, description string) (*domain.Course, error) {
	ctx, span := tracer.Start(ctx, "CourseUseCase.Create")
	defer span.End()

	course, err := domain.NewCourse(title, description)
	if err != nil {
		return nil, err
	}
	err = uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		taken, err := uc.courses.ExistsByTitle(dbc, course.Title)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrCourseTitleTaken
		}
		return uc.courses.Save(dbc, course)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info("course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

func (uc *CourseUseCase) Update(ctx context.Context, id uint, title, description string) (*domain.Course, error) {
	ctx, span := tracer.Start(ctx, "CourseUseCase.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("course.id", int64(id)))

	var course *domain.Course
	err := uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		c, err := uc.courses.FindByID(dbc, id)
		if err != nil {
			return err
		}
		if err := c.UpdateInformation(title, description); err != nil {
			return err
		}
		taken, err := uc.courses.ExistsByTitleExcept(dbc, c.Title, id)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrCourseTitleTaken
		}
		course = c
		return uc.courses.Save(dbc, c)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info("course updated", "course_id", id)
	return course, nil
}

func (uc *CourseUseCase) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "CourseUseCase.Delete")
	defer span.End()

	return uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		return uc.courses.Delete(dbc, id)
	})
}

func (uc *CourseUseCase) Get(ctx context.Context, id uint) (*domain.Course, error) {
	return uc.courses.FindByID(dbctx.New(ctx), id)
}

func (uc *CourseUseCase) List(ctx context.Context) ([]*domain.Course, error) {
	return uc.courses.List(dbctx.New(ctx))
}

// AddTutorial appends the tutorial to the course's path, or inserts it before the item
// holding before when before is set.
func (uc *CourseUseCase) AddTutorial(ctx context.Context, courseID uint, tutorial, before domain.TutorialID) (PathItemView, error) {
	ctx, span := tracer.Start(ctx, "CourseUseCase.AddTutorial")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("tutorial.id", tutorial.Int64()),
	)

	if !tutorial.IsSet() {
		return PathItemView{}, fmt.Errorf("%w: tutorial id is required", domain.ErrValidation)
	}

	var item PathItemView
	var position int
	err := uc.tx.InTx(ctx, func(dbc dbctx.Context) error {
		course, err := uc.courses.FindByID(dbc, courseID)
		if err != nil {
			return err
		}
		if before.IsSet() {
			course.AddTutorialBefore(tutorial, before)
		} else {
			course.AddTutorial(tutorial)
		}
		if err := uc.courses.Save(dbc, course); err != nil {
			return err
		}
		position = course.Path.Len() - 1
		item = viewOf(course.Path.Items(), position)
		return nil
	})
	if err != nil {
		return PathItemView{}, err
	}
	uc.log.Info("tutorial added to learning path",
		"course_id", courseID, "tutorial_id", tutorial, "before", before, "position", position)
	return item, nil
}

// PathItems lists the course's items in insertion order with their successors.
func (uc *CourseUseCase) PathItems(ctx context.Context, courseID uint) ([]PathItemView, error) {
	course, err := uc.courses.FindByID(dbctx.New(ctx), courseID)
	if err != nil {
		return nil, err
	}
	items := course.Path.Items()
	out := make([]PathItemView, len(items))
	for i := range items {
		out[i] = viewOf(items, i)
	}
	return out, nil
}

func viewOf(items []domain.PathItem, i int) PathItemView {
	it := items[i]
	v := PathItemView{ID: it.ID, Tutorial: it.Tutorial, IsTail: !it.HasNext()}
	if it.HasNext() {
		v.Next = items[it.Next].Tutorial
	}
	return v
}

// PathItem returns the first item for the tutorial in the course's path.
func (uc *CourseUseCase) PathItem(ctx context.Context, courseID uint, tutorial domain.TutorialID) (PathItemView, error) {
	course, err := uc.courses.FindByID(dbctx.New(ctx), courseID)
	if err != nil {
		return PathItemView{}, err
	}
	it, ok := course.Path.ItemFor(tutorial)
	if !ok {
		return PathItemView{}, domain.ErrTutorialNotInPath
	}
	return PathItemView{
		ID:       it.ID,
		Tutorial: it.Tutorial,
		Next:     course.Path.Successor(tutorial),
		IsTail:   course.Path.IsTail(tutorial),
	}, nil
}
