package domain

import (
	"fmt"
	"strings"
	"time"
)

// Course owns exactly one learning path. Title uniqueness is checked by the caller.
type Course struct {
	ID          uint
	Title       string
	Description string
	Path        LearningPath

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewCourse(title, description string) (*Course, error) {
	title, description, err := validateCourseInformation(title, description)
	if err != nil {
		return nil, err
	}
	return &Course{Title: title, Description: description}, nil
}

// UpdateInformation replaces title and description. The learning path is not touched.
func (c *Course) UpdateInformation(title, description string) error {
	title, description, err := validateCourseInformation(title, description)
	if err != nil {
		return err
	}
	c.Title = title
	c.Description = description
	return nil
}

func (c *Course) AddTutorial(tutorial TutorialID) PathItem {
	return c.Path.Append(tutorial)
}

func (c *Course) AddTutorialBefore(tutorial, before TutorialID) PathItem {
	return c.Path.InsertBefore(tutorial, before)
}

func validateCourseInformation(title, description string) (string, string, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return "", "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if description == "" {
		return "", "", fmt.Errorf("%w: description is required", ErrValidation)
	}
	return title, description, nil
}
