package domain

import (
	"fmt"
	"strconv"
)

// TutorialID references a tutorial owned by the external catalog.
// Zero is reserved as the "unset" value.
type TutorialID int64

// NoTutorial is returned by path queries when there is no matching tutorial.
const NoTutorial TutorialID = 0

func NewTutorialID(v int64) (TutorialID, error) {
	if v <= 0 {
		return NoTutorial, fmt.Errorf("%w: tutorial id must be greater than 0", ErrValidation)
	}
	return TutorialID(v), nil
}

func ParseTutorialID(s string) (TutorialID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NoTutorial, fmt.Errorf("%w: tutorial id %q is not a number", ErrValidation, s)
	}
	return NewTutorialID(v)
}

func (t TutorialID) IsSet() bool {
	return t > 0
}

func (t TutorialID) Int64() int64 {
	return int64(t)
}
