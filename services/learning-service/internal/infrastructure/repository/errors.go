package repository

import (
	"errors"
	"fmt"

	"learningcenter/services/learning-service/internal/domain"

	"gorm.io/gorm"
)

// translate maps driver errors onto domain sentinels. notFound and duplicate may be nil
// when the call cannot produce them.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	}
	return fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
}
