package services

import (
	"errors"

	"evapod/internal/core/domain"

	"gorm.io/gorm"
)

// notFound maps a missing row to the domain not-found error for entity
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(entity)
	}
	return err
}

// duplicate maps a unique index violation to the same error the pre-write
// check returns, so a concurrent writer losing the race sees a 409 too
func duplicate(err error, entity, field string, value any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Duplicate(entity, field, value)
	}
	return err
}
