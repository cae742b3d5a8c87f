package repository

import (
	"errors"
	"strings"

	"campus/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// storeError translates a driver error into the AppError taxonomy. AppErrors
// raised inside transactions pass through untouched.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewStoreError(err)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND error for resource/id.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return storeError(err)
}

// IsUniqueViolation reports whether err was caused by a unique index rejecting a row.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite reports constraint failures only through the message
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
