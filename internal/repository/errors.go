// Package repository persists users, houses and bookings with gorm on
// PostgreSQL. Every method returns *apperror.Error values.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/chachabrian/staybook-backend/internal/apperror"
)

// PostgreSQL error codes the repositories classify.
const (
	pgExclusionViolation  = "23P01"
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// ErrDatesTaken is returned when an active booking already holds part of the
// requested range.
var ErrDatesTaken = apperror.Conflict("House is already booked for the selected dates")

// translate classifies a gorm or driver error. notFound is the message used
// when the row does not exist.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.KindNotFound, notFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgExclusionViolation:
			return apperror.Wrap(apperror.KindConflict, ErrDatesTaken.Message, err)
		case pgUniqueViolation:
			return apperror.Wrap(apperror.KindConflict, "Duplicate field value entered", err)
		case pgForeignKeyViolation:
			return apperror.Wrap(apperror.KindNotFound, "Referenced resource not found", err)
		case pgCheckViolation:
			return apperror.Wrap(apperror.KindValidation, "Invalid field value", err)
		}
	}
	return apperror.Storage(err)
}
