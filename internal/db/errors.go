package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hackgods/agent-crm-scheduling/internal/apperr"
)

// Postgres SQLSTATE codes the services care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNotNullViolation    = "23502"
	codeInvalidText         = "22P02"
	codeInvalidDatetime     = "22007"
	codeDatetimeOverflow    = "22008"
	codeRaiseException      = "P0001"
	codeNoDataFound         = "P0002"
)

// Translate turns storage constraint violations into apperr categories with
// messages fit for API callers. Anything else is returned unchanged.
func Translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: a record with the same values already exists", apperr.ErrDuplicate)
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: referenced record does not exist", apperr.ErrInvalidReference)
	case codeCheckViolation, codeInvalidText, codeInvalidDatetime, codeDatetimeOverflow:
		return fmt.Errorf("%w: %s", apperr.ErrInvalidFormat, formatHint(pgErr))
	case codeNotNullViolation:
		return apperr.Validation(pgErr.ColumnName, "is required")
	case codeRaiseException:
		return apperr.Validation("", "%s", pgErr.Message)
	case codeNoDataFound:
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, pgErr.Message)
	default:
		return err
	}
}

func formatHint(pgErr *pgconn.PgError) string {
	switch pgErr.Code {
	case codeCheckViolation:
		if pgErr.ConstraintName != "" {
			return fmt.Sprintf("value violates %s", pgErr.ConstraintName)
		}
		return "value is outside the allowed range"
	case codeInvalidDatetime, codeDatetimeOverflow:
		return "date or time value has an invalid format"
	default:
		return "value has an invalid format"
	}
}
