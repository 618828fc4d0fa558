package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/Taichi-iskw/yt-search/internal/errors"
	"github.com/Taichi-iskw/yt-search/internal/repository"
)

// handlePostgreSQLError converts PostgreSQL-specific errors to appropriate AppError codes
func handlePostgreSQLError(err error, collection repository.Collection, operation string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return apperrors.Wrap(err, apperrors.CodeInternal, operation+" in "+string(collection))
	}

	switch pgErr.Code {
	case "23505": // UNIQUE_VIOLATION
		return handleUniqueViolation(pgErr, collection)

	case "23502": // NOT_NULL_VIOLATION
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "required field is missing")

	case "42P01": // UNDEFINED_TABLE
		return apperrors.Wrap(err, apperrors.CodeInternal, "database schema error: table not found (run migrations)")

	case "08000", "08003", "08006": // CONNECTION_EXCEPTION variants
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection error")

	case "53300": // TOO_MANY_CONNECTIONS
		return apperrors.Wrap(err, apperrors.CodeInternal, "database connection limit reached")

	default:
		message := operation + " in " + string(collection) + " (PostgreSQL code: " + pgErr.Code + ")"
		return apperrors.Wrap(err, apperrors.CodeInternal, message)
	}
}

// handleUniqueViolation names the collection whose primary key collided
func handleUniqueViolation(pgErr *pgconn.PgError, collection repository.Collection) *apperrors.AppError {
	if strings.Contains(pgErr.ConstraintName, "pkey") {
		return apperrors.Wrap(pgErr, apperrors.CodeConflict, "record with this ID already exists in "+string(collection))
	}
	return apperrors.Wrap(pgErr, apperrors.CodeConflict, "record already exists in "+string(collection))
}
