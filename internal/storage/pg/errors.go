package pg

import (
	"errors"
	"fmt"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapErr converts driver errors into apperr values. notFound is returned for
// pgx.ErrNoRows, conflict for unique violations.
func mapErr(op string, err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			if conflict != nil {
				return conflict
			}
			return apperr.NewConflict(pgErr.Detail)
		case foreignKeyViolation:
			return apperr.NewValidation(fmt.Sprintf("%s: %s", op, pgErr.Detail))
		}
	}

	return apperr.NewStore(op, err)
}
