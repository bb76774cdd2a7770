package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/vietddude/fintrack/internal/infra/storage"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeRestrictViolation   = "23001"
)

// mapError translates driver errors into storage sentinels. op names the
// failed operation, e.g. "create status".
func mapError(op string, err error, deleting bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}

	code := sqlState(err)
	switch code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, storage.ErrConflict)
	case codeRestrictViolation:
		return fmt.Errorf("%s: %w", op, storage.ErrConflict)
	case codeForeignKeyViolation:
		if deleting {
			return fmt.Errorf("%s: %w", op, storage.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidReference)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// expectOne returns ErrNotFound when an UPDATE or DELETE touched no row.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
