package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// validID reports whether id can be a primary key at all. Malformed ids are
// treated as missing rows rather than query errors.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
