package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrStatusConflict is returned when a conditional status update matched nothing.
	ErrStatusConflict = errors.New("repository: status precondition failed")
	// ErrInsufficientBalance is returned when a points debit would go negative.
	ErrInsufficientBalance = errors.New("repository: insufficient balance")
	// ErrDuplicate is returned on unique key violations.
	ErrDuplicate = errors.New("repository: duplicate key")
)

const pgUniqueViolation = "23505"

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}

func statusStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
