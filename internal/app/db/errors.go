package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrInsufficientCoins is returned when a coin-gated operation cannot be paid for.
var ErrInsufficientCoins = errors.New("insufficient coins")

// ErrAvatarAlreadyOwned is returned when buying an avatar that is already unlocked.
var ErrAvatarAlreadyOwned = errors.New("avatar already owned")

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation (code 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsNotFound checks if the error indicates an empty query result.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
