package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Errors returned by every TableRepository implementation.
var (
	// ErrNotFound means the named table is not stored.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is a unique violation not resolved by Save's upsert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict is a concurrent write the caller may retry.
	ErrConflict = errors.New("conflict")
	// ErrInvalidData means the store rejected a row or column value.
	ErrInvalidData = errors.New("invalid data")
	// ErrReadOnly is a write attempted inside a read-only transaction.
	ErrReadOnly = errors.New("read-only transaction")
)

// MapPgError translates the Postgres error codes the table store can produce
// into the errors above; everything else passes through.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ErrConflict
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.InvalidTextRepresentation,
			pgerrcode.CharacterNotInRepertoire, pgerrcode.UntranslatableCharacter:
			return ErrInvalidData
		case pgerrcode.ReadOnlySQLTransaction:
			return ErrReadOnly
		}
	}
	return err
}
