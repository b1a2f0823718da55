package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

// translate maps constraint violations onto ErrConflict and leaves
// every other error untouched.
func translate(err error, what string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s already exists", appErrors.ErrConflict, what)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w: %s is still referenced", appErrors.ErrConflict, what)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}
