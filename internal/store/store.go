// Package store holds the shared database handle handed to every service and
// translates driver errors into application error kinds.
package store

import (
	"context"
	"errors"
	"strings"

	"fabtrack/internal/apperrors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns a session bound to ctx.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn in one all-or-nothing transaction and translates the result.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return Translate(s.db.WithContext(ctx).Transaction(fn), "transaction")
}

// Translate maps err onto an apperrors kind. Errors that already carry a kind pass through.
func Translate(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae apperrors.Error
	if errors.As(err, &ae) {
		return err
	}

	wrapped := pkgerrors.Wrap(err, op)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound.Err(wrapped)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return apperrors.ErrConflict.Err(wrapped)
	default:
		return apperrors.ErrStorageUnavailable.Err(wrapped)
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value")
}
