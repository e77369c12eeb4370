package repository

import (
	"context"
	"errors"

	"github.com/just-nibble/git-digest/pkg/errcodes"
	"gorm.io/gorm"
)

// storeError converts a gorm failure into a NotFound or Persistence error.
// Errors that already carry a kind (hook validation) pass through.
func storeError(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errcodes.NotFound(format, args...)
	}
	var appErr *errcodes.Error
	if errors.As(err, &appErr) {
		return err
	}
	return errcodes.Persistence(err, format, args...)
}

// contextError fails fast on a cancelled or expired ctx.
func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errcodes.Cancelled(err)
	}
	return nil
}
