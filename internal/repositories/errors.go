package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"

	"stockhive/internal/apperrors"
)

// DefaultTimeout bounds a single store operation when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// translate maps store errors onto the application taxonomy, keeping the original in the chain.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	case isTransient(err):
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrTransientStore, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
