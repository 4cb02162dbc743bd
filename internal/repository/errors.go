package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"snapfeed/internal/models"
)

// storeError classifies a raw store failure. Connection-class errors (the
// database is unreachable, a dropped connection, a timed-out dial) surface as
// UNAVAILABLE so callers see a transient fault; everything else is an
// internal error.
func storeError(err error) *models.AppError {
	if isTransient(err) {
		return models.NewUnavailableError(err)
	}
	return models.NewInternalError(err)
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
