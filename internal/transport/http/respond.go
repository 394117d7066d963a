package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborline/portgate/internal/ledger"
	"github.com/harborline/portgate/internal/service"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Domain
// rule violations come back typed from the core; anything else is a
// dependency problem.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBookingNotFound),
		errors.Is(err, service.ErrTruckNotFound),
		errors.Is(err, ledger.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, ledger.ErrSlotFull),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrImmutable),
		errors.Is(err, service.ErrOutOfWindow):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrWrongGate):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
