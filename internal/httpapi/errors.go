package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"becca-platform/internal/catalog"
	"becca-platform/internal/channels"
	"becca-platform/internal/dispatch"
	"becca-platform/internal/history"
	"becca-platform/internal/reporting"
	"becca-platform/internal/settings"
	"becca-platform/internal/upstream"
	"becca-platform/internal/voice"
	"becca-platform/internal/wallet"
	"becca-platform/pkg/logger"
)

// respondErr maps service errors to HTTP statuses. Upstream billing and
// rate-limit failures keep their vendor status so the dashboard can react;
// everything unexpected collapses to 500 with a generic body.
func respondErr(c *gin.Context, err error) {
	switch {
	case isInvalidArgument(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wallet.ErrInsufficientFunds) || upstream.BillingBlocked(err):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "payment required"})
	case isNotFound(err):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case upstream.RateLimited(err):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
	default:
		logger.From(c.Request.Context()).Error("request failed", "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isInvalidArgument(err error) bool {
	return errors.Is(err, channels.ErrInvalidArgument) ||
		errors.Is(err, settings.ErrInvalidArgument) ||
		errors.Is(err, dispatch.ErrInvalidArgument) ||
		errors.Is(err, catalog.ErrInvalidArgument) ||
		errors.Is(err, history.ErrInvalidArgument) ||
		errors.Is(err, wallet.ErrInvalidArgument) ||
		errors.Is(err, reporting.ErrInvalidRequest)
}

func isNotFound(err error) bool {
	return errors.Is(err, channels.ErrNotFound) ||
		errors.Is(err, dispatch.ErrNotFound) ||
		errors.Is(err, voice.ErrNotFound) ||
		errors.Is(err, history.ErrNotFound) ||
		errors.Is(err, wallet.ErrNotFound)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
