// Package upstream carries the error shape shared by every provider adapter.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by an external vendor. StatusCode is the
// vendor's HTTP status; the API layer passes 402 and 429 through and folds
// everything else into 500.
type Error struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// RateLimited reports whether err is a vendor rate-limit rejection.
func RateLimited(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.StatusCode == http.StatusTooManyRequests
}

// BillingBlocked reports whether err is a vendor billing/quota rejection.
func BillingBlocked(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.StatusCode == http.StatusPaymentRequired
}

// StatusOf returns the vendor status carried by err, or 0.
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}
