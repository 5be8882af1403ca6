package pricing

import (
	"errors"

	"becca-platform/internal/config"
)

// Service rates calls when the voice vendor reports a duration without a
// cost. Pure calculation: no vendor SDK calls, no persistence.
type Service struct {
	card RateCard
}

// RateCard is the single-business per-minute rate.
type RateCard struct {
	Currency string

	// RatePerMinuteMinor is the price per started minute, in minor units.
	RatePerMinuteMinor int64

	// BillingIncrementSeconds (e.g., 60 for per-minute, 1 for per-second billing).
	BillingIncrementSeconds int

	// MinimumBillableSeconds enforces a minimum charge duration.
	MinimumBillableSeconds int
}

type CallCost struct {
	Currency           string `json:"currency"`
	BillableSeconds    int    `json:"billable_seconds"`
	BillableMinutes    int    `json:"billable_minutes"`
	RatePerMinuteMinor int64  `json:"rate_per_minute_minor"`
	TotalMinor         int64  `json:"total_minor"`
}

var ErrInvalidDuration = errors.New("pricing: invalid duration")

func NewService(cfg config.PricingConfig) *Service {
	card := RateCard{
		Currency:                "USD",
		RatePerMinuteMinor:      cfg.RatePerMinuteMinor,
		BillingIncrementSeconds: cfg.BillingIncrementSeconds,
		MinimumBillableSeconds:  cfg.MinimumBillableSeconds,
	}
	return &Service{card: card}
}

// RateCall computes the charge for one finished call.
func (s *Service) RateCall(durationSeconds int) (CallCost, error) {
	if durationSeconds <= 0 {
		return CallCost{}, ErrInvalidDuration
	}

	billableSec := billableSeconds(durationSeconds, s.card.MinimumBillableSeconds, s.card.BillingIncrementSeconds)
	billableMin := billableMinutesFromSeconds(billableSec)

	return CallCost{
		Currency:           s.card.Currency,
		BillableSeconds:    billableSec,
		BillableMinutes:    billableMin,
		RatePerMinuteMinor: s.card.RatePerMinuteMinor,
		TotalMinor:         s.card.RatePerMinuteMinor * int64(billableMin),
	}, nil
}

func billableSeconds(actualSec int, minSec int, incrementSec int) int {
	if actualSec < 0 {
		return 0
	}
	if minSec <= 0 {
		minSec = 0
	}
	if incrementSec <= 0 {
		incrementSec = 60
	}

	sec := actualSec
	if sec < minSec {
		sec = minSec
	}

	// round up to nearest increment
	q := sec / incrementSec
	r := sec % incrementSec
	if r != 0 {
		q++
	}
	return q * incrementSec
}

func billableMinutesFromSeconds(sec int) int {
	if sec <= 0 {
		return 0
	}
	m := sec / 60
	if sec%60 != 0 {
		m++
	}
	return m
}
