package reporting

import (
	"context"
	"errors"

	"becca-platform/internal/history"
	"becca-platform/internal/wallet"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting. Implementations should
// query immutable sources (call_history, wallet_ledger).
type Repository interface {
	ListCallRecords(ctx context.Context, r TimeRange) ([]history.CallRecord, error)
	ListLedger(ctx context.Context, r TimeRange) ([]wallet.LedgerEntry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, r TimeRange) (CallsSummary, error) {
	if err := validateRange(r); err != nil {
		return CallsSummary{}, err
	}

	rows, err := s.repo.ListCallRecords(ctx, r)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{Range: r}
	for _, rec := range rows {
		out.TotalCalls++
		switch rec.Outcome {
		case "completed":
			out.CompletedCalls++
		case "failed":
			out.FailedCalls++
		}
	}
	return out, nil
}

func (s *Service) SpendSummary(ctx context.Context, r TimeRange) (SpendSummary, error) {
	if err := validateRange(r); err != nil {
		return SpendSummary{}, err
	}

	entries, err := s.repo.ListLedger(ctx, r)
	if err != nil {
		return SpendSummary{}, err
	}

	out := SpendSummary{Range: r}
	for _, e := range entries {
		if out.Currency == "" {
			out.Currency = e.Currency
		}
		if e.AmountMinor > 0 {
			out.TotalCreditMinor += e.AmountMinor
		} else {
			out.TotalDebitMinor += -e.AmountMinor
		}
	}
	out.NetDeltaMinor = out.TotalCreditMinor - out.TotalDebitMinor
	return out, nil
}

func validateRange(r TimeRange) error {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	return nil
}
