package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"becca-platform/internal/history"
	"becca-platform/internal/wallet"
)

type memoryRepo struct {
	calls  []history.CallRecord
	ledger []wallet.LedgerEntry
}

func (r *memoryRepo) ListCallRecords(ctx context.Context, tr TimeRange) ([]history.CallRecord, error) {
	return r.calls, nil
}

func (r *memoryRepo) ListLedger(ctx context.Context, tr TimeRange) ([]wallet.LedgerEntry, error) {
	return r.ledger, nil
}

func dayRange() TimeRange {
	from := time.Unix(1700000000, 0).UTC()
	return TimeRange{From: from, To: from.Add(24 * time.Hour)}
}

func TestCallsSummary_CountsOutcomes(t *testing.T) {
	s := NewService(&memoryRepo{calls: []history.CallRecord{
		{Outcome: "completed"},
		{Outcome: "completed"},
		{Outcome: "failed"},
	}})

	sum, err := s.CallsSummary(context.Background(), dayRange())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalCalls != 3 || sum.CompletedCalls != 2 || sum.FailedCalls != 1 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSpendSummary_NetDelta(t *testing.T) {
	s := NewService(&memoryRepo{ledger: []wallet.LedgerEntry{
		{AmountMinor: 500, Currency: "USD"},
		{AmountMinor: -120, Currency: "USD"},
		{AmountMinor: -30, Currency: "USD"},
	}})

	sum, err := s.SpendSummary(context.Background(), dayRange())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalCreditMinor != 500 || sum.TotalDebitMinor != 150 || sum.NetDeltaMinor != 350 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.Currency != "USD" {
		t.Fatalf("expected USD, got %q", sum.Currency)
	}
}

func TestSummary_RejectsBadRange(t *testing.T) {
	s := NewService(&memoryRepo{})
	r := dayRange()
	r.To = r.From
	if _, err := s.CallsSummary(context.Background(), r); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
