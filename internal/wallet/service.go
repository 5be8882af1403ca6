package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"becca-platform/pkg/utils"
)

var (
	ErrNotFound          = errors.New("wallet: not found")
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")
	ErrInvalidArgument   = errors.New("wallet: invalid argument")
)

const defaultCurrency = "USD"

type Service struct {
	db *sql.DB
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

type CreditRequest struct {
	AmountMinor    int64  `json:"amount_minor"`
	ExternalRef    string `json:"external_ref,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

type DebitRequest struct {
	AmountMinor    int64  `json:"amount_minor"`
	ExternalRef    string `json:"external_ref,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (s *Service) GetBalance(ctx context.Context) (Balance, error) {
	b, err := getBalance(ctx, s.db)
	if errors.Is(err, ErrNotFound) {
		// No money has moved yet; an empty wallet is still a wallet.
		return Balance{Currency: defaultCurrency, BalanceMinor: 0}, nil
	}
	return b, err
}

// RequireFunds gates operations that will incur a charge, like starting a
// manual call. It does not reserve anything; the debit lands at call end.
func (s *Service) RequireFunds(ctx context.Context) error {
	b, err := s.GetBalance(ctx)
	if err != nil {
		return err
	}
	if b.BalanceMinor <= 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (s *Service) Credit(ctx context.Context, req CreditRequest) (LedgerEntry, Balance, error) {
	if req.AmountMinor <= 0 || req.IdempotencyKey == "" {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}
	return s.post(ctx, EntryTypeCredit, req.AmountMinor, req.ExternalRef, req.IdempotencyKey)
}

// Debit posts a charge. Unlike credits it never drives the balance negative:
// the projection row is locked, checked, then updated with the ledger insert
// in one transaction.
func (s *Service) Debit(ctx context.Context, req DebitRequest) (LedgerEntry, Balance, error) {
	if req.AmountMinor <= 0 || req.IdempotencyKey == "" {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}
	return s.post(ctx, EntryTypeDebit, -req.AmountMinor, req.ExternalRef, req.IdempotencyKey)
}

func (s *Service) post(ctx context.Context, typ EntryType, deltaMinor int64, externalRef, idemKey string) (LedgerEntry, Balance, error) {
	now := s.clock().UTC()

	var outLedger LedgerEntry
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		// Idempotency: a ledger entry for this key means the operation
		// already happened. Return it with the current balance.
		if existing, ok, err := findLedgerByIdempotency(ctx, tx, idemKey); err != nil {
			return err
		} else if ok {
			b, err := getBalanceForUpdate(ctx, tx, defaultCurrency, now)
			if err != nil {
				return err
			}
			outLedger = existing
			outBal = b
			return nil
		}

		b, err := getBalanceForUpdate(ctx, tx, defaultCurrency, now)
		if err != nil {
			return err
		}
		if typ == EntryTypeDebit && b.BalanceMinor < -deltaMinor {
			return ErrInsufficientFunds
		}

		entry := LedgerEntry{
			ID:             uuid.NewString(),
			Type:           typ,
			AmountMinor:    deltaMinor,
			Currency:       defaultCurrency,
			ExternalRef:    externalRef,
			IdempotencyKey: idemKey,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}

		out, err := applyBalanceDelta(ctx, tx, deltaMinor, now)
		if err != nil {
			return err
		}
		outLedger = entry
		outBal = out
		return nil
	})

	return outLedger, outBal, err
}
