package wallet

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s := NewService(db)
	s.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return s, mock
}

func balanceRows(minor int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"currency", "balance_minor", "updated_at"}).
		AddRow("USD", minor, time.Unix(1700000000, 0).UTC())
}

func TestDebit_InsufficientFunds(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, type, amount_minor`).
		WithArgs("call-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO wallet_balance`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT currency, balance_minor, updated_at\s+FROM wallet_balance\s+WHERE id = \$1\s+FOR UPDATE`).
		WillReturnRows(balanceRows(50))
	mock.ExpectRollback()

	_, _, err := s.Debit(context.Background(), DebitRequest{AmountMinor: 100, IdempotencyKey: "call-1"})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestDebit_IdempotentOnRepeatKey(t *testing.T) {
	s, mock := newTestService(t)
	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, type, amount_minor`).
		WithArgs("call-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "amount_minor", "currency", "external_ref", "idempotency_key", "created_at"}).
			AddRow("led-1", "debit", int64(-100), "USD", "prov-1", "call-1", now))
	mock.ExpectExec(`INSERT INTO wallet_balance`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT currency, balance_minor, updated_at\s+FROM wallet_balance\s+WHERE id = \$1\s+FOR UPDATE`).
		WillReturnRows(balanceRows(400))
	mock.ExpectCommit()

	entry, bal, err := s.Debit(context.Background(), DebitRequest{AmountMinor: 100, IdempotencyKey: "call-1"})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if entry.ID != "led-1" {
		t.Fatalf("expected existing ledger entry, got %+v", entry)
	}
	if bal.BalanceMinor != 400 {
		t.Fatalf("balance must not move on repeat key, got %d", bal.BalanceMinor)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCredit_PostsLedgerAndProjection(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, type, amount_minor`).
		WithArgs("topup-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO wallet_balance`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT currency, balance_minor, updated_at\s+FROM wallet_balance\s+WHERE id = \$1\s+FOR UPDATE`).
		WillReturnRows(balanceRows(0))
	mock.ExpectExec(`INSERT INTO wallet_ledger`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE wallet_balance`).
		WillReturnRows(balanceRows(500))
	mock.ExpectCommit()

	entry, bal, err := s.Credit(context.Background(), CreditRequest{AmountMinor: 500, IdempotencyKey: "topup-1"})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if entry.AmountMinor != 500 || entry.Type != EntryTypeCredit {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if bal.BalanceMinor != 500 {
		t.Fatalf("expected balance 500, got %d", bal.BalanceMinor)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDebit_RejectsBadInput(t *testing.T) {
	s, _ := newTestService(t)
	if _, _, err := s.Debit(context.Background(), DebitRequest{AmountMinor: 0, IdempotencyKey: "k"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, _, err := s.Debit(context.Background(), DebitRequest{AmountMinor: 10}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing key, got %v", err)
	}
}
