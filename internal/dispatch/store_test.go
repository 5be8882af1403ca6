package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newTestStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestClaim_ConditionalUpdate(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectExec(`UPDATE scheduled_calls`).
		WithArgs("id-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := s.Claim(context.Background(), "id-1", now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if !ok {
		t.Fatalf("expected claim to succeed")
	}
}

func TestClaim_AlreadyClaimedReportsFalse(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Unix(1700000000, 0).UTC()

	// Zero rows affected: the status precondition did not match.
	mock.ExpectExec(`UPDATE scheduled_calls`).
		WithArgs("id-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := s.Claim(context.Background(), "id-1", now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if ok {
		t.Fatalf("expected claim to report already claimed")
	}
}

func TestMarkCompleted_RequiresCallingStatus(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectExec(`UPDATE scheduled_calls`).
		WithArgs("id-1", "prov-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.MarkCompleted(context.Background(), "id-1", "prov-1", now); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for non-calling row, got %v", err)
	}
}

func TestDue_SelectsPendingDueRows(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Unix(1700000000, 0).UTC()

	rows := sqlmock.NewRows([]string{
		"id", "target_number", "purpose", "scheduled_at", "status", "claimed_at",
		"provider_call_id", "failure_reason", "created_at", "updated_at",
	}).AddRow("id-1", "+1555", "say hi", now.Add(-time.Minute), "pending", nil, "", "", now, now)

	mock.ExpectQuery(`SELECT .+ FROM scheduled_calls\s+WHERE status = 'pending' AND scheduled_at <= \$1`).
		WithArgs(now).
		WillReturnRows(rows)

	due, err := s.Due(context.Background(), now)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].ID != "id-1" || due[0].Status != StatusPending {
		t.Fatalf("unexpected due rows: %+v", due)
	}
}

func TestReclaimStuck(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Unix(1700000000, 0).UTC()
	cutoff := now.Add(-10 * time.Minute)

	mock.ExpectExec(`UPDATE scheduled_calls`).
		WithArgs(cutoff, now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.ReclaimStuck(context.Background(), cutoff, now)
	if err != nil {
		t.Fatalf("reclaim: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 reclaimed, got %d", n)
	}
}
