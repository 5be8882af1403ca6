package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"

	"becca-platform/internal/dispatch"
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

func TestAppendMessage_UnknownConversation(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectExec(`UPDATE conversations SET updated_at`).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.AppendMessage(context.Background(), "missing", "user", "hi")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendMessage_TouchesConversation(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectExec(`UPDATE conversations SET updated_at`).
		WithArgs("c1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO messages`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m, err := s.AppendMessage(context.Background(), "c1", "assistant", "hello")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if m.ConversationID != "c1" || m.Role != "assistant" {
		t.Fatalf("unexpected message %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordCallAttempt_WritesOutcome(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectExec(`INSERT INTO call_history`).
		WithArgs(sqlmock.AnyArg(), "sc1", "+15550001111", "confirm order", "prov-1", "completed", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.RecordCallAttempt(context.Background(), dispatch.CallAttempt{
		ScheduledCallID: "sc1",
		TargetNumber:    "+15550001111",
		Purpose:         "confirm order",
		ProviderCallID:  "prov-1",
		Outcome:         dispatch.StatusCompleted,
		At:              time.Unix(1700000000, 0),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStartConversation_TitleFallback(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs(sqlmock.AnyArg(), "dashboard", "New conversation", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := s.StartConversation(context.Background(), "dashboard", "   ")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Title != "New conversation" {
		t.Fatalf("expected fallback title, got %q", c.Title)
	}
}

func TestStartConversation_TruncatesTitleOnRuneBoundary(t *testing.T) {
	s, mock := newTestService(t)

	long := strings.Repeat("é", 120)
	want := strings.Repeat("é", 80)
	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs(sqlmock.AnyArg(), "dashboard", want, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := s.StartConversation(context.Background(), "dashboard", long)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Title != want {
		t.Fatalf("expected 80-rune title, got %d runes", utf8.RuneCountInString(c.Title))
	}
	if !utf8.ValidString(c.Title) {
		t.Fatal("title is not valid UTF-8")
	}
}
