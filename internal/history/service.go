package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"becca-platform/internal/dispatch"
)

var (
	ErrNotFound        = errors.New("history: not found")
	ErrInvalidArgument = errors.New("history: invalid argument")
)

const defaultCallHistoryLimit = 100

type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

// StartConversation creates a new conversation titled after its first prompt.
func (s *Service) StartConversation(ctx context.Context, channel, title string) (Conversation, error) {
	if strings.TrimSpace(channel) == "" {
		return Conversation{}, ErrInvalidArgument
	}
	c := Conversation{
		ID:        uuid.NewString(),
		Channel:   channel,
		Title:     truncateTitle(title),
		CreatedAt: s.clock().UTC(),
	}
	c.UpdatedAt = c.CreatedAt
	if err := insertConversation(ctx, s.db, c); err != nil {
		return Conversation{}, err
	}
	return c, nil
}

func (s *Service) AppendMessage(ctx context.Context, conversationID, role, content string) (Message, error) {
	if conversationID == "" || role == "" {
		return Message{}, ErrInvalidArgument
	}
	now := s.clock().UTC()
	ok, err := touchConversation(ctx, s.db, conversationID, now)
	if err != nil {
		return Message{}, err
	}
	if !ok {
		return Message{}, ErrNotFound
	}
	m := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      now,
	}
	if err := insertMessage(ctx, s.db, m); err != nil {
		return Message{}, err
	}
	return m, nil
}

func (s *Service) ListConversations(ctx context.Context) ([]Conversation, error) {
	return listConversations(ctx, s.db)
}

func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	if conversationID == "" {
		return nil, ErrInvalidArgument
	}
	return listMessages(ctx, s.db, conversationID)
}

// RecordCallAttempt satisfies the dispatcher's recorder hook.
func (s *Service) RecordCallAttempt(ctx context.Context, a dispatch.CallAttempt) error {
	r := CallRecord{
		ID:              uuid.NewString(),
		ScheduledCallID: a.ScheduledCallID,
		TargetNumber:    a.TargetNumber,
		Purpose:         a.Purpose,
		ProviderCallID:  a.ProviderCallID,
		Outcome:         string(a.Outcome),
		Reason:          a.Reason,
		CreatedAt:       a.At.UTC(),
	}
	return insertCallRecord(ctx, s.db, r)
}

func (s *Service) ListCallHistory(ctx context.Context) ([]CallRecord, error) {
	return listCallRecords(ctx, s.db, defaultCallHistoryLimit)
}

func (s *Service) SaveTranscript(ctx context.Context, providerCallID, text string) error {
	if providerCallID == "" {
		return ErrInvalidArgument
	}
	t := Transcript{
		ID:             uuid.NewString(),
		ProviderCallID: providerCallID,
		Text:           text,
		CreatedAt:      s.clock().UTC(),
	}
	return upsertTranscript(ctx, s.db, t)
}

func (s *Service) GetTranscript(ctx context.Context, providerCallID string) (Transcript, error) {
	t, err := getTranscript(ctx, s.db, providerCallID)
	if errors.Is(err, sql.ErrNoRows) {
		return Transcript{}, ErrNotFound
	}
	return t, err
}

func truncateTitle(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "New conversation"
	}
	const max = 80
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
