package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryRepo struct {
	events []Event
}

func (r *memoryRepo) Append(ctx context.Context, e Event) error {
	r.events = append(r.events, e)
	return nil
}

func TestAppend_FillsIDAndTimestamp(t *testing.T) {
	repo := &memoryRepo{}
	s := NewService(repo)
	s.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }

	err := s.LogOwnerAction(context.Background(), EventTypeChannelToggle, "u1", "owner", "whatsapp enabled", "")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("id and created_at must be filled: %+v", e)
	}
	if e.Type != EventTypeChannelToggle || e.ActorUserID != "u1" {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestAppend_RejectsMissingType(t *testing.T) {
	s := NewService(&memoryRepo{})
	if err := s.Append(context.Background(), Event{}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}
