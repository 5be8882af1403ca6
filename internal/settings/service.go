package settings

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Service provides business-profile and personality operations plus the
// system-prompt assembly used by the voice dispatcher and the chat surface.
type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

// GetCustomization returns the business profile; a missing row reads as the
// zero profile, not an error, so fresh installs render sane defaults.
func (s *Service) GetCustomization(ctx context.Context) (Customization, error) {
	c, _, err := getCustomization(ctx, s.db)
	return c, err
}

func (s *Service) SaveCustomization(ctx context.Context, c Customization) (Customization, error) {
	return upsertCustomization(ctx, s.db, c, s.clock().UTC())
}

// AddPersonality appends a new personality version. Older rows are retained
// for history; reads always take the newest.
func (s *Service) AddPersonality(ctx context.Context, text string) (Personality, error) {
	if strings.TrimSpace(text) == "" {
		return Personality{}, ErrInvalidArgument
	}
	p := Personality{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: s.clock().UTC(),
	}
	if err := insertPersonality(ctx, s.db, p); err != nil {
		return Personality{}, err
	}
	return p, nil
}

func (s *Service) LatestPersonality(ctx context.Context) (Personality, bool, error) {
	return latestPersonality(ctx, s.db)
}

// SystemPrompt assembles the prompt for the assistant from the newest
// personality row and the business profile.
func (s *Service) SystemPrompt(ctx context.Context) (string, error) {
	p, found, err := latestPersonality(ctx, s.db)
	if err != nil {
		return "", err
	}
	c, _, err := getCustomization(ctx, s.db)
	if err != nil {
		return "", err
	}
	personality := ""
	if found {
		personality = p.Text
	}
	return BuildSystemPrompt(personality, c), nil
}

// businessNamePlaceholder stands in when no business name is configured.
const businessNamePlaceholder = "your business"

// BuildSystemPrompt renders the assistant system prompt.
//
// Order is load-bearing: personality text comes first (preferred over the
// customization fallback), then the business framing naming the business.
func BuildSystemPrompt(personality string, c Customization) string {
	text := strings.TrimSpace(personality)
	if text == "" {
		text = strings.TrimSpace(c.FallbackPersonality)
	}

	name := strings.TrimSpace(c.BusinessName)
	if name == "" {
		name = businessNamePlaceholder
	}

	var b strings.Builder
	if text != "" {
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	b.WriteString("You are the assistant for ")
	b.WriteString(name)
	b.WriteString(".")
	if d := strings.TrimSpace(c.Description); d != "" {
		b.WriteString(" ")
		b.WriteString(d)
	}
	if tone := strings.TrimSpace(c.Tone); tone != "" {
		b.WriteString("\nKeep a ")
		b.WriteString(tone)
		b.WriteString(" tone.")
	}
	return b.String()
}
