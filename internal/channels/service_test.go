package channels

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

type memCache struct {
	m map[string]string
}

func newMemCache() *memCache { return &memCache{m: map[string]string{}} }

func (c *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.m[key] = value
	return nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.m, k)
	}
	return nil
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *memCache) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	cache := newMemCache()
	s := NewService(db, cache)
	s.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return s, mock, cache
}

func toggleRows(key string, enabled bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"key", "enabled", "updated_at"}).
		AddRow(key, enabled, time.Unix(1700000000, 0).UTC())
}

func TestIsEnabled_RequiresFlagAndMaster(t *testing.T) {
	s, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT key, enabled, updated_at`).
		WithArgs("whatsapp").
		WillReturnRows(toggleRows("whatsapp", true))
	mock.ExpectQuery(`SELECT key, enabled, updated_at`).
		WithArgs(MasterKey).
		WillReturnRows(toggleRows(MasterKey, true))

	on, err := s.IsEnabled(context.Background(), ChannelWhatsApp)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !on {
		t.Fatalf("expected enabled when flag and master are both on")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIsEnabled_MasterOffWins(t *testing.T) {
	s, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT key, enabled, updated_at`).
		WithArgs("telegram").
		WillReturnRows(toggleRows("telegram", true))
	mock.ExpectQuery(`SELECT key, enabled, updated_at`).
		WithArgs(MasterKey).
		WillReturnRows(toggleRows(MasterKey, false))

	on, err := s.IsEnabled(context.Background(), ChannelTelegram)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if on {
		t.Fatalf("expected disabled when master is off")
	}
}

func TestIsEnabled_MissingRowReadsDisabled(t *testing.T) {
	s, mock, _ := newTestService(t)

	// No toggles row for the channel: the first read returns no rows and the
	// master lookup must be skipped entirely.
	mock.ExpectQuery(`SELECT key, enabled, updated_at`).
		WithArgs("facebook").
		WillReturnRows(sqlmock.NewRows([]string{"key", "enabled", "updated_at"}))

	on, err := s.IsEnabled(context.Background(), ChannelFacebook)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if on {
		t.Fatalf("expected disabled for missing row")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestIsEnabled_RejectsUnknownChannel(t *testing.T) {
	s, _, _ := newTestService(t)
	if _, err := s.IsEnabled(context.Background(), Channel("carrier-pigeon")); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestIsEnabled_ServedFromCache(t *testing.T) {
	s, _, cache := newTestService(t)
	cache.m["toggle:whatsapp"] = "true"
	cache.m["toggle:master"] = "true"

	// No DB expectations: a cache hit must not touch the store.
	on, err := s.IsEnabled(context.Background(), ChannelWhatsApp)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !on {
		t.Fatalf("expected enabled from cache")
	}
}

func TestSetChannel_IdempotentUpsert(t *testing.T) {
	s, mock, cache := newTestService(t)
	cache.m["toggle:whatsapp"] = "false"

	mock.ExpectQuery(`INSERT INTO toggles`).
		WithArgs("whatsapp", true, time.Unix(1700000000, 0).UTC()).
		WillReturnRows(toggleRows("whatsapp", true))
	mock.ExpectQuery(`INSERT INTO toggles`).
		WithArgs("whatsapp", true, time.Unix(1700000000, 0).UTC()).
		WillReturnRows(toggleRows("whatsapp", true))

	first, err := s.SetChannel(context.Background(), ChannelWhatsApp, true)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}
	second, err := s.SetChannel(context.Background(), ChannelWhatsApp, true)
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
	if _, ok := cache.m["toggle:whatsapp"]; ok {
		t.Fatalf("expected cache invalidation on write")
	}
}

func TestSetChannel_RejectsUnknownChannel(t *testing.T) {
	s, _, _ := newTestService(t)
	if _, err := s.SetChannel(context.Background(), Channel("pager"), true); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSetConnection_UpsertsAndReturnsRow(t *testing.T) {
	s, mock, _ := newTestService(t)

	now := time.Unix(1700000000, 0).UTC()
	mock.ExpectQuery(`INSERT INTO connections`).
		WithArgs("whatsapp", "https://hooks.example/wa", "wa-123", now).
		WillReturnRows(sqlmock.NewRows([]string{"channel", "webhook_url", "external_id", "updated_at"}).
			AddRow("whatsapp", "https://hooks.example/wa", "wa-123", now))

	conn, err := s.SetConnection(context.Background(), Connection{
		Channel:    ChannelWhatsApp,
		WebhookURL: "https://hooks.example/wa",
		ExternalID: "wa-123",
	})
	if err != nil {
		t.Fatalf("set connection: %v", err)
	}
	if conn.ExternalID != "wa-123" {
		t.Fatalf("expected external id back, got %q", conn.ExternalID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSetConnection_RejectsUnknownChannel(t *testing.T) {
	s, _, _ := newTestService(t)

	if _, err := s.SetConnection(context.Background(), Connection{Channel: "carrier-pigeon"}); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGetConnection_MissingRowIsNotFound(t *testing.T) {
	s, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT channel, webhook_url, external_id, updated_at`).
		WithArgs("telegram").
		WillReturnRows(sqlmock.NewRows([]string{"channel", "webhook_url", "external_id", "updated_at"}))

	if _, err := s.GetConnection(context.Background(), ChannelTelegram); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
