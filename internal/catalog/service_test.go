package catalog

import (
	"context"
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

func inventoryColumns() []string {
	return []string{"product_id", "name", "quantity", "updated_at"}
}

func TestQueryInventory_EmptyIsNotAnError(t *testing.T) {
	s, mock := newTestService(t)

	mock.ExpectQuery(`SELECT i\.product_id`).
		WillReturnRows(sqlmock.NewRows(inventoryColumns()))

	report, err := s.QueryInventory(context.Background())
	if err != nil {
		t.Fatalf("empty inventory must not error: %v", err)
	}
	if report.Message != emptyInventoryMessage {
		t.Fatalf("expected explicit no-items message, got %q", report.Message)
	}
	if report.Items == nil {
		t.Fatalf("items must be an empty list, not nil")
	}
	if len(report.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(report.Items))
	}
}

func TestQueryInventory_ReportsItems(t *testing.T) {
	s, mock := newTestService(t)
	now := time.Unix(1700000000, 0).UTC()

	mock.ExpectQuery(`SELECT i\.product_id`).
		WillReturnRows(sqlmock.NewRows(inventoryColumns()).
			AddRow("p1", "Anvil", 3, now).
			AddRow("p2", "Rocket skates", 1, now))

	report, err := s.QueryInventory(context.Background())
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(report.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(report.Items))
	}
	if report.Message == emptyInventoryMessage {
		t.Fatalf("non-empty inventory must not use the empty message")
	}
}

func TestSaveProduct_Validates(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.SaveProduct(context.Background(), Product{Name: " "}); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument for blank name, got %v", err)
	}
	if _, err := s.SaveProduct(context.Background(), Product{Name: "Anvil", PriceMinor: -1}); err != ErrInvalidArgument {
		t.Fatalf("expected ErrInvalidArgument for negative price, got %v", err)
	}
}
