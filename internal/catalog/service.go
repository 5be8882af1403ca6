package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("catalog: invalid argument")

const emptyInventoryMessage = "No items in inventory."

type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return listProducts(ctx, s.db)
}

func (s *Service) SaveProduct(ctx context.Context, p Product) (Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Product{}, ErrInvalidArgument
	}
	if p.PriceMinor < 0 {
		return Product{}, ErrInvalidArgument
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return upsertProduct(ctx, s.db, p, s.clock().UTC())
}

func (s *Service) SetInventory(ctx context.Context, productID string, quantity int) error {
	if productID == "" || quantity < 0 {
		return ErrInvalidArgument
	}
	return setInventory(ctx, s.db, productID, quantity, s.clock().UTC())
}

// QueryInventory answers "what's in stock". An empty inventory is a normal
// answer, not an error: the report says so explicitly and Items stays an
// empty, non-nil list.
func (s *Service) QueryInventory(ctx context.Context) (InventoryReport, error) {
	items, err := listInventory(ctx, s.db)
	if err != nil {
		return InventoryReport{}, err
	}
	if len(items) == 0 {
		return InventoryReport{Message: emptyInventoryMessage, Items: []InventoryItem{}}, nil
	}
	return InventoryReport{
		Message: fmt.Sprintf("%d item(s) in inventory.", len(items)),
		Items:   items,
	}, nil
}
