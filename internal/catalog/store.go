package catalog

import (
	"context"
	"database/sql"
	"time"
)

// NOTE: This store assumes the following tables exist:
// - products (id UUID PRIMARY KEY, name TEXT, description TEXT, price_minor BIGINT,
//   currency TEXT, created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ)
// - inventory (product_id UUID PRIMARY KEY REFERENCES products, quantity INT,
//   updated_at TIMESTAMPTZ)

func listProducts(ctx context.Context, db *sql.DB) ([]Product, error) {
	const q = `
SELECT id, name, description, price_minor, currency, created_at, updated_at
FROM products
ORDER BY name
`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.PriceMinor, &p.Currency, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func upsertProduct(ctx context.Context, db *sql.DB, p Product, now time.Time) (Product, error) {
	const q = `
INSERT INTO products (id, name, description, price_minor, currency, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
ON CONFLICT (id)
DO UPDATE SET name = EXCLUDED.name,
              description = EXCLUDED.description,
              price_minor = EXCLUDED.price_minor,
              currency = EXCLUDED.currency,
              updated_at = EXCLUDED.updated_at
RETURNING id, name, description, price_minor, currency, created_at, updated_at
`
	var out Product
	if err := db.QueryRowContext(ctx, q, p.ID, p.Name, p.Description, p.PriceMinor, p.Currency, now).Scan(
		&out.ID,
		&out.Name,
		&out.Description,
		&out.PriceMinor,
		&out.Currency,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	return out, nil
}

func listInventory(ctx context.Context, db *sql.DB) ([]InventoryItem, error) {
	const q = `
SELECT i.product_id, p.name, i.quantity, i.updated_at
FROM inventory i
JOIN products p ON p.id = i.product_id
WHERE i.quantity > 0
ORDER BY p.name
`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]InventoryItem, 0)
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func setInventory(ctx context.Context, db *sql.DB, productID string, quantity int, now time.Time) error {
	const q = `
INSERT INTO inventory (product_id, quantity, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (product_id)
DO UPDATE SET quantity = EXCLUDED.quantity,
              updated_at = EXCLUDED.updated_at
`
	_, err := db.ExecContext(ctx, q, productID, quantity, now)
	return err
}
