package db

import (
	"context"
	"fmt"
	"time"
)

const listProducts = `
SELECT id, name, price
FROM products
ORDER BY name, id
`

// ListProducts returns the full product catalog.
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

const listOffers = `
SELECT code, kind, value
FROM offers
ORDER BY code
`

// ListOffers returns all offer rows.
func (q *Queries) ListOffers(ctx context.Context) ([]Offer, error) {
	rows, err := q.db.Query(ctx, listOffers)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()
	var items []Offer
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.Code, &o.Kind, &o.Value); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		items = append(items, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return items, nil
}

const getOfferByCode = `
SELECT code, kind, value
FROM offers
WHERE code = $1
`

// GetOfferByCode fetches a single offer. Returns pgx.ErrNoRows when absent.
func (q *Queries) GetOfferByCode(ctx context.Context, code string) (Offer, error) {
	var o Offer
	err := q.db.QueryRow(ctx, getOfferByCode, code).Scan(&o.Code, &o.Kind, &o.Value)
	return o, err
}

const insertSale = `
INSERT INTO sales (id, bill_date, subtotal, discount, final_amount)
VALUES ($1, $2, $3, $4, $5)
`

// InsertSaleParams carries the positional values for the sale insert.
type InsertSaleParams struct {
	ID          string
	BillDate    time.Time
	Subtotal    int64
	Discount    int64
	FinalAmount int64
}

// InsertSale persists one sale row. The single mutating operation of the service.
func (q *Queries) InsertSale(ctx context.Context, arg InsertSaleParams) error {
	_, err := q.db.Exec(ctx, insertSale, arg.ID, arg.BillDate, arg.Subtotal, arg.Discount, arg.FinalAmount)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

const listSaleTotals = `
SELECT bill_date, final_amount
FROM sales
ORDER BY bill_date
`

// ListSaleTotals returns the (date, final_amount) projection used for revenue reporting.
func (q *Queries) ListSaleTotals(ctx context.Context) ([]SaleTotal, error) {
	rows, err := q.db.Query(ctx, listSaleTotals)
	if err != nil {
		return nil, fmt.Errorf("list sale totals: %w", err)
	}
	defer rows.Close()
	var items []SaleTotal
	for rows.Next() {
		var s SaleTotal
		if err := rows.Scan(&s.BillDate, &s.FinalAmount); err != nil {
			return nil, fmt.Errorf("scan sale total: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sale totals: %w", err)
	}
	return items, nil
}

const upsertProduct = `
INSERT INTO products (id, name, price)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price
`

// UpsertProduct writes a catalog row. Used by the seeder only.
func (q *Queries) UpsertProduct(ctx context.Context, p Product) error {
	_, err := q.db.Exec(ctx, upsertProduct, p.ID, p.Name, p.Price)
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

const upsertOffer = `
INSERT INTO offers (code, kind, value)
VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE SET kind = EXCLUDED.kind, value = EXCLUDED.value
`

// UpsertOffer writes an offer row. Used by the seeder only.
func (q *Queries) UpsertOffer(ctx context.Context, o Offer) error {
	_, err := q.db.Exec(ctx, upsertOffer, o.Code, o.Kind, o.Value)
	if err != nil {
		return fmt.Errorf("upsert offer %s: %w", o.Code, err)
	}
	return nil
}
