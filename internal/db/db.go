package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx connection behaviour required by Queries.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Product is a catalog row. Reference data maintained outside this service;
// read-only here. Price is in minor currency units.
type Product struct {
	ID    string
	Name  string
	Price int64
}

// Offer is a discount rule row. Value holds minor units for FLAT offers and
// basis points (0..10000) for PERCENT offers.
type Offer struct {
	Code  string
	Kind  string
	Value int64
}

// Sale is the persisted record of one completed billing interaction.
// Rows are insert-only; the service never updates or deletes them.
type Sale struct {
	ID          string
	BillDate    time.Time
	Subtotal    int64
	Discount    int64
	FinalAmount int64
}

// SaleTotal is the projection consumed by revenue reporting.
type SaleTotal struct {
	BillDate    time.Time
	FinalAmount int64
}

// Queries bundles the SQL access used across the service.
type Queries struct {
	db DBTX
}

// New constructs a Queries instance over the provided connection.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}
