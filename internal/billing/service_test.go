package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/aquaris-labs/backend-aquaris/internal/billing"
	"github.com/aquaris-labs/backend-aquaris/internal/db"
)

type fakeQueries struct {
	products  []db.Product
	offers    map[string]db.Offer
	inserted  []db.InsertSaleParams
	insertErr error
}

func (f *fakeQueries) ListProducts(context.Context) ([]db.Product, error) {
	return f.products, nil
}

func (f *fakeQueries) GetOfferByCode(_ context.Context, code string) (db.Offer, error) {
	offer, ok := f.offers[code]
	if !ok {
		return db.Offer{}, pgx.ErrNoRows
	}
	return offer, nil
}

func (f *fakeQueries) InsertSale(_ context.Context, arg db.InsertSaleParams) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, arg)
	return nil
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{
		products: []db.Product{
			{ID: "P1", Name: "Widget", Price: 1000},
			{ID: "P2", Name: "Gadget", Price: 2500},
		},
		offers: map[string]db.Offer{
			"SAVE10": {Code: "SAVE10", Kind: "PERCENT", Value: 1000},
			"FLAT20": {Code: "FLAT20", Kind: "FLAT", Value: 2000},
			"BOGOF":  {Code: "BOGOF", Kind: "BOGOF", Value: 1},
		},
	}
}

func newService(q billing.Querier) *billing.Service {
	return &billing.Service{
		Q:        q,
		Currency: "INR",
		Now:      func() time.Time { return time.Date(2024, 1, 15, 13, 45, 0, 0, time.UTC) },
	}
}

func TestQuoteAppliesPercentOffer(t *testing.T) {
	svc := newService(newFakeQueries())
	quote, err := svc.Quote(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 3, "P2": 1},
		OfferCode:  "SAVE10",
	})
	require.NoError(t, err)
	require.False(t, quote.Empty)
	require.Len(t, quote.Lines, 2)
	require.Equal(t, int64(5500), quote.Subtotal)
	require.Equal(t, int64(550), quote.Discount)
	require.Equal(t, int64(4950), quote.FinalAmount)
	require.NotNil(t, quote.OfferCode)
	require.Equal(t, "SAVE10", *quote.OfferCode)
}

func TestQuoteWithoutOfferResetsDiscount(t *testing.T) {
	svc := newService(newFakeQueries())
	req := billing.Request{Quantities: map[string]int32{"P1": 3, "P2": 1}}

	withOffer := req
	withOffer.OfferCode = "FLAT20"
	quote, err := svc.Quote(context.Background(), withOffer)
	require.NoError(t, err)
	require.Equal(t, int64(2000), quote.Discount)

	quote, err = svc.Quote(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, int64(0), quote.Discount)
	require.Equal(t, quote.Subtotal, quote.FinalAmount)
	require.Nil(t, quote.OfferCode)
}

func TestQuoteEmptyCartIsInformational(t *testing.T) {
	svc := newService(newFakeQueries())
	quote, err := svc.Quote(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 0, "P2": 0},
	})
	require.NoError(t, err)
	require.True(t, quote.Empty)
	require.Empty(t, quote.Lines)
	require.Equal(t, int64(0), quote.Subtotal)
}

func TestQuoteUnknownOfferCode(t *testing.T) {
	svc := newService(newFakeQueries())
	_, err := svc.Quote(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 1},
		OfferCode:  "MISSING",
	})
	require.ErrorIs(t, err, billing.ErrOfferNotFound)
}

func TestGeneratePersistsSingleSale(t *testing.T) {
	queries := newFakeQueries()
	svc := newService(queries)
	bill, err := svc.Generate(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 3, "P2": 1},
		OfferCode:  "FLAT20",
	})
	require.NoError(t, err)
	require.Len(t, queries.inserted, 1)

	sale := queries.inserted[0]
	require.Equal(t, bill.SaleID, sale.ID)
	require.NotEmpty(t, sale.ID)
	require.Equal(t, int64(5500), sale.Subtotal)
	require.Equal(t, int64(2000), sale.Discount)
	require.Equal(t, int64(3500), sale.FinalAmount)
	require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), sale.BillDate)
	require.Equal(t, "2024-01-15", bill.BillDate)
}

func TestGenerateTwiceCreatesDistinctSales(t *testing.T) {
	queries := newFakeQueries()
	svc := newService(queries)
	req := billing.Request{Quantities: map[string]int32{"P1": 1}}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, queries.inserted, 2)
	require.NotEqual(t, first.SaleID, second.SaleID)
}

func TestGenerateEmptyCartBlocked(t *testing.T) {
	queries := newFakeQueries()
	svc := newService(queries)
	_, err := svc.Generate(context.Background(), billing.Request{
		Quantities: map[string]int32{},
	})
	require.ErrorIs(t, err, billing.ErrEmptyCart)
	require.Empty(t, queries.inserted)
}

func TestGenerateUnknownOfferKindBlocked(t *testing.T) {
	queries := newFakeQueries()
	svc := newService(queries)
	_, err := svc.Generate(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 1},
		OfferCode:  "BOGOF",
	})
	require.ErrorIs(t, err, billing.ErrUnknownOfferKind)
	require.Empty(t, queries.inserted)
}

func TestGenerateRunsOnSaleHook(t *testing.T) {
	queries := newFakeQueries()
	svc := newService(queries)
	var hookCalls int
	svc.OnSale = func(context.Context) { hookCalls++ }

	_, err := svc.Generate(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 1},
	})
	require.NoError(t, err)
	require.Equal(t, 1, hookCalls)
}

func TestGenerateFailureSkipsOnSaleHook(t *testing.T) {
	queries := newFakeQueries()
	queries.insertErr = errors.New("connection reset")
	svc := newService(queries)
	var hookCalls int
	svc.OnSale = func(context.Context) { hookCalls++ }

	_, err := svc.Generate(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 1},
	})
	require.Error(t, err)
	require.Zero(t, hookCalls)
}

func TestGeneratePersistenceFailureSurfaced(t *testing.T) {
	queries := newFakeQueries()
	queries.insertErr = errors.New("connection reset")
	svc := newService(queries)
	_, err := svc.Generate(context.Background(), billing.Request{
		Quantities: map[string]int32{"P1": 1},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
	require.Empty(t, queries.inserted)
}
