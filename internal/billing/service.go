package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aquaris-labs/backend-aquaris/internal/db"
	"github.com/aquaris-labs/backend-aquaris/internal/obs"
)

// Querier defines the database access required for billing operations.
type Querier interface {
	ListProducts(ctx context.Context) ([]db.Product, error)
	GetOfferByCode(ctx context.Context, code string) (db.Offer, error)
	InsertSale(ctx context.Context, arg db.InsertSaleParams) error
}

// Service computes bill quotes and persists confirmed bills.
type Service struct {
	Q        Querier
	Currency string
	Now      func() time.Time
	NewID    func() string
	// OnSale runs after a sale has been persisted, e.g. to drop caches.
	OnSale func(context.Context)
}

// Request carries the billing interaction inputs: per-product quantities and
// an optional offer code. An empty code means no offer.
type Request struct {
	Quantities map[string]int32 `json:"quantities" validate:"dive,gte=0"`
	OfferCode  string           `json:"offerCode" validate:"omitempty,max=64"`
}

// Quote is the computed bill preview. Empty reports the empty-cart state;
// callers must block bill generation while it is set.
type Quote struct {
	Lines       []Line  `json:"lines"`
	Subtotal    Money   `json:"subtotal"`
	Discount    Money   `json:"discount"`
	FinalAmount Money   `json:"finalAmount"`
	Currency    string  `json:"currency"`
	OfferCode   *string `json:"offerCode,omitempty"`
	Empty       bool    `json:"empty"`
}

// Bill is the result of a confirmed generation: the persisted sale.
type Bill struct {
	SaleID      string  `json:"saleId"`
	BillDate    string  `json:"billDate"`
	Subtotal    Money   `json:"subtotal"`
	Discount    Money   `json:"discount"`
	FinalAmount Money   `json:"finalAmount"`
	Currency    string  `json:"currency"`
	OfferCode   *string `json:"offerCode,omitempty"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s != nil && s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// Quote recomputes the bill preview from freshly fetched catalog data.
// No side effects occur; an empty cart is reported, not failed.
func (s *Service) Quote(ctx context.Context, req Request) (Quote, error) {
	if s == nil || s.Q == nil {
		return Quote{}, errors.New("billing service not configured")
	}
	summary, offerCode, err := s.compute(ctx, req)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			countQuote("empty")
			return Quote{Empty: true, Lines: []Line{}, Currency: s.Currency}, nil
		}
		countQuote("error")
		return Quote{}, err
	}
	countQuote("ok")
	return Quote{
		Lines:       summary.Lines,
		Subtotal:    summary.Subtotal,
		Discount:    summary.Discount,
		FinalAmount: summary.FinalAmount,
		Currency:    s.Currency,
		OfferCode:   offerCode,
	}, nil
}

// Generate confirms the bill: it recomputes the summary and persists exactly
// one sale row with a fresh identifier and today's date. Success is reported
// only after the insert completes; a failed insert leaves no partial state.
func (s *Service) Generate(ctx context.Context, req Request) (Bill, error) {
	if s == nil || s.Q == nil {
		return Bill{}, errors.New("billing service not configured")
	}
	summary, offerCode, err := s.compute(ctx, req)
	if err != nil {
		countGenerate("rejected")
		return Bill{}, err
	}
	sale := db.InsertSaleParams{
		ID:          s.newID(),
		BillDate:    dateOnly(s.now()),
		Subtotal:    summary.Subtotal,
		Discount:    summary.Discount,
		FinalAmount: summary.FinalAmount,
	}
	if err := s.Q.InsertSale(ctx, sale); err != nil {
		countGenerate("error")
		return Bill{}, fmt.Errorf("persist sale: %w", err)
	}
	countGenerate("ok")
	if obs.BillAmountMinor != nil {
		obs.BillAmountMinor.Observe(float64(sale.FinalAmount))
	}
	if s.OnSale != nil {
		s.OnSale(ctx)
	}
	return Bill{
		SaleID:      sale.ID,
		BillDate:    sale.BillDate.Format(time.DateOnly),
		Subtotal:    sale.Subtotal,
		Discount:    sale.Discount,
		FinalAmount: sale.FinalAmount,
		Currency:    s.Currency,
		OfferCode:   offerCode,
	}, nil
}

func (s *Service) compute(ctx context.Context, req Request) (Summary, *string, error) {
	products, err := s.Q.ListProducts(ctx)
	if err != nil {
		return Summary{}, nil, fmt.Errorf("load catalog: %w", err)
	}
	var offer *db.Offer
	var offerCode *string
	if code := strings.TrimSpace(req.OfferCode); code != "" {
		found, err := s.Q.GetOfferByCode(ctx, code)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Summary{}, nil, fmt.Errorf("offer %s: %w", code, ErrOfferNotFound)
			}
			return Summary{}, nil, fmt.Errorf("load offer: %w", err)
		}
		offer = &found
		offerCode = &found.Code
	}
	summary, err := Compute(products, req.Quantities, offer)
	if err != nil {
		return Summary{}, nil, err
	}
	return summary, offerCode, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func countQuote(result string) {
	if obs.BillQuoteTotal != nil {
		obs.BillQuoteTotal.WithLabelValues(result).Inc()
	}
}

func countGenerate(result string) {
	if obs.BillGeneratedTotal != nil {
		obs.BillGeneratedTotal.WithLabelValues(result).Inc()
	}
}
