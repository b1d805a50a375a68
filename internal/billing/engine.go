package billing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aquaris-labs/backend-aquaris/internal/db"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Offer kinds understood by the discount resolver.
const (
	OfferKindFlat    = "FLAT"
	OfferKindPercent = "PERCENT"
)

var (
	// ErrEmptyCart indicates no product carries a positive quantity.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNegativeQuantity is returned when a quantity is below zero.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrUnknownOfferKind is returned for offer kinds outside FLAT and PERCENT.
	ErrUnknownOfferKind = errors.New("unknown offer kind")
	// ErrOfferNotFound indicates the selected offer code does not exist.
	ErrOfferNotFound = errors.New("offer not found")
)

// Line is a transient cart entry for one product with a positive quantity.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Qty       int32  `json:"qty"`
	UnitPrice Money  `json:"unitPrice"`
	Total     Money  `json:"total"`
}

// Summary aggregates the computed bill components.
type Summary struct {
	Lines       []Line
	Subtotal    Money
	Discount    Money
	FinalAmount Money
}

// BuildCart derives cart lines from the catalog and the chosen quantities.
// Products with quantity zero are excluded entirely; a missing map entry
// counts as zero. Line order follows catalog order, which never affects totals.
func BuildCart(products []db.Product, quantities map[string]int32) ([]Line, error) {
	for id, qty := range quantities {
		if qty < 0 {
			return nil, fmt.Errorf("product %s: %w", id, ErrNegativeQuantity)
		}
	}
	lines := make([]Line, 0, len(quantities))
	for _, p := range products {
		qty := quantities[p.ID]
		if qty <= 0 {
			continue
		}
		lines = append(lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Qty:       qty,
			UnitPrice: p.Price,
			Total:     Money(qty) * p.Price,
		})
	}
	return lines, nil
}

// Subtotal sums line totals.
func Subtotal(lines []Line) Money {
	var total Money
	for _, l := range lines {
		total += l.Total
	}
	return total
}

// ResolveDiscount computes the discount an offer grants against a subtotal.
// FLAT offers deduct their value in minor units; PERCENT offers carry basis
// points and deduct subtotal*value/10000. The result is clamped to the
// subtotal so the final amount can never go negative.
func ResolveDiscount(subtotal Money, offer db.Offer) (Money, error) {
	var discount Money
	switch strings.ToUpper(strings.TrimSpace(offer.Kind)) {
	case OfferKindFlat:
		discount = offer.Value
	case OfferKindPercent:
		discount = (subtotal * offer.Value) / 10000
	default:
		return 0, fmt.Errorf("offer %s kind %q: %w", offer.Code, offer.Kind, ErrUnknownOfferKind)
	}
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount, nil
}

// Compute runs the full bill computation: cart build, subtotal, discount
// resolution, and final amount. A nil offer means no discount. The function
// is deterministic and has no side effects.
func Compute(products []db.Product, quantities map[string]int32, offer *db.Offer) (Summary, error) {
	lines, err := BuildCart(products, quantities)
	if err != nil {
		return Summary{}, err
	}
	if len(lines) == 0 {
		return Summary{}, ErrEmptyCart
	}
	subtotal := Subtotal(lines)
	var discount Money
	if offer != nil {
		discount, err = ResolveDiscount(subtotal, *offer)
		if err != nil {
			return Summary{}, err
		}
	}
	return Summary{
		Lines:       lines,
		Subtotal:    subtotal,
		Discount:    discount,
		FinalAmount: subtotal - discount,
	}, nil
}
