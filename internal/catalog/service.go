package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/aquaris-labs/backend-aquaris/internal/db"
)

// queryProvider defines the database access required for catalog listings.
type queryProvider interface {
	ListProducts(ctx context.Context) ([]db.Product, error)
	ListOffers(ctx context.Context) ([]db.Offer, error)
}

// Service assembles the read-only catalog payloads. Products and offers are
// reference data maintained outside this system; every call re-queries the
// store in full, no caching.
type Service struct {
	queries queryProvider
}

// NewService constructs a Service instance.
func NewService(queries queryProvider) (*Service, error) {
	if queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	return &Service{queries: queries}, nil
}

// Product represents the public product payload. Price is in minor units.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// Offer represents the public offer payload. Value is minor units for FLAT
// offers and basis points for PERCENT offers.
type Offer struct {
	Code  string `json:"code"`
	Kind  string `json:"kind"`
	Value int64  `json:"value"`
}

// ListProducts returns the product catalog sorted by name.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.queries.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	result := make([]Product, 0, len(rows))
	for _, row := range rows {
		result = append(result, Product{ID: row.ID, Name: row.Name, Price: row.Price})
	}
	return result, nil
}

// ListOffers returns all offers sorted by code.
func (s *Service) ListOffers(ctx context.Context) ([]Offer, error) {
	rows, err := s.queries.ListOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	result := make([]Offer, 0, len(rows))
	for _, row := range rows {
		result = append(result, Offer{Code: row.Code, Kind: row.Kind, Value: row.Value})
	}
	return result, nil
}
