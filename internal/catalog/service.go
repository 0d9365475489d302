package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Service wraps catalog business rules around a Store.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{store: store}, nil
}

// List returns products narrowed by the filter. Name matching is a
// case-insensitive substring; price bounds are inclusive; ordering defaults
// to ascending id.
func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(f.Name); name != "" {
		needle := strings.ToLower(name)
		kept := products[:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), needle) {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	if f.MinPrice != nil {
		kept := products[:0]
		for _, p := range products {
			if p.PriceCents >= *f.MinPrice {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	if f.MaxPrice != nil {
		kept := products[:0]
		for _, p := range products {
			if p.PriceCents <= *f.MaxPrice {
				kept = append(kept, p)
			}
		}
		products = kept
	}

	less := lessFunc(f.SortBy)
	sort.SliceStable(products, func(i, j int) bool {
		if strings.EqualFold(f.Order, OrderDesc) {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
	return products, nil
}

func lessFunc(sortBy string) func(a, b Product) bool {
	switch sortBy {
	case SortByPrice:
		return func(a, b Product) bool { return a.PriceCents < b.PriceCents }
	case SortByName:
		return func(a, b Product) bool {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	default:
		return func(a, b Product) bool { return a.ID < b.ID }
	}
}

// Get fetches one product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	return s.store.Get(ctx, id)
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.store.Create(ctx, p)
}

// Update replaces an existing product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	if err := validate(p); err != nil {
		return err
	}
	return s.store.Update(ctx, p)
}

// Delete removes a product by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	return s.store.Delete(ctx, id)
}

func validate(p *Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if p.PriceCents < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}
	p.Currency = strings.ToLower(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "usd"
	}
	if len(p.Currency) > 8 {
		return fmt.Errorf("%w: currency code too long", ErrInvalidInput)
	}
	return nil
}
