package application

import (
	"context"
	"errors"

	"github.com/freshbasket/storefront/internal/cart/domain"
	catalog "github.com/freshbasket/storefront/internal/catalog/domain"
)

type Service struct {
	repo    CartRepository
	catalog CatalogReader
}

func NewService(repo CartRepository, catalog CatalogReader) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Add puts qty units of a product into the owner's cart, merging with any
// existing line. The combined quantity must fit the current stock; the
// authoritative check happens again at checkout under a row lock.
func (s *Service) Add(ctx context.Context, owner domain.Owner, productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Available {
		return catalog.ErrProductNotFound
	}
	existing, err := s.repo.Quantity(ctx, owner, productID)
	if err != nil {
		return err
	}
	if existing+qty > p.Stock {
		return &catalog.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: existing + qty,
			Available: p.Stock,
		}
	}
	return s.repo.AddOrIncrement(ctx, owner, productID, qty)
}

// UpdateQuantity sets a line to exactly qty; qty <= 0 removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, owner domain.Owner, productID string, qty int) error {
	if qty <= 0 {
		return s.repo.Remove(ctx, owner, productID)
	}
	p, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return err
	}
	if qty > p.Stock {
		return &catalog.InsufficientStockError{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: qty,
			Available: p.Stock,
		}
	}
	return s.repo.SetQuantity(ctx, owner, productID, qty)
}

// Remove is idempotent: removing an absent line is not an error.
func (s *Service) Remove(ctx context.Context, owner domain.Owner, productID string) error {
	return s.repo.Remove(ctx, owner, productID)
}

func (s *Service) View(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	lines, err := s.repo.Lines(ctx, owner)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{Owner: owner, Lines: lines}, nil
}

// Merge moves every line from one owner's cart into another's, merging
// quantities and capping each at available stock. The login handler calls
// this to migrate an anonymous cart to the authenticated user.
func (s *Service) Merge(ctx context.Context, from, into domain.Owner) error {
	lines, err := s.repo.Lines(ctx, from)
	if err != nil {
		return err
	}
	for _, l := range lines {
		err := s.Add(ctx, into, l.ProductID, l.Quantity)
		if err == nil {
			continue
		}
		var stockErr *catalog.InsufficientStockError
		if errors.As(err, &stockErr) {
			// Take whatever still fits; a partial merge beats losing the line.
			room := stockErr.Available - (stockErr.Requested - l.Quantity)
			if room > 0 {
				if err := s.repo.AddOrIncrement(ctx, into, l.ProductID, room); err != nil {
					return err
				}
			}
			continue
		}
		if errors.Is(err, catalog.ErrProductNotFound) {
			continue
		}
		return err
	}
	return s.repo.Clear(ctx, from)
}
