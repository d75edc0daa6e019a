package application

import (
	"context"

	"github.com/freshbasket/storefront/internal/catalog/domain"
	identity "github.com/freshbasket/storefront/internal/identity/domain"
)

type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns active products matching the filter, ordered by name. Each
// call restarts the underlying query.
func (s *Service) List(ctx context.Context, f Filter) ([]domain.Product, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *Service) Create(ctx context.Context, actor identity.Actor, p domain.Product) (domain.Product, error) {
	if !actor.Admin {
		return domain.Product{}, identity.ErrForbidden
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	p.Available = true
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, actor identity.Actor, p domain.Product) (domain.Product, error) {
	if !actor.Admin {
		return domain.Product{}, identity.ErrForbidden
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.repo.Update(ctx, p)
}

// Deactivate hides a product from the storefront. Products are never
// deleted so historical order lines keep a valid reference.
func (s *Service) Deactivate(ctx context.Context, actor identity.Actor, id string) error {
	if !actor.Admin {
		return identity.ErrForbidden
	}
	return s.repo.Deactivate(ctx, id)
}
