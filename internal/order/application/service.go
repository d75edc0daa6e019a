package application

import (
	"context"
	"strings"

	cart "github.com/freshbasket/storefront/internal/cart/domain"
	identity "github.com/freshbasket/storefront/internal/identity/domain"
	"github.com/freshbasket/storefront/internal/order/domain"
)

type PlaceRequest struct {
	ShippingAddress string
	Notes           string
}

type Service struct {
	repo OrderRepository
}

func NewService(repo OrderRepository) *Service {
	return &Service{repo: repo}
}

// Place runs the checkout workflow for the actor's cart. Validation that
// needs no database access happens here; everything touching stock or cart
// state runs inside the repository transaction.
func (s *Service) Place(ctx context.Context, actor identity.Actor, owner cart.Owner, req PlaceRequest) (domain.Order, error) {
	if !actor.Authenticated() {
		return domain.Order{}, identity.ErrNotAuthenticated
	}
	addr := strings.TrimSpace(req.ShippingAddress)
	if addr == "" {
		return domain.Order{}, domain.ErrBlankAddress
	}
	return s.repo.PlaceFromCart(ctx, owner, actor.UserID, addr, strings.TrimSpace(req.Notes))
}

// Get returns one order; only its owner or an admin may see it.
func (s *Service) Get(ctx context.Context, actor identity.Actor, id string) (domain.Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserID != actor.UserID && !actor.Admin {
		return domain.Order{}, identity.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, actor identity.Actor) ([]domain.Order, error) {
	if !actor.Authenticated() {
		return nil, identity.ErrNotAuthenticated
	}
	return s.repo.ListByUser(ctx, actor.UserID)
}

// ListAll is the admin back-office view, optionally filtered by status.
func (s *Service) ListAll(ctx context.Context, actor identity.Actor, status string) ([]domain.Order, error) {
	if !actor.Admin {
		return nil, identity.ErrForbidden
	}
	var st domain.Status
	if status != "" && status != "all" {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		st = parsed
	}
	return s.repo.ListAll(ctx, st)
}

func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, id, next string) (domain.Order, error) {
	if !actor.Admin {
		return domain.Order{}, identity.ErrForbidden
	}
	st, err := domain.ParseStatus(next)
	if err != nil {
		return domain.Order{}, err
	}
	return s.repo.UpdateStatus(ctx, id, st)
}
