package application

import (
	"context"

	cart "github.com/freshbasket/storefront/internal/cart/domain"
	"github.com/freshbasket/storefront/internal/order/domain"
)

type OrderRepository interface {
	// PlaceFromCart atomically converts the owner's cart into an order:
	// lock product rows, re-validate stock, snapshot prices, decrement
	// stock, clear the cart and stage an order.placed outbox event. A
	// failure at any step leaves every table untouched.
	PlaceFromCart(ctx context.Context, owner cart.Owner, userID, shippingAddress, notes string) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context, status domain.Status) ([]domain.Order, error)
	// UpdateStatus applies a state-machine transition under a row lock and
	// stages an order.status_changed outbox event in the same transaction.
	UpdateStatus(ctx context.Context, id string, next domain.Status) (domain.Order, error)
}
