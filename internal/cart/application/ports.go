package application

import (
	"context"

	"github.com/freshbasket/storefront/internal/cart/domain"
	catalog "github.com/freshbasket/storefront/internal/catalog/domain"
)

type CartRepository interface {
	// Lines returns the owner's cart joined with current product name and
	// price, ordered by when each line was added.
	Lines(ctx context.Context, owner domain.Owner) ([]domain.Line, error)
	// Quantity reports the owner's current quantity for one product, zero
	// when no line exists.
	Quantity(ctx context.Context, owner domain.Owner, productID string) (int, error)
	// AddOrIncrement merges qty into an existing line or creates one.
	AddOrIncrement(ctx context.Context, owner domain.Owner, productID string, qty int) error
	// SetQuantity sets the line to exactly qty, creating it if needed.
	SetQuantity(ctx context.Context, owner domain.Owner, productID string, qty int) error
	Remove(ctx context.Context, owner domain.Owner, productID string) error
	Clear(ctx context.Context, owner domain.Owner) error
}

// CatalogReader is the slice of the catalog the cart needs for validation.
type CatalogReader interface {
	Get(ctx context.Context, productID string) (catalog.Product, error)
}
