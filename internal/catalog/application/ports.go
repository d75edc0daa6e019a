package application

import (
	"context"

	"github.com/freshbasket/storefront/internal/catalog/domain"
)

// Filter narrows List to one category and/or a name/description search term.
// Zero values mean "no restriction".
type Filter struct {
	Category string
	Search   string
}

type ProductRepository interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	Deactivate(ctx context.Context, id string) error
}
