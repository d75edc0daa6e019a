package application

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshbasket/storefront/internal/catalog/domain"
	identity "github.com/freshbasket/storefront/internal/identity/domain"
)

type fakeProductRepo struct {
	products map[string]domain.Product
	nextID   int
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: map[string]domain.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) Get(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) List(_ context.Context, filter Filter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range f.products {
		if !p.Available {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeProductRepo) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, p := range f.products {
		if p.Available && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	f.nextID++
	p.ID = strings.Repeat("p", f.nextID)
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) Update(_ context.Context, p domain.Product) (domain.Product, error) {
	if _, ok := f.products[p.ID]; !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) Deactivate(_ context.Context, id string) error {
	p, ok := f.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.Available = false
	f.products[id] = p
	return nil
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestListFiltersInactive(t *testing.T) {
	repo := newFakeProductRepo(
		domain.Product{ID: "a", Name: "Apple", Category: "fruit", Price: price("1.00"), Stock: 5, Available: true},
		domain.Product{ID: "b", Name: "Brie", Category: "dairy", Price: price("4.50"), Stock: 2, Available: false},
	)
	svc := NewService(repo)

	products, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Apple", products[0].Name)
}

func TestCreateRequiresAdmin(t *testing.T) {
	svc := NewService(newFakeProductRepo())

	_, err := svc.Create(context.Background(), identity.Actor{UserID: "u1"}, domain.Product{
		Name: "Apple", Category: "fruit", Price: price("1.00"), Stock: 5,
	})
	assert.ErrorIs(t, err, identity.ErrForbidden)
}

func TestCreateValidatesAndActivates(t *testing.T) {
	svc := NewService(newFakeProductRepo())
	admin := identity.Actor{UserID: "a1", Admin: true}

	_, err := svc.Create(context.Background(), admin, domain.Product{Category: "fruit", Price: price("1.00")})
	assert.ErrorIs(t, err, domain.ErrMissingFields)

	_, err = svc.Create(context.Background(), admin, domain.Product{Name: "Apple", Category: "fruit", Price: price("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(context.Background(), admin, domain.Product{Name: "Apple", Category: "fruit", Price: price("1.00"), Stock: -1})
	assert.ErrorIs(t, err, domain.ErrNegativeStock)

	p, err := svc.Create(context.Background(), admin, domain.Product{Name: "Apple", Category: "fruit", Price: price("1.00"), Stock: 5})
	require.NoError(t, err)
	assert.True(t, p.Available)
	assert.NotEmpty(t, p.ID)
}

func TestUpdateRequiresAdminAndExistingProduct(t *testing.T) {
	repo := newFakeProductRepo(
		domain.Product{ID: "a", Name: "Apple", Category: "fruit", Price: price("1.00"), Stock: 5, Available: true},
	)
	svc := NewService(repo)
	admin := identity.Actor{UserID: "a1", Admin: true}

	_, err := svc.Update(context.Background(), identity.Actor{UserID: "u1"}, domain.Product{ID: "a", Name: "Apple", Category: "fruit", Price: price("2.00")})
	assert.ErrorIs(t, err, identity.ErrForbidden)

	_, err = svc.Update(context.Background(), admin, domain.Product{ID: "missing", Name: "X", Category: "y", Price: price("2.00")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	p, err := svc.Update(context.Background(), admin, domain.Product{ID: "a", Name: "Apple", Category: "fruit", Price: price("2.00"), Stock: 8, Available: true})
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(price("2.00")))
	assert.Equal(t, 8, p.Stock)
}

func TestDeactivateHidesProduct(t *testing.T) {
	repo := newFakeProductRepo(
		domain.Product{ID: "a", Name: "Apple", Category: "fruit", Price: price("1.00"), Stock: 5, Available: true},
	)
	svc := NewService(repo)
	admin := identity.Actor{UserID: "a1", Admin: true}

	assert.ErrorIs(t, svc.Deactivate(context.Background(), identity.Actor{}, "a"), identity.ErrForbidden)

	require.NoError(t, svc.Deactivate(context.Background(), admin, "a"))
	products, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, products)

	// Still retrievable directly so order history can resolve it.
	p, err := svc.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, p.Available)
}

func TestCategories(t *testing.T) {
	repo := newFakeProductRepo(
		domain.Product{ID: "a", Name: "Apple", Category: "fruit", Price: price("1.00"), Available: true},
		domain.Product{ID: "b", Name: "Banana", Category: "fruit", Price: price("0.50"), Available: true},
		domain.Product{ID: "c", Name: "Cheddar", Category: "dairy", Price: price("3.00"), Available: true},
	)
	svc := NewService(repo)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"dairy", "fruit"}, categories)
}
