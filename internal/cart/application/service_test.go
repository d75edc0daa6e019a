package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshbasket/storefront/internal/cart/domain"
	catalog "github.com/freshbasket/storefront/internal/catalog/domain"
)

type fakeCartRepo struct {
	// lines[ownerKey][productID] = quantity
	lines map[string]map[string]int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{lines: map[string]map[string]int{}}
}

func (f *fakeCartRepo) bucket(owner domain.Owner) map[string]int {
	b, ok := f.lines[owner.Key()]
	if !ok {
		b = map[string]int{}
		f.lines[owner.Key()] = b
	}
	return b
}

func (f *fakeCartRepo) Lines(_ context.Context, owner domain.Owner) ([]domain.Line, error) {
	var out []domain.Line
	for pid, qty := range f.bucket(owner) {
		out = append(out, domain.Line{ProductID: pid, Quantity: qty})
	}
	return out, nil
}

func (f *fakeCartRepo) Quantity(_ context.Context, owner domain.Owner, productID string) (int, error) {
	return f.bucket(owner)[productID], nil
}

func (f *fakeCartRepo) AddOrIncrement(_ context.Context, owner domain.Owner, productID string, qty int) error {
	f.bucket(owner)[productID] += qty
	return nil
}

func (f *fakeCartRepo) SetQuantity(_ context.Context, owner domain.Owner, productID string, qty int) error {
	f.bucket(owner)[productID] = qty
	return nil
}

func (f *fakeCartRepo) Remove(_ context.Context, owner domain.Owner, productID string) error {
	delete(f.bucket(owner), productID)
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, owner domain.Owner) error {
	delete(f.lines, owner.Key())
	return nil
}

type fakeCatalog struct {
	products map[string]catalog.Product
}

func (f *fakeCatalog) Get(_ context.Context, productID string) (catalog.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]catalog.Product{
		"apple": {
			ID: "apple", Name: "Apple", Category: "fruit",
			Price: decimal.RequireFromString("1.00"), Stock: 10, Available: true,
		},
		"banana": {
			ID: "banana", Name: "Banana", Category: "fruit",
			Price: decimal.RequireFromString("0.50"), Stock: 3, Available: true,
		},
		"retired": {
			ID: "retired", Name: "Retired", Category: "misc",
			Price: decimal.RequireFromString("9.99"), Stock: 5, Available: false,
		},
	}}
}

func TestAddDefaultsToOneUnit(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	owner := domain.AnonymousOwner("s1")

	require.NoError(t, svc.Add(context.Background(), owner, "apple", 0))
	require.NoError(t, svc.Add(context.Background(), owner, "apple", -3))

	assert.Equal(t, 2, repo.bucket(owner)["apple"])
}

func TestAddMergesWithExistingLine(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	owner := domain.UserOwner("u1")

	require.NoError(t, svc.Add(context.Background(), owner, "banana", 2))
	require.NoError(t, svc.Add(context.Background(), owner, "banana", 1))
	assert.Equal(t, 3, repo.bucket(owner)["banana"])
}

func TestAddRejectsOverStock(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	owner := domain.UserOwner("u1")

	require.NoError(t, svc.Add(context.Background(), owner, "banana", 2))

	err := svc.Add(context.Background(), owner, "banana", 2)
	var stockErr *catalog.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "banana", stockErr.ProductID)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// The cart is untouched on failure.
	assert.Equal(t, 2, repo.bucket(owner)["banana"])
}

func TestAddUnknownOrInactiveProduct(t *testing.T) {
	svc := NewService(newFakeCartRepo(), testCatalog())
	owner := domain.AnonymousOwner("s1")

	err := svc.Add(context.Background(), owner, "nope", 1)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	err = svc.Add(context.Background(), owner, "retired", 1)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpdateQuantity(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	owner := domain.UserOwner("u1")

	require.NoError(t, svc.Add(context.Background(), owner, "apple", 2))
	require.NoError(t, svc.UpdateQuantity(context.Background(), owner, "apple", 7))
	assert.Equal(t, 7, repo.bucket(owner)["apple"])

	err := svc.UpdateQuantity(context.Background(), owner, "apple", 11)
	var stockErr *catalog.InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	owner := domain.UserOwner("u1")

	require.NoError(t, svc.Add(context.Background(), owner, "apple", 2))
	require.NoError(t, svc.UpdateQuantity(context.Background(), owner, "apple", 0))
	_, ok := repo.bucket(owner)["apple"]
	assert.False(t, ok)
}

func TestRemoveIsIdempotent(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	owner := domain.UserOwner("u1")

	require.NoError(t, svc.Remove(context.Background(), owner, "apple"))
	require.NoError(t, svc.Add(context.Background(), owner, "apple", 1))
	require.NoError(t, svc.Remove(context.Background(), owner, "apple"))
	require.NoError(t, svc.Remove(context.Background(), owner, "apple"))
	assert.Empty(t, repo.bucket(owner))
}

func TestMergeMovesAnonymousCartToUser(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	anon := domain.AnonymousOwner("s1")
	user := domain.UserOwner("u1")

	require.NoError(t, svc.Add(context.Background(), anon, "apple", 2))
	require.NoError(t, svc.Add(context.Background(), anon, "banana", 1))
	require.NoError(t, svc.Add(context.Background(), user, "apple", 1))

	require.NoError(t, svc.Merge(context.Background(), anon, user))

	assert.Equal(t, 3, repo.bucket(user)["apple"])
	assert.Equal(t, 1, repo.bucket(user)["banana"])
	assert.Empty(t, repo.bucket(anon))
}

func TestMergeCapsAtAvailableStock(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	anon := domain.AnonymousOwner("s1")
	user := domain.UserOwner("u1")

	// banana stock is 3; user already holds 2, anonymous cart holds 3.
	require.NoError(t, svc.Add(context.Background(), user, "banana", 2))
	require.NoError(t, svc.Add(context.Background(), anon, "banana", 3))

	require.NoError(t, svc.Merge(context.Background(), anon, user))

	assert.Equal(t, 3, repo.bucket(user)["banana"])
	assert.Empty(t, repo.bucket(anon))
}

func TestMergeSkipsVanishedProducts(t *testing.T) {
	repo := newFakeCartRepo()
	cat := testCatalog()
	svc := NewService(repo, cat)
	anon := domain.AnonymousOwner("s1")
	user := domain.UserOwner("u1")

	require.NoError(t, svc.Add(context.Background(), anon, "apple", 1))
	delete(cat.products, "apple")

	require.NoError(t, svc.Merge(context.Background(), anon, user))
	assert.Empty(t, repo.bucket(user))
	assert.Empty(t, repo.bucket(anon))
}

func TestViewReturnsOwnerCart(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewService(repo, testCatalog())
	owner := domain.UserOwner("u1")

	require.NoError(t, svc.Add(context.Background(), owner, "apple", 2))

	c, err := svc.View(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, owner, c.Owner)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "apple", c.Lines[0].ProductID)
}
