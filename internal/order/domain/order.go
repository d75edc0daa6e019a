package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrBlankAddress  = errors.New("shipping address is required")
	ErrOrderNotFound = errors.New("order not found")
)

// Line captures the product name and unit price at the moment the order was
// placed. It never changes afterwards, whatever happens to the product.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

type Order struct {
	ID              string
	UserID          string
	ShippingAddress string
	Notes           string
	Status          Status
	Lines           []Line
	Total           decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
