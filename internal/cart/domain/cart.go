package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OwnerKind string

const (
	OwnerAnonymous OwnerKind = "anon"
	OwnerUser      OwnerKind = "user"
)

// Owner scopes a cart to either an anonymous browser session or an
// authenticated user. Cart logic is oblivious to which one it is; login
// migrates lines from the anonymous owner to the user owner explicitly.
type Owner struct {
	Kind OwnerKind
	ID   string
}

func AnonymousOwner(sessionID string) Owner { return Owner{Kind: OwnerAnonymous, ID: sessionID} }
func UserOwner(userID string) Owner         { return Owner{Kind: OwnerUser, ID: userID} }

// Key is the stable string form used as the cart_lines owner column.
func (o Owner) Key() string { return string(o.Kind) + ":" + o.ID }

// Line is one cart entry joined with the product's current name and price.
type Line struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	AddedAt   time.Time
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Owner Owner
	Lines []Line
}

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
