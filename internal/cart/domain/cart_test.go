package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOwnerKey(t *testing.T) {
	assert.Equal(t, "anon:abc123", AnonymousOwner("abc123").Key())
	assert.Equal(t, "user:u-1", UserOwner("u-1").Key())
}

func TestCartTotals(t *testing.T) {
	c := Cart{
		Owner: UserOwner("u-1"),
		Lines: []Line{
			{ProductID: "p1", Name: "Apple", UnitPrice: decimal.RequireFromString("1.00"), Quantity: 3},
			{ProductID: "p2", Name: "Banana", UnitPrice: decimal.RequireFromString("0.50"), Quantity: 2},
		},
	}

	assert.False(t, c.Empty())
	assert.Equal(t, 5, c.ItemCount())
	assert.True(t, c.Total().Equal(decimal.RequireFromString("4.00")), "total = %s", c.Total())
	assert.True(t, c.Lines[0].Subtotal().Equal(decimal.RequireFromString("3.00")))
}

func TestEmptyCart(t *testing.T) {
	c := Cart{Owner: AnonymousOwner("s")}
	assert.True(t, c.Empty())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Total().IsZero())
}
