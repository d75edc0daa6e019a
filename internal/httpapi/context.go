package httpapi

import (
	"context"

	cart "github.com/freshbasket/storefront/internal/cart/domain"
	identity "github.com/freshbasket/storefront/internal/identity/domain"
)

type contextKey int

const (
	actorKey contextKey = iota
	ownerKey
)

func WithActor(ctx context.Context, a identity.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom returns the request's actor; the zero Actor means anonymous.
func ActorFrom(ctx context.Context) identity.Actor {
	a, _ := ctx.Value(actorKey).(identity.Actor)
	return a
}

func WithOwner(ctx context.Context, o cart.Owner) context.Context {
	return context.WithValue(ctx, ownerKey, o)
}

// OwnerFrom returns the cart owner derived from the session middleware.
func OwnerFrom(ctx context.Context) cart.Owner {
	o, _ := ctx.Value(ownerKey).(cart.Owner)
	return o
}
