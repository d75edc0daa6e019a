package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cart "github.com/freshbasket/storefront/internal/cart/domain"
	cartpg "github.com/freshbasket/storefront/internal/cart/infrastructure/postgres"
	"github.com/freshbasket/storefront/internal/order/domain"
	orderpg "github.com/freshbasket/storefront/internal/order/infrastructure/postgres"
	"github.com/freshbasket/storefront/pkg/outbox"
)

func stagePlacedOrder(t *testing.T) domain.Order {
	t.Helper()
	ctx := context.Background()
	u := seedUser(t, "alice")
	apple := seedProduct(t, "Apple", "1.00", 5)
	carts := cartpg.NewRepository(log, pool)
	require.NoError(t, carts.AddOrIncrement(ctx, cart.UserOwner(u.ID), apple.ID, 1))
	o, err := orderpg.NewRepository(log, pool).PlaceFromCart(ctx, cart.UserOwner(u.ID), u.ID, "1 Main St", "")
	require.NoError(t, err)
	return o
}

func TestOutboxLockBatchLeasesRows(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	o := stagePlacedOrder(t)

	store := orderpg.NewOutboxStore(log, pool)
	events, err := store.LockBatch(ctx, "relay-a", 10, 5*time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOrderPlaced, events[0].Type)
	assert.Equal(t, o.ID, events[0].AggregateID)
	assert.Equal(t, outbox.StatusInProgress, events[0].Status)

	// A second relay sees nothing while the lease holds.
	others, err := store.LockBatch(ctx, "relay-b", 10, 5*time.Second)
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, store.MarkSent(ctx, []int64{events[0].ID}))

	var status string
	require.NoError(t, pool.QueryRow(ctx, `SELECT status FROM outbox WHERE id=$1`, events[0].ID).Scan(&status))
	assert.Equal(t, "sent", status)
}

func TestOutboxMarkFailedRequeues(t *testing.T) {
	resetTables(t)
	ctx := context.Background()
	stagePlacedOrder(t)

	store := orderpg.NewOutboxStore(log, pool)
	events, err := store.LockBatch(ctx, "relay-a", 10, time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, store.MarkFailed(ctx, events[0].ID, "broker unavailable"))

	var status, lastError string
	var retries int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT status, retry_count, last_error FROM outbox WHERE id=$1`, events[0].ID).
		Scan(&status, &retries, &lastError))
	assert.Equal(t, "pending", status)
	assert.Equal(t, 1, retries)
	assert.Contains(t, lastError, "broker unavailable")

	// Failed rows come back on the next lease.
	events, err = store.LockBatch(ctx, "relay-b", 10, time.Second)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
