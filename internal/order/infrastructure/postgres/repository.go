package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	cart "github.com/freshbasket/storefront/internal/cart/domain"
	catalog "github.com/freshbasket/storefront/internal/catalog/domain"
	"github.com/freshbasket/storefront/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// PlaceFromCart is the checkout transaction. Product rows are locked in
// primary-key order, so concurrent checkouts of the same product serialize
// and stock can never be decremented past zero.
func (r *Repository) PlaceFromCart(ctx context.Context, owner cart.Owner, userID, shippingAddress, notes string) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
		SELECT cl.product_id, cl.quantity, p.name, p.price, p.stock
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.owner_key = $1
		ORDER BY cl.product_id
		FOR UPDATE OF p`, owner.Key())
	if err != nil {
		return domain.Order{}, fmt.Errorf("lock cart products: %w", err)
	}

	type pickedLine struct {
		productID string
		quantity  int
		name      string
		price     decimal.Decimal
		stock     int
	}
	var picked []pickedLine
	for rows.Next() {
		var l pickedLine
		if err := rows.Scan(&l.productID, &l.quantity, &l.name, &l.price, &l.stock); err != nil {
			rows.Close()
			return domain.Order{}, fmt.Errorf("scan cart line: %w", err)
		}
		picked = append(picked, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Order{}, fmt.Errorf("read cart lines: %w", err)
	}
	if len(picked) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}

	for _, l := range picked {
		if l.quantity > l.stock {
			return domain.Order{}, &catalog.InsufficientStockError{
				ProductID: l.productID,
				Name:      l.name,
				Requested: l.quantity,
				Available: l.stock,
			}
		}
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		ShippingAddress: shippingAddress,
		Notes:           notes,
		Status:          domain.StatusPlaced,
		Total:           decimal.Zero,
	}
	for _, l := range picked {
		subtotal := l.price.Mul(decimal.NewFromInt(int64(l.quantity)))
		o.Lines = append(o.Lines, domain.Line{
			ProductID: l.productID,
			Name:      l.name,
			Quantity:  l.quantity,
			UnitPrice: l.price,
			Subtotal:  subtotal,
		})
		o.Total = o.Total.Add(subtotal)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, shipping_address, notes, status, total)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.ShippingAddress, o.Notes, o.Status, o.Total).
		Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, l := range o.Lines {
		batch.Queue(`
			INSERT INTO order_lines (id, order_id, product_id, name, quantity, unit_price, subtotal)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), o.ID, l.ProductID, l.Name, l.Quantity, l.UnitPrice, l.Subtotal)
		batch.Queue(`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			l.ProductID, l.Quantity)
	}
	batch.Queue(`DELETE FROM cart_lines WHERE owner_key = $1`, owner.Key())
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return domain.Order{}, fmt.Errorf("write order lines: %w", err)
	}

	if err := stageEvent(ctx, tx, o.ID, domain.EventOrderPlaced, domain.OrderPlaced{
		OrderID: o.ID,
		UserID:  o.UserID,
		Total:   o.Total,
		Lines:   placedLines(o.Lines),
	}); err != nil {
		return domain.Order{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit checkout: %w", err)
	}
	r.log.Info("order placed", "order_id", o.ID, "user_id", userID, "total", o.Total.String(), "lines", len(o.Lines))
	return o, nil
}

func placedLines(lines []domain.Line) []domain.PlacedLine {
	out := make([]domain.PlacedLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.PlacedLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice})
	}
	return out
}

func stageEvent(ctx context.Context, tx pgx.Tx, aggregateID, eventType string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, status)
		VALUES ('order', $1, $2, $3, 'pending')`,
		aggregateID, eventType, payload)
	if err != nil {
		return fmt.Errorf("stage %s: %w", eventType, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, shipping_address, notes, status, total, created_at, updated_at
		FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.Notes, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	o.Lines, err = r.lines(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) lines(ctx context.Context, orderID string) ([]domain.Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_id, name, quantity, unit_price, subtotal
		FROM order_lines WHERE order_id=$1 ORDER BY name`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `WHERE user_id=$1`, userID)
}

func (r *Repository) ListAll(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	if status == "" {
		return r.list(ctx, ``)
	}
	return r.list(ctx, `WHERE status=$1`, string(status))
}

func (r *Repository) list(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, shipping_address, notes, status, total, created_at, updated_at
		FROM orders `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.Notes, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines, err = r.lines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// UpdateStatus locks the order row, checks the transition against the state
// machine and stages the status event atomically with the update.
func (r *Repository) UpdateStatus(ctx context.Context, id string, next domain.Status) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current domain.Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("lock order: %w", err)
	}
	if !current.CanTransitionTo(next) {
		return domain.Order{}, &domain.InvalidTransitionError{From: current, To: next}
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1`, id, next); err != nil {
		return domain.Order{}, fmt.Errorf("update status: %w", err)
	}
	if err := stageEvent(ctx, tx, id, domain.EventOrderStatusChanged, domain.OrderStatusChanged{
		OrderID: id,
		From:    current,
		To:      next,
	}); err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit status update: %w", err)
	}
	r.log.Info("order status updated", "order_id", id, "from", current, "to", next)
	return r.Get(ctx, id)
}
