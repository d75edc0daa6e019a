package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshbasket/storefront/internal/cart/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Lines(ctx context.Context, owner domain.Owner) ([]domain.Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cl.product_id, p.name, p.price, cl.quantity, cl.added_at
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.owner_key = $1
		ORDER BY cl.added_at`, owner.Key())
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.UnitPrice, &l.Quantity, &l.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *Repository) Quantity(ctx context.Context, owner domain.Owner, productID string) (int, error) {
	var qty int
	err := r.pool.QueryRow(ctx,
		`SELECT quantity FROM cart_lines WHERE owner_key=$1 AND product_id=$2`,
		owner.Key(), productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("cart quantity: %w", err)
	}
	return qty, nil
}

func (r *Repository) AddOrIncrement(ctx context.Context, owner domain.Owner, productID string, qty int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_lines (owner_key, product_id, quantity)
		VALUES ($1,$2,$3)
		ON CONFLICT (owner_key, product_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity`,
		owner.Key(), productID, qty)
	if err != nil {
		return fmt.Errorf("add cart line: %w", err)
	}
	return nil
}

func (r *Repository) SetQuantity(ctx context.Context, owner domain.Owner, productID string, qty int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_lines (owner_key, product_id, quantity)
		VALUES ($1,$2,$3)
		ON CONFLICT (owner_key, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity`,
		owner.Key(), productID, qty)
	if err != nil {
		return fmt.Errorf("set cart line: %w", err)
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, owner domain.Owner, productID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE owner_key=$1 AND product_id=$2`,
		owner.Key(), productID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, owner domain.Owner) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE owner_key=$1`, owner.Key())
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
