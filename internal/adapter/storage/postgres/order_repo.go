package postgres

import (
	"context"
	"errors"
	"fmt"

	"experience-gift-fulfillment/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// GetByPaymentReference fetches an order by the gateway charge reference.
func (r *OrderRepo) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT id, customer_id, catalog_item_id, payment_reference, amount, currency, status, created_at
		FROM orders WHERE payment_reference = $1`

	return r.scanOrder(r.pool.QueryRow(ctx, query, reference))
}

// CreateIfAbsent inserts an order, or returns the existing row when a
// concurrent duplicate delivery already created one for the same
// payment_reference. The unique constraint is the defense against
// double-fulfillment; a conflict here is resolved by re-fetch, never
// surfaced as an error.
func (r *OrderRepo) CreateIfAbsent(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	query := `INSERT INTO orders (id, customer_id, catalog_item_id, payment_reference, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (payment_reference) DO NOTHING
		RETURNING id, customer_id, catalog_item_id, payment_reference, amount, currency, status, created_at`

	created, err := r.scanOrder(r.pool.QueryRow(ctx, query,
		o.ID, o.CustomerID, o.CatalogItemID, o.PaymentReference, o.Amount, o.Currency, o.Status, o.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if created != nil {
		return created, nil
	}

	existing, err := r.GetByPaymentReference(ctx, o.PaymentReference)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("order %s vanished after reference conflict", o.PaymentReference)
	}
	return existing, nil
}

func (r *OrderRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(&o.ID, &o.CustomerID, &o.CatalogItemID, &o.PaymentReference,
		&o.Amount, &o.Currency, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}
