package postgres

import (
	"context"
	"errors"
	"fmt"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VoucherRepo implements ports.VoucherRepository.
type VoucherRepo struct {
	pool Pool
}

// NewVoucherRepo creates a new VoucherRepo.
func NewVoucherRepo(pool Pool) *VoucherRepo {
	return &VoucherRepo{pool: pool}
}

// GetByOrderID fetches the voucher owned by an order.
func (r *VoucherRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Voucher, error) {
	query := `SELECT id, order_id, code, redeemed, created_at
		FROM vouchers WHERE order_id = $1`

	return r.scanVoucher(r.pool.QueryRow(ctx, query, orderID))
}

// CreateIfAbsent inserts a voucher, or returns the existing row when the
// order already has one. A unique violation on the code column (a collision
// with another order's voucher) is reported as ports.ErrVoucherCodeTaken so
// the caller can regenerate.
func (r *VoucherRepo) CreateIfAbsent(ctx context.Context, v *domain.Voucher) (*domain.Voucher, error) {
	query := `INSERT INTO vouchers (id, order_id, code, redeemed, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING id, order_id, code, redeemed, created_at`

	created, err := r.scanVoucher(r.pool.QueryRow(ctx, query,
		v.ID, v.OrderID, v.Code, v.Redeemed, v.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err, "vouchers_code_key") {
			return nil, ports.ErrVoucherCodeTaken
		}
		return nil, fmt.Errorf("insert voucher: %w", err)
	}
	if created != nil {
		return created, nil
	}

	existing, err := r.GetByOrderID(ctx, v.OrderID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("voucher for order %s vanished after conflict", v.OrderID)
	}
	return existing, nil
}

func (r *VoucherRepo) scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	v := &domain.Voucher{}
	err := row.Scan(&v.ID, &v.OrderID, &v.Code, &v.Redeemed, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan voucher: %w", err)
	}
	return v, nil
}
