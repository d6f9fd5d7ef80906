package ports

import (
	"context"
	"errors"

	"experience-gift-fulfillment/internal/core/domain"

	"github.com/google/uuid"
)

// ErrVoucherCodeTaken is returned by VoucherRepository.CreateIfAbsent when the
// generated code collides with another order's voucher. The caller regenerates
// and retries once; the unique constraint on code is the backstop.
var ErrVoucherCodeTaken = errors.New("voucher code already in use")

// CustomerRepository defines persistence operations against the identity store.
//
// CreateIfAbsent must be backed by a uniqueness constraint on email: under a
// concurrent duplicate event the losing writer returns the winner's row
// instead of an error. Read-then-write check-then-act is not acceptable here.
type CustomerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	CreateIfAbsent(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	CreateProfile(ctx context.Context, profile *domain.Profile) error
}

// OrderRepository defines persistence operations for orders.
// CreateIfAbsent is atomic insert-or-return-existing keyed on payment_reference.
type OrderRepository interface {
	GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error)
	CreateIfAbsent(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

// VoucherRepository defines persistence operations for vouchers.
// CreateIfAbsent is atomic insert-or-return-existing keyed on order_id; a
// collision on the code column surfaces as ErrVoucherCodeTaken.
type VoucherRepository interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Voucher, error)
	CreateIfAbsent(ctx context.Context, voucher *domain.Voucher) (*domain.Voucher, error)
}

// EventLogRepository persists the per-delivery receipt trail.
type EventLogRepository interface {
	Create(ctx context.Context, record *domain.EventRecord) error
}
