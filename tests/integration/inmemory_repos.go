package integration

import (
	"context"
	"sync"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports"

	"github.com/google/uuid"
)

// In-memory repos mirroring the postgres constraint semantics: unique email,
// unique payment_reference, unique order_id + unique code on vouchers, all
// resolved insert-or-return-existing under one mutex.

// --- In-Memory Customer Repo ---

type inMemoryCustomerRepo struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]*domain.Customer
	byEmail   map[string]uuid.UUID
	profiles  map[uuid.UUID]*domain.Profile
}

func newInMemoryCustomerRepo() *inMemoryCustomerRepo {
	return &inMemoryCustomerRepo{
		customers: make(map[uuid.UUID]*domain.Customer),
		byEmail:   make(map[string]uuid.UUID),
		profiles:  make(map[uuid.UUID]*domain.Profile),
	}
}

func (r *inMemoryCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *inMemoryCustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return r.customers[id], nil
}

func (r *inMemoryCustomerRepo) CreateIfAbsent(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byEmail[c.Email]; ok {
		return r.customers[existingID], nil
	}
	r.customers[c.ID] = c
	r.byEmail[c.Email] = c.ID
	return c, nil
}

func (r *inMemoryCustomerRepo) CreateProfile(ctx context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.CustomerID]; !ok {
		r.profiles[p.CustomerID] = p
	}
	return nil
}

func (r *inMemoryCustomerRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}

// --- In-Memory Order Repo ---

type inMemoryOrderRepo struct {
	mu          sync.RWMutex
	orders      map[uuid.UUID]*domain.Order
	byReference map[string]uuid.UUID
}

func newInMemoryOrderRepo() *inMemoryOrderRepo {
	return &inMemoryOrderRepo{
		orders:      make(map[uuid.UUID]*domain.Order),
		byReference: make(map[string]uuid.UUID),
	}
}

func (r *inMemoryOrderRepo) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byReference[reference]
	if !ok {
		return nil, nil
	}
	return r.orders[id], nil
}

func (r *inMemoryOrderRepo) CreateIfAbsent(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byReference[o.PaymentReference]; ok {
		return r.orders[existingID], nil
	}
	r.orders[o.ID] = o
	r.byReference[o.PaymentReference] = o.ID
	return o, nil
}

func (r *inMemoryOrderRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

// --- In-Memory Voucher Repo ---

type inMemoryVoucherRepo struct {
	mu       sync.RWMutex
	vouchers map[uuid.UUID]*domain.Voucher
	byOrder  map[uuid.UUID]uuid.UUID
	byCode   map[string]uuid.UUID
}

func newInMemoryVoucherRepo() *inMemoryVoucherRepo {
	return &inMemoryVoucherRepo{
		vouchers: make(map[uuid.UUID]*domain.Voucher),
		byOrder:  make(map[uuid.UUID]uuid.UUID),
		byCode:   make(map[string]uuid.UUID),
	}
}

func (r *inMemoryVoucherRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Voucher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	return r.vouchers[id], nil
}

func (r *inMemoryVoucherRepo) CreateIfAbsent(ctx context.Context, v *domain.Voucher) (*domain.Voucher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byOrder[v.OrderID]; ok {
		return r.vouchers[existingID], nil
	}
	if _, taken := r.byCode[v.Code]; taken {
		return nil, ports.ErrVoucherCodeTaken
	}
	r.vouchers[v.ID] = v
	r.byOrder[v.OrderID] = v.ID
	r.byCode[v.Code] = v.ID
	return v, nil
}

func (r *inMemoryVoucherRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.vouchers)
}

// --- In-Memory Event Log Repo ---

type inMemoryEventLogRepo struct {
	mu      sync.RWMutex
	records []*domain.EventRecord
}

func newInMemoryEventLogRepo() *inMemoryEventLogRepo {
	return &inMemoryEventLogRepo{}
}

func (r *inMemoryEventLogRepo) Create(ctx context.Context, rec *domain.EventRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}
