package postgres

import (
	"context"
	"errors"
	"fmt"

	"experience-gift-fulfillment/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

// GetByID fetches a customer by UUID.
func (r *CustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT id, email, display_name, credential_hash, has_credential, created_at
		FROM customers WHERE id = $1`

	return r.scanCustomer(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches a customer by email, the identity store's lookup key.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	query := `SELECT id, email, display_name, credential_hash, has_credential, created_at
		FROM customers WHERE email = $1`

	return r.scanCustomer(r.pool.QueryRow(ctx, query, email))
}

// CreateIfAbsent inserts a customer, or returns the existing row when another
// writer already claimed the email. The unique constraint on email carries the
// at-most-one-identity-per-email invariant; losing a concurrent race is not an
// error here.
func (r *CustomerRepo) CreateIfAbsent(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	query := `INSERT INTO customers (id, email, display_name, credential_hash, has_credential, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, display_name, credential_hash, has_credential, created_at`

	created, err := r.scanCustomer(r.pool.QueryRow(ctx, query,
		c.ID, c.Email, c.DisplayName, c.CredentialHash, c.HasCredential, c.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	if created != nil {
		return created, nil
	}

	// Conflict: another writer inserted this email first.
	existing, err := r.GetByEmail(ctx, c.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("customer %s vanished after email conflict", c.Email)
	}
	return existing, nil
}

// CreateProfile inserts the enrichment profile for a new identity.
func (r *CustomerRepo) CreateProfile(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (customer_id, display_name, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, p.CustomerID, p.DisplayName, p.CreatedAt); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *CustomerRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(&c.ID, &c.Email, &c.DisplayName, &c.CredentialHash, &c.HasCredential, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return c, nil
}
