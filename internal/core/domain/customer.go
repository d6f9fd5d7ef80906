package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a customer identity in the identity store.
// At most one identity exists per email; the pipeline never overwrites an
// existing customer's name or credential.
type Customer struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	CredentialHash string    `json:"-"` // Argon2id hash, never exposed
	HasCredential  bool      `json:"has_credential"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsGuest reports whether the identity was provisioned without the customer
// ever setting a credential themselves.
func (c *Customer) IsGuest() bool {
	return !c.HasCredential
}

// Profile is the enrichment record created best-effort alongside a new guest
// identity. Its absence never blocks fulfillment.
type Profile struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
