package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports"
	"experience-gift-fulfillment/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const guestCredentialBytes = 32

// CustomerResolverImpl implements ports.CustomerResolver. Guest buyers get a
// full identity provisioned on the spot: a random credential is generated,
// hashed, and stored so the account can later be claimed through the normal
// credential-reset flow. The plaintext credential is discarded immediately.
type CustomerResolverImpl struct {
	customerRepo ports.CustomerRepository
	hasher       ports.CredentialHasher
	log          zerolog.Logger
}

// NewCustomerResolver creates a new customer resolver.
func NewCustomerResolver(customerRepo ports.CustomerRepository, hasher ports.CredentialHasher, log zerolog.Logger) *CustomerResolverImpl {
	return &CustomerResolverImpl{
		customerRepo: customerRepo,
		hasher:       hasher,
		log:          log,
	}
}

// Resolve returns the identity registered under email, provisioning a guest
// identity when none exists. Concurrent provisioning of the same email is
// settled by the store's uniqueness constraint: the loser receives the
// winner's row, never an error.
func (s *CustomerResolverImpl) Resolve(ctx context.Context, email, displayName string) (*domain.Customer, error) {
	existing, err := s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup customer by email: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	credential, err := generateOpaqueCredential()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate guest credential: %w", err))
	}
	credentialHash, err := s.hasher.Hash(credential)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash guest credential: %w", err))
	}

	now := time.Now().UTC()
	guest := &domain.Customer{
		ID:             uuid.New(),
		Email:          email,
		DisplayName:    displayName,
		CredentialHash: credentialHash,
		HasCredential:  false,
		CreatedAt:      now,
	}

	customer, err := s.customerRepo.CreateIfAbsent(ctx, guest)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("provision guest customer: %w", err))
	}

	if customer.ID == guest.ID {
		// We won the insert; attach the profile. Profile creation is
		// best-effort: a missing profile never blocks fulfillment.
		profile := &domain.Profile{
			CustomerID:  customer.ID,
			DisplayName: displayName,
			CreatedAt:   now,
		}
		if err := s.customerRepo.CreateProfile(ctx, profile); err != nil {
			s.log.Warn().Err(err).Str("customer_id", customer.ID.String()).Msg("failed to create guest profile")
		}
		s.log.Info().Str("customer_id", customer.ID.String()).Msg("guest customer provisioned")
	}

	return customer, nil
}

// generateOpaqueCredential returns a hex-encoded random credential.
func generateOpaqueCredential() (string, error) {
	buf := make([]byte, guestCredentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
