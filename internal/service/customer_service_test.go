package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports/mocks"
	"experience-gift-fulfillment/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type resolverTestDeps struct {
	svc          *CustomerResolverImpl
	customerRepo *mocks.MockCustomerRepository
	hasher       *mocks.MockCredentialHasher
	ctrl         *gomock.Controller
}

func setupResolver(t *testing.T) *resolverTestDeps {
	ctrl := gomock.NewController(t)
	d := &resolverTestDeps{
		customerRepo: mocks.NewMockCustomerRepository(ctrl),
		hasher:       mocks.NewMockCredentialHasher(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewCustomerResolver(d.customerRepo, d.hasher, zerolog.Nop())
	return d
}

func TestResolver_ExistingCustomer(t *testing.T) {
	d := setupResolver(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	existing := &domain.Customer{
		ID:            uuid.New(),
		Email:         "ana@example.com",
		DisplayName:   "Ana",
		HasCredential: true,
		CreatedAt:     time.Now().UTC(),
	}

	d.customerRepo.EXPECT().GetByEmail(ctx, "ana@example.com").Return(existing, nil)
	// No CreateIfAbsent, no hashing: the identity store is untouched.

	customer, err := d.svc.Resolve(ctx, "ana@example.com", "Ana")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, customer.ID)
	assert.False(t, customer.IsGuest())
}

func TestResolver_ProvisionsGuest(t *testing.T) {
	d := setupResolver(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.customerRepo.EXPECT().GetByEmail(ctx, "new@example.com").Return(nil, nil)
	d.hasher.EXPECT().Hash(gomock.Any()).DoAndReturn(func(secret string) (string, error) {
		// 32 random bytes, hex encoded.
		assert.Len(t, secret, 64)
		return "$argon2id$hashed", nil
	})
	d.customerRepo.EXPECT().CreateIfAbsent(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Customer) (*domain.Customer, error) {
			assert.Equal(t, "new@example.com", c.Email)
			assert.Equal(t, "Novi", c.DisplayName)
			assert.Equal(t, "$argon2id$hashed", c.CredentialHash)
			assert.False(t, c.HasCredential)
			return c, nil
		})
	d.customerRepo.EXPECT().CreateProfile(ctx, gomock.Any()).Return(nil)

	customer, err := d.svc.Resolve(ctx, "new@example.com", "Novi")
	require.NoError(t, err)
	assert.True(t, customer.IsGuest())
}

func TestResolver_LosesProvisioningRace(t *testing.T) {
	d := setupResolver(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	winner := &domain.Customer{ID: uuid.New(), Email: "race@example.com", DisplayName: "First"}

	d.customerRepo.EXPECT().GetByEmail(ctx, "race@example.com").Return(nil, nil)
	d.hasher.EXPECT().Hash(gomock.Any()).Return("$argon2id$hashed", nil)
	// Another writer claimed the email between lookup and insert; the repo
	// returns the winner's row.
	d.customerRepo.EXPECT().CreateIfAbsent(ctx, gomock.Any()).Return(winner, nil)
	// No CreateProfile: we did not win the insert.

	customer, err := d.svc.Resolve(ctx, "race@example.com", "Second")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, customer.ID)
}

func TestResolver_ProfileFailureIsNonFatal(t *testing.T) {
	d := setupResolver(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.customerRepo.EXPECT().GetByEmail(ctx, "p@example.com").Return(nil, nil)
	d.hasher.EXPECT().Hash(gomock.Any()).Return("$argon2id$hashed", nil)
	d.customerRepo.EXPECT().CreateIfAbsent(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, c *domain.Customer) (*domain.Customer, error) { return c, nil })
	d.customerRepo.EXPECT().CreateProfile(ctx, gomock.Any()).Return(errors.New("profiles table on fire"))

	customer, err := d.svc.Resolve(ctx, "p@example.com", "P")
	require.NoError(t, err)
	require.NotNil(t, customer)
}

func TestResolver_LookupError(t *testing.T) {
	d := setupResolver(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.customerRepo.EXPECT().GetByEmail(ctx, "x@example.com").Return(nil, errors.New("conn refused"))

	_, err := d.svc.Resolve(ctx, "x@example.com", "X")
	require.Error(t, err)
	appErr := err.(*apperror.AppError)
	assert.Equal(t, "SYS_001", appErr.Code)
	assert.True(t, appErr.IsRetryable())
}
