package postgres

import (
	"context"
	"testing"
	"time"

	"experience-gift-fulfillment/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer() *domain.Customer {
	return &domain.Customer{
		ID:             uuid.New(),
		Email:          "ana@example.com",
		DisplayName:    "Ana",
		CredentialHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		HasCredential:  false,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func customerColumns() []string {
	return []string{"id", "email", "display_name", "credential_hash", "has_credential", "created_at"}
}

func customerRow(c *domain.Customer) *pgxmock.Rows {
	return pgxmock.NewRows(customerColumns()).AddRow(
		c.ID, c.Email, c.DisplayName, c.CredentialHash, c.HasCredential, c.CreatedAt,
	)
}

func TestCustomerRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	c := newTestCustomer()

	mock.ExpectQuery("SELECT .+ FROM customers WHERE email").
		WithArgs(c.Email).
		WillReturnRows(customerRow(c))

	result, err := repo.GetByEmail(context.Background(), c.Email)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, c.ID, result.ID)
	assert.Equal(t, c.Email, result.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_GetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM customers WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(pgxmock.NewRows(customerColumns()))

	result, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_CreateIfAbsent_Inserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	c := newTestCustomer()

	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(c.ID, c.Email, c.DisplayName, c.CredentialHash, c.HasCredential, c.CreatedAt).
		WillReturnRows(customerRow(c))

	result, err := repo.CreateIfAbsent(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, c.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_CreateIfAbsent_ConflictReturnsWinner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	loser := newTestCustomer()
	winner := newTestCustomer()
	winner.Email = loser.Email

	// ON CONFLICT DO NOTHING: the insert returns no rows.
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(loser.ID, loser.Email, loser.DisplayName, loser.CredentialHash, loser.HasCredential, loser.CreatedAt).
		WillReturnRows(pgxmock.NewRows(customerColumns()))
	// Re-fetch returns the winner's row.
	mock.ExpectQuery("SELECT .+ FROM customers WHERE email").
		WithArgs(loser.Email).
		WillReturnRows(customerRow(winner))

	result, err := repo.CreateIfAbsent(context.Background(), loser)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerRepo_CreateProfile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewCustomerRepo(mock)
	p := &domain.Profile{
		CustomerID:  uuid.New(),
		DisplayName: "Ana",
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs(p.CustomerID, p.DisplayName, p.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.CreateProfile(context.Background(), p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
