package ports

import (
	"context"
	"time"

	"experience-gift-fulfillment/internal/core/domain"
)

// SignatureVerifier authenticates that a webhook body originated from the
// payment gateway. Verification operates on the exact raw bytes received,
// before any JSON parsing.
type SignatureVerifier interface {
	// Verify checks the signature header against the raw body. Returns an
	// *apperror.AppError (SEC_*) on failure.
	Verify(rawBody []byte, signatureHeader string) error
	// Sign produces a header value for the given body and timestamp.
	// Used by outbound tooling and tests.
	Sign(timestamp int64, rawBody []byte) string
}

// EventDecoder parses a verified body into a typed event.
// Returns (nil, nil) for valid-but-unrecognized event kinds: the caller must
// still acknowledge those to stop redelivery.
type EventDecoder interface {
	Decode(verifiedBody []byte) (*domain.PaymentEvent, error)
}

// CustomerResolver returns an existing identity for the email or provisions a
// new guest identity with a generated credential.
type CustomerResolver interface {
	Resolve(ctx context.Context, email, displayName string) (*domain.Customer, error)
}

// CredentialHasher hashes the generated guest credential before storage.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) (bool, error)
}

// CodeGenerator produces voucher redemption codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// FulfillmentService drives one event through customer resolution, order
// creation, voucher issuance and notification dispatch.
type FulfillmentService interface {
	Fulfill(ctx context.Context, event *domain.PaymentEvent) (*domain.FulfillmentResult, error)
	// OrderSummary assembles the operator view for a payment reference.
	OrderSummary(ctx context.Context, reference string) (*OrderSummary, error)
	// ResendNotification re-dispatches the voucher message for an order whose
	// original dispatch failed. Idempotent: the voucher already exists.
	ResendNotification(ctx context.Context, reference string) (*domain.FulfillmentResult, error)
}

// OrderSummary is the ops view of a fulfilled charge.
type OrderSummary struct {
	Order    *domain.Order
	Voucher  *domain.Voucher
	Customer *domain.Customer
}

// EventLogService records delivery receipts asynchronously (fire-and-forget).
type EventLogService interface {
	Record(ctx context.Context, record *domain.EventRecord)
}

// --- Collaborator Ports (external services) ---

// CatalogService is the read-only catalog collaborator.
// GetItem returns (nil, nil) when the item does not exist.
type CatalogService interface {
	GetItem(ctx context.Context, id string) (*domain.CatalogItem, error)
}

// VoucherNotification is the template data for a voucher-delivery message.
type VoucherNotification struct {
	To           string
	CustomerName string
	ItemTitle    string
	VoucherCode  string
}

// DispatchResult reports the outcome of a notification attempt. Dispatch
// failures are results, not errors: they must never unwind committed
// order/voucher state.
type DispatchResult struct {
	Delivered bool
	Detail    string // transport error or non-2xx detail when not delivered
}

// NotificationService is the message-sending collaborator.
type NotificationService interface {
	Send(ctx context.Context, msg VoucherNotification) DispatchResult
}

// EventCache is the Redis fast path short-circuiting verbatim redeliveries by
// gateway event id. Best-effort: errors fall through to the database checks.
type EventCache interface {
	Get(ctx context.Context, eventID string) ([]byte, error) // nil, nil on miss
	Set(ctx context.Context, eventID string, value []byte, ttl time.Duration) error
}

// FulfilledPublisher streams completed fulfillments to downstream consumers.
// Best-effort; a nil publisher disables the stream.
type FulfilledPublisher interface {
	PublishFulfilled(result *domain.FulfillmentResult)
}

// TokenService validates bearer tokens for the ops API. Tokens are minted
// out-of-band with the shared ops secret.
type TokenService interface {
	Validate(tokenString string) (*OpsClaims, error)
}

// OpsClaims holds the parsed ops token claims.
type OpsClaims struct {
	Subject string
}
