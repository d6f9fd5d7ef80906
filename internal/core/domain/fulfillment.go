package domain

import (
	"time"

	"github.com/google/uuid"
)

// FulfillmentStage tracks how far a single event made it through the
// pipeline. Each stage's side effect is ensure-style, so the chain is safely
// replayable from any point.
type FulfillmentStage string

const (
	StageReceived         FulfillmentStage = "received"
	StageCustomerResolved FulfillmentStage = "customer_resolved"
	StageOrderEnsured     FulfillmentStage = "order_ensured"
	StageVoucherEnsured   FulfillmentStage = "voucher_ensured"
	StageNotified         FulfillmentStage = "notified"
	// StageNotifyFailed is a non-fatal terminal state: order and voucher are
	// committed, only delivery of the code is uncertain.
	StageNotifyFailed FulfillmentStage = "notify_failed"
)

// FulfillmentResult is the outcome of processing one payment event.
type FulfillmentResult struct {
	EventID          string           `json:"event_id"`
	PaymentReference string           `json:"payment_reference"`
	CustomerID       uuid.UUID        `json:"customer_id"`
	OrderID          uuid.UUID        `json:"order_id"`
	VoucherCode      string           `json:"voucher_code"`
	Stage            FulfillmentStage `json:"stage"`
	Duplicate        bool             `json:"duplicate"` // an Order for this reference already existed
	NotifyError      string           `json:"notify_error,omitempty"`
}

// Succeeded reports whether the financial/inventory state is fully committed.
// Notification failure does not count against success.
func (r *FulfillmentResult) Succeeded() bool {
	return r.Stage == StageNotified || r.Stage == StageNotifyFailed
}

// EventOutcome classifies how a received webhook delivery ended.
type EventOutcome string

const (
	OutcomeFulfilled  EventOutcome = "FULFILLED"
	OutcomeIgnored    EventOutcome = "IGNORED"    // unrecognized kind, acked
	OutcomeIncomplete EventOutcome = "INCOMPLETE" // missing metadata, acked with error
	OutcomeFailed     EventOutcome = "FAILED"     // retryable failure, gateway will redeliver
)

// EventRecord is the receipt log row written (best-effort) for every verified
// delivery, giving operators an investigation trail.
type EventRecord struct {
	ID               uuid.UUID    `json:"id"`
	EventID          string       `json:"event_id"`
	Kind             string       `json:"kind"`
	PaymentReference string       `json:"payment_reference"`
	Outcome          EventOutcome `json:"outcome"`
	Detail           string       `json:"detail,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
