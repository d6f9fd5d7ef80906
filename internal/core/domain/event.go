package domain

// EventKind is the gateway's event-type discriminator.
type EventKind string

const (
	// EventKindPaymentCompleted is the only kind the pipeline acts on.
	EventKindPaymentCompleted EventKind = "payment.completed"
)

// PaymentEvent is a decoded, verified gateway notification. Immutable once
// received; EventID is assigned by the gateway and unique per delivery batch,
// while PaymentReference identifies the underlying charge and is the
// idempotency key for fulfillment.
type PaymentEvent struct {
	EventID          string            `json:"event_id"`
	Kind             EventKind         `json:"kind"`
	PaymentReference string            `json:"payment_reference"`
	Amount           int64             `json:"amount"` // smallest currency unit
	Currency         string            `json:"currency"`
	CustomerEmail    string            `json:"customer_email"`
	CustomerName     string            `json:"customer_name"`
	CatalogItemID    string            `json:"catalog_item_id"`
	RawMetadata      map[string]string `json:"raw_metadata,omitempty"`
}
