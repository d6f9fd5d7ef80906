package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusRefunded  OrderStatus = "REFUNDED" // set by back-office flows, never by this pipeline
)

// Order is the record of a fulfilled purchase. At most one Order exists per
// PaymentReference; the unique constraint on that column is the primary
// defense against duplicate-event double-fulfillment.
type Order struct {
	ID               uuid.UUID   `json:"id"`
	CustomerID       uuid.UUID   `json:"customer_id"`
	CatalogItemID    string      `json:"catalog_item_id"`
	PaymentReference string      `json:"payment_reference"`
	Amount           int64       `json:"amount"`
	Currency         string      `json:"currency"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}
