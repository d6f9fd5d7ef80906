package domain

import (
	"time"

	"github.com/google/uuid"
)

// Voucher is the redeemable code issued exactly once per Order.
type Voucher struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	Code      string    `json:"code"`
	Redeemed  bool      `json:"redeemed"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogItem is the read-only external catalog record an order references.
type CatalogItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	VendorID string `json:"vendor_id"`
	Price    int64  `json:"price"`
}
