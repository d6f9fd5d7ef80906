package dto

// WebhookAckResponse is the body returned to the gateway for a handled or
// intentionally ignored delivery. The voucher code itself is never echoed
// back to the gateway.
type WebhookAckResponse struct {
	EventID          string `json:"event_id,omitempty"`
	PaymentReference string `json:"payment_reference,omitempty"`
	Outcome          string `json:"outcome"`
	Stage            string `json:"stage,omitempty"`
	Duplicate        bool   `json:"duplicate,omitempty"`
}

// ResendRequest is the request body for re-dispatching a voucher message.
type ResendRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required,max=100"`
}

// CustomerResponse is the ops view of a customer identity.
type CustomerResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Guest       bool   `json:"guest"`
	CreatedAt   string `json:"created_at"`
}

// VoucherResponse is the ops view of an issued voucher.
type VoucherResponse struct {
	Code      string `json:"code"`
	Redeemed  bool   `json:"redeemed"`
	CreatedAt string `json:"created_at"`
}

// OrderSummaryResponse is the ops view of a fulfilled charge.
type OrderSummaryResponse struct {
	OrderID          string            `json:"order_id"`
	PaymentReference string            `json:"payment_reference"`
	CatalogItemID    string            `json:"catalog_item_id"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	CreatedAt        string            `json:"created_at"`
	Customer         *CustomerResponse `json:"customer,omitempty"`
	Voucher          *VoucherResponse  `json:"voucher,omitempty"`
}

// ResendResponse reports the outcome of a re-dispatch.
type ResendResponse struct {
	PaymentReference string `json:"payment_reference"`
	Stage            string `json:"stage"`
	NotifyError      string `json:"notify_error,omitempty"`
}
