package service

import (
	"encoding/json"
	"fmt"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/pkg/apperror"
)

// gatewayEnvelope is the outer wire shape of every gateway delivery.
type gatewayEnvelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// paymentCompletedData is the payload shape for payment.completed events.
// The gifting metadata rides in the free-form metadata map the storefront
// attached when it created the charge.
type paymentCompletedData struct {
	PaymentReference string            `json:"payment_reference"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
}

// JSONEventDecoder implements ports.EventDecoder for the gateway's JSON
// envelope format. Decode only runs on signature-verified bytes.
type JSONEventDecoder struct{}

// NewJSONEventDecoder creates a new event decoder.
func NewJSONEventDecoder() *JSONEventDecoder {
	return &JSONEventDecoder{}
}

// Decode parses a verified body into a typed payment event.
//
// Structurally valid deliveries of a kind this pipeline does not handle
// return (nil, nil): the caller acknowledges them so the gateway stops
// redelivering. A recognized kind with missing gifting metadata is an
// EVT_002 error, acknowledged rather than retried because redelivery
// replays the same broken payload.
func (d *JSONEventDecoder) Decode(verifiedBody []byte) (*domain.PaymentEvent, error) {
	var envelope gatewayEnvelope
	if err := json.Unmarshal(verifiedBody, &envelope); err != nil {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("unmarshal envelope: %w", err))
	}
	if envelope.ID == "" || envelope.Type == "" {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("envelope missing id or type"))
	}

	if domain.EventKind(envelope.Type) != domain.EventKindPaymentCompleted {
		return nil, nil
	}

	var data paymentCompletedData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("unmarshal payment data: %w", err))
	}
	if data.PaymentReference == "" {
		return nil, apperror.ErrIncompleteEvent("payment_reference")
	}

	event := &domain.PaymentEvent{
		EventID:          envelope.ID,
		Kind:             domain.EventKindPaymentCompleted,
		PaymentReference: data.PaymentReference,
		Amount:           data.Amount,
		Currency:         data.Currency,
		RawMetadata:      data.Metadata,
	}

	for _, field := range []string{"customer_email", "customer_name", "catalog_item_id"} {
		if data.Metadata[field] == "" {
			return nil, apperror.ErrIncompleteEvent(field)
		}
	}
	event.CustomerEmail = data.Metadata["customer_email"]
	event.CustomerName = data.Metadata["customer_name"]
	event.CatalogItemID = data.Metadata["catalog_item_id"]

	return event, nil
}
