package service

import (
	"net/http"
	"testing"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEventBody() []byte {
	return []byte(`{
		"id": "evt_1",
		"type": "payment.completed",
		"data": {
			"payment_reference": "pi_abc",
			"amount": 14900,
			"currency": "EUR",
			"metadata": {
				"customer_email": "ana@example.com",
				"customer_name": "Ana",
				"catalog_item_id": "exp_hot_air_balloon"
			}
		}
	}`)
}

func TestDecoder_HappyPath(t *testing.T) {
	d := NewJSONEventDecoder()

	event, err := d.Decode(validEventBody())
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "evt_1", event.EventID)
	assert.Equal(t, domain.EventKindPaymentCompleted, event.Kind)
	assert.Equal(t, "pi_abc", event.PaymentReference)
	assert.Equal(t, int64(14900), event.Amount)
	assert.Equal(t, "EUR", event.Currency)
	assert.Equal(t, "ana@example.com", event.CustomerEmail)
	assert.Equal(t, "Ana", event.CustomerName)
	assert.Equal(t, "exp_hot_air_balloon", event.CatalogItemID)
}

func TestDecoder_UnrecognizedKindIsNoOp(t *testing.T) {
	d := NewJSONEventDecoder()

	event, err := d.Decode([]byte(`{"id":"evt_2","type":"payment.refunded","data":{}}`))
	assert.NoError(t, err)
	assert.Nil(t, event)
}

func TestDecoder_MalformedJSON(t *testing.T) {
	d := NewJSONEventDecoder()

	_, err := d.Decode([]byte(`{not json`))
	require.Error(t, err)
	assert.Equal(t, "EVT_001", err.(*apperror.AppError).Code)
}

func TestDecoder_MissingEnvelopeFields(t *testing.T) {
	d := NewJSONEventDecoder()

	_, err := d.Decode([]byte(`{"data":{}}`))
	require.Error(t, err)
	assert.Equal(t, "EVT_001", err.(*apperror.AppError).Code)
}

func TestDecoder_MissingMetadataFieldIsAckedError(t *testing.T) {
	d := NewJSONEventDecoder()

	cases := map[string][]byte{
		"customer_email": []byte(`{"id":"evt_3","type":"payment.completed","data":{
			"payment_reference":"pi_1","amount":100,"currency":"EUR",
			"metadata":{"customer_name":"Ana","catalog_item_id":"exp_1"}}}`),
		"customer_name": []byte(`{"id":"evt_4","type":"payment.completed","data":{
			"payment_reference":"pi_2","amount":100,"currency":"EUR",
			"metadata":{"customer_email":"a@b.c","catalog_item_id":"exp_1"}}}`),
		"catalog_item_id": []byte(`{"id":"evt_5","type":"payment.completed","data":{
			"payment_reference":"pi_3","amount":100,"currency":"EUR",
			"metadata":{"customer_email":"a@b.c","customer_name":"Ana"}}}`),
	}

	for field, body := range cases {
		_, err := d.Decode(body)
		require.Error(t, err, "field=%s", field)
		appErr := err.(*apperror.AppError)
		assert.Equal(t, "EVT_002", appErr.Code, "field=%s", field)
		assert.Contains(t, appErr.Message, field)
		// Acknowledged, not retried: redelivery replays the same payload.
		assert.Equal(t, http.StatusOK, appErr.HTTPStatus)
		assert.False(t, appErr.IsRetryable())
	}
}

func TestDecoder_MissingPaymentReference(t *testing.T) {
	d := NewJSONEventDecoder()

	_, err := d.Decode([]byte(`{"id":"evt_6","type":"payment.completed","data":{
		"amount":100,"currency":"EUR",
		"metadata":{"customer_email":"a@b.c","customer_name":"Ana","catalog_item_id":"exp_1"}}}`))
	require.Error(t, err)
	assert.Equal(t, "EVT_002", err.(*apperror.AppError).Code)
}
