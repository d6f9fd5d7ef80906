package handler

import (
	"errors"
	"io"
	"time"

	"experience-gift-fulfillment/internal/adapter/http/dto"
	"experience-gift-fulfillment/internal/adapter/http/middleware"
	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports"
	"experience-gift-fulfillment/pkg/apperror"
	"experience-gift-fulfillment/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebhookHandler receives payment-gateway deliveries.
type WebhookHandler struct {
	verifier       ports.SignatureVerifier
	decoder        ports.EventDecoder
	fulfillmentSvc ports.FulfillmentService
	eventLogSvc    ports.EventLogService // nil = receipts disabled
	log            zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(
	verifier ports.SignatureVerifier,
	decoder ports.EventDecoder,
	fulfillmentSvc ports.FulfillmentService,
	eventLogSvc ports.EventLogService,
	log zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:       verifier,
		decoder:        decoder,
		fulfillmentSvc: fulfillmentSvc,
		eventLogSvc:    eventLogSvc,
		log:            log,
	}
}

// Receive handles POST /api/v1/webhooks/payment.
//
// The body is read raw and verified byte-for-byte before any parsing.
// Response codes steer the gateway's retry machinery: 2xx stops redelivery,
// 5xx/502/503 requests it, 4xx signature failures are never retried into
// side effects.
func (h *WebhookHandler) Receive(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	if err := h.verifier.Verify(rawBody, c.GetHeader(middleware.HeaderSignature)); err != nil {
		// No side effects and no receipt: unauthenticated bytes are noise.
		response.Error(c, err)
		return
	}

	event, err := h.decoder.Decode(rawBody)
	if err != nil {
		h.recordDecodeFailure(c, err)
		response.Error(c, err)
		return
	}
	if event == nil {
		// Structurally valid, just not a kind this pipeline handles. Ack so
		// the gateway stops redelivering.
		h.record(c, &domain.EventRecord{Outcome: domain.OutcomeIgnored, Detail: "unrecognized event kind"})
		response.OK(c, dto.WebhookAckResponse{Outcome: string(domain.OutcomeIgnored)})
		return
	}

	result, err := h.fulfillmentSvc.Fulfill(c.Request.Context(), event)
	if err != nil {
		h.record(c, &domain.EventRecord{
			EventID:          event.EventID,
			Kind:             string(event.Kind),
			PaymentReference: event.PaymentReference,
			Outcome:          domain.OutcomeFailed,
			Detail:           err.Error(),
		})
		response.Error(c, err)
		return
	}

	h.record(c, &domain.EventRecord{
		EventID:          event.EventID,
		Kind:             string(event.Kind),
		PaymentReference: event.PaymentReference,
		Outcome:          domain.OutcomeFulfilled,
		Detail:           result.NotifyError,
	})

	response.OK(c, dto.WebhookAckResponse{
		EventID:          result.EventID,
		PaymentReference: result.PaymentReference,
		Outcome:          string(domain.OutcomeFulfilled),
		Stage:            string(result.Stage),
		Duplicate:        result.Duplicate,
	})
}

// recordDecodeFailure writes a receipt for malformed or incomplete payloads.
// Incomplete metadata is acknowledged with an error body, so the receipt is
// the only durable trace an operator has of the lost gift.
func (h *WebhookHandler) recordDecodeFailure(c *gin.Context, err error) {
	outcome := domain.OutcomeFailed
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code == "EVT_002" {
		outcome = domain.OutcomeIncomplete
		h.log.Error().Str("detail", appErr.Message).Msg("acknowledged event with incomplete metadata")
	}
	h.record(c, &domain.EventRecord{Outcome: outcome, Detail: err.Error()})
}

func (h *WebhookHandler) record(c *gin.Context, rec *domain.EventRecord) {
	if h.eventLogSvc == nil {
		return
	}
	rec.ID = uuid.New()
	rec.CreatedAt = time.Now().UTC()
	h.eventLogSvc.Record(c.Request.Context(), rec)
}
