package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports"
	"experience-gift-fulfillment/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	eventCacheTTL = 24 * time.Hour

	// One regeneration on a code collision. With 32^8 codes a second
	// collision in a row means something is broken, not unlucky.
	maxCodeAttempts = 2
)

// FulfillmentServiceImpl implements ports.FulfillmentService. It drives one
// verified payment event through customer resolution, order creation, voucher
// issuance and notification dispatch.
//
// Every step is an ensure: it either performs the side effect or observes
// that a previous delivery already did. A redelivered event therefore resumes
// wherever the last attempt stopped, and two concurrent deliveries of the
// same charge converge on one order and one voucher.
type FulfillmentServiceImpl struct {
	orderRepo    ports.OrderRepository
	voucherRepo  ports.VoucherRepository
	customerRepo ports.CustomerRepository
	resolver     ports.CustomerResolver
	catalog      ports.CatalogService
	notifier     ports.NotificationService
	codeGen      ports.CodeGenerator
	eventCache   ports.EventCache         // nil disables the fast path
	publisher    ports.FulfilledPublisher // nil disables the stream
	log          zerolog.Logger
}

// NewFulfillmentService creates a new FulfillmentServiceImpl.
func NewFulfillmentService(
	orderRepo ports.OrderRepository,
	voucherRepo ports.VoucherRepository,
	customerRepo ports.CustomerRepository,
	resolver ports.CustomerResolver,
	catalog ports.CatalogService,
	notifier ports.NotificationService,
	codeGen ports.CodeGenerator,
	eventCache ports.EventCache,
	publisher ports.FulfilledPublisher,
	log zerolog.Logger,
) *FulfillmentServiceImpl {
	return &FulfillmentServiceImpl{
		orderRepo:    orderRepo,
		voucherRepo:  voucherRepo,
		customerRepo: customerRepo,
		resolver:     resolver,
		catalog:      catalog,
		notifier:     notifier,
		codeGen:      codeGen,
		eventCache:   eventCache,
		publisher:    publisher,
		log:          log,
	}
}

// Fulfill processes one payment event end to end.
func (s *FulfillmentServiceImpl) Fulfill(ctx context.Context, event *domain.PaymentEvent) (*domain.FulfillmentResult, error) {
	// Layer 1: Redis fast path for verbatim redeliveries of an event id we
	// already finished. Best-effort; the order table stays authoritative.
	if s.eventCache != nil && event.EventID != "" {
		cached, err := s.eventCache.Get(ctx, event.EventID)
		if err != nil {
			s.log.Warn().Err(err).Str("event_id", event.EventID).Msg("redis event check failed, falling through to DB")
		}
		if cached != nil {
			return s.unmarshalCachedResult(cached)
		}
	}

	result := &domain.FulfillmentResult{
		EventID:          event.EventID,
		PaymentReference: event.PaymentReference,
		Stage:            domain.StageReceived,
	}

	// Layer 2: the unique constraint on payment_reference. An existing order
	// means a previous delivery got at least this far; skip straight to the
	// voucher ensure.
	order, err := s.orderRepo.GetByPaymentReference(ctx, event.PaymentReference)
	if err != nil {
		return result, apperror.ErrDatabaseError(fmt.Errorf("lookup order by reference: %w", err))
	}

	var itemTitle string
	if order != nil {
		result.Duplicate = true
		result.CustomerID = order.CustomerID
		result.OrderID = order.ID
		result.Stage = domain.StageOrderEnsured
	} else {
		customer, err := s.resolver.Resolve(ctx, event.CustomerEmail, event.CustomerName)
		if err != nil {
			return result, err
		}
		result.CustomerID = customer.ID
		result.Stage = domain.StageCustomerResolved

		item, err := s.catalog.GetItem(ctx, event.CatalogItemID)
		if err != nil {
			return result, apperror.ErrCollaboratorUnavailable("catalog", err)
		}
		if item == nil {
			// Retryable: the item may not have propagated yet. Recurrence
			// across redeliveries needs an operator, hence error severity.
			s.log.Error().
				Str("event_id", event.EventID).
				Str("catalog_item_id", event.CatalogItemID).
				Str("reference", event.PaymentReference).
				Msg("paid catalog item not found")
			return result, apperror.ErrCatalogItemNotFound(event.CatalogItemID)
		}
		itemTitle = item.Title

		candidate := &domain.Order{
			ID:               uuid.New(),
			CustomerID:       customer.ID,
			CatalogItemID:    event.CatalogItemID,
			PaymentReference: event.PaymentReference,
			Amount:           event.Amount,
			Currency:         event.Currency,
			Status:           domain.OrderStatusCompleted,
			CreatedAt:        time.Now().UTC(),
		}
		order, err = s.orderRepo.CreateIfAbsent(ctx, candidate)
		if err != nil {
			return result, apperror.ErrDatabaseError(fmt.Errorf("ensure order: %w", err))
		}
		// A different id back means a concurrent delivery won the insert.
		result.Duplicate = order.ID != candidate.ID
		result.CustomerID = order.CustomerID
		result.OrderID = order.ID
		result.Stage = domain.StageOrderEnsured
	}

	voucher, err := s.ensureVoucher(ctx, order.ID)
	if err != nil {
		return result, err
	}
	result.VoucherCode = voucher.Code
	result.Stage = domain.StageVoucherEnsured

	// Resumed deliveries skipped the catalog fetch; recover the title
	// best-effort for the message body.
	if itemTitle == "" {
		itemTitle = s.itemTitle(ctx, order.CatalogItemID)
	}

	dispatch := s.notifier.Send(ctx, ports.VoucherNotification{
		To:           event.CustomerEmail,
		CustomerName: event.CustomerName,
		ItemTitle:    itemTitle,
		VoucherCode:  voucher.Code,
	})
	if dispatch.Delivered {
		result.Stage = domain.StageNotified
	} else {
		result.Stage = domain.StageNotifyFailed
		result.NotifyError = dispatch.Detail
		s.log.Error().
			Str("reference", event.PaymentReference).
			Str("order_id", order.ID.String()).
			Str("detail", dispatch.Detail).
			Msg("voucher notification failed, order and voucher are committed")
	}

	s.cacheResult(ctx, event.EventID, result)

	if s.publisher != nil {
		published := *result
		s.publisher.PublishFulfilled(&published)
	}

	s.log.Info().
		Str("event_id", event.EventID).
		Str("reference", event.PaymentReference).
		Str("order_id", order.ID.String()).
		Str("stage", string(result.Stage)).
		Bool("duplicate", result.Duplicate).
		Msg("payment event fulfilled")

	return result, nil
}

// ensureVoucher returns the order's voucher, issuing it if absent. Exactly
// one voucher per order: the unique constraint on order_id settles races, and
// a global code collision triggers one regeneration.
func (s *FulfillmentServiceImpl) ensureVoucher(ctx context.Context, orderID uuid.UUID) (*domain.Voucher, error) {
	existing, err := s.voucherRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup voucher: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.codeGen.Generate()
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("generate voucher code: %w", err))
		}

		candidate := &domain.Voucher{
			ID:        uuid.New(),
			OrderID:   orderID,
			Code:      code,
			CreatedAt: time.Now().UTC(),
		}
		voucher, err := s.voucherRepo.CreateIfAbsent(ctx, candidate)
		if errors.Is(err, ports.ErrVoucherCodeTaken) {
			s.log.Warn().Str("order_id", orderID.String()).Int("attempt", attempt).Msg("voucher code collision, regenerating")
			continue
		}
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("ensure voucher: %w", err))
		}
		return voucher, nil
	}

	return nil, apperror.InternalError(fmt.Errorf("voucher code collision persisted after %d attempts", maxCodeAttempts))
}

// OrderSummary assembles the operator view for a payment reference.
func (s *FulfillmentServiceImpl) OrderSummary(ctx context.Context, reference string) (*ports.OrderSummary, error) {
	order, err := s.orderRepo.GetByPaymentReference(ctx, reference)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup order: %w", err))
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound(reference)
	}

	voucher, err := s.voucherRepo.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup voucher: %w", err))
	}

	customer, err := s.customerRepo.GetByID(ctx, order.CustomerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup customer: %w", err))
	}

	return &ports.OrderSummary{
		Order:    order,
		Voucher:  voucher,
		Customer: customer,
	}, nil
}

// ResendNotification re-dispatches the voucher message for an existing order.
// The voucher must already exist; nothing is ever re-issued here.
func (s *FulfillmentServiceImpl) ResendNotification(ctx context.Context, reference string) (*domain.FulfillmentResult, error) {
	summary, err := s.OrderSummary(ctx, reference)
	if err != nil {
		return nil, err
	}
	if summary.Voucher == nil {
		return nil, apperror.ErrVoucherNotIssued(reference)
	}
	if summary.Customer == nil {
		return nil, apperror.InternalError(fmt.Errorf("order %s has no customer row", summary.Order.ID))
	}

	result := &domain.FulfillmentResult{
		PaymentReference: reference,
		CustomerID:       summary.Customer.ID,
		OrderID:          summary.Order.ID,
		VoucherCode:      summary.Voucher.Code,
		Duplicate:        true,
		Stage:            domain.StageVoucherEnsured,
	}

	dispatch := s.notifier.Send(ctx, ports.VoucherNotification{
		To:           summary.Customer.Email,
		CustomerName: summary.Customer.DisplayName,
		ItemTitle:    s.itemTitle(ctx, summary.Order.CatalogItemID),
		VoucherCode:  summary.Voucher.Code,
	})
	if dispatch.Delivered {
		result.Stage = domain.StageNotified
	} else {
		result.Stage = domain.StageNotifyFailed
		result.NotifyError = dispatch.Detail
	}

	s.log.Info().
		Str("reference", reference).
		Str("stage", string(result.Stage)).
		Msg("voucher notification resent")

	return result, nil
}

// itemTitle fetches the catalog title for message bodies. Best-effort: a
// catalog hiccup here must not fail a pipeline whose money steps already
// committed.
func (s *FulfillmentServiceImpl) itemTitle(ctx context.Context, itemID string) string {
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil || item == nil {
		return ""
	}
	return item.Title
}

// cacheResult stores the finished result in Redis (best-effort).
func (s *FulfillmentServiceImpl) cacheResult(ctx context.Context, eventID string, result *domain.FulfillmentResult) {
	if s.eventCache == nil || eventID == "" {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("failed to marshal fulfillment result")
		return
	}
	if err := s.eventCache.Set(ctx, eventID, payload, eventCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("event_id", eventID).Msg("failed to cache fulfillment result in redis")
	}
}

// unmarshalCachedResult deserializes a cached fulfillment result.
func (s *FulfillmentServiceImpl) unmarshalCachedResult(data []byte) (*domain.FulfillmentResult, error) {
	result := &domain.FulfillmentResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
	}
	return result, nil
}
