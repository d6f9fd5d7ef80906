package postgres

import (
	"context"
	"fmt"

	"experience-gift-fulfillment/internal/core/domain"
)

// EventLogRepo implements ports.EventLogRepository.
type EventLogRepo struct {
	pool Pool
}

// NewEventLogRepo creates a new EventLogRepo.
func NewEventLogRepo(pool Pool) *EventLogRepo {
	return &EventLogRepo{pool: pool}
}

// Create inserts a delivery receipt. Re-recording the same gateway event id
// on redelivery is intentional: each delivery attempt leaves its own row.
func (r *EventLogRepo) Create(ctx context.Context, rec *domain.EventRecord) error {
	query := `INSERT INTO event_log (id, event_id, kind, payment_reference, outcome, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.EventID, rec.Kind, rec.PaymentReference, rec.Outcome, rec.Detail, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event record: %w", err)
	}
	return nil
}
