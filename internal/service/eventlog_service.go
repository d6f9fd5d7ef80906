package service

import (
	"context"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports"

	"github.com/rs/zerolog"
)

type eventLogService struct {
	repo ports.EventLogRepository
	log  zerolog.Logger
}

// NewEventLogService creates a new delivery receipt service.
// If repo is nil, receipts are only written to the logger.
func NewEventLogService(repo ports.EventLogRepository, log zerolog.Logger) ports.EventLogService {
	return &eventLogService{repo: repo, log: log}
}

// Record persists a delivery receipt asynchronously (fire-and-forget).
// The webhook response never waits on the receipt trail.
func (s *eventLogService) Record(ctx context.Context, record *domain.EventRecord) {
	go func() {
		s.log.Info().
			Str("event_id", record.EventID).
			Str("kind", string(record.Kind)).
			Str("reference", record.PaymentReference).
			Str("outcome", string(record.Outcome)).
			Str("detail", record.Detail).
			Msg("event receipt")

		if s.repo != nil {
			if err := s.repo.Create(context.Background(), record); err != nil {
				s.log.Warn().Err(err).Str("event_id", record.EventID).Msg("failed to persist event receipt")
			}
		}
	}()
}
