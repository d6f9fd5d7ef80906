package service

import (
	"context"
	"testing"
	"time"

	"experience-gift-fulfillment/internal/core/domain"
	"experience-gift-fulfillment/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestEventLogService_PersistsReceipt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockEventLogRepository(ctrl)

	done := make(chan struct{})
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *domain.EventRecord) error {
			assert.Equal(t, "evt_1", rec.EventID)
			assert.Equal(t, domain.OutcomeFulfilled, rec.Outcome)
			close(done)
			return nil
		})

	svc := NewEventLogService(repo, zerolog.Nop())
	svc.Record(context.Background(), &domain.EventRecord{
		ID:        uuid.New(),
		EventID:   "evt_1",
		Kind:      "payment.completed",
		Outcome:   domain.OutcomeFulfilled,
		CreatedAt: time.Now().UTC(),
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receipt not persisted")
	}
}

func TestEventLogService_NilRepoOnlyLogs(t *testing.T) {
	svc := NewEventLogService(nil, zerolog.Nop())

	// Must not panic; the receipt only goes to the logger.
	svc.Record(context.Background(), &domain.EventRecord{
		ID:      uuid.New(),
		EventID: "evt_2",
		Outcome: domain.OutcomeIgnored,
	})
	time.Sleep(10 * time.Millisecond)
}
