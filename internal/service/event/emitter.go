package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/repository"
)

// Emitter records domain events in the transactional outbox; the worker
// publishes them to the broker later.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type emitter struct {
	outboxRepo repository.OutboxRepository
}

func NewEmitter(outboxRepo repository.OutboxRepository) Emitter {
	return &emitter{outboxRepo: outboxRepo}
}

func (e *emitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	evt := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   data,
		Status:    string(model.OutboxStatusPending),
	}

	if err := e.outboxRepo.Create(ctx, evt); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	log.Debug().
		Str("event_id", evt.ID.String()).
		Str("event_type", eventType).
		Msg("Event recorded in outbox")
	return nil
}

// NopEmitter discards events. Used in tests and tools that do not publish.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	return nil
}
