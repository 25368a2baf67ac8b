package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/pkg/logger"
	"github.com/trialbridge/lead-api/pkg/metrics"
)

// Registered once; prometheus panics on duplicate collector registration.
var testMetrics = metrics.New("outboxtest")

type fakeOutboxRepo struct {
	pending    []*model.OutboxEvent
	statuses   map[uuid.UUID]string
	retryAts   map[uuid.UUID]*time.Time
	beginCalls int
	deleted    int64
	deletedCut time.Time
}

func newFakeOutboxRepo(events ...*model.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{
		pending:  events,
		statuses: make(map[uuid.UUID]string),
		retryAts: make(map[uuid.UUID]*time.Time),
	}
}

func (r *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	r.pending = append(r.pending, event)
	return nil
}

func (r *fakeOutboxRepo) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(r.pending) > limit {
		return r.pending[:limit], nil
	}
	return r.pending, nil
}

func (r *fakeOutboxRepo) BeginTx(ctx context.Context) (*sql.Tx, error) {
	r.beginCalls++
	return nil, errors.New("no transactions in test repo")
}

func (r *fakeOutboxRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error {
	r.statuses[id] = status
	r.retryAts[id] = retryAt
	return nil
}

func (r *fakeOutboxRepo) MoveToDeadLetter(ctx context.Context, tx *sql.Tx, evt *model.OutboxEvent) error {
	return nil
}

func (r *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	r.deletedCut = before
	r.deleted = 2
	return 2, nil
}

type fakeBroker struct {
	published map[string][][]byte
	failures  int
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}
	if b.published == nil {
		b.published = make(map[string][][]byte)
	}
	b.published[channel] = append(b.published[channel], message.(json.RawMessage))
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *fakeBroker) Close() error { return nil }

func newTestProcessor(repo *fakeOutboxRepo, broker *fakeBroker) *OutboxProcessor {
	cfg := OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Millisecond,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}
	return NewOutboxProcessor(repo, broker, cfg, logger.NewLogger(nil), testMetrics)
}

func pendingEvent(eventType string, retryCount int) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:         uuid.New(),
		EventType:  eventType,
		Payload:    []byte(`{"lead_id":"x"}`),
		Status:     string(model.OutboxStatusPending),
		RetryCount: retryCount,
	}
}

func TestProcessEventsPublishesAndMarksProcessed(t *testing.T) {
	evt := pendingEvent("LEAD_CREATED", 0)
	repo := newFakeOutboxRepo(evt)
	broker := &fakeBroker{}
	p := newTestProcessor(repo, broker)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, string(model.OutboxStatusProcessed), repo.statuses[evt.ID])
	assert.Len(t, broker.published["LEAD_CREATED"], 1)
}

func TestProcessEventsSchedulesRetryOnPublishFailure(t *testing.T) {
	evt := pendingEvent("LEAD_REASSIGNED", 0)
	repo := newFakeOutboxRepo(evt)
	broker := &fakeBroker{failures: 10}
	p := newTestProcessor(repo, broker)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, string(model.OutboxStatusRetry), repo.statuses[evt.ID])
	require.NotNil(t, repo.retryAts[evt.ID])
	assert.True(t, repo.retryAts[evt.ID].After(time.Now().Add(-time.Second)))
}

func TestProcessEventsDeadLettersAfterMaxRetries(t *testing.T) {
	evt := pendingEvent("LEAD_STATUS_CHANGED", 2)
	repo := newFakeOutboxRepo(evt)
	broker := &fakeBroker{failures: 10}
	p := newTestProcessor(repo, broker)

	require.NoError(t, p.processEvents(context.Background()))

	assert.Equal(t, 1, repo.beginCalls)
	assert.NotEqual(t, string(model.OutboxStatusRetry), repo.statuses[evt.ID])
}

func TestCleanupProcessedUsesRetentionCutoff(t *testing.T) {
	repo := newFakeOutboxRepo()
	p := newTestProcessor(repo, &fakeBroker{})

	p.cleanupProcessed(context.Background())

	assert.Equal(t, int64(2), repo.deleted)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), repo.deletedCut, time.Minute)
}
