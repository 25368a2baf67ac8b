package notification

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/pkg/errors"
)

// The fakes mirror the store's ownership scoping: a mark-read only matches
// rows under the given partner.
type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*model.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	f.notifications[n.ID] = n
	return nil
}

func (f *fakeNotificationRepo) ListForPartner(ctx context.Context, partnerID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range f.notifications {
		if n.PartnerID != partnerID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, partnerID uuid.UUID, at time.Time) error {
	n, ok := f.notifications[id]
	if !ok || n.PartnerID != partnerID {
		return sql.ErrNoRows
	}
	n.Read = true
	n.ReadAt = &at
	return nil
}

type fakeMessageRepo struct {
	messages map[uuid.UUID]*model.Message
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *model.Message) error {
	f.messages[m.ID] = m
	return nil
}

func (f *fakeMessageRepo) ListForPartner(ctx context.Context, partnerID uuid.UUID) ([]*model.Message, error) {
	var out []*model.Message
	for _, m := range f.messages {
		if m.PartnerID == partnerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, id, partnerID uuid.UUID) error {
	m, ok := f.messages[id]
	if !ok || m.PartnerID != partnerID {
		return sql.ErrNoRows
	}
	m.Read = true
	return nil
}

func newTestService() (Service, *fakeNotificationRepo, *fakeMessageRepo) {
	notifications := &fakeNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
	messages := &fakeMessageRepo{messages: make(map[uuid.UUID]*model.Message)}
	return NewService(notifications, messages), notifications, messages
}

func TestMarkReadScopedToOwningPartner(t *testing.T) {
	svc, repo, _ := newTestService()

	owner := uuid.New()
	other := uuid.New()
	n := &model.Notification{
		Base:      model.Base{ID: uuid.New()},
		PartnerID: owner,
		Type:      model.NotificationTypeLeadCreated,
		Subject:   "New lead",
	}
	require.NoError(t, repo.Create(context.Background(), n))

	err := svc.MarkRead(context.Background(), other, n.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, repo.notifications[n.ID].Read)

	require.NoError(t, svc.MarkRead(context.Background(), owner, n.ID))
	assert.True(t, repo.notifications[n.ID].Read)
}

func TestMarkMessageReadScopedToOwningPartner(t *testing.T) {
	svc, _, repo := newTestService()

	owner := uuid.New()
	other := uuid.New()
	m := &model.Message{
		Base:      model.Base{ID: uuid.New()},
		PartnerID: owner,
		Subject:   "Lead reassigned",
	}
	require.NoError(t, repo.Create(context.Background(), m))

	err := svc.MarkMessageRead(context.Background(), other, m.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, repo.messages[m.ID].Read)

	require.NoError(t, svc.MarkMessageRead(context.Background(), owner, m.ID))
	assert.True(t, repo.messages[m.ID].Read)
}
