package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/model"
)

type fakePartnerRepo struct {
	partners map[uuid.UUID]*model.Partner
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: make(map[uuid.UUID]*model.Partner)}
}

func (f *fakePartnerRepo) Create(ctx context.Context, p *model.Partner) error {
	f.partners[p.ID] = p
	return nil
}

func (f *fakePartnerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return nil, assert.AnError
	}
	return p, nil
}

func (f *fakePartnerRepo) GetOrCreate(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	if p, ok := f.partners[id]; ok {
		return p, nil
	}
	p := &model.Partner{
		Base:     model.Base{ID: id},
		Name:     "Unregistered Partner",
		Active:   true,
		MaxLeads: model.DefaultMaxLeads,
	}
	f.partners[id] = p
	return p, nil
}

func (f *fakePartnerRepo) Update(ctx context.Context, p *model.Partner) error {
	if _, ok := f.partners[p.ID]; !ok {
		return assert.AnError
	}
	f.partners[p.ID] = p
	return nil
}

func (f *fakePartnerRepo) List(ctx context.Context, activeOnly bool) ([]*model.Partner, error) {
	var out []*model.Partner
	for _, p := range f.partners {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePartnerRepo) RecountLeads(ctx context.Context) (int64, error) {
	return 0, nil
}

func TestComputeQuotaUtilizationRounds(t *testing.T) {
	p := &model.Partner{Base: model.Base{ID: uuid.New()}, CurrentLeads: 1, MaxLeads: 3}
	q := ComputeQuota(p, DefaultWarningThreshold, DefaultCriticalThreshold)

	// 1/3 = 33.33…% rounds to 33.
	assert.Equal(t, 33, q.Utilization)
	assert.Equal(t, model.QuotaStatusOK, q.Status)

	p.CurrentLeads = 2
	q = ComputeQuota(p, DefaultWarningThreshold, DefaultCriticalThreshold)
	// 2/3 = 66.66…% rounds to 67.
	assert.Equal(t, 67, q.Utilization)
}

func TestComputeQuotaBands(t *testing.T) {
	cases := []struct {
		current int
		max     int
		want    model.QuotaStatus
	}{
		{74, 100, model.QuotaStatusOK},
		{75, 100, model.QuotaStatusWarning},
		{89, 100, model.QuotaStatusWarning},
		{90, 100, model.QuotaStatusCritical},
		{100, 100, model.QuotaStatusCritical},
		{0, 100, model.QuotaStatusOK},
	}

	for _, tc := range cases {
		p := &model.Partner{Base: model.Base{ID: uuid.New()}, CurrentLeads: tc.current, MaxLeads: tc.max}
		q := ComputeQuota(p, DefaultWarningThreshold, DefaultCriticalThreshold)
		assert.Equal(t, tc.want, q.Status, "current=%d max=%d", tc.current, tc.max)
	}
}

func TestComputeQuotaZeroMax(t *testing.T) {
	p := &model.Partner{Base: model.Base{ID: uuid.New()}, CurrentLeads: 0, MaxLeads: 0}
	q := ComputeQuota(p, DefaultWarningThreshold, DefaultCriticalThreshold)
	assert.Equal(t, 0, q.Utilization)
	assert.Equal(t, model.QuotaStatusOK, q.Status)

	p.CurrentLeads = 3
	q = ComputeQuota(p, DefaultWarningThreshold, DefaultCriticalThreshold)
	assert.Equal(t, 100, q.Utilization)
	assert.Equal(t, model.QuotaStatusCritical, q.Status)
}

func TestCreatePartnerDefaultsQuota(t *testing.T) {
	svc := NewService(newFakePartnerRepo(), 0, 0)

	p, err := svc.CreatePartner(context.Background(), &model.CreatePartnerRequest{
		Name:  "Carolina Research",
		Email: "ops@carolina-research.test",
	})
	require.NoError(t, err)

	assert.Equal(t, model.DefaultMaxLeads, p.MaxLeads)
	assert.True(t, p.Active)
	assert.Equal(t, "free", p.SubscriptionTier)
}

func TestUpdatePartnerPartial(t *testing.T) {
	repo := newFakePartnerRepo()
	svc := NewService(repo, 0, 0)

	p, err := svc.CreatePartner(context.Background(), &model.CreatePartnerRequest{
		Name:  "Carolina Research",
		Email: "ops@carolina-research.test",
		Zip:   "28202",
	})
	require.NoError(t, err)

	newName := "Carolina Research Group"
	updated, err := svc.UpdatePartner(context.Background(), p.ID, &model.UpdatePartnerRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, newName, updated.Name)
	assert.Equal(t, "28202", updated.Zip)
	assert.Equal(t, "ops@carolina-research.test", updated.Email)
}

func TestGetQuotaUnknownPartner(t *testing.T) {
	svc := NewService(newFakePartnerRepo(), 0, 0)

	_, err := svc.GetQuota(context.Background(), uuid.New())
	assert.Error(t, err)
}
