package assignment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/geo"
	"github.com/trialbridge/lead-api/internal/model"
)

type fakePartnerRepo struct {
	partners []*model.Partner
}

func (f *fakePartnerRepo) Create(ctx context.Context, p *model.Partner) error { return nil }

func (f *fakePartnerRepo) Get(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	for _, p := range f.partners {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakePartnerRepo) GetOrCreate(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	return f.Get(ctx, id)
}

func (f *fakePartnerRepo) Update(ctx context.Context, p *model.Partner) error { return nil }

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

func (f *fakePartnerRepo) RecountLeads(ctx context.Context) (int64, error) { return 0, nil }

func sitePartner(name, zip string, current, max int) *model.Partner {
	return &model.Partner{
		Base:         model.Base{ID: uuid.New()},
		Name:         name,
		Active:       true,
		Zip:          zip,
		CurrentLeads: current,
		MaxLeads:     max,
	}
}

func TestSuggestReturnsNearestWithQuota(t *testing.T) {
	near := sitePartner("Dilworth Clinical", "28203", 45, 50)
	far := sitePartner("SouthPark Research", "28210", 10, 50)
	repo := &fakePartnerRepo{partners: []*model.Partner{far, near}}

	svc := NewService(repo, geo.NewMatcher(geo.NewResolver(), 50), 75, 90)

	suggestion, err := svc.Suggest(context.Background(), "28202")
	require.NoError(t, err)
	require.NotNil(t, suggestion)

	assert.Equal(t, near.ID, suggestion.Partner.ID)
	assert.Less(t, suggestion.Distance, 5.0)
	assert.Equal(t, 90, suggestion.Quota.Utilization)
	assert.Equal(t, model.QuotaStatusCritical, suggestion.Quota.Status)
}

func TestSuggestNoMatchReturnsNil(t *testing.T) {
	seattle := sitePartner("Puget Trials", "98101", 0, 50)
	repo := &fakePartnerRepo{partners: []*model.Partner{seattle}}

	svc := NewService(repo, geo.NewMatcher(geo.NewResolver(), 50), 75, 90)

	suggestion, err := svc.Suggest(context.Background(), "28202")
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}

func TestSuggestIgnoresInactivePartners(t *testing.T) {
	p := sitePartner("Dilworth Clinical", "28203", 0, 50)
	p.Active = false
	repo := &fakePartnerRepo{partners: []*model.Partner{p}}

	svc := NewService(repo, geo.NewMatcher(geo.NewResolver(), 50), 75, 90)

	suggestion, err := svc.Suggest(context.Background(), "28202")
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}

func TestSuggestRejectsBadZip(t *testing.T) {
	svc := NewService(&fakePartnerRepo{}, geo.NewMatcher(geo.NewResolver(), 50), 75, 90)

	_, err := svc.Suggest(context.Background(), "123")
	assert.Error(t, err)
}
