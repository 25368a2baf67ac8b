package lead

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/geo"
	"github.com/trialbridge/lead-api/internal/model"
	"github.com/trialbridge/lead-api/internal/service/assignment"
	"github.com/trialbridge/lead-api/pkg/errors"
)

type fakePartnerRepo struct {
	partners map[uuid.UUID]*model.Partner
}

func newFakePartnerRepo() *fakePartnerRepo {
	return &fakePartnerRepo{partners: make(map[uuid.UUID]*model.Partner)}
}

func (f *fakePartnerRepo) add(name string) *model.Partner {
	p := &model.Partner{
		Base:     model.Base{ID: uuid.New()},
		Name:     name,
		Active:   true,
		MaxLeads: model.DefaultMaxLeads,
	}
	f.partners[p.ID] = p
	return p
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

func (f *fakePartnerRepo) RecountLeads(ctx context.Context) (int64, error) { return 0, nil }

// fakeLeadRepo mirrors the transactional counter semantics of the real
// store: creates and reassignments adjust partner counters atomically.
type fakeLeadRepo struct {
	partners    *fakePartnerRepo
	leads       map[uuid.UUID]*model.Lead
	statusHist  map[uuid.UUID][]*model.LeadStatusChange
	assignments map[uuid.UUID][]*model.LeadAssignment
	qualityHist map[uuid.UUID][]*model.LeadQualityChange
}

func newFakeLeadRepo(partners *fakePartnerRepo) *fakeLeadRepo {
	return &fakeLeadRepo{
		partners:    partners,
		leads:       make(map[uuid.UUID]*model.Lead),
		statusHist:  make(map[uuid.UUID][]*model.LeadStatusChange),
		assignments: make(map[uuid.UUID][]*model.LeadAssignment),
		qualityHist: make(map[uuid.UUID][]*model.LeadQualityChange),
	}
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *model.Lead, initial *model.LeadAssignment) error {
	f.leads[lead.ID] = lead
	f.assignments[lead.ID] = append(f.assignments[lead.ID], initial)
	if p, ok := f.partners.partners[lead.PartnerID]; ok {
		p.CurrentLeads++
	}
	return nil
}

func (f *fakeLeadRepo) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, assert.AnError
	}
	return l, nil
}

func (f *fakeLeadRepo) List(ctx context.Context, filters *model.LeadFilters) ([]*model.Lead, error) {
	var out []*model.Lead
	for _, l := range f.leads {
		if filters.PartnerID != uuid.Nil && l.PartnerID != filters.PartnerID {
			continue
		}
		if filters.Status != "" && l.Status != filters.Status {
			continue
		}
		if filters.Quality != "" && l.Quality != filters.Quality {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeLeadRepo) UpdateStatus(ctx context.Context, lead *model.Lead, change *model.LeadStatusChange) error {
	f.leads[lead.ID] = lead
	f.statusHist[lead.ID] = append(f.statusHist[lead.ID], change)
	return nil
}

func (f *fakeLeadRepo) UpdateQuality(ctx context.Context, lead *model.Lead, change *model.LeadQualityChange) error {
	f.leads[lead.ID] = lead
	f.qualityHist[lead.ID] = append(f.qualityHist[lead.ID], change)
	return nil
}

func (f *fakeLeadRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	f.leads[id].Notes = notes
	return nil
}

func (f *fakeLeadRepo) MarkViewed(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.leads[id].LastViewed = &at
	return nil
}

func (f *fakeLeadRepo) Reassign(ctx context.Context, lead *model.Lead, assignment *model.LeadAssignment) error {
	f.leads[lead.ID] = lead
	f.assignments[lead.ID] = append(f.assignments[lead.ID], assignment)
	if assignment.FromPartnerID != nil {
		if p, ok := f.partners.partners[*assignment.FromPartnerID]; ok && p.CurrentLeads > 0 {
			p.CurrentLeads--
		}
	}
	if p, ok := f.partners.partners[assignment.ToPartnerID]; ok {
		p.CurrentLeads++
	}
	return nil
}

func (f *fakeLeadRepo) StatusHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadStatusChange, error) {
	return f.statusHist[leadID], nil
}

func (f *fakeLeadRepo) AssignmentHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadAssignment, error) {
	return f.assignments[leadID], nil
}

func (f *fakeLeadRepo) QualityHistory(ctx context.Context, leadID uuid.UUID) ([]*model.LeadQualityChange, error) {
	return f.qualityHist[leadID], nil
}

type capturingEmitter struct {
	events []string
}

func (c *capturingEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	c.events = append(c.events, eventType)
	return nil
}

func adminClaims() *model.TokenClaims {
	return &model.TokenClaims{
		UserID: uuid.New(),
		Email:  "admin@trialbridge.test",
		Role:   model.UserRoleAdmin,
	}
}

func partnerClaims(partnerID uuid.UUID) *model.TokenClaims {
	return &model.TokenClaims{
		UserID:    uuid.New(),
		Email:     "site@trialbridge.test",
		Role:      model.UserRolePartner,
		PartnerID: &partnerID,
	}
}

func setup() (Service, *fakePartnerRepo, *fakeLeadRepo, *capturingEmitter) {
	partners := newFakePartnerRepo()
	leads := newFakeLeadRepo(partners)
	emitter := &capturingEmitter{}
	svc := NewService(leads, partners, emitter, nil)
	return svc, partners, leads, emitter
}

func TestCreateLeadRecordsAssignmentAndCounter(t *testing.T) {
	svc, partners, leads, emitter := setup()
	p := partners.add("Carolina Research")

	l, err := svc.CreateLead(context.Background(), adminClaims(), &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
		Zip:   "28202",
	}, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, l.PartnerID)
	assert.Equal(t, model.LeadStatusNew, l.Status)
	assert.Equal(t, 1, p.CurrentLeads)

	history := leads.assignments[l.ID]
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromPartnerID)
	assert.Equal(t, p.ID, history[0].ToPartnerID)

	assert.Equal(t, []string{model.EventLeadCreated}, emitter.events)
}

func TestCreateLeadUnknownPartnerGetsPlaceholder(t *testing.T) {
	svc, partners, _, _ := setup()
	unknown := uuid.New()

	l, err := svc.CreateLead(context.Background(), adminClaims(), &model.CreateLeadRequest{
		Name:  "John Roe",
		Email: "john@example.test",
	}, unknown)
	require.NoError(t, err)

	assert.Equal(t, unknown, l.PartnerID)
	placeholder := partners.partners[unknown]
	require.NotNil(t, placeholder)
	assert.Equal(t, model.DefaultMaxLeads, placeholder.MaxLeads)
	assert.Equal(t, 1, placeholder.CurrentLeads)
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	svc, partners, leads, emitter := setup()
	p := partners.add("Carolina Research")
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, p.ID)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), actor, l.ID, model.LeadStatusContacted)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), actor, l.ID, model.LeadStatusQualified)
	require.NoError(t, err)

	history := leads.statusHist[l.ID]
	require.Len(t, history, 2)
	assert.Equal(t, model.LeadStatusNew, *history[0].OldStatus)
	assert.Equal(t, model.LeadStatusContacted, history[0].NewStatus)
	assert.Equal(t, model.LeadStatusContacted, *history[1].OldStatus)
	assert.Equal(t, model.LeadStatusQualified, history[1].NewStatus)

	assert.Contains(t, emitter.events, model.EventLeadStatusChanged)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, partners, _, _ := setup()
	p := partners.add("Carolina Research")
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, p.ID)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), actor, l.ID, model.LeadStatus("archived"))
	assert.Error(t, err)
}

func TestReassignMovesOwnershipAndCounters(t *testing.T) {
	svc, partners, leads, emitter := setup()
	a := partners.add("Site A")
	b := partners.add("Site B")
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, a.CurrentLeads)

	moved, err := svc.Reassign(context.Background(), actor, l.ID, b.ID, "closer to participant")
	require.NoError(t, err)

	assert.Equal(t, b.ID, moved.PartnerID)
	assert.Equal(t, 0, a.CurrentLeads)
	assert.Equal(t, 1, b.CurrentLeads)

	history := leads.assignments[l.ID]
	require.Len(t, history, 2)
	last := history[len(history)-1]
	require.NotNil(t, last.FromPartnerID)
	assert.Equal(t, a.ID, *last.FromPartnerID)
	assert.Equal(t, b.ID, last.ToPartnerID)
	require.NotNil(t, last.Reason)
	assert.Equal(t, "closer to participant", *last.Reason)

	assert.Contains(t, emitter.events, model.EventLeadReassigned)
}

func TestReassignRequiresReason(t *testing.T) {
	svc, partners, _, _ := setup()
	a := partners.add("Site A")
	b := partners.add("Site B")
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, a.ID)
	require.NoError(t, err)

	_, err = svc.Reassign(context.Background(), actor, l.ID, b.ID, "")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrBadRequest, errors.Code(err))
}

func TestReassignToCurrentOwnerIsNoop(t *testing.T) {
	svc, partners, leads, _ := setup()
	a := partners.add("Site A")
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, a.ID)
	require.NoError(t, err)

	_, err = svc.Reassign(context.Background(), actor, l.ID, a.ID, "")
	require.NoError(t, err)

	assert.Len(t, leads.assignments[l.ID], 1)
	assert.Equal(t, 1, a.CurrentLeads)
}

// An unknown destination is lazily created with the default quota, the same
// way lead creation resolves its owner.
func TestReassignLazilyCreatesDestination(t *testing.T) {
	svc, partners, leads, _ := setup()
	a := partners.add("Site A")
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, a.ID)
	require.NoError(t, err)

	destID := uuid.New()
	moved, err := svc.Reassign(context.Background(), actor, l.ID, destID, "new site onboarding")
	require.NoError(t, err)

	assert.Equal(t, destID, moved.PartnerID)
	dest := partners.partners[destID]
	require.NotNil(t, dest)
	assert.Equal(t, model.DefaultMaxLeads, dest.MaxLeads)
	assert.Equal(t, 1, dest.CurrentLeads)
	assert.Equal(t, 0, a.CurrentLeads)
	assert.Len(t, leads.assignments[l.ID], 2)
}

func TestReassignRejectsInactiveDestination(t *testing.T) {
	svc, partners, _, _ := setup()
	a := partners.add("Site A")
	b := partners.add("Site B")
	b.Active = false
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, a.ID)
	require.NoError(t, err)

	_, err = svc.Reassign(context.Background(), actor, l.ID, b.ID, "capacity")
	assert.Error(t, err)
}

func TestPartnerCannotReadAnotherPartnersLead(t *testing.T) {
	svc, partners, _, _ := setup()
	a := partners.add("Site A")
	b := partners.add("Site B")

	l, err := svc.CreateLead(context.Background(), adminClaims(), &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, a.ID)
	require.NoError(t, err)

	_, err = svc.GetLead(context.Background(), partnerClaims(b.ID), l.ID)
	assert.True(t, errors.IsForbidden(err))
}

func TestListLeadsScopesPartnerCallers(t *testing.T) {
	svc, partners, _, _ := setup()
	a := partners.add("Site A")
	b := partners.add("Site B")
	admin := adminClaims()

	_, err := svc.CreateLead(context.Background(), admin, &model.CreateLeadRequest{
		Name:  "Lead A",
		Email: "a@example.test",
	}, a.ID)
	require.NoError(t, err)
	_, err = svc.CreateLead(context.Background(), admin, &model.CreateLeadRequest{
		Name:  "Lead B",
		Email: "b@example.test",
	}, b.ID)
	require.NoError(t, err)

	mine, err := svc.ListLeads(context.Background(), partnerClaims(a.ID), nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, a.ID, mine[0].PartnerID)

	// Asking for another partner's leads fails closed: empty list plus a
	// permission error.
	others, err := svc.ListLeads(context.Background(), partnerClaims(a.ID), &model.LeadFilters{PartnerID: b.ID})
	assert.True(t, errors.IsForbidden(err))
	assert.Empty(t, others)

	all, err := svc.ListLeads(context.Background(), admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateQualityAppendsHistory(t *testing.T) {
	svc, partners, leads, emitter := setup()
	p := partners.add("Site A")
	actor := adminClaims()

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, p.ID)
	require.NoError(t, err)

	updated, err := svc.UpdateQuality(context.Background(), actor, l.ID, model.LeadQualityHot)
	require.NoError(t, err)
	assert.Equal(t, model.LeadQualityHot, updated.Quality)
	assert.Len(t, leads.qualityHist[l.ID], 1)
	assert.Contains(t, emitter.events, model.EventLeadQualityChanged)

	_, err = svc.UpdateQuality(context.Background(), actor, l.ID, model.LeadQuality("glowing"))
	assert.Error(t, err)
}

func TestMarkViewedSetsTimestamp(t *testing.T) {
	svc, partners, leads, _ := setup()
	p := partners.add("Site A")
	actor := partnerClaims(p.ID)

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
	}, p.ID)
	require.NoError(t, err)
	require.Nil(t, l.LastViewed)

	require.NoError(t, svc.MarkViewed(context.Background(), actor, l.ID))
	assert.NotNil(t, leads.leads[l.ID].LastViewed)
}

// Full intake flow: geo suggestion routes a lead to the nearest partner,
// out-of-range postal codes get no suggestion, and a reassignment afterwards
// leaves history and counters consistent.
func TestIntakeSuggestCreateReassignFlow(t *testing.T) {
	svc, partners, leads, _ := setup()
	actor := adminClaims()

	p1 := partners.add("Charlotte Uptown Research")
	p1.Zip = "28202"

	matcher := geo.NewMatcher(geo.NewResolver(), 50)
	suggester := assignment.NewService(partners, matcher, 75, 90)

	suggestion, err := suggester.Suggest(context.Background(), "28203")
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, p1.ID, suggestion.Partner.ID)
	assert.Less(t, suggestion.Distance, 5.0)

	l, err := svc.CreateLead(context.Background(), actor, &model.CreateLeadRequest{
		Name:  "Jane Roe",
		Email: "jane@example.test",
		Zip:   "28203",
	}, suggestion.Partner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p1.CurrentLeads)

	noMatch, err := suggester.Suggest(context.Background(), "98101")
	require.NoError(t, err)
	assert.Nil(t, noMatch)

	p2 := partners.add("Raleigh Clinical Site")
	moved, err := svc.Reassign(context.Background(), actor, l.ID, p2.ID, "coverage gap")
	require.NoError(t, err)

	assert.Equal(t, p2.ID, moved.PartnerID)
	require.Len(t, leads.assignments[l.ID], 2)
	last := leads.assignments[l.ID][1]
	require.NotNil(t, last.FromPartnerID)
	assert.Equal(t, p1.ID, *last.FromPartnerID)
	assert.Equal(t, p2.ID, last.ToPartnerID)
	assert.Equal(t, 0, p1.CurrentLeads)
	assert.Equal(t, 1, p2.CurrentLeads)
}
