package geo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trialbridge/lead-api/internal/model"
)

func newPartner(zip string, radius *float64) *model.Partner {
	return &model.Partner{
		Base:          model.Base{ID: uuid.New()},
		Name:          "Site " + zip,
		Active:        true,
		Zip:           zip,
		ServiceRadius: radius,
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Coordinate{35.2271, -80.8431}
	b := Coordinate{40.7506, -73.9971}

	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestDistanceZeroForSamePoint(t *testing.T) {
	p := Coordinate{35.2271, -80.8431}
	assert.InDelta(t, 0.0, Distance(p, p), 1e-9)
}

func TestDistanceKnownPair(t *testing.T) {
	// Uptown Charlotte to Dilworth, a couple of miles apart.
	d := Distance(Coordinate{35.2271, -80.8431}, Coordinate{35.2080, -80.8570})
	assert.Greater(t, d, 0.0)
	assert.Less(t, d, 5.0)
}

func TestResolverRejectsBadCodes(t *testing.T) {
	r := NewResolver()

	_, ok := r.Resolve("123")
	assert.False(t, ok)
	_, ok = r.Resolve("")
	assert.False(t, ok)
}

func TestResolverFallbackIsDeterministic(t *testing.T) {
	r := NewResolver()

	first, ok := r.Resolve("99999")
	require.True(t, ok)
	second, ok := r.Resolve("99999")
	require.True(t, ok)

	assert.Equal(t, first, second)

	other, ok := NewResolver().Resolve("99999")
	require.True(t, ok)
	assert.Equal(t, first, other)
}

func TestNearestPicksClosestPartner(t *testing.T) {
	m := NewMatcher(NewResolver(), 50)

	near := newPartner("28203", nil)
	far := newPartner("28210", nil)

	match := m.Nearest("28202", []*model.Partner{far, near})
	require.NotNil(t, match)
	assert.Equal(t, near.ID, match.Partner.ID)
	assert.Less(t, match.Distance, 5.0)
}

func TestNearestHonorsServiceRadius(t *testing.T) {
	m := NewMatcher(NewResolver(), 50)

	tiny := 0.1
	p := newPartner("28210", &tiny)

	// Partner's own radius is too small to cover the uptown code.
	assert.Nil(t, m.Nearest("28202", []*model.Partner{p}))

	wide := 100.0
	p.ServiceRadius = &wide
	match := m.Nearest("28202", []*model.Partner{p})
	require.NotNil(t, match)
	assert.Equal(t, p.ID, match.Partner.ID)
}

func TestNearestSkipsInactiveAndUnlocatable(t *testing.T) {
	m := NewMatcher(NewResolver(), 50)

	inactive := newPartner("28203", nil)
	inactive.Active = false
	noZip := newPartner("", nil)

	assert.Nil(t, m.Nearest("28202", []*model.Partner{inactive, noZip}))
	assert.Nil(t, m.Nearest("28202", nil))
}

func TestNearestTieBreaksOnPartnerID(t *testing.T) {
	m := NewMatcher(NewResolver(), 50)

	a := newPartner("28203", nil)
	b := newPartner("28203", nil)

	want := a
	if b.ID.String() < a.ID.String() {
		want = b
	}

	first := m.Nearest("28202", []*model.Partner{a, b})
	second := m.Nearest("28202", []*model.Partner{b, a})

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, want.ID, first.Partner.ID)
	assert.Equal(t, want.ID, second.Partner.ID)
}

func TestNearestOutOfDefaultRadius(t *testing.T) {
	m := NewMatcher(NewResolver(), 50)

	seattle := newPartner("98101", nil)
	assert.Nil(t, m.Nearest("28202", []*model.Partner{seattle}))
}
