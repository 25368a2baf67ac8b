package geo

import (
	"math"

	"github.com/trialbridge/lead-api/internal/model"
)

const (
	earthRadiusMiles = 3958.8

	// DefaultServiceRadius applies when a partner has no configured radius.
	DefaultServiceRadius = 50.0
)

// Distance computes the haversine great-circle distance in miles.
func Distance(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

// Match is a nearest-partner result.
type Match struct {
	Partner  *model.Partner `json:"partner"`
	Distance float64        `json:"distance"`
}

// Matcher selects the nearest eligible partner for a postal code.
type Matcher struct {
	resolver      *Resolver
	defaultRadius float64
}

func NewMatcher(resolver *Resolver, defaultRadius float64) *Matcher {
	if defaultRadius <= 0 {
		defaultRadius = DefaultServiceRadius
	}
	return &Matcher{resolver: resolver, defaultRadius: defaultRadius}
}

// Nearest returns the closest active partner whose service radius covers the
// given postal code, or nil when no partner qualifies. Partners without a
// postal code are excluded. Equal distances resolve to the smaller partner
// ID so results do not depend on input order.
func (m *Matcher) Nearest(zip string, partners []*model.Partner) *Match {
	origin, ok := m.resolver.Resolve(zip)
	if !ok {
		return nil
	}

	var best *Match
	for _, p := range partners {
		if p == nil || !p.Active || p.Zip == "" {
			continue
		}

		loc, ok := m.resolver.Resolve(p.Zip)
		if !ok {
			continue
		}

		d := Distance(origin, loc)
		radius := m.defaultRadius
		if p.ServiceRadius != nil && *p.ServiceRadius > 0 {
			radius = *p.ServiceRadius
		}
		if d > radius {
			continue
		}

		if best == nil || d < best.Distance ||
			(d == best.Distance && p.ID.String() < best.Partner.ID.String()) {
			best = &Match{Partner: p, Distance: d}
		}
	}

	return best
}
