package services

import (
	"cargo-bidding-service/internal/domain"
	"math"
)

// InsertionPolicy selects where the oracle places a trade inside a route.
type InsertionPolicy int

const (
	// AppendInsertion places pickup and drop-off at the end of the route.
	AppendInsertion InsertionPolicy = iota
	// CheapestInsertion tries every (pickup <= drop-off) pair of insertion
	// points and keeps the feasible route that completes earliest.
	CheapestInsertion
)

func (p InsertionPolicy) String() string {
	switch p {
	case AppendInsertion:
		return "append"
	case CheapestInsertion:
		return "cheapest"
	default:
		return "unknown"
	}
}

// Oracle answers whether a trade fits into a route.
//
// The input route is never mutated: every attempt runs on a copy. Errors and
// panics raised by the route are reported as infeasible.
type Oracle struct {
	Policy InsertionPolicy
}

// Evaluate returns the candidate route containing trade and true, or nil and
// false when no feasible placement exists.
func (o Oracle) Evaluate(route domain.Route, trade *domain.Trade) (domain.Route, bool) {
	if route == nil || trade == nil {
		return nil, false
	}

	if o.Policy == CheapestInsertion {
		return o.cheapest(route, trade)
	}

	return attempt(route, func(r domain.Route) error {
		return r.AddTransportation(trade)
	})
}

// EvaluateVessel evaluates trade against the vessel's live route.
func (o Oracle) EvaluateVessel(vessel *domain.Vessel, trade *domain.Trade) (domain.Route, bool) {
	if vessel == nil {
		return nil, false
	}
	return o.Evaluate(vessel.Schedule(), trade)
}

// cheapest never returns a placement that completes later than appending,
// and falls back to appending when the route cannot list insertion points.
func (o Oracle) cheapest(route domain.Route, trade *domain.Trade) (domain.Route, bool) {
	appended, appendOK := attempt(route, func(r domain.Route) error {
		return r.AddTransportation(trade)
	})

	points, ok := insertionPoints(route)
	if !ok || len(points) == 0 {
		return appended, appendOK
	}

	var best domain.Route
	bestTime := math.Inf(1)

	for i, p := range points {
		for _, d := range points[i:] {
			if d < p {
				continue
			}

			candidate, ok := attempt(route, func(r domain.Route) error {
				return r.InsertTransportation(trade, p, d)
			})
			if !ok {
				continue
			}

			// strict comparison keeps the first placement found on ties
			if ct := completionTime(candidate); ct < bestTime || best == nil {
				best, bestTime = candidate, ct
			}
		}
	}

	if appendOK && (best == nil || completionTime(appended) < bestTime) {
		return appended, true
	}
	return best, best != nil
}

// attempt applies insert to a copy of route and verifies the result.
func attempt(route domain.Route, insert func(domain.Route) error) (candidate domain.Route, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			candidate, ok = nil, false
		}
	}()

	c := route.Copy()
	if c == nil {
		return nil, false
	}
	if err := insert(c); err != nil {
		return nil, false
	}
	if !c.VerifySchedule() {
		return nil, false
	}

	return c, true
}

func insertionPoints(route domain.Route) (points []int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			points, ok = nil, false
		}
	}()
	return route.InsertionPoints(), true
}

func completionTime(route domain.Route) (t float64) {
	defer func() {
		if r := recover(); r != nil {
			t = math.Inf(1)
		}
	}()
	t = route.CompletionTime()
	if math.IsNaN(t) {
		return math.Inf(1)
	}
	return t
}
