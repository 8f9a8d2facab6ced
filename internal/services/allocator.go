package services

import (
	"cargo-bidding-service/internal/domain"
	"context"
)

// CandidatePlan is the route a vessel would follow if it won a trade,
// together with the estimated cost the bid was priced from.
type CandidatePlan struct {
	Vessel *domain.Vessel
	Route  domain.Route
	Cost   float64
}

// Allocation is the result of distributing a batch of trades over a fleet.
//
// Assignment holds the final working route of every vessel that received at
// least one trade. Plans holds, per trade id, the route right after that trade
// was inserted.
type Allocation struct {
	Assignment map[*domain.Vessel]domain.Route
	Placed     []*domain.Trade
	Costs      map[string]float64
	Plans      map[string]CandidatePlan
}

func newAllocation() Allocation {
	return Allocation{
		Assignment: make(map[*domain.Vessel]domain.Route),
		Placed:     []*domain.Trade{},
		Costs:      make(map[string]float64),
		Plans:      make(map[string]CandidatePlan),
	}
}

func (a *Allocation) place(plan CandidatePlan, trade *domain.Trade) {
	a.Assignment[plan.Vessel] = plan.Route
	a.Placed = append(a.Placed, trade)
	a.Costs[trade.ID] = plan.Cost
	a.Plans[trade.ID] = plan
}

// Allocator proposes which trades of a batch the company should bid on and
// with which vessel. Live vessel routes are never modified.
type Allocator interface {
	Allocate(ctx context.Context, trades []*domain.Trade, fleet []*domain.Vessel, future []*domain.Trade) Allocation
}

// FirstFitAllocator walks trades in input order and gives each to the first
// vessel, in fleet order, that can take it on top of what it already got in
// this batch. Unplaceable trades are dropped. The future hint is ignored.
type FirstFitAllocator struct {
	Oracle    Oracle
	Estimator CostEstimator
}

func (a FirstFitAllocator) Allocate(
	ctx context.Context,
	trades []*domain.Trade,
	fleet []*domain.Vessel,
	_ []*domain.Trade,
) Allocation {
	out := newAllocation()
	working := newWorkingSet(fleet)

	for _, trade := range dedupe(trades) {
		for _, vessel := range fleet {
			route, ok := a.Oracle.Evaluate(working.route(vessel), trade)
			if !ok {
				continue
			}

			working.set(vessel, route)
			out.place(CandidatePlan{
				Vessel: vessel,
				Route:  route,
				Cost:   a.Estimator.Estimate(ctx, vessel, trade),
			}, trade)
			break
		}
	}

	return out
}

// workingSet tracks the in-batch route of every vessel. A vessel's entry is
// its live route until the first trade lands on it; the oracle copies before
// inserting, so live routes stay untouched.
type workingSet struct {
	routes map[*domain.Vessel]domain.Route
}

func newWorkingSet(fleet []*domain.Vessel) *workingSet {
	return &workingSet{routes: make(map[*domain.Vessel]domain.Route, len(fleet))}
}

func (w *workingSet) route(v *domain.Vessel) domain.Route {
	if r, ok := w.routes[v]; ok {
		return r
	}
	if v == nil {
		return nil
	}
	return v.Schedule()
}

func (w *workingSet) set(v *domain.Vessel, r domain.Route) {
	w.routes[v] = r
}

// dedupe drops nil trades and repeated ids, keeping the first occurrence.
func dedupe(trades []*domain.Trade) []*domain.Trade {
	seen := make(map[string]struct{}, len(trades))
	out := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t == nil {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
