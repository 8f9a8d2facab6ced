package services

import (
	"cargo-bidding-service/internal/domain"
	"slices"

	"github.com/google/uuid"
)

// PlanCache remembers, per trade id, the plan a bid was priced from.
// Entries were feasible against the live routes when they were written and
// must be re-verified before commit.
type PlanCache struct {
	plans map[string]CandidatePlan
}

func NewPlanCache() *PlanCache {
	return &PlanCache{plans: make(map[string]CandidatePlan)}
}

func (c *PlanCache) Put(tradeID string, plan CandidatePlan) {
	c.plans[tradeID] = plan
}

func (c *PlanCache) Get(tradeID string) (CandidatePlan, bool) {
	p, ok := c.plans[tradeID]
	return p, ok
}

func (c *PlanCache) Len() int { return len(c.plans) }

func (c *PlanCache) Clear() {
	clear(c.plans)
}

// Round is the state of one auction round: the announced future trades and
// the plans behind the bids placed. Nothing in it outlives End.
type Round struct {
	ID string

	future   []*domain.Trade
	futureAt float64
	plans    *PlanCache
}

// NewRound starts a round with the future trades announced for it.
func NewRound(future []*domain.Trade, futureAt float64) *Round {
	return &Round{
		ID:       uuid.NewString(),
		future:   slices.Clone(future),
		futureAt: futureAt,
		plans:    NewPlanCache(),
	}
}

func (r *Round) Future() []*domain.Trade { return r.future }

// FutureAt is the simulation time the future trades were announced at.
func (r *Round) FutureAt() float64 { return r.futureAt }

func (r *Round) Plans() *PlanCache { return r.plans }

// BeginBidding replaces the plan cache with an empty one and returns it.
func (r *Round) BeginBidding() *PlanCache {
	r.plans = NewPlanCache()
	return r.plans
}

// End drops every plan and future hint held by the round.
func (r *Round) End() {
	r.plans.Clear()
	r.future = nil
}
