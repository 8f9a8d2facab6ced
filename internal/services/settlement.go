package services

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/platform/obs"
	"cargo-bidding-service/internal/ports"
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SettlementStatus string

const (
	StatusCommitted SettlementStatus = "committed"
	StatusRejected  SettlementStatus = "rejected"
)

// Rejection reasons reported in SettlementOutcome.Reason.
const (
	ReasonInvalidContract = "invalid contract"
	ReasonDuplicate       = "trade already scheduled"
	ReasonNoVessel        = "no feasible vessel"
	ReasonStalePlan       = "rejected at settlement: stale plan"
)

// SettlementOutcome is what happened to one won contract.
type SettlementOutcome struct {
	TradeID string
	Vessel  string
	Status  SettlementStatus
	Reason  string
	Payment decimal.Decimal
	// Fallback is set when no cached plan existed and one was computed at settlement.
	Fallback bool
}

// SettlementReport lists outcomes in contract order.
type SettlementReport struct {
	RoundID     string
	Outcomes    []SettlementOutcome
	Competitors []CompetitorObservation
}

// Unscheduled returns the ids of won trades that could not be committed.
func (r SettlementReport) Unscheduled() []string {
	ids := make([]string, 0)
	for _, o := range r.Outcomes {
		if o.Status == StatusRejected {
			ids = append(ids, o.TradeID)
		}
	}
	return ids
}

// SettlementEngine commits won contracts to vessel routes.
//
// A cached plan is committed as is only while it is still the live route plus
// the won trade. Otherwise the trade is re-inserted into the planned vessel's
// current route. Trades without a plan go through Allocator against the live
// routes. Committing is the only place a live route changes.
type SettlementEngine struct {
	Oracle    Oracle
	Allocator Allocator
	Ledger    ports.SettlementLedger
	Logger    *zap.Logger
	Now       func() time.Time
}

func (e *SettlementEngine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Settle processes contracts in order and ends round afterwards.
func (e *SettlementEngine) Settle(
	ctx context.Context,
	round *Round,
	fleet []*domain.Vessel,
	contracts []domain.Contract,
) SettlementReport {
	report := SettlementReport{
		RoundID:  round.ID,
		Outcomes: make([]SettlementOutcome, 0, len(contracts)),
	}

	for _, c := range contracts {
		out := e.settleOne(ctx, round, fleet, c)
		report.Outcomes = append(report.Outcomes, out)
		obs.Settlements.WithLabelValues(string(out.Status)).Inc()
		e.record(ctx, round.ID, out)
	}

	round.End()
	return report
}

func (e *SettlementEngine) settleOne(
	ctx context.Context,
	round *Round,
	fleet []*domain.Vessel,
	c domain.Contract,
) SettlementOutcome {
	if c.Trade == nil || c.Trade.Validate() != nil {
		id := ""
		if c.Trade != nil {
			id = c.Trade.ID
		}
		return rejected(id, c.Payment, ReasonInvalidContract)
	}
	trade := c.Trade

	if holder := scheduledOn(fleet, trade.ID); holder != nil {
		return rejected(trade.ID, c.Payment, ReasonDuplicate)
	}

	plan, ok := round.Plans().Get(trade.ID)
	if ok && inFleet(fleet, plan.Vessel) {
		route, ok := e.reconcile(plan, trade)
		if !ok {
			e.logger().Info("stale plan rejected",
				zap.String("round", round.ID),
				zap.String("trade", trade.ID),
				zap.String("vessel", plan.Vessel.Name),
			)
			return rejected(trade.ID, c.Payment, ReasonStalePlan)
		}
		return commit(plan.Vessel, route, trade, c.Payment, false)
	}

	alloc := e.Allocator.Allocate(ctx, []*domain.Trade{trade}, fleet, nil)
	fallback, ok := alloc.Plans[trade.ID]
	if !ok {
		return rejected(trade.ID, c.Payment, ReasonNoVessel)
	}
	return commit(fallback.Vessel, fallback.Route, trade, c.Payment, true)
}

// reconcile returns the route to commit for a cached plan.
func (e *SettlementEngine) reconcile(plan CandidatePlan, trade *domain.Trade) (domain.Route, bool) {
	live := plan.Vessel.Schedule()
	if live == nil {
		return nil, false
	}

	if plan.Route != nil && extendsBy(plan.Route, live, trade) && verifies(plan.Route) {
		return plan.Route, true
	}

	return e.Oracle.Evaluate(live, trade)
}

// extendsBy reports whether candidate holds exactly the trades of live plus trade.
func extendsBy(candidate, live domain.Route, trade *domain.Trade) bool {
	want := make(map[string]int, len(live.Trades())+1)
	for _, t := range live.Trades() {
		want[t.ID]++
	}
	want[trade.ID]++

	got := candidate.Trades()
	if len(got) != len(live.Trades())+1 {
		return false
	}
	for _, t := range got {
		want[t.ID]--
		if want[t.ID] < 0 {
			return false
		}
	}
	return true
}

func verifies(route domain.Route) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return route.VerifySchedule()
}

func commit(vessel *domain.Vessel, route domain.Route, trade *domain.Trade, payment decimal.Decimal, fallback bool) SettlementOutcome {
	vessel.SetSchedule(route)
	return SettlementOutcome{
		TradeID:  trade.ID,
		Vessel:   vessel.Name,
		Status:   StatusCommitted,
		Payment:  payment,
		Fallback: fallback,
	}
}

func rejected(tradeID string, payment decimal.Decimal, reason string) SettlementOutcome {
	return SettlementOutcome{
		TradeID: tradeID,
		Status:  StatusRejected,
		Reason:  reason,
		Payment: payment,
	}
}

func scheduledOn(fleet []*domain.Vessel, tradeID string) *domain.Vessel {
	for _, v := range fleet {
		if v == nil || v.Schedule() == nil {
			continue
		}
		for _, t := range v.Schedule().Trades() {
			if t.ID == tradeID {
				return v
			}
		}
	}
	return nil
}

func inFleet(fleet []*domain.Vessel, vessel *domain.Vessel) bool {
	for _, v := range fleet {
		if v == vessel && v != nil {
			return true
		}
	}
	return false
}

func (e *SettlementEngine) record(ctx context.Context, roundID string, out SettlementOutcome) {
	if e.Ledger == nil {
		return
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	err := e.Ledger.Record(ctx, ports.SettlementRecord{
		RoundID:   roundID,
		TradeID:   out.TradeID,
		Vessel:    out.Vessel,
		Status:    string(out.Status),
		Reason:    out.Reason,
		Payment:   out.Payment,
		SettledAt: now(),
	})
	if err != nil {
		e.logger().Warn("settlement ledger write failed",
			zap.String("round", roundID),
			zap.String("trade", out.TradeID),
			zap.Error(err),
		)
	}
}
