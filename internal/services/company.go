package services

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/platform/obs"
	"cargo-bidding-service/internal/ports"
	"context"
	"slices"

	"go.uber.org/zap"
)

// Company is the decision core of one auction participant.
//
// Calls must be serialised by the caller: a round is PreInform (optional),
// Inform, then Receive. Receive closes the round whether or not Inform ran.
type Company struct {
	Name  string
	Fleet []*domain.Vessel

	Allocator  Allocator
	Bids       BidGenerator
	Settlement *SettlementEngine
	// Optional collaborators.
	Observer *Observer
	Warmer   ports.DistanceWarmer

	BiddingEnabled bool
	Logger         *zap.Logger

	future   []*domain.Trade
	futureAt float64
	round    *Round
}

func (c *Company) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// PreInform stores trades announced for a later auction. They become the
// future hint of the next round to bid, unless a settlement comes first.
func (c *Company) PreInform(trades []*domain.Trade, at float64) {
	c.future = slices.Clone(trades)
	c.futureAt = at
}

// Round returns the round in progress, nil between rounds.
func (c *Company) Round() *Round { return c.round }

// Inform opens a round for trades and returns the bids to submit.
func (c *Company) Inform(ctx context.Context, trades []*domain.Trade) []domain.BidRequest {
	round := NewRound(c.future, c.futureAt)
	c.future, c.futureAt = nil, 0
	c.round = round
	cache := round.BeginBidding()

	valid := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if err := t.Validate(); err != nil {
			c.logger().Warn("inform: trade skipped", zap.Error(err))
			continue
		}
		valid = append(valid, t)
	}
	obs.TradesOffered.Add(float64(len(valid)))

	if !c.BiddingEnabled {
		cache.Clear()
		c.logger().Info("inform: bidding disabled", zap.String("round", round.ID), zap.Int("trades", len(valid)))
		return []domain.BidRequest{}
	}

	if c.Warmer != nil {
		if err := c.Warmer.Warm(ctx, warmPairs(c.Fleet, valid, round.Future())); err != nil {
			c.logger().Warn("inform: warm distances", zap.String("round", round.ID), zap.Error(err))
		}
	}

	alloc := c.Allocator.Allocate(ctx, valid, c.Fleet, round.Future())
	bids := c.Bids.Generate(cache, alloc)

	obs.TradesPlanned.Add(float64(len(alloc.Placed)))
	obs.TradesDropped.Add(float64(len(dedupe(valid)) - len(alloc.Placed)))
	obs.BidsSubmitted.Add(float64(len(bids)))

	c.logger().Info("inform: bids generated",
		zap.String("round", round.ID),
		zap.Int("trades", len(valid)),
		zap.Int("placed", len(alloc.Placed)),
		zap.Int("bids", len(bids)),
	)

	return bids
}

// Receive settles the contracts won in the current round and drops any
// future hint still pending. When an auction ledger is given, watched
// competitors are observed too.
func (c *Company) Receive(ctx context.Context, contracts []domain.Contract, ledger domain.AuctionLedger) SettlementReport {
	round := c.round
	if round == nil {
		round = NewRound(nil, 0)
	}

	report := c.Settlement.Settle(ctx, round, c.Fleet, contracts)
	c.round = nil
	c.future, c.futureAt = nil, 0

	if ledger != nil && c.Observer != nil {
		report.Competitors = c.Observer.Observe(ctx, ledger)
	}

	c.logger().Info("receive: contracts settled",
		zap.String("round", report.RoundID),
		zap.Int("contracts", len(contracts)),
		zap.Strings("unscheduled", report.Unscheduled()),
	)

	return report
}

// warmPairs lists the distances allocation is likely to need: between every
// port a vessel may sail from and every port a new trade touches.
func warmPairs(fleet []*domain.Vessel, trades, future []*domain.Trade) []ports.DistancePair {
	from := make(map[string]struct{})
	to := make(map[string]struct{})

	for _, v := range fleet {
		if v == nil {
			continue
		}
		from[v.Location] = struct{}{}
		if r := v.Schedule(); r != nil {
			for _, s := range r.Stops() {
				from[s.Port] = struct{}{}
			}
		}
	}
	for _, t := range trades {
		from[t.OriginPort] = struct{}{}
		from[t.DestinationPort] = struct{}{}
		to[t.OriginPort] = struct{}{}
		to[t.DestinationPort] = struct{}{}
	}
	for _, t := range future {
		if t != nil {
			to[t.OriginPort] = struct{}{}
		}
	}

	pairs := make([]ports.DistancePair, 0, 2*len(from)*len(to))
	for f := range from {
		for t := range to {
			if f == t {
				continue
			}
			pairs = append(pairs,
				ports.DistancePair{Origin: f, Destination: t},
				ports.DistancePair{Origin: t, Destination: f},
			)
		}
	}
	return pairs
}
