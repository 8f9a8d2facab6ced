package services

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/ports"
	"context"
	"math"
	"slices"
)

// FutureAwareAllocator gives every vessel at most one new trade per round,
// preferring trades that end close to where announced future trades start.
//
// Vessels are served in fleet order. For each vessel the unplaced trades are
// ranked by the shortest distance from their destination to any future origin
// and the first feasible one is taken. Equal or unknown distances keep input
// order, so without future trades this is first-feasible-trade per vessel.
type FutureAwareAllocator struct {
	Oracle    Oracle
	Estimator CostEstimator
	Network   ports.NetworkDistanceProvider
}

func (a FutureAwareAllocator) Allocate(
	ctx context.Context,
	trades []*domain.Trade,
	fleet []*domain.Vessel,
	future []*domain.Trade,
) Allocation {
	out := newAllocation()
	remaining := a.rank(ctx, dedupe(trades), future)

	for _, vessel := range fleet {
		if len(remaining) == 0 {
			break
		}
		if vessel == nil {
			continue
		}

		for i, trade := range remaining {
			route, ok := a.Oracle.EvaluateVessel(vessel, trade)
			if !ok {
				continue
			}

			out.place(CandidatePlan{
				Vessel: vessel,
				Route:  route,
				Cost:   a.Estimator.Estimate(ctx, vessel, trade),
			}, trade)
			remaining = slices.Delete(remaining, i, i+1)
			break
		}
	}

	return out
}

// rank orders trades by proximity of their destination to the future origins.
// The order is vessel independent, so it is computed once per batch.
func (a FutureAwareAllocator) rank(ctx context.Context, trades, future []*domain.Trade) []*domain.Trade {
	ranked := slices.Clone(trades)
	if len(future) == 0 || a.Network == nil {
		return ranked
	}

	score := make(map[*domain.Trade]float64, len(trades))
	for _, t := range trades {
		score[t] = a.closestFutureOrigin(ctx, t, future)
	}

	slices.SortStableFunc(ranked, func(x, y *domain.Trade) int {
		sx, sy := score[x], score[y]
		switch {
		case sx < sy:
			return -1
		case sx > sy:
			return 1
		default:
			return 0
		}
	})

	return ranked
}

func (a FutureAwareAllocator) closestFutureOrigin(ctx context.Context, trade *domain.Trade, future []*domain.Trade) float64 {
	best := math.Inf(1)
	for _, f := range future {
		if f == nil {
			continue
		}
		d, err := a.Network.GetNetworkDistance(ctx, trade.DestinationPort, f.OriginPort)
		if err != nil || math.IsNaN(d) {
			continue
		}
		if d < best {
			best = d
		}
	}
	return best
}
