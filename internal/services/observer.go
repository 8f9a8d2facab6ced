package services

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/ports"
	"context"
	"slices"

	"go.uber.org/zap"
)

// CompetitorObservation relates a competitor's winning payment to the cost we
// predict that competitor had for the trade.
type CompetitorObservation struct {
	Company       string
	TradeID       string
	Payment       float64
	PredictedCost float64
	ProfitFactor  float64
}

// Observer estimates how much competitors mark up their costs.
// For each contract a watched competitor won, the predicted cost is the
// cheapest estimate over that competitor's fleet.
type Observer struct {
	HQ          ports.Headquarters
	Estimator   CostEstimator
	Competitors []string
	Logger      *zap.Logger

	factors map[string][]float64
}

func (o *Observer) Observe(ctx context.Context, ledger domain.AuctionLedger) []CompetitorObservation {
	out := make([]CompetitorObservation, 0)
	if len(ledger) == 0 || len(o.Competitors) == 0 || o.HQ == nil || o.Estimator == nil {
		return out
	}

	companies, err := o.HQ.GetCompanies(ctx)
	if err != nil {
		if o.Logger != nil {
			o.Logger.Warn("observe competitors: get companies", zap.Error(err))
		}
		return out
	}

	fleets := make(map[string][]*domain.Vessel, len(companies))
	for _, c := range companies {
		fleets[c.Name] = c.Fleet
	}

	if o.factors == nil {
		o.factors = make(map[string][]float64)
	}

	for _, name := range o.Competitors {
		fleet, ok := fleets[name]
		if !ok {
			continue
		}

		for _, contract := range ledger[name] {
			if contract.Trade == nil {
				continue
			}

			cost := o.cheapest(ctx, fleet, contract.Trade)
			if cost <= 0 || cost >= SentinelCost {
				continue
			}

			payment := contract.Payment.InexactFloat64()
			factor := payment / cost
			o.factors[name] = append(o.factors[name], factor)
			out = append(out, CompetitorObservation{
				Company:       name,
				TradeID:       contract.Trade.ID,
				Payment:       payment,
				PredictedCost: cost,
				ProfitFactor:  factor,
			})
		}
	}

	return out
}

func (o *Observer) cheapest(ctx context.Context, fleet []*domain.Vessel, trade *domain.Trade) float64 {
	best := SentinelCost
	for _, v := range fleet {
		if c := o.Estimator.Estimate(ctx, v, trade); c < best {
			best = c
		}
	}
	return best
}

// MeanProfitFactor averages every factor observed for company so far.
func (o *Observer) MeanProfitFactor(company string) (float64, bool) {
	fs := o.factors[company]
	if len(fs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, f := range fs {
		sum += f
	}
	return sum / float64(len(fs)), true
}

// Watched returns the competitor names with at least one observation, sorted.
func (o *Observer) Watched() []string {
	names := make([]string, 0, len(o.factors))
	for n := range o.factors {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
