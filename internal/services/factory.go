package services

import (
	"cargo-bidding-service/internal/config"
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/ports"
	"fmt"

	"go.uber.org/zap"
)

// CompanyDeps are the collaborators a Company is built around.
type CompanyDeps struct {
	Network ports.NetworkDistanceProvider
	// Optional.
	Warmer ports.DistanceWarmer
	Ledger ports.SettlementLedger
	HQ     ports.Headquarters
	Logger *zap.Logger
}

// NewCompany assembles a Company whose strategies follow policy.
func NewCompany(name string, fleet []*domain.Vessel, policy config.Policy, deps CompanyDeps) (*Company, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("new company %q: %w", name, err)
	}
	if deps.Network == nil {
		return nil, fmt.Errorf("new company %q: distance network is required", name)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("company", name))

	estimator := NewEstimator(policy.Cost, deps.Network)
	allocator := NewAllocator(policy.Allocation, estimator, deps.Network)

	c := &Company{
		Name:      name,
		Fleet:     fleet,
		Allocator: allocator,
		Bids:      BidGenerator{Markup: NewMarkup(policy.Markup)},
		Settlement: &SettlementEngine{
			Oracle:    Oracle{Policy: oraclePolicy(policy.Allocation)},
			Allocator: allocator,
			Ledger:    deps.Ledger,
			Logger:    logger,
		},
		Warmer:         deps.Warmer,
		BiddingEnabled: policy.Bidding.Enabled,
		Logger:         logger,
	}
	if !policy.Bidding.WarmDistances {
		c.Warmer = nil
	}

	if len(policy.Observe.Competitors) > 0 && deps.HQ != nil {
		c.Observer = &Observer{
			HQ:          deps.HQ,
			Estimator:   estimator,
			Competitors: policy.Observe.Competitors,
			Logger:      logger,
		}
	}

	return c, nil
}

func NewEstimator(p config.CostPolicy, network ports.NetworkDistanceProvider) CostEstimator {
	if p.Model == config.CostFlat {
		return FlatCostModel{Cost: p.FlatCost}
	}
	return FullCostModel{Network: network, FuelPrice: p.FuelPrice}
}

func NewAllocator(p config.AllocationPolicy, estimator CostEstimator, network ports.NetworkDistanceProvider) Allocator {
	switch p.Strategy {
	case config.StrategyFutureAware:
		return FutureAwareAllocator{Oracle: Oracle{Policy: AppendInsertion}, Estimator: estimator, Network: network}
	default:
		return FirstFitAllocator{Oracle: Oracle{Policy: oraclePolicy(p)}, Estimator: estimator}
	}
}

func NewMarkup(p config.MarkupPolicy) MarkupPolicy {
	switch p.Policy {
	case config.MarkupJitter:
		return NewJitterMarkup(p.Min, p.Max, p.Seed)
	case config.MarkupPassThrough:
		return PassThrough{}
	default:
		return ConstantMarkup(p.Multiplier)
	}
}

func oraclePolicy(p config.AllocationPolicy) InsertionPolicy {
	if p.Strategy == config.StrategyBestInsertion {
		return CheapestInsertion
	}
	return AppendInsertion
}
