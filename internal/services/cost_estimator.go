package services

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/ports"
	"context"
	"math"
)

// SentinelCost is returned when a cost cannot be estimated. It is far above
// any realistic transport cost, so bids priced from it never win.
const SentinelCost = 1e12

// CostEstimator predicts the cost of carrying a trade with a vessel.
// Failures are reported as SentinelCost, never as an error.
type CostEstimator interface {
	Estimate(ctx context.Context, vessel *domain.Vessel, trade *domain.Trade) float64
	Model() string
}

// FullCostModel prices the fuel burnt for loading, unloading and the laden
// passage from origin to destination at service speed.
type FullCostModel struct {
	Network   ports.NetworkDistanceProvider
	FuelPrice float64
}

func (m FullCostModel) Model() string { return "full" }

func (m FullCostModel) Estimate(ctx context.Context, vessel *domain.Vessel, trade *domain.Trade) float64 {
	if vessel == nil || trade == nil || m.Network == nil {
		return SentinelCost
	}
	if trade.Validate() != nil {
		return SentinelCost
	}

	handling, err := vessel.LoadingTime(trade.CargoType, trade.Amount)
	if err != nil {
		return SentinelCost
	}

	dist, err := m.Network.GetNetworkDistance(ctx, trade.OriginPort, trade.DestinationPort)
	if err != nil || math.IsNaN(dist) || dist < 0 {
		return SentinelCost
	}
	travel := vessel.TravelTime(dist)

	consumption := vessel.LoadingConsumption(handling) +
		vessel.UnloadingConsumption(handling) +
		vessel.LadenConsumption(travel, vessel.Speed)

	return sanitize(consumption * m.FuelPrice)
}

// FlatCostModel charges the same cost for every trade a vessel can carry.
type FlatCostModel struct {
	Cost float64
}

func (m FlatCostModel) Model() string { return "flat" }

func (m FlatCostModel) Estimate(_ context.Context, vessel *domain.Vessel, trade *domain.Trade) float64 {
	if vessel == nil || trade == nil || trade.Validate() != nil {
		return SentinelCost
	}
	if vessel.Capacity(trade.CargoType) <= 0 {
		return SentinelCost
	}
	return sanitize(m.Cost)
}

func sanitize(cost float64) float64 {
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 || cost >= SentinelCost {
		return SentinelCost
	}
	return cost
}
