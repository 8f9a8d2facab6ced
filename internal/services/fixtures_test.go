package services

import (
	"cargo-bidding-service/internal/adapters/distance"
	"cargo-bidding-service/internal/adapters/schedule"
	"cargo-bidding-service/internal/domain"
	"context"
)

func testNetwork() *distance.MockNetwork {
	return distance.NewMockNetwork([]distance.MockPair{
		{From: "A", To: "B", NauticalMiles: 100},
		{From: "A", To: "C", NauticalMiles: 50},
		{From: "B", To: "C", NauticalMiles: 80},
		{From: "A", To: "D", NauticalMiles: 200},
		{From: "B", To: "D", NauticalMiles: 120},
		{From: "C", To: "D", NauticalMiles: 60},
	})
}

// newVessel returns an oil carrier at A: 10 knots, 100 capacity, 1h to
// handle 50 units, 1 fuel/h handling and 2 fuel/h laden.
func newVessel(name string, network *distance.MockNetwork) *domain.Vessel {
	v := &domain.Vessel{
		Name:                     name,
		Company:                  "Blue",
		Location:                 "A",
		Speed:                    10,
		Capacities:               map[domain.CargoType]float64{"oil": 100},
		LoadingRates:             map[domain.CargoType]float64{"oil": 50},
		LoadingConsumptionRate:   1,
		UnloadingConsumptionRate: 1,
		LadenConsumptionRate:     2,
	}
	v.SetSchedule(schedule.ForVessel(v, schedule.DistanceFuncFor(context.Background(), network)))
	return v
}

func newTrade(id, origin, destination string, amount float64) *domain.Trade {
	return &domain.Trade{
		ID:              id,
		OriginPort:      origin,
		DestinationPort: destination,
		CargoType:       "oil",
		Amount:          amount,
	}
}

func hours(f float64) *float64 { return &f }

func tradeIDs(trades []*domain.Trade) []string {
	ids := make([]string, 0, len(trades))
	for _, t := range trades {
		ids = append(ids, t.ID)
	}
	return ids
}

// book appends trades to the vessel's live route.
func book(v *domain.Vessel, trades ...*domain.Trade) {
	r := v.Schedule().Copy()
	for _, t := range trades {
		if err := r.AddTransportation(t); err != nil {
			panic(err)
		}
	}
	v.SetSchedule(r)
}

// panicRoute blows up on any mutation.
type panicRoute struct{ domain.Route }

func (p panicRoute) Copy() domain.Route { return p }
func (p panicRoute) AddTransportation(*domain.Trade) error {
	panic("boom")
}
func (p panicRoute) InsertTransportation(*domain.Trade, int, int) error {
	panic("boom")
}
func (p panicRoute) InsertionPoints() []int { return []int{0} }

// pointlessRoute is a working route that cannot enumerate insertion points.
type pointlessRoute struct {
	domain.Route
	panics bool
}

func (p pointlessRoute) InsertionPoints() []int {
	if p.panics {
		panic("boom")
	}
	return nil
}
