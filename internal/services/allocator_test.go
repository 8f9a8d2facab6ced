package services

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/ports"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstFit(net ports.NetworkDistanceProvider, policy InsertionPolicy) FirstFitAllocator {
	return FirstFitAllocator{
		Oracle:    Oracle{Policy: policy},
		Estimator: FullCostModel{Network: net, FuelPrice: 1},
	}
}

func TestFirstFitPlacesFeasibleTrade(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	tr := newTrade("A1", "A", "B", 50)

	alloc := firstFit(net, AppendInsertion).Allocate(context.Background(), []*domain.Trade{tr}, []*domain.Vessel{v}, nil)

	assert.Equal(t, []string{"A1"}, tradeIDs(alloc.Placed))
	require.Contains(t, alloc.Assignment, v)
	assert.Equal(t, []string{"A1"}, tradeIDs(alloc.Assignment[v].Trades()))
	assert.Greater(t, alloc.Costs["A1"], 0.0)
	assert.Same(t, v, alloc.Plans["A1"].Vessel)

	// the live route is untouched
	assert.Empty(t, v.Schedule().Trades())
}

func TestFirstFitFullyBookedVessel(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	book(v, newTrade("t0", "A", "B", 50))

	tr := newTrade("B1", "C", "A", 10)
	tr.TimeWindow.LatestPickup = hours(4)

	for _, policy := range []InsertionPolicy{AppendInsertion, CheapestInsertion} {
		alloc := firstFit(net, policy).Allocate(context.Background(), []*domain.Trade{tr}, []*domain.Vessel{v}, nil)

		assert.Empty(t, alloc.Placed, policy.String())
		assert.Empty(t, alloc.Assignment, policy.String())
		assert.Empty(t, alloc.Costs, policy.String())
	}
}

func TestFirstFitKeepsFirstFeasibleOfCompetingTrades(t *testing.T) {
	net := testNetwork()

	mk := func(id string) *domain.Trade {
		tr := newTrade(id, "A", "B", 50)
		tr.TimeWindow.LatestDropOff = hours(11.5)
		return tr
	}
	t1, t2 := mk("t1"), mk("t2")

	alloc := firstFit(net, AppendInsertion).Allocate(context.Background(), []*domain.Trade{t1, t2}, []*domain.Vessel{newVessel("V1", net)}, nil)
	assert.Equal(t, []string{"t1"}, tradeIDs(alloc.Placed))

	alloc = firstFit(net, AppendInsertion).Allocate(context.Background(), []*domain.Trade{t2, t1}, []*domain.Vessel{newVessel("V1", net)}, nil)
	assert.Equal(t, []string{"t2"}, tradeIDs(alloc.Placed))
}

func TestFirstFitFleetOrderAndCumulativeRoutes(t *testing.T) {
	net := testNetwork()
	grain := newVessel("G1", net)
	grain.Capacities = map[domain.CargoType]float64{"grain": 100}
	v1 := newVessel("V1", net)
	v2 := newVessel("V2", net)
	fleet := []*domain.Vessel{grain, v1, v2}

	trades := []*domain.Trade{
		newTrade("t1", "A", "B", 60),
		newTrade("t2", "B", "C", 60),
		newTrade("t3", "A", "C", 60),
	}
	// all sequential on V1 since each 60 fits alone
	alloc := firstFit(net, AppendInsertion).Allocate(context.Background(), trades, fleet, nil)

	assert.Equal(t, []string{"t1", "t2", "t3"}, tradeIDs(alloc.Placed))
	assert.NotContains(t, alloc.Assignment, grain)
	assert.NotContains(t, alloc.Assignment, v2)
	assert.Equal(t, []string{"t1", "t2", "t3"}, tradeIDs(alloc.Assignment[v1].Trades()))

	// plans are snapshots taken right after each insertion
	assert.Equal(t, []string{"t1"}, tradeIDs(alloc.Plans["t1"].Route.Trades()))
	assert.Equal(t, []string{"t1", "t2"}, tradeIDs(alloc.Plans["t2"].Route.Trades()))
	assert.Same(t, alloc.Assignment[v1], alloc.Plans["t3"].Route)

	for _, r := range alloc.Assignment {
		assert.True(t, r.VerifySchedule())
	}
}

func TestFirstFitSpillsToNextVessel(t *testing.T) {
	net := testNetwork()
	v1 := newVessel("V1", net)
	v2 := newVessel("V2", net)

	mk := func(id string) *domain.Trade {
		tr := newTrade(id, "A", "B", 50)
		tr.TimeWindow.LatestDropOff = hours(11.5)
		return tr
	}

	alloc := firstFit(net, AppendInsertion).Allocate(context.Background(), []*domain.Trade{mk("t1"), mk("t2")}, []*domain.Vessel{v1, v2}, nil)

	assert.Equal(t, []string{"t1", "t2"}, tradeIDs(alloc.Placed))
	assert.Same(t, v1, alloc.Plans["t1"].Vessel)
	assert.Same(t, v2, alloc.Plans["t2"].Vessel)
}

func TestAllocateIsIdempotent(t *testing.T) {
	net := testNetwork()
	fleet := []*domain.Vessel{newVessel("V1", net), newVessel("V2", net)}
	book(fleet[0], newTrade("t0", "B", "C", 30))

	trades := []*domain.Trade{
		newTrade("t1", "A", "B", 50),
		newTrade("t2", "C", "D", 80),
		newTrade("t3", "D", "A", 40),
	}

	allocators := map[string]Allocator{
		"first_fit":      firstFit(net, AppendInsertion),
		"best_insertion": firstFit(net, CheapestInsertion),
		"future_aware": FutureAwareAllocator{
			Oracle:    Oracle{},
			Estimator: FullCostModel{Network: net, FuelPrice: 1},
			Network:   net,
		},
	}

	for name, a := range allocators {
		t.Run(name, func(t *testing.T) {
			first := a.Allocate(context.Background(), trades, fleet, trades[:1])
			second := a.Allocate(context.Background(), trades, fleet, trades[:1])

			assert.Equal(t, tradeIDs(first.Placed), tradeIDs(second.Placed))
			assert.Equal(t, first.Costs, second.Costs)

			assert.Equal(t, []string{"t0"}, tradeIDs(fleet[0].Schedule().Trades()))
			assert.Empty(t, fleet[1].Schedule().Trades())

			// every proposed route is feasible and extends the live one
			for v, r := range first.Assignment {
				assert.True(t, r.VerifySchedule())
				assert.Subset(t, tradeIDs(r.Trades()), tradeIDs(v.Schedule().Trades()))
			}
		})
	}
}

func TestAllocateDuplicateTradeIDs(t *testing.T) {
	net := testNetwork()
	first := newTrade("dup", "A", "B", 50)
	second := newTrade("dup", "C", "D", 10)

	alloc := firstFit(net, AppendInsertion).Allocate(context.Background(), []*domain.Trade{first, nil, second}, []*domain.Vessel{newVessel("V1", net)}, nil)

	require.Len(t, alloc.Placed, 1)
	assert.Same(t, first, alloc.Placed[0])
}

func TestFutureAwarePrefersTradesEndingNearFutureOrigins(t *testing.T) {
	net := testNetwork()
	a := FutureAwareAllocator{
		Oracle:    Oracle{},
		Estimator: FullCostModel{Network: net, FuelPrice: 1},
		Network:   net,
	}

	toB := newTrade("toB", "A", "B", 50)
	toC := newTrade("toC", "A", "C", 50)
	future := []*domain.Trade{newTrade("f1", "D", "A", 10), newTrade("f2", "C", "B", 10)}

	alloc := a.Allocate(context.Background(), []*domain.Trade{toB, toC}, []*domain.Vessel{newVessel("V1", net)}, future)

	// one trade per vessel, and toC ends where f2 starts
	assert.Equal(t, []string{"toC"}, tradeIDs(alloc.Placed))
}

func TestFutureAwareWithoutFutureUsesInputOrder(t *testing.T) {
	net := testNetwork()
	a := FutureAwareAllocator{
		Oracle:    Oracle{},
		Estimator: FullCostModel{Network: net, FuelPrice: 1},
		Network:   net,
	}
	v1, v2 := newVessel("V1", net), newVessel("V2", net)

	big := newTrade("big", "A", "B", 500)
	t1 := newTrade("t1", "A", "B", 50)
	t2 := newTrade("t2", "A", "C", 50)
	t3 := newTrade("t3", "C", "D", 50)

	alloc := a.Allocate(context.Background(), []*domain.Trade{big, t1, t2, t3}, []*domain.Vessel{v1, v2}, nil)

	assert.Equal(t, []string{"t1", "t2"}, tradeIDs(alloc.Placed))
	assert.Same(t, v1, alloc.Plans["t1"].Vessel)
	assert.Same(t, v2, alloc.Plans["t2"].Vessel)
	assert.Len(t, alloc.Assignment[v1].Trades(), 1)
}

func TestFutureAwareUnknownDistancesSortLast(t *testing.T) {
	net := testNetwork()
	a := FutureAwareAllocator{
		Oracle:    Oracle{},
		Estimator: FullCostModel{Network: net, FuelPrice: 1},
		Network:   net,
	}

	// E is not on the network
	unranked := newTrade("u", "A", "B", 10)
	ranked := newTrade("r", "A", "D", 10)
	future := []*domain.Trade{newTrade("f", "E", "A", 10), newTrade("g", "C", "A", 10)}

	order := a.rank(context.Background(), []*domain.Trade{unranked, ranked}, future)
	// D->C 60 < B->C 80
	assert.Equal(t, []string{"r", "u"}, tradeIDs(order))

	onlyUnknown := []*domain.Trade{newTrade("f", "E", "A", 10)}
	order = a.rank(context.Background(), []*domain.Trade{ranked, unranked}, onlyUnknown)
	assert.Equal(t, []string{"r", "u"}, tradeIDs(order))
}
