// Package schedule provides the reference Route used by the vessels of this service.
package schedule

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"math"
)

// Tolerance for floating point capacity comparisons.
const capacityEpsilon = 1e-9

// Profile is the vessel performance data a schedule needs to time its operations.
type Profile interface {
	Capacity(cargoType domain.CargoType) float64
	LoadingTime(cargoType domain.CargoType, amount float64) (float64, error)
	TravelTime(distance float64) float64
}

// DistanceFunc returns the network distance between two ports.
type DistanceFunc func(origin, destination string) (float64, error)

// DistanceFuncFor binds a network provider to ctx for use inside schedule evaluation.
func DistanceFuncFor(ctx context.Context, provider ports.NetworkDistanceProvider) DistanceFunc {
	return func(origin, destination string) (float64, error) {
		return provider.GetNetworkDistance(ctx, origin, destination)
	}
}

type operation struct {
	kind  domain.StopKind
	trade *domain.Trade
}

func (op operation) port() string {
	if op.kind == domain.StopPickup {
		return op.trade.OriginPort
	}
	return op.trade.DestinationPort
}

// Schedule is an ordered list of pickup and drop-off operations for one vessel.
//
// Timing is derived on demand: the vessel departs from its start port at startAt,
// travels between consecutive operation ports, waits for the earliest bound of a
// time window and spends the loading time at both ends of every trade.
type Schedule struct {
	start    string
	startAt  float64
	profile  Profile
	distance DistanceFunc
	ops      []operation
}

func New(start string, startAt float64, profile Profile, distance DistanceFunc) *Schedule {
	return &Schedule{
		start:    start,
		startAt:  startAt,
		profile:  profile,
		distance: distance,
	}
}

// ForVessel creates an empty schedule starting at the vessel's location and availability time.
func ForVessel(v *domain.Vessel, distance DistanceFunc) *Schedule {
	return New(v.Location, v.AvailableAt, v, distance)
}

func (s *Schedule) Copy() domain.Route {
	ops := make([]operation, len(s.ops))
	copy(ops, s.ops)
	return &Schedule{
		start:    s.start,
		startAt:  s.startAt,
		profile:  s.profile,
		distance: s.distance,
		ops:      ops,
	}
}

func (s *Schedule) AddTransportation(trade *domain.Trade) error {
	return s.InsertTransportation(trade, len(s.ops), len(s.ops))
}

func (s *Schedule) InsertTransportation(trade *domain.Trade, pickupIdx, dropOffIdx int) error {
	if trade == nil {
		return errors.New("insert transportation: trade is nil")
	}
	if pickupIdx < 0 || dropOffIdx < pickupIdx || dropOffIdx > len(s.ops) {
		return fmt.Errorf(
			"insert transportation %s: invalid insertion pair (%d, %d) for %d operations",
			trade.ID, pickupIdx, dropOffIdx, len(s.ops),
		)
	}
	if s.profile.Capacity(trade.CargoType) <= 0 {
		return fmt.Errorf("insert transportation %s: incompatible cargo type %q", trade.ID, trade.CargoType)
	}
	for _, op := range s.ops {
		if op.trade.ID == trade.ID {
			return fmt.Errorf("insert transportation %s: trade already scheduled", trade.ID)
		}
	}

	pickup := operation{kind: domain.StopPickup, trade: trade}
	dropOff := operation{kind: domain.StopDropOff, trade: trade}

	ops := make([]operation, 0, len(s.ops)+2)
	for i := 0; i <= len(s.ops); i++ {
		if i == pickupIdx {
			ops = append(ops, pickup)
		}
		if i == dropOffIdx {
			ops = append(ops, dropOff)
		}
		if i < len(s.ops) {
			ops = append(ops, s.ops[i])
		}
	}
	s.ops = ops

	return nil
}

func (s *Schedule) VerifySchedule() bool {
	_, err := s.simulate()
	return err == nil
}

// CompletionTime returns the hour the last operation finishes, +Inf when the
// schedule cannot be timed.
func (s *Schedule) CompletionTime() float64 {
	stops, err := s.simulate()
	if err != nil {
		return math.Inf(1)
	}
	if len(stops) == 0 {
		return s.startAt
	}
	return stops[len(stops)-1].DepartAt
}

func (s *Schedule) InsertionPoints() []int {
	points := make([]int, 0, len(s.ops)+1)
	for i := 0; i <= len(s.ops); i++ {
		points = append(points, i)
	}
	return points
}

// Trades returns the scheduled trades in pickup order.
func (s *Schedule) Trades() []*domain.Trade {
	trades := make([]*domain.Trade, 0, len(s.ops)/2)
	for _, op := range s.ops {
		if op.kind == domain.StopPickup {
			trades = append(trades, op.trade)
		}
	}
	return trades
}

// Stops returns the timed operations; on an infeasible schedule only the
// operations before the violation are returned.
func (s *Schedule) Stops() []domain.Stop {
	stops, _ := s.simulate()
	return stops
}

func (s *Schedule) simulate() ([]domain.Stop, error) {
	now := s.startAt
	location := s.start

	loads := make(map[domain.CargoType]float64)
	pickedUp := make(map[string]bool, len(s.ops)/2)
	droppedOff := make(map[string]bool, len(s.ops)/2)
	stops := make([]domain.Stop, 0, len(s.ops))

	for _, op := range s.ops {
		trade := op.trade
		port := op.port()

		if port != location {
			dist, err := s.distance(location, port)
			if err != nil {
				return stops, fmt.Errorf("simulate: distance %q -> %q: %w", location, port, err)
			}
			travel := s.profile.TravelTime(dist)
			if math.IsNaN(travel) || math.IsInf(travel, 0) || travel < 0 {
				return stops, fmt.Errorf("simulate: invalid travel time %q -> %q", location, port)
			}
			now += travel
			location = port
		}
		arrive := now

		handling, err := s.profile.LoadingTime(trade.CargoType, trade.Amount)
		if err != nil {
			return stops, fmt.Errorf("simulate: trade %s: %w", trade.ID, err)
		}

		w := trade.TimeWindow
		switch op.kind {
		case domain.StopPickup:
			if pickedUp[trade.ID] {
				return stops, fmt.Errorf("simulate: trade %s picked up twice", trade.ID)
			}
			if w.EarliestPickup != nil && now < *w.EarliestPickup {
				now = *w.EarliestPickup
			}
			if w.LatestPickup != nil && now > *w.LatestPickup {
				return stops, fmt.Errorf("simulate: trade %s pickup at %.2f after %.2f", trade.ID, now, *w.LatestPickup)
			}
			now += handling
			loads[trade.CargoType] += trade.Amount
			if loads[trade.CargoType] > s.profile.Capacity(trade.CargoType)+capacityEpsilon {
				return stops, fmt.Errorf("simulate: trade %s exceeds %s capacity", trade.ID, trade.CargoType)
			}
			pickedUp[trade.ID] = true

		case domain.StopDropOff:
			if !pickedUp[trade.ID] {
				return stops, fmt.Errorf("simulate: trade %s dropped off before pickup", trade.ID)
			}
			if droppedOff[trade.ID] {
				return stops, fmt.Errorf("simulate: trade %s dropped off twice", trade.ID)
			}
			if w.EarliestDropOff != nil && now < *w.EarliestDropOff {
				now = *w.EarliestDropOff
			}
			if w.LatestDropOff != nil && now > *w.LatestDropOff {
				return stops, fmt.Errorf("simulate: trade %s drop-off at %.2f after %.2f", trade.ID, now, *w.LatestDropOff)
			}
			now += handling
			loads[trade.CargoType] -= trade.Amount
			droppedOff[trade.ID] = true
		}

		stops = append(stops, domain.Stop{
			Port:     port,
			Kind:     op.kind,
			TradeID:  trade.ID,
			ArriveAt: arrive,
			DepartAt: now,
		})
	}

	for id := range pickedUp {
		if !droppedOff[id] {
			return stops, fmt.Errorf("simulate: trade %s never dropped off", id)
		}
	}

	return stops, nil
}
