package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type CargoType string

// TimeWindow bounds when a trade's cargo may be picked up and dropped off.
// Times are simulation hours; a nil bound is unconstrained.
type TimeWindow struct {
	EarliestPickup  *float64
	LatestPickup    *float64
	EarliestDropOff *float64
	LatestDropOff   *float64
}

// Represents a request to move an amount of cargo between two ports.
// Trades are created once at the boundary and never mutated by the core.
type Trade struct {
	ID              string
	OriginPort      string
	DestinationPort string
	CargoType       CargoType
	Amount          float64
	TimeWindow      TimeWindow
}

// Validate checks the canonical shape of a trade.
func (t *Trade) Validate() error {
	if t == nil {
		return errors.New("validate trade: trade is nil")
	}
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("validate trade: id must not be empty")
	}
	if strings.TrimSpace(t.OriginPort) == "" {
		return fmt.Errorf("validate trade %s: origin port must not be empty", t.ID)
	}
	if strings.TrimSpace(t.DestinationPort) == "" {
		return fmt.Errorf("validate trade %s: destination port must not be empty", t.ID)
	}
	if t.CargoType == "" {
		return fmt.Errorf("validate trade %s: cargo type must not be empty", t.ID)
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount <= 0 {
		return fmt.Errorf("validate trade %s: amount must be positive, got %v", t.ID, t.Amount)
	}

	w := t.TimeWindow
	if w.EarliestPickup != nil && w.LatestPickup != nil && *w.EarliestPickup > *w.LatestPickup {
		return fmt.Errorf("validate trade %s: pickup window is empty", t.ID)
	}
	if w.EarliestDropOff != nil && w.LatestDropOff != nil && *w.EarliestDropOff > *w.LatestDropOff {
		return fmt.Errorf("validate trade %s: drop-off window is empty", t.ID)
	}

	return nil
}

func (t *Trade) String() string {
	return fmt.Sprintf("%s(%s->%s %s %.2f)", t.ID, t.OriginPort, t.DestinationPort, t.CargoType, t.Amount)
}
