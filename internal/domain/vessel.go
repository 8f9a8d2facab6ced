package domain

import (
	"fmt"
	"math"
)

// Vessel is a fleet member owning exactly one live route.
//
// Static performance attributes drive loading durations and fuel consumption.
// The live route is replaced as a whole through SetSchedule; the core calls it
// only when a won contract is settled.
type Vessel struct {
	Name        string
	Company     string
	Location    string
	AvailableAt float64
	// Service speed in knots.
	Speed float64

	Capacities   map[CargoType]float64
	LoadingRates map[CargoType]float64 // amount per hour

	// Fuel consumed per hour of each activity (laden rate is at service speed).
	LoadingConsumptionRate   float64
	UnloadingConsumptionRate float64
	LadenConsumptionRate     float64

	schedule Route
}

func (v *Vessel) Schedule() Route { return v.schedule }

func (v *Vessel) SetSchedule(r Route) { v.schedule = r }

// Capacity returns the maximum amount of cargoType the vessel can carry, 0 if incompatible.
func (v *Vessel) Capacity(cargoType CargoType) float64 {
	return v.Capacities[cargoType]
}

// LoadingTime returns the hours needed to load amount of cargoType.
func (v *Vessel) LoadingTime(cargoType CargoType, amount float64) (float64, error) {
	rate, ok := v.LoadingRates[cargoType]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("loading time: vessel %s cannot load cargo type %q", v.Name, cargoType)
	}
	if math.IsNaN(amount) || amount < 0 {
		return 0, fmt.Errorf("loading time: vessel %s: invalid amount %v", v.Name, amount)
	}
	return amount / rate, nil
}

func (v *Vessel) LoadingConsumption(hours float64) float64 {
	return v.LoadingConsumptionRate * hours
}

func (v *Vessel) UnloadingConsumption(hours float64) float64 {
	return v.UnloadingConsumptionRate * hours
}

// TravelTime returns the hours needed to cover distance nautical miles at service speed.
func (v *Vessel) TravelTime(distance float64) float64 {
	if v.Speed <= 0 {
		return math.Inf(1)
	}
	return distance / v.Speed
}

// LadenConsumption follows the cubic speed law relative to service speed.
func (v *Vessel) LadenConsumption(hours, speed float64) float64 {
	if v.Speed <= 0 {
		return math.Inf(1)
	}
	ratio := speed / v.Speed
	return v.LadenConsumptionRate * hours * ratio * ratio * ratio
}

// Company is a participant in the auction together with its fleet.
type Company struct {
	Name  string
	Fleet []*Vessel
}
