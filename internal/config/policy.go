package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Allocation strategies.
const (
	StrategyFirstFit      = "first_fit"
	StrategyBestInsertion = "best_insertion"
	StrategyFutureAware   = "future_aware"
)

// Cost models.
const (
	CostFull = "full"
	CostFlat = "flat"
)

// Markup policies.
const (
	MarkupConstant    = "constant"
	MarkupJitter      = "jitter"
	MarkupPassThrough = "pass_through"
)

// Policy selects the company's bidding behaviour.
type Policy struct {
	Allocation AllocationPolicy `yaml:"allocation"`
	Cost       CostPolicy       `yaml:"cost"`
	Markup     MarkupPolicy     `yaml:"markup"`
	Bidding    BiddingPolicy    `yaml:"bidding"`
	Observe    ObservePolicy    `yaml:"observe"`
}

type AllocationPolicy struct {
	Strategy string `yaml:"strategy"`
}

type CostPolicy struct {
	Model     string  `yaml:"model"`
	FuelPrice float64 `yaml:"fuel_price"`
	FlatCost  float64 `yaml:"flat_cost"`
}

type MarkupPolicy struct {
	Policy     string  `yaml:"policy"`
	Multiplier float64 `yaml:"multiplier"`
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
	Seed       int64   `yaml:"seed"`
}

type BiddingPolicy struct {
	Enabled bool `yaml:"enabled"`
	// WarmDistances prefetches every port pair of a batch before allocation.
	WarmDistances bool `yaml:"warm_distances"`
}

type ObservePolicy struct {
	Competitors []string `yaml:"competitors"`
}

func DefaultPolicy() Policy {
	return Policy{
		Allocation: AllocationPolicy{Strategy: StrategyFirstFit},
		Cost:       CostPolicy{Model: CostFull, FuelPrice: 1.0, FlatCost: 1.0},
		Markup:     MarkupPolicy{Policy: MarkupConstant, Multiplier: 1.2, Min: 1.1, Max: 1.5, Seed: 1},
		Bidding:    BiddingPolicy{Enabled: true, WarmDistances: true},
	}
}

// LoadPolicy reads a YAML policy on top of DefaultPolicy. A missing file
// yields the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return Policy{}, fmt.Errorf("load policy: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("load policy: parse %q: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("load policy %q: %w", path, err)
	}

	return p, nil
}

func (p Policy) Validate() error {
	switch p.Allocation.Strategy {
	case StrategyFirstFit, StrategyBestInsertion, StrategyFutureAware:
	default:
		return fmt.Errorf("unknown allocation strategy %q", p.Allocation.Strategy)
	}

	switch p.Cost.Model {
	case CostFull:
		if p.Cost.FuelPrice <= 0 {
			return fmt.Errorf("fuel_price must be positive, got %v", p.Cost.FuelPrice)
		}
	case CostFlat:
		if p.Cost.FlatCost <= 0 {
			return fmt.Errorf("flat_cost must be positive, got %v", p.Cost.FlatCost)
		}
	default:
		return fmt.Errorf("unknown cost model %q", p.Cost.Model)
	}

	switch p.Markup.Policy {
	case MarkupConstant:
		if p.Markup.Multiplier <= 0 {
			return fmt.Errorf("markup multiplier must be positive, got %v", p.Markup.Multiplier)
		}
	case MarkupJitter:
		if p.Markup.Min <= 0 || p.Markup.Max < p.Markup.Min {
			return fmt.Errorf("markup range [%v, %v] is invalid", p.Markup.Min, p.Markup.Max)
		}
	case MarkupPassThrough:
	default:
		return fmt.Errorf("unknown markup policy %q", p.Markup.Policy)
	}

	return nil
}
