package distance

import (
	"context"
	"fmt"
	"sync/atomic"
)

type MockPair struct {
	From, To      string
	NauticalMiles float64
}

// MockNetwork serves fixed port distances. Pairs are symmetric unless the
// reverse direction is listed explicitly; a port is at distance 0 from itself.
type MockNetwork struct {
	m     map[string]float64
	calls atomic.Int64
}

func NewMockNetwork(pairs []MockPair) *MockNetwork {
	m := make(map[string]float64, 2*len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = p.NauticalMiles
	}
	for _, p := range pairs {
		if _, ok := m[p.To+"|"+p.From]; !ok {
			m[p.To+"|"+p.From] = p.NauticalMiles
		}
	}
	return &MockNetwork{m: m}
}

func (p *MockNetwork) GetNetworkDistance(ctx context.Context, origin, destination string) (float64, error) {
	p.calls.Add(1)
	if origin == destination {
		return 0, nil
	}

	d, ok := p.m[origin+"|"+destination]
	if !ok {
		return 0, fmt.Errorf("missing pair %q -> %q", origin, destination)
	}

	return d, nil
}

// Calls reports how many single lookups were served.
func (p *MockNetwork) Calls() int64 { return p.calls.Load() }
