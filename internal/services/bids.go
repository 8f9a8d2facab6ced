package services

import (
	"cargo-bidding-service/internal/domain"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
)

// MarkupPolicy turns an estimated cost into a bid multiplier.
type MarkupPolicy interface {
	Markup(trade *domain.Trade, cost float64) float64
	Name() string
}

// ConstantMarkup bids cost times a fixed factor.
type ConstantMarkup float64

func (m ConstantMarkup) Markup(*domain.Trade, float64) float64 { return float64(m) }
func (m ConstantMarkup) Name() string                          { return "constant" }

// PassThrough bids the estimated cost.
type PassThrough struct{}

func (PassThrough) Markup(*domain.Trade, float64) float64 { return 1.0 }
func (PassThrough) Name() string                          { return "pass_through" }

// JitterMarkup draws a factor uniformly from [Min, Max] with a seeded source,
// so a run is reproducible for a given seed.
type JitterMarkup struct {
	Min, Max float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewJitterMarkup(lo, hi float64, seed int64) *JitterMarkup {
	return &JitterMarkup{
		Min: lo,
		Max: hi,
		rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
	}
}

func (m *JitterMarkup) Markup(*domain.Trade, float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Min + m.rng.Float64()*(m.Max-m.Min)
}

func (m *JitterMarkup) Name() string { return "jitter" }

// BidGenerator prices placed trades and records the plans behind the bids.
type BidGenerator struct {
	Markup MarkupPolicy
}

// Generate returns one bid per placed trade, in placement order. Amounts are
// cost times markup rounded to cents. Every plan used is written to cache
// before returning.
func (g BidGenerator) Generate(cache *PlanCache, alloc Allocation) []domain.BidRequest {
	markup := g.Markup
	if markup == nil {
		markup = PassThrough{}
	}

	bids := make([]domain.BidRequest, 0, len(alloc.Placed))
	for _, trade := range alloc.Placed {
		plan, ok := alloc.Plans[trade.ID]
		if !ok {
			continue
		}

		cost := alloc.Costs[trade.ID]
		amount := decimal.NewFromFloat(cost).
			Mul(decimal.NewFromFloat(markup.Markup(trade, cost))).
			Round(2)

		cache.Put(trade.ID, plan)
		bids = append(bids, domain.BidRequest{Trade: trade, Amount: amount})
	}

	return bids
}
