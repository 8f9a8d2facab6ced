package services

import (
	"cargo-bidding-service/internal/adapters/distance"
	"cargo-bidding-service/internal/config"
	"cargo-bidding-service/internal/domain"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInformWithBiddingDisabled(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	c, _ := newTestCompany(t, net, func(p *config.Policy) { p.Bidding.Enabled = false }, v)

	bids := c.Inform(context.Background(), []*domain.Trade{newTrade("t1", "A", "B", 50)})

	assert.Empty(t, bids)
	require.NotNil(t, c.Round())
	assert.Equal(t, 0, c.Round().Plans().Len())

	// won trades are still scheduled through the fallback path
	report := c.Receive(context.Background(), []domain.Contract{{Trade: newTrade("t1", "A", "B", 50)}}, nil)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].Fallback)
	assert.Equal(t, StatusCommitted, report.Outcomes[0].Status)
}

func TestInformSkipsInvalidTrades(t *testing.T) {
	net := testNetwork()
	c, _ := newTestCompany(t, net, nil, newVessel("V1", net))

	bids := c.Inform(context.Background(), []*domain.Trade{
		nil,
		newTrade("", "A", "B", 10),
		newTrade("ok", "A", "B", 10),
	})

	require.Len(t, bids, 1)
	assert.Equal(t, "ok", bids[0].Trade.ID)
}

func TestPreInformFeedsNextRound(t *testing.T) {
	net := testNetwork()
	c, _ := newTestCompany(t, net, func(p *config.Policy) {
		p.Allocation.Strategy = config.StrategyFutureAware
	}, newVessel("V1", net))

	c.PreInform([]*domain.Trade{newTrade("f", "C", "A", 10)}, 3)

	bids := c.Inform(context.Background(), []*domain.Trade{
		newTrade("toB", "A", "B", 50),
		newTrade("toC", "A", "C", 50),
	})
	require.Len(t, bids, 1)
	assert.Equal(t, "toC", bids[0].Trade.ID)
	assert.Equal(t, 3.0, c.Round().FutureAt())

	c.Receive(context.Background(), contractsFor(bids), nil)

	// the hint was consumed by the previous round
	bids = c.Inform(context.Background(), []*domain.Trade{
		newTrade("toB2", "A", "B", 10),
		newTrade("toC2", "A", "C", 10),
	})
	require.Len(t, bids, 1)
	assert.Equal(t, "toB2", bids[0].Trade.ID)
	assert.Empty(t, c.Round().Future())
}

func TestReceiveDropsPendingFutureHint(t *testing.T) {
	net := testNetwork()
	c, _ := newTestCompany(t, net, func(p *config.Policy) {
		p.Allocation.Strategy = config.StrategyFutureAware
	}, newVessel("V1", net))

	bids := c.Inform(context.Background(), []*domain.Trade{newTrade("t1", "A", "B", 50)})
	require.Len(t, bids, 1)

	// announced between bidding and settlement
	c.PreInform([]*domain.Trade{newTrade("f", "C", "A", 10)}, 3)
	c.Receive(context.Background(), contractsFor(bids), nil)

	bids = c.Inform(context.Background(), []*domain.Trade{
		newTrade("toB", "A", "B", 10),
		newTrade("toC", "A", "C", 10),
	})
	require.Len(t, bids, 1)
	assert.Equal(t, "toB", bids[0].Trade.ID)
	assert.Empty(t, c.Round().Future())
	assert.Zero(t, c.Round().FutureAt())
}

func TestInformWarmsDistances(t *testing.T) {
	net := testNetwork()
	memo := distance.NewMemo(net, 2)

	policy := config.DefaultPolicy()
	c, err := NewCompany("Blue", []*domain.Vessel{newVessel("V1", net)}, policy, CompanyDeps{
		Network: memo,
		Warmer:  memo,
	})
	require.NoError(t, err)

	bids := c.Inform(context.Background(), []*domain.Trade{newTrade("t1", "A", "B", 50)})
	require.Len(t, bids, 1)
	assert.Equal(t, 2, memo.Len())
}

type fakeHQ struct {
	companies []domain.Company
	err       error
}

func (h fakeHQ) GetCompanies(context.Context) ([]domain.Company, error) {
	return h.companies, h.err
}

func TestReceiveObservesCompetitors(t *testing.T) {
	net := testNetwork()
	slow := newVessel("R-slow", net)
	slow.LadenConsumptionRate = 10
	fast := newVessel("R-fast", net)

	policy := config.DefaultPolicy()
	policy.Cost.FuelPrice = 3
	policy.Observe.Competitors = []string{"Rival", "Ghost"}

	c, err := NewCompany("Blue", []*domain.Vessel{newVessel("V1", net)}, policy, CompanyDeps{
		Network: net,
		HQ:      fakeHQ{companies: []domain.Company{{Name: "Rival", Fleet: []*domain.Vessel{slow, fast}}}},
	})
	require.NoError(t, err)
	require.NotNil(t, c.Observer)

	ledger := domain.AuctionLedger{
		"Rival": {
			{Trade: newTrade("x1", "A", "B", 50), Payment: decimal.NewFromInt(132)},
			{Trade: newTrade("x2", "A", "Nowhere", 50), Payment: decimal.NewFromInt(10)},
		},
		"Ghost": {{Trade: newTrade("x3", "A", "B", 50), Payment: decimal.NewFromInt(1)}},
		"Blue":  {{Trade: newTrade("mine", "A", "B", 50), Payment: decimal.NewFromInt(80)}},
	}

	report := c.Receive(context.Background(), ledger["Blue"], ledger)

	require.Len(t, report.Competitors, 1)
	obs := report.Competitors[0]
	assert.Equal(t, "Rival", obs.Company)
	assert.Equal(t, "x1", obs.TradeID)
	// cheapest rival vessel costs 66
	assert.InDelta(t, 66.0, obs.PredictedCost, 1e-9)
	assert.InDelta(t, 2.0, obs.ProfitFactor, 1e-9)

	mean, ok := c.Observer.MeanProfitFactor("Rival")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, mean, 1e-9)
	_, ok = c.Observer.MeanProfitFactor("Ghost")
	assert.False(t, ok)
	assert.Equal(t, []string{"Rival"}, c.Observer.Watched())
}

func TestObserverToleratesHeadquartersFailure(t *testing.T) {
	o := &Observer{
		HQ:          fakeHQ{err: errors.New("offline")},
		Estimator:   FlatCostModel{Cost: 1},
		Competitors: []string{"Rival"},
	}
	got := o.Observe(context.Background(), domain.AuctionLedger{"Rival": {{Trade: newTrade("x", "A", "B", 1)}}})
	assert.Empty(t, got)
}

func TestNewCompanyFromPolicy(t *testing.T) {
	net := testNetwork()

	p := config.DefaultPolicy()
	c, err := NewCompany("Blue", nil, p, CompanyDeps{Network: net})
	require.NoError(t, err)
	assert.IsType(t, FirstFitAllocator{}, c.Allocator)
	assert.Equal(t, AppendInsertion, c.Allocator.(FirstFitAllocator).Oracle.Policy)
	assert.Equal(t, ConstantMarkup(1.2), c.Bids.Markup)
	assert.Nil(t, c.Observer)

	p.Allocation.Strategy = config.StrategyBestInsertion
	p.Cost.Model = config.CostFlat
	p.Markup.Policy = config.MarkupPassThrough
	c, err = NewCompany("Blue", nil, p, CompanyDeps{Network: net})
	require.NoError(t, err)
	ff := c.Allocator.(FirstFitAllocator)
	assert.Equal(t, CheapestInsertion, ff.Oracle.Policy)
	assert.Equal(t, CheapestInsertion, c.Settlement.Oracle.Policy)
	assert.Equal(t, "flat", ff.Estimator.Model())
	assert.IsType(t, PassThrough{}, c.Bids.Markup)

	p.Allocation.Strategy = config.StrategyFutureAware
	p.Markup.Policy = config.MarkupJitter
	c, err = NewCompany("Blue", nil, p, CompanyDeps{Network: net})
	require.NoError(t, err)
	assert.IsType(t, FutureAwareAllocator{}, c.Allocator)
	assert.IsType(t, &JitterMarkup{}, c.Bids.Markup)

	p.Allocation.Strategy = "nope"
	_, err = NewCompany("Blue", nil, p, CompanyDeps{Network: net})
	assert.Error(t, err)

	_, err = NewCompany("Blue", nil, config.DefaultPolicy(), CompanyDeps{})
	assert.Error(t, err)
}
