package services

import (
	"cargo-bidding-service/internal/adapters/distance"
	"cargo-bidding-service/internal/config"
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/ports"
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryLedger struct {
	records []ports.SettlementRecord
	err     error
}

func (l *memoryLedger) Record(_ context.Context, rec ports.SettlementRecord) error {
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, rec)
	return nil
}

func newTestCompany(t *testing.T, net *distance.MockNetwork, mutate func(p *config.Policy), fleet ...*domain.Vessel) (*Company, *memoryLedger) {
	t.Helper()

	policy := config.DefaultPolicy()
	policy.Bidding.WarmDistances = false
	if mutate != nil {
		mutate(&policy)
	}

	ledger := &memoryLedger{}
	c, err := NewCompany("Blue", fleet, policy, CompanyDeps{
		Network: net,
		Ledger:  ledger,
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)
	return c, ledger
}

func contractsFor(bids []domain.BidRequest) []domain.Contract {
	out := make([]domain.Contract, 0, len(bids))
	for _, b := range bids {
		out = append(out, domain.Contract{Trade: b.Trade, Payment: b.Amount})
	}
	return out
}

func TestReceiveCommitsCachedRoutes(t *testing.T) {
	net := testNetwork()
	v1, v2 := newVessel("V1", net), newVessel("V2", net)
	c, ledger := newTestCompany(t, net, nil, v1, v2)

	trades := []*domain.Trade{
		newTrade("t1", "A", "B", 50),
		newTrade("t2", "B", "C", 50),
		newTrade("t3", "C", "D", 50),
	}
	bids := c.Inform(context.Background(), trades)
	require.Len(t, bids, 3)

	cached := make(map[string]CandidatePlan)
	for _, b := range bids {
		p, ok := c.Round().Plans().Get(b.Trade.ID)
		require.True(t, ok)
		cached[b.Trade.ID] = p
	}

	report := c.Receive(context.Background(), contractsFor(bids), nil)

	require.Len(t, report.Outcomes, 3)
	for _, o := range report.Outcomes {
		assert.Equal(t, StatusCommitted, o.Status, o.TradeID)
		assert.False(t, o.Fallback)
	}
	assert.Empty(t, report.Unscheduled())

	// the live route is exactly the last plan priced for this vessel
	assert.Same(t, cached["t3"].Route, v1.Schedule())
	assert.Equal(t, []string{"t1", "t2", "t3"}, tradeIDs(v1.Schedule().Trades()))
	assert.Empty(t, v2.Schedule().Trades())

	assert.Nil(t, c.Round())
	require.Len(t, ledger.records, 3)
	assert.Equal(t, report.RoundID, ledger.records[0].RoundID)
	assert.Equal(t, "committed", ledger.records[2].Status)
	assert.True(t, ledger.records[0].Payment.Equal(bids[0].Amount))
}

func TestReceivePartialWinReplansFromLiveRoute(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	c, _ := newTestCompany(t, net, nil, v)

	bids := c.Inform(context.Background(), []*domain.Trade{
		newTrade("t1", "A", "B", 50),
		newTrade("t2", "B", "C", 50),
	})
	require.Len(t, bids, 2)
	stale, _ := c.Round().Plans().Get("t2")

	// only the second trade is won
	report := c.Receive(context.Background(), contractsFor(bids[1:]), nil)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusCommitted, report.Outcomes[0].Status)
	assert.NotSame(t, stale.Route, v.Schedule())
	assert.Equal(t, []string{"t2"}, tradeIDs(v.Schedule().Trades()))
	assert.True(t, v.Schedule().VerifySchedule())
}

func TestReceiveRejectsStalePlan(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	c, ledger := newTestCompany(t, net, nil, v)

	tight := newTrade("tight", "A", "B", 50)
	tight.TimeWindow.LatestDropOff = hours(11.5)

	bids := c.Inform(context.Background(), []*domain.Trade{tight})
	require.Len(t, bids, 1)

	// the vessel got busy elsewhere after bidding
	book(v, newTrade("other", "A", "C", 50))
	before := v.Schedule()

	report := c.Receive(context.Background(), contractsFor(bids), nil)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, StatusRejected, report.Outcomes[0].Status)
	assert.Equal(t, ReasonStalePlan, report.Outcomes[0].Reason)
	assert.Equal(t, []string{"tight"}, report.Unscheduled())
	assert.Same(t, before, v.Schedule())

	require.Len(t, ledger.records, 1)
	assert.Equal(t, "rejected", ledger.records[0].Status)
}

func TestReceiveWithoutInformFallsBack(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	c, _ := newTestCompany(t, net, nil, v)

	report := c.Receive(context.Background(), []domain.Contract{
		{Trade: newTrade("seen-never", "C", "D", 40), Payment: decimal.NewFromInt(100)},
		{Trade: newTrade("too-big", "A", "B", 400), Payment: decimal.NewFromInt(100)},
	}, nil)

	require.Len(t, report.Outcomes, 2)

	assert.Equal(t, StatusCommitted, report.Outcomes[0].Status)
	assert.True(t, report.Outcomes[0].Fallback)
	assert.Equal(t, "V1", report.Outcomes[0].Vessel)

	assert.Equal(t, StatusRejected, report.Outcomes[1].Status)
	assert.Equal(t, ReasonNoVessel, report.Outcomes[1].Reason)

	assert.Equal(t, []string{"seen-never"}, tradeIDs(v.Schedule().Trades()))
}

func TestReceiveRejectsDuplicatesAndInvalidContracts(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	c, _ := newTestCompany(t, net, nil, v)

	tr := newTrade("t1", "A", "B", 50)
	report := c.Receive(context.Background(), []domain.Contract{
		{Trade: tr},
		{Trade: tr},
		{Trade: nil},
		{Trade: newTrade("t0", "A", "B", -1)},
	}, nil)

	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, StatusCommitted, report.Outcomes[0].Status)
	assert.Equal(t, ReasonDuplicate, report.Outcomes[1].Reason)
	assert.Equal(t, ReasonInvalidContract, report.Outcomes[2].Reason)
	assert.Equal(t, ReasonInvalidContract, report.Outcomes[3].Reason)
	assert.Len(t, v.Schedule().Trades(), 1)
}

func TestSettlementIsMonotonic(t *testing.T) {
	net := testNetwork()
	fleet := []*domain.Vessel{newVessel("V1", net), newVessel("V2", net)}
	c, _ := newTestCompany(t, net, func(p *config.Policy) {
		p.Allocation.Strategy = config.StrategyBestInsertion
	}, fleet...)

	rounds := [][]*domain.Trade{
		{newTrade("r1a", "A", "B", 50), newTrade("r1b", "C", "D", 60)},
		{newTrade("r2a", "B", "A", 40), newTrade("r2b", "D", "C", 30), newTrade("r2c", "A", "C", 20)},
		{newTrade("r3a", "C", "B", 70)},
	}

	for _, trades := range rounds {
		before := make(map[*domain.Vessel][]string, len(fleet))
		for _, v := range fleet {
			before[v] = tradeIDs(v.Schedule().Trades())
		}

		bids := c.Inform(context.Background(), trades)
		// win every other bid
		won := make([]domain.BidRequest, 0, len(bids))
		for i, b := range bids {
			if i%2 == 0 {
				won = append(won, b)
			}
		}
		c.Receive(context.Background(), contractsFor(won), nil)

		for _, v := range fleet {
			assert.Subset(t, tradeIDs(v.Schedule().Trades()), before[v], v.Name)
			assert.True(t, v.Schedule().VerifySchedule(), v.Name)
		}
	}
}

func TestRoundsAreIsolated(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	c, _ := newTestCompany(t, net, nil, v)

	tr := newTrade("t1", "A", "B", 50)
	c.Inform(context.Background(), []*domain.Trade{tr})
	c.Receive(context.Background(), nil, nil)

	// a contract from a closed round has no plan left
	report := c.Receive(context.Background(), []domain.Contract{{Trade: tr}}, nil)
	require.Len(t, report.Outcomes, 1)
	assert.True(t, report.Outcomes[0].Fallback)
}

func TestLedgerFailureDoesNotAbortSettlement(t *testing.T) {
	net := testNetwork()
	v := newVessel("V1", net)
	c, ledger := newTestCompany(t, net, nil, v)
	ledger.err = errors.New("disk full")

	report := c.Receive(context.Background(), []domain.Contract{
		{Trade: newTrade("t1", "A", "B", 50)},
		{Trade: newTrade("t2", "B", "C", 50)},
	}, nil)

	require.Len(t, report.Outcomes, 2)
	assert.Empty(t, report.Unscheduled())
	assert.Len(t, v.Schedule().Trades(), 2)
}
