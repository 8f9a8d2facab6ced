package repositories

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/platform/db"
	"cargo-bidding-service/internal/ports"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	sqlDB, err := db.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	x := db.Wrap(sqlDB, db.DriverSqlite)
	require.NoError(t, InitSchema(context.Background(), x))
	return x
}

var testSeed = FleetSeed{
	Ports: []PortSeed{
		{Name: "Rotterdam", Lon: 4.48, Lat: 51.92},
		{Name: "Singapore", Lon: 103.82, Lat: 1.26},
	},
	Companies: []CompanySeed{
		{
			Name: "Blue",
			Vessels: []VesselSeed{
				{
					Name: "Blue-2", Location: "Singapore", Speed: 12,
					Capacities:   map[string]float64{"oil": 100},
					LoadingRates: map[string]float64{"oil": 20},
				},
				{
					Name: "Blue-1", Location: "Rotterdam", Speed: 14, AvailableAt: 3,
					Capacities:         map[string]float64{"oil": 200, "grain": 50},
					LoadingRates:       map[string]float64{"oil": 40, "grain": 10},
					LoadingConsumption: 1.5, UnloadingConsumption: 2, LadenConsumption: 30,
				},
			},
		},
		{
			Name: "Red",
			Vessels: []VesselSeed{
				{Name: "Red-1", Location: "Rotterdam", Speed: 10, Capacities: map[string]float64{"oil": 10}, LoadingRates: map[string]float64{"oil": 5}},
			},
		},
	},
}

func TestSeedAndListFleet(t *testing.T) {
	ctx := context.Background()
	x := newTestDB(t)
	require.NoError(t, Seed(ctx, x, testSeed))

	repo := NewSQLFleetRepository(x)

	ports, err := repo.ListPorts(ctx)
	require.NoError(t, err)
	require.Len(t, ports, 2)
	assert.Equal(t, "Rotterdam", ports[0].Name)
	assert.InDelta(t, 51.92, ports[0].Location.Lat, 1e-9)

	fleet, err := repo.ListVessels(ctx, "Blue")
	require.NoError(t, err)
	require.Len(t, fleet, 2)

	// fleet order follows the seed, not the name
	assert.Equal(t, "Blue-2", fleet[0].Name)
	assert.Equal(t, "Blue-1", fleet[1].Name)

	v := fleet[1]
	assert.Equal(t, "Blue", v.Company)
	assert.Equal(t, 3.0, v.AvailableAt)
	assert.Equal(t, 50.0, v.Capacity(domain.CargoType("grain")))
	assert.Equal(t, 30.0, v.LadenConsumptionRate)
	assert.Nil(t, v.Schedule())
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	x := newTestDB(t)
	require.NoError(t, Seed(ctx, x, testSeed))
	require.NoError(t, Seed(ctx, x, testSeed))

	companies, err := NewSQLFleetRepository(x).GetCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "Blue", companies[0].Name)
	assert.Len(t, companies[0].Fleet, 2)
	assert.Equal(t, "Red", companies[1].Name)
	assert.Len(t, companies[1].Fleet, 1)
}

func TestSeedRejectsUnknownLocation(t *testing.T) {
	x := newTestDB(t)

	bad := FleetSeed{
		Ports: []PortSeed{{Name: "A"}},
		Companies: []CompanySeed{{
			Name:    "C",
			Vessels: []VesselSeed{{Name: "V", Location: "Nowhere", Speed: 10}},
		}},
	}
	err := Seed(context.Background(), x, bad)
	assert.ErrorContains(t, err, "unknown location")
}

func TestSeedFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.json")
	body := `{
		"ports": [{"name": "A", "lon": 0, "lat": 0}],
		"companies": [{"name": "C", "vessels": [
			{"name": "V", "location": "A", "speed": 10, "capacities": {"oil": 5}, "loading_rates": {"oil": 1}}
		]}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	x := newTestDB(t)
	require.NoError(t, SeedFromJSON(context.Background(), x, path))

	fleet, err := NewSQLFleetRepository(x).ListVessels(context.Background(), "C")
	require.NoError(t, err)
	require.Len(t, fleet, 1)
	assert.Equal(t, 5.0, fleet[0].Capacity("oil"))
}

func TestSettlementLedgerRecordAndList(t *testing.T) {
	ctx := context.Background()
	x := newTestDB(t)
	ledger := NewSQLSettlementLedger(x)

	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.Record(ctx, ports.SettlementRecord{
		RoundID: "r1", TradeID: "t2", Vessel: "V1", Status: "committed",
		Payment: decimal.RequireFromString("120.50"), SettledAt: at,
	}))
	require.NoError(t, ledger.Record(ctx, ports.SettlementRecord{
		RoundID: "r1", TradeID: "t1", Status: "rejected", Reason: "no feasible vessel",
		Payment: decimal.NewFromInt(10), SettledAt: at,
	}))
	// re-recording the same trade replaces the row
	require.NoError(t, ledger.Record(ctx, ports.SettlementRecord{
		RoundID: "r1", TradeID: "t1", Vessel: "V2", Status: "committed",
		Payment: decimal.NewFromInt(10), SettledAt: at,
	}))
	require.NoError(t, ledger.Record(ctx, ports.SettlementRecord{
		RoundID: "r2", TradeID: "t9", Status: "committed", Payment: decimal.Zero,
	}))

	recs, err := ledger.ListRound(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "t1", recs[0].TradeID)
	assert.Equal(t, "V2", recs[0].Vessel)
	assert.Equal(t, "committed", recs[0].Status)
	assert.True(t, recs[1].Payment.Equal(decimal.RequireFromString("120.5")))
	assert.True(t, recs[1].SettledAt.Equal(at))

	assert.Error(t, ledger.Record(ctx, ports.SettlementRecord{TradeID: "x"}))
}
