package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

type PortSeed struct {
	Name string  `json:"name"`
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
}

type VesselSeed struct {
	Name                 string             `json:"name"`
	Location             string             `json:"location"`
	AvailableAt          float64            `json:"available_at"`
	Speed                float64            `json:"speed"`
	Capacities           map[string]float64 `json:"capacities"`
	LoadingRates         map[string]float64 `json:"loading_rates"`
	LoadingConsumption   float64            `json:"loading_consumption"`
	UnloadingConsumption float64            `json:"unloading_consumption"`
	LadenConsumption     float64            `json:"laden_consumption"`
}

type CompanySeed struct {
	Name    string       `json:"name"`
	Vessels []VesselSeed `json:"vessels"`
}

type FleetSeed struct {
	Ports     []PortSeed    `json:"ports"`
	Companies []CompanySeed `json:"companies"`
}

// Populate the database with ports, companies and vessels from a JSON file.
func SeedFromJSON(ctx context.Context, db *sqlx.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fleet: read %q: %w", jsonPath, err)
	}

	var data FleetSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed fleet: parse json: %w", err)
	}

	return Seed(ctx, db, data)
}

// Seed validates data and upserts it in a single transaction.
func Seed(ctx context.Context, db *sqlx.DB, data FleetSeed) error {
	ports := make([]portRow, 0, len(data.Ports))
	known := make(map[string]struct{}, len(data.Ports))
	for i, p := range data.Ports {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("seed fleet: port at index %d: name cannot be empty", i+1)
		}
		known[name] = struct{}{}
		ports = append(ports, portRow{Name: name, Lon: p.Lon, Lat: p.Lat})
	}

	companies := make([]companyRow, 0, len(data.Companies))
	vessels := make([]vesselRow, 0)
	for ci, c := range data.Companies {
		company := strings.TrimSpace(c.Name)
		if company == "" {
			return fmt.Errorf("seed fleet: company at index %d: name cannot be empty", ci+1)
		}
		companies = append(companies, companyRow{Name: company, Seq: ci})

		for vi, v := range c.Vessels {
			row, err := newVesselRow(company, vi, v)
			if err != nil {
				return fmt.Errorf("seed fleet: company %q vessel at index %d: %w", company, vi+1, err)
			}
			if _, ok := known[row.Location]; !ok {
				return fmt.Errorf("seed fleet: vessel %q: unknown location %q", row.Name, row.Location)
			}
			vessels = append(vessels, row)
		}
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	portQuery := `
	INSERT INTO ports (name, lon, lat)
	VALUES (:name, :lon, :lat)
	ON CONFLICT (name) DO UPDATE
	SET lon = excluded.lon, lat = excluded.lat;
	`
	for _, p := range ports {
		if _, err := tx.NamedExecContext(ctx, portQuery, p); err != nil {
			return fmt.Errorf("seed fleet: insert port %q: %w", p.Name, err)
		}
	}

	companyQuery := `
	INSERT INTO companies (name, seq)
	VALUES (:name, :seq)
	ON CONFLICT (name) DO UPDATE
	SET seq = excluded.seq;
	`
	for _, c := range companies {
		if _, err := tx.NamedExecContext(ctx, companyQuery, c); err != nil {
			return fmt.Errorf("seed fleet: insert company %q: %w", c.Name, err)
		}
	}

	vesselQuery := `
	INSERT INTO vessels (
		name, company, seq, location, available_at, speed,
		capacities_json, loading_rates_json,
		loading_consumption, unloading_consumption, laden_consumption
	)
	VALUES (
		:name, :company, :seq, :location, :available_at, :speed,
		:capacities_json, :loading_rates_json,
		:loading_consumption, :unloading_consumption, :laden_consumption
	)
	ON CONFLICT (name) DO UPDATE
	SET company = excluded.company,
		seq = excluded.seq,
		location = excluded.location,
		available_at = excluded.available_at,
		speed = excluded.speed,
		capacities_json = excluded.capacities_json,
		loading_rates_json = excluded.loading_rates_json,
		loading_consumption = excluded.loading_consumption,
		unloading_consumption = excluded.unloading_consumption,
		laden_consumption = excluded.laden_consumption;
	`
	for _, v := range vessels {
		if _, err := tx.NamedExecContext(ctx, vesselQuery, v); err != nil {
			return fmt.Errorf("seed fleet: insert vessel %q: %w", v.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fleet: commit tx: %w", err)
	}

	return nil
}

func newVesselRow(company string, seq int, v VesselSeed) (vesselRow, error) {
	name := strings.TrimSpace(v.Name)
	if name == "" {
		return vesselRow{}, fmt.Errorf("name cannot be empty")
	}
	if v.Speed <= 0 {
		return vesselRow{}, fmt.Errorf("vessel %q: speed must be positive", name)
	}

	caps, err := json.Marshal(v.Capacities)
	if err != nil {
		return vesselRow{}, fmt.Errorf("vessel %q: encode capacities: %w", name, err)
	}
	rates, err := json.Marshal(v.LoadingRates)
	if err != nil {
		return vesselRow{}, fmt.Errorf("vessel %q: encode loading rates: %w", name, err)
	}

	return vesselRow{
		Name:                 name,
		Company:              company,
		Seq:                  seq,
		Location:             strings.TrimSpace(v.Location),
		AvailableAt:          v.AvailableAt,
		Speed:                v.Speed,
		CapacitiesJSON:       string(caps),
		LoadingRatesJSON:     string(rates),
		LoadingConsumption:   v.LoadingConsumption,
		UnloadingConsumption: v.UnloadingConsumption,
		LadenConsumption:     v.LadenConsumption,
	}, nil
}
