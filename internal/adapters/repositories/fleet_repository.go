package repositories

import (
	"cargo-bidding-service/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type portRow struct {
	Name string  `db:"name"`
	Lon  float64 `db:"lon"`
	Lat  float64 `db:"lat"`
}

type companyRow struct {
	Name string `db:"name"`
	Seq  int    `db:"seq"`
}

type vesselRow struct {
	Name                 string  `db:"name"`
	Company              string  `db:"company"`
	Seq                  int     `db:"seq"`
	Location             string  `db:"location"`
	AvailableAt          float64 `db:"available_at"`
	Speed                float64 `db:"speed"`
	CapacitiesJSON       string  `db:"capacities_json"`
	LoadingRatesJSON     string  `db:"loading_rates_json"`
	LoadingConsumption   float64 `db:"loading_consumption"`
	UnloadingConsumption float64 `db:"unloading_consumption"`
	LadenConsumption     float64 `db:"laden_consumption"`
}

func (r vesselRow) toDomain() (*domain.Vessel, error) {
	caps, err := decodeRates(r.CapacitiesJSON)
	if err != nil {
		return nil, fmt.Errorf("vessel %q: decode capacities: %w", r.Name, err)
	}
	rates, err := decodeRates(r.LoadingRatesJSON)
	if err != nil {
		return nil, fmt.Errorf("vessel %q: decode loading rates: %w", r.Name, err)
	}

	return &domain.Vessel{
		Name:                     r.Name,
		Company:                  r.Company,
		Location:                 r.Location,
		AvailableAt:              r.AvailableAt,
		Speed:                    r.Speed,
		Capacities:               caps,
		LoadingRates:             rates,
		LoadingConsumptionRate:   r.LoadingConsumption,
		UnloadingConsumptionRate: r.UnloadingConsumption,
		LadenConsumptionRate:     r.LadenConsumption,
	}, nil
}

func decodeRates(raw string) (map[domain.CargoType]float64, error) {
	var m map[string]float64
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	out := make(map[domain.CargoType]float64, len(m))
	for k, v := range m {
		out[domain.CargoType(k)] = v
	}
	return out, nil
}

// SQL-backed implementation of the FleetRepository and Headquarters ports.
// Works against SQLite and Postgres through sqlx bindvar rebinding.
type SQLFleetRepository struct{ DB *sqlx.DB }

func NewSQLFleetRepository(db *sqlx.DB) *SQLFleetRepository {
	return &SQLFleetRepository{DB: db}
}

func (s *SQLFleetRepository) ListPorts(ctx context.Context) ([]domain.Port, error) {
	if s.DB == nil {
		return nil, errors.New("fleet repository: DB is nil")
	}

	var rows []portRow
	query := `
	SELECT name, lon, lat
	FROM ports
	ORDER BY name;
	`
	if err := s.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list ports: query ports table: %w", err)
	}

	ports := make([]domain.Port, 0, len(rows))
	for _, r := range rows {
		ports = append(ports, domain.Port{
			Name:     r.Name,
			Location: domain.Coordinates{Lon: r.Lon, Lat: r.Lat},
		})
	}

	return ports, nil
}

// Return the vessels of company in fleet order.
func (s *SQLFleetRepository) ListVessels(ctx context.Context, company string) ([]*domain.Vessel, error) {
	if s.DB == nil {
		return nil, errors.New("fleet repository: DB is nil")
	}

	var rows []vesselRow
	query := s.DB.Rebind(`
	SELECT
		name, company, seq, location, available_at, speed,
		capacities_json, loading_rates_json,
		loading_consumption, unloading_consumption, laden_consumption
	FROM vessels
	WHERE company = ?
	ORDER BY seq, name;
	`)
	if err := s.DB.SelectContext(ctx, &rows, query, company); err != nil {
		return nil, fmt.Errorf("list vessels: query vessels table: %w", err)
	}

	vessels := make([]*domain.Vessel, 0, len(rows))
	for _, r := range rows {
		v, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list vessels: %w", err)
		}
		vessels = append(vessels, v)
	}

	return vessels, nil
}

func (s *SQLFleetRepository) GetCompanies(ctx context.Context) ([]domain.Company, error) {
	if s.DB == nil {
		return nil, errors.New("fleet repository: DB is nil")
	}

	var rows []companyRow
	query := `
	SELECT name, seq
	FROM companies
	ORDER BY seq, name;
	`
	if err := s.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("get companies: query companies table: %w", err)
	}

	companies := make([]domain.Company, 0, len(rows))
	for _, r := range rows {
		fleet, err := s.ListVessels(ctx, r.Name)
		if err != nil {
			return nil, fmt.Errorf("get companies: %w", err)
		}
		companies = append(companies, domain.Company{Name: r.Name, Fleet: fleet})
	}

	return companies, nil
}
