package ports

import (
	"cargo-bidding-service/internal/domain"
	"context"
)

// Port: a boundary for retrieving ports and fleets from a data source.
type FleetRepository interface {
	ListPorts(ctx context.Context) ([]domain.Port, error)
	// Retrieve the vessels owned by company, without live routes.
	ListVessels(ctx context.Context, company string) ([]*domain.Vessel, error)
}

// Headquarters exposes every company taking part in the auction.
// Observational strategies use it to look at competitor fleets.
type Headquarters interface {
	GetCompanies(ctx context.Context) ([]domain.Company, error)
}
