package dto

import (
	"cargo-bidding-service/internal/domain"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// tradeNamespace scopes ids derived for trades submitted without one.
var tradeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("cargo-bidding-service/trade"))

// TradeRequest is the wire shape of a trade. start_port and end_port are
// accepted as aliases of origin_port and destination_port.
type TradeRequest struct {
	ID              string   `json:"id"`
	OriginPort      string   `json:"origin_port"`
	DestinationPort string   `json:"destination_port"`
	StartPort       string   `json:"start_port,omitempty"`
	EndPort         string   `json:"end_port,omitempty"`
	CargoType       string   `json:"cargo_type"`
	Amount          float64  `json:"amount"`
	EarliestPickup  *float64 `json:"earliest_pickup,omitempty"`
	LatestPickup    *float64 `json:"latest_pickup,omitempty"`
	EarliestDropOff *float64 `json:"earliest_drop_off,omitempty"`
	LatestDropOff   *float64 `json:"latest_drop_off,omitempty"`
}

// ToDomain canonicalises the request into a validated trade.
func (r TradeRequest) ToDomain() (*domain.Trade, error) {
	t := r.canonical()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// canonical maps aliases and derives a missing id without validating.
func (r TradeRequest) canonical() *domain.Trade {
	origin := firstNonEmpty(r.OriginPort, r.StartPort)
	dest := firstNonEmpty(r.DestinationPort, r.EndPort)

	t := &domain.Trade{
		ID:              strings.TrimSpace(r.ID),
		OriginPort:      origin,
		DestinationPort: dest,
		CargoType:       domain.CargoType(strings.TrimSpace(r.CargoType)),
		Amount:          r.Amount,
		TimeWindow: domain.TimeWindow{
			EarliestPickup:  r.EarliestPickup,
			LatestPickup:    r.LatestPickup,
			EarliestDropOff: r.EarliestDropOff,
			LatestDropOff:   r.LatestDropOff,
		},
	}
	if t.ID == "" {
		t.ID = deriveID(t)
	}
	return t
}

// ToTrades converts a batch. Invalid trades are left out and reported one
// error each, so a bad entry never hides the rest of the batch.
func ToTrades(reqs []TradeRequest) ([]*domain.Trade, []error) {
	out := make([]*domain.Trade, 0, len(reqs))
	var skipped []error
	for i, r := range reqs {
		t, err := r.ToDomain()
		if err != nil {
			skipped = append(skipped, fmt.Errorf("trade at index %d: %w", i, err))
			continue
		}
		out = append(out, t)
	}
	return out, skipped
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func deriveID(t *domain.Trade) string {
	w := t.TimeWindow
	key := fmt.Sprintf("%s|%s|%s|%g|%s|%s|%s|%s",
		t.OriginPort, t.DestinationPort, t.CargoType, t.Amount,
		bound(w.EarliestPickup), bound(w.LatestPickup),
		bound(w.EarliestDropOff), bound(w.LatestDropOff),
	)
	return uuid.NewSHA1(tradeNamespace, []byte(key)).String()
}

func bound(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *f)
}
