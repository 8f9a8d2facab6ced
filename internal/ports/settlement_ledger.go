package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementRecord is the audit entry for one contract processed at settlement.
type SettlementRecord struct {
	RoundID   string
	TradeID   string
	Vessel    string
	Status    string
	Reason    string
	Payment   decimal.Decimal
	SettledAt time.Time
}

// Port: durable log of settlement outcomes.
type SettlementLedger interface {
	Record(ctx context.Context, rec SettlementRecord) error
}
