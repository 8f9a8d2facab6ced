package repositories

import (
	"cargo-bidding-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type settlementRow struct {
	RoundID   string `db:"round_id"`
	TradeID   string `db:"trade_id"`
	Vessel    string `db:"vessel"`
	Status    string `db:"status"`
	Reason    string `db:"reason"`
	Payment   string `db:"payment"`
	SettledAt string `db:"settled_at"`
}

// SQLSettlementLedger persists settlement outcomes, one row per round and trade.
type SQLSettlementLedger struct{ DB *sqlx.DB }

func NewSQLSettlementLedger(db *sqlx.DB) *SQLSettlementLedger {
	return &SQLSettlementLedger{DB: db}
}

func (s *SQLSettlementLedger) Record(ctx context.Context, rec ports.SettlementRecord) error {
	if s.DB == nil {
		return errors.New("settlement ledger: DB is nil")
	}
	if rec.RoundID == "" || rec.TradeID == "" {
		return errors.New("record settlement: round id and trade id are required")
	}

	settledAt := rec.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}

	row := settlementRow{
		RoundID:   rec.RoundID,
		TradeID:   rec.TradeID,
		Vessel:    rec.Vessel,
		Status:    rec.Status,
		Reason:    rec.Reason,
		Payment:   rec.Payment.String(),
		SettledAt: settledAt.UTC().Format(time.RFC3339Nano),
	}

	query := `
	INSERT INTO settlements (round_id, trade_id, vessel, status, reason, payment, settled_at)
	VALUES (:round_id, :trade_id, :vessel, :status, :reason, :payment, :settled_at)
	ON CONFLICT (round_id, trade_id) DO UPDATE
	SET vessel = excluded.vessel,
		status = excluded.status,
		reason = excluded.reason,
		payment = excluded.payment,
		settled_at = excluded.settled_at;
	`
	if _, err := s.DB.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("record settlement round=%s trade=%s: %w", rec.RoundID, rec.TradeID, err)
	}

	return nil
}

// ListRound returns the records of one round ordered by trade id.
func (s *SQLSettlementLedger) ListRound(ctx context.Context, roundID string) ([]ports.SettlementRecord, error) {
	if s.DB == nil {
		return nil, errors.New("settlement ledger: DB is nil")
	}

	var rows []settlementRow
	query := s.DB.Rebind(`
	SELECT round_id, trade_id, vessel, status, reason, payment, settled_at
	FROM settlements
	WHERE round_id = ?
	ORDER BY trade_id;
	`)
	if err := s.DB.SelectContext(ctx, &rows, query, roundID); err != nil {
		return nil, fmt.Errorf("list settlements: query settlements table: %w", err)
	}

	out := make([]ports.SettlementRecord, 0, len(rows))
	for _, r := range rows {
		payment, err := decimal.NewFromString(r.Payment)
		if err != nil {
			return nil, fmt.Errorf("list settlements: trade %s: parse payment: %w", r.TradeID, err)
		}
		at, err := time.Parse(time.RFC3339Nano, r.SettledAt)
		if err != nil {
			return nil, fmt.Errorf("list settlements: trade %s: parse settled_at: %w", r.TradeID, err)
		}
		out = append(out, ports.SettlementRecord{
			RoundID:   r.RoundID,
			TradeID:   r.TradeID,
			Vessel:    r.Vessel,
			Status:    r.Status,
			Reason:    r.Reason,
			Payment:   payment,
			SettledAt: at,
		})
	}

	return out, nil
}
