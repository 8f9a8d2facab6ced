package dto

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/services"
	"fmt"

	"github.com/shopspring/decimal"
)

type PreInformRequest struct {
	Trades []TradeRequest `json:"trades"`
	Time   float64        `json:"time"`
}

type InformRequest struct {
	Trades []TradeRequest `json:"trades"`
}

type BidResponse struct {
	TradeID string          `json:"trade_id"`
	Amount  decimal.Decimal `json:"amount"`
}

type InformResponse struct {
	RoundID string        `json:"round_id"`
	Bids    []BidResponse `json:"bids"`
	Skipped []string      `json:"skipped,omitempty"`
}

type ContractRequest struct {
	Trade   TradeRequest    `json:"trade"`
	Payment decimal.Decimal `json:"payment"`
}

type ReceiveRequest struct {
	Contracts     []ContractRequest            `json:"contracts"`
	AuctionLedger map[string][]ContractRequest `json:"auction_ledger,omitempty"`
}

type OutcomeResponse struct {
	TradeID  string          `json:"trade_id"`
	Vessel   string          `json:"vessel,omitempty"`
	Status   string          `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Payment  decimal.Decimal `json:"payment"`
	Fallback bool            `json:"fallback"`
}

type CompetitorResponse struct {
	Company       string  `json:"company"`
	TradeID       string  `json:"trade_id"`
	Payment       float64 `json:"payment"`
	PredictedCost float64 `json:"predicted_cost"`
	ProfitFactor  float64 `json:"profit_factor"`
}

type ReceiveResponse struct {
	RoundID     string               `json:"round_id"`
	Outcomes    []OutcomeResponse    `json:"outcomes"`
	Unscheduled []string             `json:"unscheduled"`
	Competitors []CompetitorResponse `json:"competitors,omitempty"`
}

func BidsResponse(roundID string, bids []domain.BidRequest, skipped []error) InformResponse {
	res := InformResponse{RoundID: roundID, Bids: make([]BidResponse, 0, len(bids))}
	for _, b := range bids {
		res.Bids = append(res.Bids, BidResponse{TradeID: b.Trade.ID, Amount: b.Amount})
	}
	res.Skipped = Messages(skipped)
	return res
}

// ToContracts keeps every contract, valid or not. Settlement rejects the
// invalid ones individually and still commits the rest.
func ToContracts(reqs []ContractRequest) []domain.Contract {
	out := make([]domain.Contract, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, domain.Contract{Trade: r.Trade.canonical(), Payment: r.Payment})
	}
	return out
}

// ToLedger converts competitors' contracts, leaving out those whose trade
// is invalid since no cost can be estimated for them.
func ToLedger(reqs map[string][]ContractRequest) (domain.AuctionLedger, []error) {
	if reqs == nil {
		return nil, nil
	}
	ledger := make(domain.AuctionLedger, len(reqs))
	var skipped []error
	for company, cs := range reqs {
		contracts := make([]domain.Contract, 0, len(cs))
		for i, c := range cs {
			t, err := c.Trade.ToDomain()
			if err != nil {
				skipped = append(skipped, fmt.Errorf("ledger %s at index %d: %w", company, i, err))
				continue
			}
			contracts = append(contracts, domain.Contract{Trade: t, Payment: c.Payment})
		}
		ledger[company] = contracts
	}
	return ledger, skipped
}

// Messages flattens errors for a response body.
func Messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

func SettlementResponse(r services.SettlementReport) ReceiveResponse {
	res := ReceiveResponse{
		RoundID:     r.RoundID,
		Outcomes:    make([]OutcomeResponse, 0, len(r.Outcomes)),
		Unscheduled: r.Unscheduled(),
	}
	for _, o := range r.Outcomes {
		res.Outcomes = append(res.Outcomes, OutcomeResponse{
			TradeID:  o.TradeID,
			Vessel:   o.Vessel,
			Status:   string(o.Status),
			Reason:   o.Reason,
			Payment:  o.Payment,
			Fallback: o.Fallback,
		})
	}
	for _, c := range r.Competitors {
		res.Competitors = append(res.Competitors, CompetitorResponse(c))
	}
	return res
}
