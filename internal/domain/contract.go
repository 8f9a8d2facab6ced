package domain

import "github.com/shopspring/decimal"

// BidRequest is a priced offer for a trade submitted to the auction.
type BidRequest struct {
	Trade  *Trade
	Amount decimal.Decimal
}

// Contract is a trade won in the auction at the agreed payment.
type Contract struct {
	Trade   *Trade
	Payment decimal.Decimal
}

// AuctionLedger maps a company name to the contracts it won in a round.
type AuctionLedger map[string][]Contract
