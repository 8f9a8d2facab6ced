package handlers

import (
	"cargo-bidding-service/internal/api/dto"
	"cargo-bidding-service/internal/services"
	"net/http"
	"sync"
)

// AgentHandler exposes the company's auction callbacks over HTTP.
// The company is not safe for concurrent use, so every call holds mu.
type AgentHandler struct {
	mu      sync.Mutex
	Company *services.Company
}

func NewAgentHandler(c *services.Company) *AgentHandler {
	return &AgentHandler{Company: c}
}

func (h *AgentHandler) PreInform(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PreInformRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trades, skipped := dto.ToTrades(req.Trades)
	logSkipped(r, "pre-inform", skipped)

	h.mu.Lock()
	h.Company.PreInform(trades, req.Time)
	h.mu.Unlock()

	writeJSON(w, r, http.StatusOK, map[string]any{
		"future_trades": len(trades),
		"skipped":       dto.Messages(skipped),
	})
}

// Inform opens a round and returns the bids for the offered trades.
func (h *AgentHandler) Inform(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.InformRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trades, skipped := dto.ToTrades(req.Trades)
	logSkipped(r, "inform", skipped)

	h.mu.Lock()
	bids := h.Company.Inform(r.Context(), trades)
	roundID := h.Company.Round().ID
	h.mu.Unlock()

	writeJSON(w, r, http.StatusOK, dto.BidsResponse(roundID, bids, skipped))
}

// Receive settles the contracts won in the current round.
func (h *AgentHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ReceiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	contracts := dto.ToContracts(req.Contracts)
	ledger, skipped := dto.ToLedger(req.AuctionLedger)
	logSkipped(r, "receive", skipped)

	h.mu.Lock()
	report := h.Company.Receive(r.Context(), contracts, ledger)
	h.mu.Unlock()

	writeJSON(w, r, http.StatusOK, dto.SettlementResponse(report))
}

// Fleet lists the company's vessels with their live routes.
func (h *AgentHandler) Fleet(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	h.mu.Lock()
	res := dto.FleetResponse{
		Company: h.Company.Name,
		Vessels: make([]dto.VesselResponse, 0, len(h.Company.Fleet)),
	}
	for _, v := range h.Company.Fleet {
		res.Vessels = append(res.Vessels, dto.VesselResponseFrom(v))
	}
	h.mu.Unlock()

	writeJSON(w, r, http.StatusOK, res)
}
