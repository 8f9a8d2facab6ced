package dto

import "cargo-bidding-service/internal/domain"

type StopResponse struct {
	Port     string  `json:"port"`
	Kind     string  `json:"kind"`
	TradeID  string  `json:"trade_id"`
	ArriveAt float64 `json:"arrive_at"`
	DepartAt float64 `json:"depart_at"`
}

type VesselResponse struct {
	Name           string         `json:"name"`
	Location       string         `json:"location"`
	AvailableAt    float64        `json:"available_at"`
	Speed          float64        `json:"speed"`
	CompletionTime *float64       `json:"completion_time"`
	Stops          []StopResponse `json:"stops"`
}

type FleetResponse struct {
	Company string           `json:"company"`
	Vessels []VesselResponse `json:"vessels"`
}

func VesselResponseFrom(v *domain.Vessel) VesselResponse {
	res := VesselResponse{
		Name:        v.Name,
		Location:    v.Location,
		AvailableAt: v.AvailableAt,
		Speed:       v.Speed,
		Stops:       []StopResponse{},
	}

	r := v.Schedule()
	if r == nil {
		return res
	}

	// infeasible routes report +Inf, which JSON cannot carry
	if ct := r.CompletionTime(); r.VerifySchedule() {
		res.CompletionTime = &ct
	}
	for _, s := range r.Stops() {
		res.Stops = append(res.Stops, StopResponse{
			Port:     s.Port,
			Kind:     string(s.Kind),
			TradeID:  s.TradeID,
			ArriveAt: s.ArriveAt,
			DepartAt: s.DepartAt,
		})
	}
	return res
}
