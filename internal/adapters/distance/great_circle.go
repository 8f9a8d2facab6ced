package distance

import (
	"cargo-bidding-service/internal/domain"
	"context"
	"errors"
	"fmt"
	"math"
)

// Mean earth radius in nautical miles.
const earthRadiusNM = 3440.065

// GreatCircleNetwork approximates sea distance as the great-circle distance
// between port coordinates, scaled by a detour factor.
type GreatCircleNetwork struct {
	ports  map[string]domain.Coordinates
	detour float64
}

func NewGreatCircleNetwork(ports []domain.Port, detour float64) (*GreatCircleNetwork, error) {
	if len(ports) == 0 {
		return nil, errors.New("great circle network: port list must not be empty")
	}
	if detour < 1 {
		detour = 1
	}

	m := make(map[string]domain.Coordinates, len(ports))
	for _, p := range ports {
		m[normalize(p.Name)] = p.Location
	}

	return &GreatCircleNetwork{ports: m, detour: detour}, nil
}

func (g *GreatCircleNetwork) GetNetworkDistance(ctx context.Context, origin, destination string) (float64, error) {
	from, ok := g.ports[normalize(origin)]
	if !ok {
		return 0, fmt.Errorf("great circle distance: unknown port %q", origin)
	}
	to, ok := g.ports[normalize(destination)]
	if !ok {
		return 0, fmt.Errorf("great circle distance: unknown port %q", destination)
	}

	return haversine(from, to) * g.detour, nil
}

func (g *GreatCircleNetwork) GetNetworkDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (map[string]float64, error) {
	out := make(map[string]float64, len(destinations))
	for _, d := range destinations {
		dist, err := g.GetNetworkDistance(ctx, origin, d)
		if err != nil {
			return nil, err
		}
		out[d] = dist
	}
	return out, nil
}

func haversine(a, b domain.Coordinates) float64 {
	const rad = math.Pi / 180
	lat1, lat2 := a.Lat*rad, b.Lat*rad
	dLat := (b.Lat - a.Lat) * rad
	dLon := (b.Lon - a.Lon) * rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusNM * math.Asin(math.Min(1, math.Sqrt(h)))
}
