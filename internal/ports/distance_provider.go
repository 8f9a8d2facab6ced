package ports

import "context"

// Contract for retrieving sea distance between ports, in nautical miles.
type NetworkDistanceProvider interface {
	// Return the network distance between two ports.
	GetNetworkDistance(ctx context.Context, origin string, destination string) (float64, error)
}
