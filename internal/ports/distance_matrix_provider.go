package ports

import "context"

// Optional extension of NetworkDistanceProvider that supports batched lookups.
type DistanceMatrixProvider interface {
	NetworkDistanceProvider
	// Return distances from one origin port to many destination ports.
	GetNetworkDistances(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
}
