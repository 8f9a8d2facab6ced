package ports

import "context"

// Persistent store of origin->destination port distances.
// Keys are expected to be normalized by the caller.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]float64, error)
	PutMany(ctx context.Context, origin string, results map[string]float64) error
}
