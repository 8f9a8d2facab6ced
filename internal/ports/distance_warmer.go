package ports

import "context"

// DistancePair is an origin->destination lookup.
type DistancePair struct {
	Origin      string
	Destination string
}

// DistanceWarmer resolves a set of distances ahead of a burst of route evaluations.
type DistanceWarmer interface {
	Warm(ctx context.Context, pairs []DistancePair) error
}
