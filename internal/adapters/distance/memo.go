package distance

import (
	"cargo-bidding-service/internal/platform/obs"
	"cargo-bidding-service/internal/ports"
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Memo keeps every distance resolved during the process lifetime in memory.
// Route evaluation performs many repeated lookups; Warm resolves the expected
// pairs concurrently before a round so evaluation stays in memory.
//
// Memo is safe for concurrent use.
type Memo struct {
	next        ports.NetworkDistanceProvider
	concurrency int

	mu sync.RWMutex
	m  map[string]float64
}

func NewMemo(next ports.NetworkDistanceProvider, concurrency int) *Memo {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Memo{
		next:        next,
		concurrency: concurrency,
		m:           make(map[string]float64),
	}
}

func (c *Memo) GetNetworkDistance(ctx context.Context, origin, destination string) (float64, error) {
	origin, destination = normalize(origin), normalize(destination)
	if origin == destination {
		return 0, nil
	}

	key := origin + "|" + destination
	c.mu.RLock()
	d, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	d, err := c.next.GetNetworkDistance(ctx, origin, destination)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.m[key] = d
	c.mu.Unlock()

	return d, nil
}

// Warm resolves all pairs not yet in memory, grouping them by origin so batched
// providers are called once per origin.
func (c *Memo) Warm(ctx context.Context, pairs []ports.DistancePair) (err error) {
	defer obs.Time(ctx, "distance.memo.Warm")(&err)

	byOrigin := make(map[string][]string)
	seen := make(map[string]struct{}, len(pairs))
	c.mu.RLock()
	for _, p := range pairs {
		o, d := normalize(p.Origin), normalize(p.Destination)
		if o == "" || d == "" || o == d {
			continue
		}
		key := o + "|" + d
		if _, ok := c.m[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		byOrigin[o] = append(byOrigin[o], d)
	}
	c.mu.RUnlock()

	if len(byOrigin) == 0 {
		return nil
	}

	mp, hasMatrix := c.next.(ports.DistanceMatrixProvider)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for origin, dests := range byOrigin {
		g.Go(func() error {
			res := make(map[string]float64, len(dests))
			if hasMatrix {
				batch, err := mp.GetNetworkDistances(gctx, origin, dests)
				if err != nil {
					return fmt.Errorf("warm distances from %q: %w", origin, err)
				}
				res = batch
			} else {
				for _, d := range dests {
					dist, err := c.next.GetNetworkDistance(gctx, origin, d)
					if err != nil {
						return fmt.Errorf("warm distance %q -> %q: %w", origin, d, err)
					}
					res[d] = dist
				}
			}

			c.mu.Lock()
			for d, dist := range res {
				c.m[origin+"|"+d] = dist
			}
			c.mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}

// Len reports the number of memoized pairs.
func (c *Memo) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
