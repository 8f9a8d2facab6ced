package distance

import (
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/platform/obs"
	"cargo-bidding-service/internal/ports"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MatrixNetwork implements DistanceMatrixProvider against an
// OpenRouteService-compatible matrix endpoint.
//
// It coordinates:
//   - Port name normalization
//   - Port coordinate lookup from the configured registry
//   - Persistent distance caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type MatrixNetwork struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	profile       string
	ports         map[string]domain.Coordinates
	distanceCache ports.DistanceCache
	maxAttempts   int
	backoff       time.Duration
}

type MatrixOption func(*MatrixNetwork)

func WithBaseURL(u string) MatrixOption {
	return func(m *MatrixNetwork) { m.baseURL = strings.TrimRight(u, "/") }
}

func WithProfile(p string) MatrixOption {
	return func(m *MatrixNetwork) { m.profile = p }
}

func WithHTTPClient(c *http.Client) MatrixOption {
	return func(m *MatrixNetwork) { m.session = c }
}

func NewMatrixNetwork(
	apiKey string,
	portList []domain.Port,
	distanceCache ports.DistanceCache,
	opts ...MatrixOption,
) (*MatrixNetwork, error) {
	if apiKey == "" {
		return nil, errors.New("matrix api key is empty")
	}

	registry := make(map[string]domain.Coordinates, len(portList))
	for _, p := range portList {
		registry[normalize(p.Name)] = p.Location
	}

	provider := &MatrixNetwork{
		session:       &http.Client{Timeout: 10 * time.Second},
		apiKey:        apiKey,
		baseURL:       "https://api.openrouteservice.org",
		ports:         registry,
		distanceCache: distanceCache,
		maxAttempts:   defaultMaxAttempts,
		backoff:       defaultBackoff,
	}
	for _, opt := range opts {
		opt(provider)
	}
	if provider.profile == "" {
		return nil, errors.New("matrix profile is empty")
	}

	return provider, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Delegate to batched path to reuse caching and matrix logic.
func (o *MatrixNetwork) GetNetworkDistance(
	ctx context.Context,
	origin string,
	destination string,
) (float64, error) {
	normOrigin := normalize(origin)
	if normOrigin == "" {
		return 0, errors.New("origin must be non-empty")
	}

	normDestination := normalize(destination)
	if normDestination == "" {
		return 0, errors.New("destination must be non-empty")
	}

	if normOrigin == normDestination {
		return 0, nil
	}

	results, err := o.GetNetworkDistances(ctx, normOrigin, []string{normDestination})
	if err != nil {
		return 0, fmt.Errorf(
			"get distances %q -> %q: %w",
			normOrigin, normDestination, err,
		)
	}

	result, ok := results[normDestination]
	if !ok {
		return 0, fmt.Errorf("no distance result for %q -> %q", origin, destination)
	}

	return result, nil
}

// Compute distances from a single origin port to many destination ports.
func (o *MatrixNetwork) GetNetworkDistances(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]float64, err error) {
	defer obs.Time(ctx, "matrix.GetNetworkDistances")(&err)

	normOrigin := normalize(origin)
	if normOrigin == "" {
		return nil, errors.New("origin must be non-empty")
	}

	if len(destinations) == 0 {
		return map[string]float64{}, nil
	}

	seen := make(map[string]struct{}, len(destinations))
	destList := make([]string, 0, len(destinations))
	for _, d := range destinations {
		nd := normalize(d)
		if nd == "" || nd == normOrigin {
			continue
		}
		if _, ok := seen[nd]; ok {
			continue
		}

		seen[nd] = struct{}{}
		destList = append(destList, nd)
	}

	if len(destList) == 0 {
		return map[string]float64{}, nil
	}

	destinationHits := make(map[string]float64)
	// Check persistent distance cache before issuing external API calls.
	if o.distanceCache != nil {
		var err error
		destinationHits, err = o.distanceCache.GetMany(ctx, normOrigin, destList)
		if err != nil {
			return nil, fmt.Errorf("matrix get distance cache: %w", err)
		}
	}

	destinationMisses := make([]string, 0, len(destList))
	for _, d := range destList {
		if _, ok := destinationHits[d]; !ok {
			destinationMisses = append(destinationMisses, d)
		}
	}

	if len(destinationMisses) == 0 {
		return destinationHits, nil
	}

	originCoord, ok := o.ports[normOrigin]
	if !ok {
		return nil, fmt.Errorf("missing coordinate for origin port %q", normOrigin)
	}

	destinationCoords := make([]domain.Coordinates, 0, len(destinationMisses))
	for _, d := range destinationMisses {
		coord, ok := o.ports[d]
		if !ok {
			return nil, fmt.Errorf("missing coordinate for destination port %q", d)
		}
		destinationCoords = append(destinationCoords, coord)
	}

	// Fetch a single origin->many matrix row for all cache misses.
	fetched, err := o.fetchMatrixRow(ctx, originCoord, destinationMisses, destinationCoords)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}

	missing := make([]string, 0)
	for _, d := range destinationMisses {
		if _, ok := fetched[d]; !ok {
			missing = append(missing, d)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf(
			"matrix service did not return the following destinations: %s",
			strings.Join(missing, ", "),
		)
	}

	if o.distanceCache != nil {
		if err := o.distanceCache.PutMany(ctx, normOrigin, fetched); err != nil {
			zap.L().Warn("distance cache write failed", zap.String("origin", normOrigin), zap.Error(err))
		}
	}

	out := make(map[string]float64, len(destinationHits)+len(fetched))
	for k, v := range destinationHits {
		out[k] = v
	}
	for k, v := range fetched {
		out[k] = v
	}

	return out, nil
}
