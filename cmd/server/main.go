package main

import (
	"cargo-bidding-service/internal/adapters/cache"
	"cargo-bidding-service/internal/adapters/distance"
	"cargo-bidding-service/internal/adapters/repositories"
	"cargo-bidding-service/internal/adapters/schedule"
	"cargo-bidding-service/internal/api"
	"cargo-bidding-service/internal/config"
	"cargo-bidding-service/internal/domain"
	"cargo-bidding-service/internal/platform/db"
	"cargo-bidding-service/internal/platform/logging"
	"cargo-bidding-service/internal/ports"
	"cargo-bidding-service/internal/services"
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL, distance networks, caches) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	logger, err := logging.New(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "json"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx := context.Background()

	driver := config.Get("DB_DRIVER", db.DriverSqlite)
	dsn := config.Get("DATABASE_URL", "data/app.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/fleet.json")
	companyName := config.Get("COMPANY", "Blue Ocean")
	port := config.Get("PORT", "8080")

	policy, err := config.LoadPolicy(config.Get("POLICY_PATH", "data/policy.yaml"))
	if err != nil {
		return err
	}

	sqlDB, err := db.OpenDriver(driver, dsn)
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	x := db.Wrap(sqlDB, driver)

	// Initialize schema and seed demo data on startup for local runs.
	if err := initAndSeed(ctx, x, seedPath); err != nil {
		return err
	}

	repo := repositories.NewSQLFleetRepository(x)
	portList, err := repo.ListPorts(ctx)
	if err != nil {
		return fmt.Errorf("load ports: %w", err)
	}

	network, err := newNetwork(portList, sqlDB, driver)
	if err != nil {
		return err
	}
	memo := distance.NewMemo(network, config.GetInt("DISTANCE_CONCURRENCY", 5))

	fleet, err := repo.ListVessels(ctx, companyName)
	if err != nil {
		return fmt.Errorf("load fleet: %w", err)
	}
	if len(fleet) == 0 {
		return fmt.Errorf("company %q has no vessels", companyName)
	}
	attachSchedules(fleet, memo)

	company, err := services.NewCompany(companyName, fleet, policy, services.CompanyDeps{
		Network: memo,
		Warmer:  memo,
		Ledger:  repositories.NewSQLSettlementLedger(x),
		HQ:      repo,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	logger.Info("server listening",
		zap.String("addr", ":"+port),
		zap.String("company", companyName),
		zap.Int("vessels", len(fleet)),
		zap.String("strategy", policy.Allocation.Strategy),
		zap.String("cost_model", policy.Cost.Model),
		zap.String("markup", policy.Markup.Policy),
	)

	// Timeouts are tuned for cold-cache rounds (external matrix API latency).
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(company, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}

func initAndSeed(ctx context.Context, x *sqlx.DB, seedPath string) error {
	if err := repositories.InitSchema(ctx, x); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(ctx, x, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// newNetwork uses the remote matrix service when MATRIX_API_KEY is set and
// great-circle distances otherwise.
func newNetwork(portList []domain.Port, sqlDB *sql.DB, driver string) (ports.NetworkDistanceProvider, error) {
	apiKey := config.Get("MATRIX_API_KEY", "")
	if apiKey == "" {
		return distance.NewGreatCircleNetwork(portList, 1.0)
	}

	distanceCache, err := newDistanceCache(sqlDB, driver)
	if err != nil {
		return nil, err
	}

	opts := []distance.MatrixOption{
		distance.WithRetry(config.GetInt("MATRIX_MAX_ATTEMPTS", 4), config.GetDuration("MATRIX_BACKOFF", 200*time.Millisecond)),
	}
	if u := config.Get("MATRIX_URL", ""); u != "" {
		opts = append(opts, distance.WithBaseURL(u))
	}
	opts = append(opts, distance.WithProfile(config.Get("MATRIX_PROFILE", "")))

	return distance.NewMatrixNetwork(apiKey, portList, distanceCache, opts...)
}

// newDistanceCache picks the persistent distance cache: redis when REDIS_ADDR
// is set, else the table of the configured database.
func newDistanceCache(sqlDB *sql.DB, driver string) (ports.DistanceCache, error) {
	if addr := config.Get("REDIS_ADDR", ""); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("distance cache: ping redis %q: %w", addr, err)
		}
		return cache.NewRedisDistanceCache(client, config.GetDuration("REDIS_TTL", 0)), nil
	}

	if driver == db.DriverPostgres {
		return cache.NewSQLDistanceCache(sqlDB), nil
	}
	return cache.NewSqliteDistanceCache(sqlDB), nil
}

func attachSchedules(fleet []*domain.Vessel, network ports.NetworkDistanceProvider) {
	dist := schedule.DistanceFuncFor(context.Background(), network)
	for _, v := range fleet {
		v.SetSchedule(schedule.ForVessel(v, dist))
	}
}
