package main

import (
	"cargo-bidding-service/internal/adapters/repositories"
	"cargo-bidding-service/internal/config"
	"cargo-bidding-service/internal/platform/db"
	"cargo-bidding-service/internal/platform/logging"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (using environment variables)")
	}

	logger, err := logging.New(config.Get("LOG_LEVEL", "info"), "console")
	if err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	app := &cli.App{
		Name:  "dbtool",
		Usage: "Prepare the cargo bidding database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "driver",
				Value:   db.DriverSqlite,
				EnvVars: []string{"DB_DRIVER"},
				Usage:   "database driver (sqlite or pgx)",
			},
			&cli.StringFlag{
				Name:    "dsn",
				Value:   "data/app.db",
				EnvVars: []string{"DATABASE_URL"},
				Usage:   "sqlite path or postgres connection string",
			},
		},
		Commands: []*cli.Command{
			initCmd,
			seedCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("dbtool failed", zap.Error(err))
		os.Exit(1)
	}
}

var initCmd = &cli.Command{
	Name:  "init",
	Usage: "Create the database schema",
	Action: func(ctx *cli.Context) error {
		return withDB(ctx, func(x *sqlx.DB) error {
			zap.L().Info("initializing database schema")
			if err := repositories.InitSchema(ctx.Context, x); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			zap.L().Info("schema ready")
			return nil
		})
	},
}

var seedCmd = &cli.Command{
	Name:  "seed",
	Usage: "Create the schema and load ports, companies and vessels",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Value:   "data/seeds/fleet.json",
			EnvVars: []string{"SEED_PATH"},
			Usage:   "fleet seed JSON",
		},
	},
	Action: func(ctx *cli.Context) error {
		seedPath := ctx.String("file")
		return withDB(ctx, func(x *sqlx.DB) error {
			if err := repositories.InitSchema(ctx.Context, x); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}

			zap.L().Info("seeding database", zap.String("file", seedPath))
			if err := repositories.SeedFromJSON(ctx.Context, x, seedPath); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			zap.L().Info("seeding complete")
			return nil
		})
	},
}

func withDB(ctx *cli.Context, fn func(*sqlx.DB) error) error {
	driver := ctx.String("driver")

	sqlDB, err := db.OpenDriver(driver, ctx.String("dsn"))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return fn(db.Wrap(sqlDB, driver))
}
