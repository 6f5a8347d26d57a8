package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	mongoMigration "fitstudio/internal/migrations/mongo"
	postgresMigration "fitstudio/internal/migrations/postgres"
	"fitstudio/pkg/config"

	"github.com/urfave/cli/v2"
)

const JobName = "studio-migration"

func main() {
	app := &cli.App{
		Name:  "migrate",
		Usage: "create the studio collections, tables and indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "driver",
				Usage: "store to migrate (mongo|postgres); defaults to STORE_DRIVER",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 120 * time.Second,
				Usage: "overall migration deadline",
			},
			&cli.BoolFlag{
				Name:  "print-sql",
				Usage: "print the postgres DDL and exit without connecting",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("print-sql") {
		policy, err := config.LoadStudioPolicy()
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(postgresMigration.Statements(policy), ";\n\n") + ";")
		return nil
	}

	if driver := c.String("driver"); driver != "" {
		os.Setenv(config.EnvStoreDriver, driver)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	cfg := config.Load(JobName)
	cfg.Connect()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "store_driver", cfg.StoreDriver)

	var err error
	switch cfg.StoreDriver {
	case config.StoreMongo:
		err = mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Studio, cfg.Log)
	case config.StorePostgres:
		err = postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Studio, cfg.Log)
	default:
		cfg.Log.Info("Nothing to migrate for store driver", "store_driver", cfg.StoreDriver)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	cfg.Log.Info("Migration completed successfully")
	return nil
}
