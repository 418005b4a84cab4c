package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"bootstat/adapters/api"
	"bootstat/adapters/postgres"
	"bootstat/adapters/rng"
	"bootstat/adapters/stats"
	"bootstat/app"
	"bootstat/internal/config"
	"bootstat/internal/errors"
	"bootstat/ports"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The run registry is optional: without DATABASE_URL the service
	// still answers analyses, it just keeps no history.
	var runRepo ports.RunRepository
	if appConfig.Database.URL != "" {
		db, err := initDatabase(appConfig.Database.URL)
		if err != nil {
			log.Fatalf("Failed to initialize run registry: %v", err)
		}
		defer db.Close()
		runRepo = postgres.NewRunRepository(db)
		log.Println("Run registry enabled")
	} else {
		log.Println("DATABASE_URL not set, run registry disabled")
	}

	service := app.NewBootstrapService(
		stats.NewRegistry(),
		rng.NewAdapter(),
		runRepo,
		appConfig.Bootstrap.Workers,
	)

	server := api.NewServer(service, appConfig.Server.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// initDatabase connects to PostgreSQL and ensures the registry schema
func initDatabase(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "failed to ensure run registry schema")
	}

	return db, nil
}
