package main

// Run database migrations:
//   go run ./cmd/migrate
//   go run ./cmd/migrate -status

import (
	"context"
	"flag"
	"log"
	"os"

	"job-selector/internal/shared/config"
	"job-selector/internal/shared/storage/db"
)

func main() {
	status := flag.Bool("status", false, "print migration status instead of applying")
	flag.Parse()

	cfg := config.Load()
	if cfg.DBDriver != config.DriverPostgres {
		log.Printf("DB_DRIVER=%s has no SQL migrations", cfg.DBDriver)
		return
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if *status {
		if err := db.MigrationStatus(ctx, sqlDB); err != nil {
			log.Printf("failed to read migration status: %v", err)
			os.Exit(1)
		}
		return
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
}
