package main

// Manage the state-store schema:
//   go run ./cmd/migrate -command up|down|version

import (
	"context"
	"flag"
	"log"
	"os"

	"placement-backend/internal/shared/config"
	"placement-backend/internal/shared/storage/db"
)

func main() {
	command := flag.String("command", "up", "up, down or version")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required")
		os.Exit(1)
	}
	ctx := context.Background()

	sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.RoleMigrate)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch *command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "version":
		var version int64
		if version, err = db.MigrationVersion(ctx, sqlDB); err == nil {
			log.Printf("schema version %d", version)
		}
	default:
		log.Printf("unknown command %q", *command)
		os.Exit(2)
	}
	if err != nil {
		log.Printf("migrate %s: %v", *command, err)
		os.Exit(1)
	}
}
