package main

import (
	"flag"
	"log"
	"os"

	"github.com/dom/heritage-gallery/internal/config"
	"github.com/dom/heritage-gallery/internal/repository/postgres"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	direction := postgres.MigrateUp
	if *down {
		direction = postgres.MigrateDown
	}

	if err := postgres.RunMigrations(mustDatabaseURL(), direction); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Printf("database migrations applied (%s)", direction)
}

func mustDatabaseURL() string {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	return dsn
}
