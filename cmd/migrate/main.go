package main

import (
	"flag"
	"log"

	"github.com/pageza/snapfeed/backend/config"
	"github.com/pageza/snapfeed/backend/internal/database"
)

func main() {
	// Parse command line flags
	reset := flag.Bool("reset", false, "Drop every table before migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if *reset {
		if config.IsProduction() {
			log.Fatal("refusing to reset a production database")
		}
		log.Println("Dropping all tables")
		if err := database.DropAll(db); err != nil {
			log.Fatalf("failed to drop tables: %v", err)
		}
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	log.Println("All migrations applied successfully.")
}
