package main

import (
	"fmt"
	"log"
	"os"

	"github.com/zfogg/blogicum/internal/config"
	"github.com/zfogg/blogicum/internal/database"
	"github.com/zfogg/blogicum/internal/logger"
)

func main() {
	// Parse command
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "up":
		runMigrationsUp()
	default:
		fmt.Println("Usage: migrate [up]")
		fmt.Println("  up - Create or update every table and index")
		os.Exit(1)
	}
}

func runMigrationsUp() {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log.Println("Connecting to database...")
	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("Running migrations...")
	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("All migrations completed successfully")
}
