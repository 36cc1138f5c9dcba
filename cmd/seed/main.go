package main

import (
	"fmt"
	"log"
	"os"

	"github.com/zfogg/blogicum/internal/config"
	"github.com/zfogg/blogicum/internal/database"
	"github.com/zfogg/blogicum/internal/logger"
	"github.com/zfogg/blogicum/internal/seed"
)

func main() {
	// Parse command
	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		withSeeder(func(s *seed.Seeder) error {
			log.Println("Seeding development database...")
			if err := s.SeedDev(); err != nil {
				return err
			}
			log.Printf("Development database seeded. Every account uses the password %q", seed.DevPassword)
			return nil
		})
	case "clean":
		withSeeder(func(s *seed.Seeder) error {
			log.Println("Cleaning seed data...")
			if err := s.Clean(); err != nil {
				return err
			}
			log.Println("Seed data cleaned")
			return nil
		})
	default:
		fmt.Println("Usage: seed [dev|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  clean - Remove all blog data (use with caution)")
		os.Exit(1)
	}
}

func withSeeder(run func(*seed.Seeder) error) {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := run(seed.NewSeeder(database.DB)); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
