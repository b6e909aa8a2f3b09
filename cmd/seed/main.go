package main

// Load a narrator corpus into the database:
//   go run ./cmd/seed -file narrators.json

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"rijal-backend/internal/narrators"
	"rijal-backend/internal/shared/config"
	"rijal-backend/internal/shared/storage/db"
)

func main() {
	file := flag.String("file", "narrators.json", "path to a JSON array of narrator records")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required for seeding")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("read seed file: %v", err)
	}
	var records []narrators.Narrator
	if err := json.Unmarshal(raw, &records); err != nil {
		log.Fatalf("parse seed file: %v", err)
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	svc := narrators.NewService(&narrators.PGRepo{DB: sqlDB})
	if err := svc.Seed(ctx, records); err != nil {
		log.Fatalf("seed narrators: %v", err)
	}
	log.Printf("seeded %d narrators", len(records))
}
