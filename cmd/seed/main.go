package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cyclestore/internal/config"
	"cyclestore/internal/database"
	"cyclestore/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] [INFO] .env not loaded:", err)
	}
	cfg := config.FromEnv()

	file := flag.String("file", cfg.SeedFile, "YAML product catalog")
	flag.Parse()

	if cfg.MongoURI == "" {
		log.Fatal("[SEED] [ERROR] MONGO_URI is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("[SEED] [ERROR] open %s: %v", *file, err)
	}
	defer f.Close()

	now := time.Now()
	products, err := seed.Parse(f, now)
	if err != nil {
		log.Fatalf("[SEED] [ERROR] %v", err)
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatalf("[DB] [ERROR] connect: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(db); err != nil {
		log.Printf("[DB] [WARN] index bootstrap: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := seed.Apply(ctx, seed.NewMongoStore(db), products, now)
	if err != nil {
		log.Fatalf("[SEED] [ERROR] %v", err)
	}
	log.Printf("seeded %s into %s: %d inserted, %d updated", *file, db.Name(), res.Inserted, res.Updated)
}
