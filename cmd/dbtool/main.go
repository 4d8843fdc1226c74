package main

import (
	"context"
	"flag"
	"log"
	"trip-planner-service/internal/adapters/repositories"
	"trip-planner-service/internal/config"
	"trip-planner-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool initializes the schema and seeds the location catalog. DATABASE_URL
// selects Postgres; otherwise DB_PATH (SQLite) is used.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/locations.json"), "seed JSON file")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	conn, dialect, err := db.OpenFromEnv(config.Get("DATABASE_URL", ""), config.Get("DB_PATH", "data/app.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	log.Printf("Initializing database schema... db=%s", dialect)
	if err := db.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if *schemaOnly {
		return
	}

	log.Println("Seeding location catalog...")
	repo := repositories.NewSQLLocationRepository(conn, dialect)
	n, err := repositories.SeedFromJSON(ctx, repo, *seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. locations=%d", n)
}
