// Seeds the places table from a JSON data file. Existing places (and their
// dependent reviews and events) are cleared first, matching the behavior of
// the original data loader.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	database "github.com/bts-green-line/explorer/app/db"
	"github.com/bts-green-line/explorer/config"
	"github.com/bts-green-line/explorer/internal/types"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// seedPlace tolerates both structured sub-fields and JSON-encoded strings for
// gallery/contact/location, since exported data files carry either form.
type seedPlace struct {
	StationID    string          `json:"station_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	Gallery      json.RawMessage `json:"gallery"`
	OpeningHours string          `json:"openingHours"`
	TravelInfo   string          `json:"travelInfo"`
	Phone        string          `json:"phone"`
	Contact      json.RawMessage `json:"contact"`
	Location     json.RawMessage `json:"location"`
}

func main() {
	dataPath := flag.String("data", "data.json", "path to the places data file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, pool, *dataPath, logger); err != nil {
		logger.Error("Seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func seed(ctx context.Context, pool *pgxpool.Pool, dataPath string, logger *slog.Logger) error {
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dataPath, err)
	}

	var places []seedPlace
	if err := json.Unmarshal(raw, &places); err != nil {
		return fmt.Errorf("failed to parse %s: %w", dataPath, err)
	}
	if len(places) == 0 {
		return fmt.Errorf("no places found in %s", dataPath)
	}

	// Clear in dependency order so no orphan rows survive the reseed.
	for _, table := range []string{"reviews", "events", "places"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	logger.Info("Cleared existing place data")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, sp := range places {
		sp := sp
		g.Go(func() error {
			return insertPlace(gctx, pool, sp)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Seeding complete", slog.Int("places", len(places)))
	return nil
}

func insertPlace(ctx context.Context, pool *pgxpool.Pool, sp seedPlace) error {
	if sp.Name == "" || sp.StationID == "" {
		return fmt.Errorf("place entry missing name or station_id")
	}

	query := `
        INSERT INTO places (
            id, station_id, name, category, description, image, gallery,
            opening_hours, travel_info, phone, contact, location, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err := pool.Exec(ctx, query,
		uuid.New(), sp.StationID, sp.Name,
		textOrNil(sp.Category), textOrNil(sp.Description), textOrNil(sp.Image),
		normalizeJSON(sp.Gallery, "[]"),
		textOrNil(sp.OpeningHours), textOrNil(sp.TravelInfo), textOrNil(sp.Phone),
		normalizeJSON(sp.Contact, "{}"),
		normalizeLocation(sp.Location),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert place %q: %w", sp.Name, err)
	}
	return nil
}

// normalizeJSON accepts either a JSON value or a string containing encoded
// JSON and returns valid JSONB input, degrading to the given default.
func normalizeJSON(raw json.RawMessage, def string) []byte {
	if len(raw) == 0 {
		return []byte(def)
	}
	// Double-encoded form: "[\"a.jpg\"]"
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if json.Valid([]byte(asString)) {
			return []byte(asString)
		}
		return []byte(def)
	}
	if json.Valid(raw) {
		return raw
	}
	return []byte(def)
}

func normalizeLocation(raw json.RawMessage) any {
	normalized := normalizeJSON(raw, "null")
	var loc types.LatLng
	if err := json.Unmarshal(normalized, &loc); err != nil {
		return nil
	}
	if string(normalized) == "null" || string(normalized) == "{}" {
		return nil
	}
	return normalized
}

func textOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
