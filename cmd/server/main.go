package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/mbenhaddou/optimisation-service/internal/adapters/cache"
	"github.com/mbenhaddou/optimisation-service/internal/adapters/optimizer"
	"github.com/mbenhaddou/optimisation-service/internal/adapters/repositories"
	"github.com/mbenhaddou/optimisation-service/internal/adapters/routing"
	"github.com/mbenhaddou/optimisation-service/internal/api"
	"github.com/mbenhaddou/optimisation-service/internal/platform/db"
	"github.com/mbenhaddou/optimisation-service/internal/platform/metrics"
	"github.com/mbenhaddou/optimisation-service/internal/ports"
	"github.com/mbenhaddou/optimisation-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, OSRM, the solver API) behind ports
// and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := getEnv("DB_PATH", "data/app.db")
	port := getEnv("PORT", "8080")

	metrics.RegisterDefault()

	sqliteDB, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	if err := repositories.InitSchema(sqliteDB); err != nil {
		log.Fatal(err)
	}

	store := repositories.NewSqliteScenarioStore(sqliteDB)

	// Stored settings seed the external endpoints; environment overrides let
	// deployments pin them regardless of what the console saved.
	settings, err := store.LoadSettings(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	apiBase := getEnv("OPTIMIZER_BASE_URL", settings.APIBase)
	apiKey := getEnv("OPTIMIZER_API_KEY", settings.APIKey)
	osrmBase := getEnv("OSRM_BASE_URL", settings.OSRMBase)

	var solver ports.Optimizer
	if strings.TrimSpace(apiBase) != "" {
		client, err := optimizer.NewClient(apiBase, apiKey)
		if err != nil {
			log.Fatal(err)
		}
		solver = client
	} else {
		log.Println("No optimizer base URL configured; /planner/optimize will refuse requests")
	}

	routeMaps, err := buildRouteMaps(sqliteDB, osrmBase)
	if err != nil {
		log.Fatal(err)
	}

	router := api.NewRouter(store, solver, routeMaps)

	// Timeouts are tuned for cold-cache optimization runs (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// buildRouteMaps picks the shared geometry cache by configuration: Redis
// when REDIS_URL is set, Postgres when DATABASE_URL is set, otherwise the
// local SQLite database.
func buildRouteMaps(sqliteDB *sql.DB, osrmBase string) (*services.RouteMapBuilder, error) {
	var provider ports.RouteProvider
	if strings.TrimSpace(osrmBase) != "" {
		osrm, err := routing.NewOSRMRouteProvider(osrmBase)
		if err != nil {
			return nil, err
		}
		provider = osrm
	} else {
		log.Println("No OSRM base URL configured; route maps will use straight lines")
	}

	var shared ports.GeometryCache
	switch {
	case os.Getenv("REDIS_URL") != "":
		redisCache, err := cache.NewRedisGeometryCache(os.Getenv("REDIS_URL"), 0)
		if err != nil {
			return nil, fmt.Errorf("build route maps: %w", err)
		}
		shared = redisCache

	case os.Getenv("DATABASE_URL") != "":
		pg, err := db.Open(os.Getenv("DATABASE_URL"))
		if err != nil {
			return nil, fmt.Errorf("build route maps: %w", err)
		}
		shared = cache.NewSQLGeometryCache(pg)

	default:
		shared = cache.NewSqliteGeometryCache(sqliteDB)
	}

	return services.NewRouteMapBuilder(provider, shared), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}
