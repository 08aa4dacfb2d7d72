package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/MohammedBaz/MVPUrbanSprawl/internal/api"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/citydata"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/config"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/db"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/httputil"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/report"
	"github.com/MohammedBaz/MVPUrbanSprawl/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "Listen address")
	dbFile      = flag.String("db", "urban_sprawl.db", "SQLite database file")
	configFile  = flag.String("config", "", "Path to JSON config file")
	dataFile    = flag.String("data", "", "Seed observations from a local CSV file instead of the remote dataset")
	unitsFlag   = flag.String("units", "", "Default presentation units, overriding the config file")
	offline     = flag.Bool("offline", false, "Seed from the embedded snapshot, never fetch the remote dataset")
	runMigrate  = flag.Bool("migrate", false, "Apply database migrations and exit")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// seed loads reference data into an empty database. An already-populated
// database is left alone; the refresher keeps it current.
func seed(ctx context.Context, database *db.DB, cfg *config.Config) error {
	cities, err := database.Cities()
	if err != nil {
		return err
	}
	if len(cities) > 0 {
		log.Printf("database already holds %d cities, skipping seed", len(cities))
		return nil
	}

	var records []citydata.CityRecord
	switch {
	case *dataFile != "":
		records, err = citydata.LoadFile(*dataFile)
		if err != nil {
			return err
		}
		log.Printf("seeded %d cities from %s", len(records), *dataFile)
	case *offline:
		records, err = citydata.EmbeddedSnapshot()
		if err != nil {
			return err
		}
		log.Printf("seeded %d cities from the embedded snapshot", len(records))
	default:
		client := httputil.NewStandardClient(30 * time.Second)
		records, err = citydata.Fetch(ctx, client, cfg.GetDataURL())
		if err != nil {
			// Keep the service usable when the dataset host is down.
			log.Printf("fetch failed (%v), falling back to the embedded snapshot", err)
			records, err = citydata.EmbeddedSnapshot()
			if err != nil {
				return err
			}
		}
		log.Printf("seeded %d cities", len(records))
	}

	return database.LoadSnapshot(records)
}

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("sprawld %s (%s, built %s)", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	if *runMigrate {
		database, err := db.OpenDB(*dbFile)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()
		if err := database.MigrateUp(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		version, dirty, err := database.MigrateVersion()
		if err != nil {
			log.Fatalf("Failed to read migration version: %v", err)
		}
		log.Printf("database at migration version %d (dirty=%v)", version, dirty)
		return
	}

	cfg := config.Empty()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *unitsFlag != "" {
		cfg.Units = unitsFlag
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid flags: %v", err)
		}
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := seed(ctx, database, cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// background refresh of the remote reference dataset
	if interval := cfg.GetRefreshInterval(); interval > 0 && !*offline {
		refresher := &citydata.Refresher{
			Client:   httputil.NewStandardClient(30 * time.Second),
			URL:      cfg.GetDataURL(),
			Store:    database,
			Interval: interval,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			refresher.Run(ctx)
			log.Print("refresher routine terminated")
		}()
	}

	generator := report.NewGenerator(database, cfg.GetReportDir(), cfg.Thresholds())

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(database, cfg, generator).ServeMux()

		// debug SQL console and backup endpoint
		if err := database.AttachDebugHandlers(mux); err != nil {
			log.Printf("failed to attach debug handlers: %v", err)
		}

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
