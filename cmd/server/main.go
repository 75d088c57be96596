/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the MPCS reservation server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags (and optional config file)
  2. Open the booking store (flat file or SQLite)
  3. Open the staff directory and seed the initial admin
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 51221)
  -store     Storage backend: "flatfile" or "sqlite" (default: flatfile)
  -data      Booking data path (default: reservations.txt, or
             reservations.db for the sqlite backend)
  -staff-db  Staff directory SQLite path (default: staff.db)
  -admin     Staff id seeded as admin on first start (default: admin)
  -config    Optional JSON config file; flags given explicitly win

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close stores
  4. Exit

EXAMPLES:
  # Run with the default flat file
  ./server -data=./data/reservations.txt

  # Run with the SQLite backend
  ./server -store=sqlite -data=./data/reservations.db

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mpcs/reservation-engine/api"
	"github.com/mpcs/reservation-engine/booking"
	"github.com/mpcs/reservation-engine/staff"
	"github.com/mpcs/reservation-engine/store/flatfile"
	"github.com/mpcs/reservation-engine/store/sqlite"
)

// fileConfig mirrors the flags; any zero value falls back to the flag.
type fileConfig struct {
	Port    int    `json:"port"`
	Store   string `json:"store"`
	Data    string `json:"data_file"`
	StaffDB string `json:"staff_db"`
	Admin   string `json:"admin"`
}

func main() {
	port := flag.Int("port", 51221, "HTTP server port")
	backend := flag.String("store", "flatfile", `storage backend: "flatfile" or "sqlite"`)
	dataPath := flag.String("data", "", "booking data path")
	staffDB := flag.String("staff-db", "staff.db", "staff directory SQLite path")
	admin := flag.String("admin", "admin", "staff id seeded as admin on first start")
	configPath := flag.String("config", "", "optional JSON config file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if *configPath != "" {
		cfg, err := loadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		applyConfig(cfg, port, backend, dataPath, staffDB, admin)
	}
	if *dataPath == "" {
		*dataPath = "reservations.txt"
		if *backend == "sqlite" {
			*dataPath = "reservations.db"
		}
	}

	store, closeStore, err := openStore(*backend, *dataPath)
	if err != nil {
		log.Fatal().Err(err).Str("backend", *backend).Str("data", *dataPath).Msg("open store")
	}
	defer closeStore()

	directory, err := staff.Open(*staffDB)
	if err != nil {
		log.Fatal().Err(err).Str("path", *staffDB).Msg("open staff directory")
	}
	defer directory.Close()
	if err := directory.EnsureAdmin(context.Background(), *admin); err != nil {
		log.Fatal().Err(err).Str("staff_id", *admin).Msg("seed admin")
	}

	engine := booking.NewEngine(store, booking.WithLogger(log))
	handler := api.NewHandler(engine, directory, log)
	router := api.NewRouter(handler, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Str("backend", *backend).Str("data", *dataPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

func openStore(backend, path string) (booking.Store, func() error, error) {
	switch backend {
	case "flatfile":
		s, err := flatfile.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	case "sqlite":
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyConfig fills in config-file values for flags the user did not set
// explicitly on the command line.
func applyConfig(cfg fileConfig, port *int, backend, dataPath, staffDB, admin *string) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if cfg.Port != 0 && !set["port"] {
		*port = cfg.Port
	}
	if cfg.Store != "" && !set["store"] {
		*backend = cfg.Store
	}
	if cfg.Data != "" && !set["data"] {
		*dataPath = cfg.Data
	}
	if cfg.StaffDB != "" && !set["staff-db"] {
		*staffDB = cfg.StaffDB
	}
	if cfg.Admin != "" && !set["admin"] {
		*admin = cfg.Admin
	}
}
