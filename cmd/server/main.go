// Package main is the entry point for the exchange calendar service.
// It registers the built-in exchange calendars, loads user-defined
// calendars from YAML, warms the registry cache on a schedule and
// serves calendar queries over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gerrymanoim/exchange-calendars/internal/calendar"
	"github.com/gerrymanoim/exchange-calendars/internal/calendarcfg"
	"github.com/gerrymanoim/exchange-calendars/internal/config"
	"github.com/gerrymanoim/exchange-calendars/internal/exchanges"
	"github.com/gerrymanoim/exchange-calendars/internal/registry"
	"github.com/gerrymanoim/exchange-calendars/internal/scheduler"
	"github.com/gerrymanoim/exchange-calendars/internal/server"
	"github.com/gerrymanoim/exchange-calendars/internal/store/sqlite"
	"github.com/gerrymanoim/exchange-calendars/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting exchange calendar service")

	// Registry options, populated below if the snapshot store is enabled
	var opts []registry.Option

	// Snapshot store lets restarts skip rebuilding unchanged calendars
	var snapshots *sqlite.SnapshotStore
	if cfg.SnapshotDB {
		db, err := sqlite.Open(filepath.Join(cfg.DataDir, "calendars.db"))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open snapshot database")
		}
		defer db.Close()

		snapshots = sqlite.NewSnapshotStore(db, log)
		opts = append(opts, registry.WithStore(snapshots))
		log.Info().Str("path", filepath.Join(cfg.DataDir, "calendars.db")).Msg("Snapshot store enabled")
	}

	reg := registry.New(log, opts...)

	// Built-in exchange calendars and their aliases
	if err := exchanges.RegisterBuiltins(reg); err != nil {
		log.Fatal().Err(err).Msg("Failed to register built-in calendars")
	}
	log.Info().Strs("calendars", reg.Names()).Msg("Registered built-in calendars")

	// User-defined calendars from YAML files
	if cfg.CalendarsDir != "" {
		defs, err := calendarcfg.LoadDir(cfg.CalendarsDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.CalendarsDir).Msg("Failed to load calendar definitions")
		}
		for _, def := range defs {
			if err := reg.Register(def.Config, false); err != nil {
				log.Fatal().Err(err).Str("calendar", def.Config.Name).Msg("Failed to register calendar")
			}
			for _, alias := range def.Aliases {
				if err := reg.Alias(alias, def.Config.Name, false); err != nil {
					log.Fatal().Err(err).Str("alias", alias).Msg("Failed to register alias")
				}
			}
		}
		log.Info().Int("count", len(defs)).Str("dir", cfg.CalendarsDir).Msg("Loaded calendar definitions")
	}

	// Session indexes answer execution-time queries from per-calendar
	// offsets, the snapshot store needs the same offsets to rebuild
	if snapshots != nil {
		for _, name := range reg.Names() {
			if c, err := reg.Config(name); err == nil {
				snapshots.RegisterExecutionOffsets(name, c.ExecutionOpenOffset, c.ExecutionCloseOffset)
			}
		}
	}

	// Query window for the HTTP API and the warm-up job
	now := time.Now().UTC()
	queryStart := calendar.Day(now.Year()-cfg.YearsBack, time.January, 1)
	queryEnd := calendar.Day(now.Year()+cfg.YearsForward, time.December, 31)

	// Warm the cache once at startup so first requests are fast
	warmup := scheduler.NewWarmupJob(reg, cfg.YearsBack, cfg.YearsForward, log)
	if err := warmup.Run(); err != nil {
		log.Error().Err(err).Msg("Initial cache warm-up reported errors")
	}

	// Periodic warm-up keeps the window sliding as years roll over
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.WarmupSchedule, warmup); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule warm-up job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:        log,
		Registry:   reg,
		Port:       cfg.Port,
		QueryStart: queryStart,
		QueryEnd:   queryEnd,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
