// Package main provides the retention cleanup tool for the payment event
// store. It deletes events older than the retention window; current state
// remains reconstructable from the events that stay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finlock/payment-eventstore-go/config"
	"github.com/finlock/payment-eventstore-go/eventstore/postgresengine"
)

type flags struct {
	RetentionDays int
	DryRun        bool
}

func main() {
	f := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	eventStore, pool, err := initializeEventStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize event store: %v", err)
	}
	defer pool.Close()

	cutoff := time.Now().UTC().AddDate(0, 0, -f.RetentionDays)
	fmt.Printf("Retention window: %d days, cutoff %s\n", f.RetentionDays, cutoff.Format(time.RFC3339))

	if f.DryRun {
		fmt.Println("Dry run: no events will be deleted")
		return
	}

	removed, err := eventStore.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("Retention cleanup failed: %v", err)
	}

	fmt.Printf("Removed %d events older than %s\n", removed, cutoff.Format(time.RFC3339))
}

func initializeEventStore(ctx context.Context, cfg config.Config) (postgresengine.EventStore, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return postgresengine.EventStore{}, nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return postgresengine.EventStore{}, nil, fmt.Errorf("failed to connect to database: %w", pingErr)
	}

	eventStore, err := postgresengine.NewEventStoreFromPGXPool(pool,
		postgresengine.WithTableName(cfg.EventTableName))
	if err != nil {
		pool.Close()
		return postgresengine.EventStore{}, nil, err
	}

	return eventStore, pool, nil
}

func parseFlags() flags {
	retentionDays := flag.Int("retention-days", 365, "Delete events that occurred more than this many days ago")
	dryRun := flag.Bool("dry-run", false, "Report the cutoff without deleting anything")
	flag.Parse()

	if *retentionDays < 1 {
		log.Fatalf("retention-days must be at least 1, got %d", *retentionDays)
	}

	return flags{
		RetentionDays: *retentionDays,
		DryRun:        *dryRun,
	}
}
