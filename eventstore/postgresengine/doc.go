// Package postgresengine provides the PostgreSQL implementation of the
// payment event store contract.
//
// Events live in a single append-only table with a BIGSERIAL sequence number
// providing total order. The expected schema:
//
//	CREATE TABLE payment_events (
//	    sequence_number BIGSERIAL PRIMARY KEY,
//	    event_id        TEXT NOT NULL UNIQUE,
//	    payment_id      TEXT NOT NULL,
//	    event_type      TEXT NOT NULL,
//	    payload         JSONB NOT NULL,
//	    occurred_at     TIMESTAMP WITH TIME ZONE NOT NULL,
//	    correlation_id  TEXT,
//	    actor_id        TEXT
//	);
//	CREATE INDEX payment_events_payment_id_idx ON payment_events (payment_id, sequence_number);
//	CREATE INDEX payment_events_correlation_id_idx ON payment_events (correlation_id);
//	CREATE INDEX payment_events_occurred_at_idx ON payment_events (occurred_at);
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Optional read replica routing via the eventstore consistency context
//   - All query shapes required for replay: by aggregate, time range,
//     event type, resume sequence, correlation id, and system-wide window
//   - Retention cleanup by time cutoff
//
// Usage example:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewEventStoreFromPGXPool(
//		db,
//		postgresengine.WithTableName("payment_events"),
//		postgresengine.WithLogger(logger),
//	)
package postgresengine
