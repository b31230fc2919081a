// Package adapters provides database adapter implementations for the
// PostgreSQL payment event store.
//
// This package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgx.Pool, sql.DB, and sqlx.DB. All adapters provide
// equivalent functionality through a common DBAdapter interface, allowing the
// event store to work seamlessly with any supported connection type.
//
// The pgx adapter additionally supports an optional read replica pool; reads
// are routed to the replica only when the caller has opted into eventual
// consistency via the eventstore consistency context helpers.
package adapters
