package postgresengine_test

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // database/sql driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlock/payment-eventstore-go/eventstore"
	"github.com/finlock/payment-eventstore-go/eventstore/postgresengine"
)

func Test_NewEventStore_When_ConnectionIsNil(t *testing.T) {
	// act
	_, pgxErr := postgresengine.NewEventStoreFromPGXPool(nil)
	_, replicaErr := postgresengine.NewEventStoreFromPGXPoolWithReplica((*pgxpool.Pool)(nil), (*pgxpool.Pool)(nil))
	_, sqlErr := postgresengine.NewEventStoreFromSQLDB((*sql.DB)(nil))
	_, sqlxErr := postgresengine.NewEventStoreFromSQLX((*sqlx.DB)(nil))

	// assert
	assert.ErrorIs(t, pgxErr, eventstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, replicaErr, eventstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlErr, eventstore.ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, eventstore.ErrNilDatabaseConnection)
}

func Test_NewEventStore_When_TableNameIsEmpty(t *testing.T) {
	// arrange
	db, err := sql.Open("postgres", "postgres://localhost:5432/payments?sslmode=disable")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// act
	_, err = postgresengine.NewEventStoreFromSQLDB(db, postgresengine.WithTableName(""))

	// assert
	assert.ErrorIs(t, err, eventstore.ErrEmptyEventTableName)
}

func Test_NewEventStore_When_TableNameIsCustomized(t *testing.T) {
	// arrange
	db, err := sql.Open("postgres", "postgres://localhost:5432/payments?sslmode=disable")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	// act
	_, err = postgresengine.NewEventStoreFromSQLDB(db, postgresengine.WithTableName("payment_events_v2"))

	// assert
	require.NoError(t, err)
}
