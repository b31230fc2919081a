package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/finlock/payment-eventstore-go/eventstore"
	"github.com/finlock/payment-eventstore-go/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName        = "payment_events"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgBuildDeleteQueryFailed = "failed to build delete query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgAppendReturnedNoRow    = "append returned no sequence number row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgQueryCompleted         = "query completed"
	logMsgEventAppended          = "event appended"
	logMsgEventsDeleted          = "events deleted by retention cleanup"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "eventstore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrPaymentID             = "payment_id"
	logAttrEventType             = "event_type"
	logAttrEventCount            = "event_count"
	logAttrDurationMS            = "duration_ms"
	logAttrSequenceNumber        = "sequence_number"
	logAttrRowsAffected          = "rows_affected"
	logActionQuery               = "query"
	logActionAppend              = "append"
	logActionDelete              = "delete"
	colEventID                   = "event_id"
	colPaymentID                 = "payment_id"
	colEventType                 = "event_type"
	colPayload                   = "payload"
	colOccurredAt                = "occurred_at"
	colSequenceNumber            = "sequence_number"
	colCorrelationID             = "correlation_id"
	colActorID                   = "actor_id"
	dialectPostgres              = "postgres"
	castText                     = "?::text"
	castTimestamp                = "?::timestamp with time zone"
	castJsonb                    = "?::jsonb"
)

type (
	sqlQueryString = string
	queryDuration  = time.Duration
)

// EventStore is the PostgreSQL implementation of the payment event log.
// It leverages a database adapter and supports customizable logging,
// metrics, and event table configuration.
//
// Ordering is provided by a BIGSERIAL sequence number column: sequence
// assignment is globally monotonic, which makes it monotonic per aggregate,
// and concurrent appends to different aggregates never block each other.
type EventStore struct {
	db             adapters.DBAdapter
	eventTableName string
	logger         eventstore.Logger
	metrics        eventstore.MetricsCollector
}

type queryResultRow struct {
	eventID        string
	paymentID      string
	eventType      string
	payload        []byte
	occurredAt     time.Time
	sequenceNumber eventstore.SequenceNumberUint
	correlationID  sql.NullString
	actorID        sql.NullString
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromPGXPoolWithReplica creates a new EventStore using a primary
// pgx Pool for writes and strongly consistent reads, plus a replica pool used
// for reads when the caller opts into eventual consistency.
func NewEventStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil || replica == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (EventStore, error) {
	es := EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
	}

	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// Append assigns EventID and OccurredAt if absent, persists the event, and
// returns it completed with the store-assigned sequence number.
func (es EventStore) Append(ctx context.Context, event eventstore.Event) (eventstore.Event, error) {
	var empty eventstore.Event

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	sqlQuery, buildQueryErr := es.buildInsertQuery(event)
	if buildQueryErr != nil {
		es.logError(logMsgBuildInsertQueryFailed, logAttrError, buildQueryErr.Error(), logAttrEventType, event.EventType.String())
		return empty, buildQueryErr
	}

	// writes must never be routed to a replica
	ctx = eventstore.WithStrongConsistency(ctx)

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery, logActionAppend)
	if queryErr != nil {
		return empty, errors.Join(eventstore.ErrAppendingEventFailed, queryErr)
	}
	defer es.closeRows(rows)

	if !rows.Next() {
		es.logError(logMsgAppendReturnedNoRow, logAttrPaymentID, event.PaymentID)
		return empty, eventstore.ErrAppendingEventFailed
	}

	if scanErr := rows.Scan(&event.SequenceNumber); scanErr != nil {
		es.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return empty, errors.Join(eventstore.ErrAppendingEventFailed, scanErr)
	}

	es.logOperation(
		logMsgEventAppended,
		logAttrPaymentID, event.PaymentID,
		logAttrEventType, event.EventType.String(),
		logAttrSequenceNumber, event.SequenceNumber,
		logAttrDurationMS, es.durationToMilliseconds(duration),
	)

	return event, nil
}

// EventsForPayment returns the full ordered history of one aggregate.
func (es EventStore) EventsForPayment(ctx context.Context, paymentID string) (eventstore.Events, error) {
	return es.queryEvents(ctx, goqu.Ex{colPaymentID: paymentID})
}

// EventsForPaymentInRange returns one aggregate's events within the given
// time window. A zero bound is open.
func (es EventStore) EventsForPaymentInRange(
	ctx context.Context,
	paymentID string,
	from time.Time,
	until time.Time,
) (eventstore.Events, error) {

	expressions := []goqu.Expression{goqu.Ex{colPaymentID: paymentID}}
	expressions = append(expressions, timeRangeExpressions(from, until)...)

	return es.queryEvents(ctx, expressions...)
}

// EventsForPaymentOfType returns one aggregate's events of a single type.
func (es EventStore) EventsForPaymentOfType(
	ctx context.Context,
	paymentID string,
	eventType eventstore.EventType,
) (eventstore.Events, error) {

	return es.queryEvents(ctx, goqu.Ex{colPaymentID: paymentID, colEventType: eventType.String()})
}

// EventsForPaymentFromSequence returns one aggregate's events with a sequence
// number of at least fromSequence, for resumable replay.
func (es EventStore) EventsForPaymentFromSequence(
	ctx context.Context,
	paymentID string,
	fromSequence eventstore.SequenceNumberUint,
) (eventstore.Events, error) {

	return es.queryEvents(ctx,
		goqu.Ex{colPaymentID: paymentID},
		goqu.C(colSequenceNumber).Gte(fromSequence),
	)
}

// EventsForCorrelationID returns all events sharing a correlation id, across aggregates.
func (es EventStore) EventsForCorrelationID(ctx context.Context, correlationID string) (eventstore.Events, error) {
	return es.queryEvents(ctx, goqu.Ex{colCorrelationID: correlationID})
}

// EventsInRange returns events across all aggregates within the given time
// window, for disaster recovery replay. A zero bound is open.
func (es EventStore) EventsInRange(ctx context.Context, from, until time.Time) (eventstore.Events, error) {
	return es.queryEvents(ctx, timeRangeExpressions(from, until)...)
}

// LatestEventForPayment returns the most recent event of one aggregate,
// or eventstore.ErrNoEventsFound.
func (es EventStore) LatestEventForPayment(ctx context.Context, paymentID string) (eventstore.Event, error) {
	var empty eventstore.Event

	selectStmt := es.selectEvents().
		Where(goqu.Ex{colPaymentID: paymentID}).
		Order(goqu.I(colSequenceNumber).Desc()).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(logMsgBuildSelectQueryFailed, logAttrError, toSQLErr.Error())
		return empty, errors.Join(eventstore.ErrQueryingEventsFailed, toSQLErr)
	}

	events, err := es.executeSelect(ctx, sqlQuery)
	if err != nil {
		return empty, err
	}

	if len(events) == 0 {
		return empty, eventstore.ErrNoEventsFound
	}

	return events[0], nil
}

// DeleteEventsBefore removes all events with OccurredAt < cutoff and returns
// the number of events removed. Retention cleanup is the only mutation of
// history the store permits.
func (es EventStore) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(es.eventTableName).
		Where(goqu.C(colOccurredAt).Lt(cutoff))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(logMsgBuildDeleteQueryFailed, logAttrError, toSQLErr.Error())
		return 0, errors.Join(eventstore.ErrDeletingEventsFailed, toSQLErr)
	}

	start := time.Now()
	result, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, logActionDelete, duration)

	if execErr != nil {
		es.logError(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return 0, errors.Join(eventstore.ErrDeletingEventsFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		return 0, errors.Join(eventstore.ErrDeletingEventsFailed, rowsAffectedErr)
	}

	es.logOperation(
		logMsgEventsDeleted,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, es.durationToMilliseconds(duration),
	)

	return rowsAffected, nil
}

func (es EventStore) buildInsertQuery(event eventstore.Event) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventID, colPaymentID, colEventType, colPayload, colOccurredAt, colCorrelationID, colActorID).
		FromQuery(builder.Select(
			goqu.L(castText, event.EventID),
			goqu.L(castText, event.PaymentID),
			goqu.L(castText, event.EventType.String()),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castTimestamp, event.OccurredAt),
			goqu.L(castText, event.CorrelationID),
			goqu.L(castText, event.ActorID),
		)).
		Returning(goqu.C(colSequenceNumber))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrAppendingEventFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) selectEvents() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventID, colPaymentID, colEventType, colPayload, colOccurredAt, colSequenceNumber, colCorrelationID, colActorID).
		Order(goqu.I(colSequenceNumber).Asc())
}

func (es EventStore) queryEvents(ctx context.Context, expressions ...goqu.Expression) (eventstore.Events, error) {
	selectStmt := es.selectEvents()
	if len(expressions) > 0 {
		selectStmt = selectStmt.Where(expressions...)
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(logMsgBuildSelectQueryFailed, logAttrError, toSQLErr.Error())
		return nil, errors.Join(eventstore.ErrQueryingEventsFailed, toSQLErr)
	}

	return es.executeSelect(ctx, sqlQuery)
}

// executeSelect executes the SQL query and converts the rows to events.
func (es EventStore) executeSelect(ctx context.Context, sqlQuery string) (eventstore.Events, error) {
	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery, logActionQuery)
	if queryErr != nil {
		return nil, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer es.closeRows(rows)

	events, scanErr := es.processQueryResults(rows)
	if scanErr != nil {
		return nil, scanErr
	}

	es.logOperation(
		logMsgQueryCompleted,
		logAttrEventCount, len(events),
		logAttrDurationMS, es.durationToMilliseconds(duration),
	)

	return events, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (es EventStore) executeQuery(ctx context.Context, sqlQuery string, action string) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(sqlQuery, action, duration)
	es.recordQueryDuration(action, duration)

	if queryErr != nil {
		es.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return nil, duration, queryErr
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (es EventStore) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if es.logger != nil {
			es.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

// processQueryResults converts database rows to events.
func (es EventStore) processQueryResults(rows adapters.DBRows) (eventstore.Events, error) {
	result := queryResultRow{}
	events := make(eventstore.Events, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(
			&result.eventID,
			&result.paymentID,
			&result.eventType,
			&result.payload,
			&result.occurredAt,
			&result.sequenceNumber,
			&result.correlationID,
			&result.actorID,
		)
		if rowScanErr != nil {
			es.logError(logMsgScanRowFailed, logAttrError, rowScanErr.Error())
			return nil, errors.Join(eventstore.ErrQueryingEventsFailed, rowScanErr)
		}

		events = append(events, eventstore.Event{
			EventID:        result.eventID,
			PaymentID:      result.paymentID,
			EventType:      eventstore.EventType(result.eventType),
			PayloadJSON:    result.payload,
			OccurredAt:     result.occurredAt,
			SequenceNumber: result.sequenceNumber,
			CorrelationID:  result.correlationID.String,
			ActorID:        result.actorID.String,
		})
	}

	return events, nil
}

func timeRangeExpressions(from, until time.Time) []goqu.Expression {
	expressions := make([]goqu.Expression, 0, 2)

	if !from.IsZero() {
		expressions = append(expressions, goqu.C(colOccurredAt).Gte(from))
	}

	if !until.IsZero() {
		expressions = append(expressions, goqu.C(colOccurredAt).Lte(until))
	}

	return expressions
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (es EventStore) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, es.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if the logger is configured.
func (es EventStore) logOperation(action string, args ...any) {
	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

// logError logs failures at error level if the logger is configured.
func (es EventStore) logError(msg string, args ...any) {
	if es.logger != nil {
		es.logger.Error(msg, args...)
	}
}

// recordQueryDuration reports execution timing if a metrics collector is configured.
func (es EventStore) recordQueryDuration(action string, duration time.Duration) {
	if es.metrics != nil {
		es.metrics.RecordDuration("eventstore_operation_duration", duration, map[string]string{"action": action})
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (es EventStore) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
