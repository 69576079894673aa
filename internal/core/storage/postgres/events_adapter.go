package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Register postgres driver
	"golang.org/x/sync/singleflight"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	"github.com/aevon-lab/relaystore/internal/core/codec"
	"github.com/aevon-lab/relaystore/internal/core/config"
	"github.com/aevon-lab/relaystore/internal/core/metrics"
	"github.com/aevon-lab/relaystore/internal/core/storage"
	"github.com/aevon-lab/relaystore/internal/migrations"
)

const (
	connectPingTimeout = 5 * time.Second
	lookupTimeout      = 10 * time.Second
)

var _ storage.EventStore = (*Adapter)(nil)

// Adapter implements storage.EventStore for PostgreSQL.
type Adapter struct {
	db       *sql.DB
	pool     *Pool
	compiler *Compiler
	lookups  singleflight.Group
	metrics  *metrics.Registry
}

// Initialize opens the database, runs migrations and returns a ready store.
// No handle is returned unless the schema is current, so operations can
// never observe a partially migrated database.
//
// A migration failure is returned as *migrations.MigrationError.
func Initialize(ctx context.Context, cfg *config.Config, reg *metrics.Registry) (*Adapter, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	// Apply connection pool settings from config
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	slog.Info("[Postgres] Connection pool configured",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
		"acquire_timeout", cfg.Database.AcquireTimeout)

	pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	if err := migrations.Run(db, cfg.Database.AutoMigrate); err != nil {
		db.Close()
		return nil, err
	}

	if err := validateSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	slog.Info("[Postgres] Adapter initialized")

	return NewAdapter(db, cfg.Database.MaxOpenConns, cfg.Database.AcquireTimeout,
		NewCompiler(cfg.Query.DefaultLimit, cfg.Query.MaxLimit), reg), nil
}

// NewAdapter wraps an already migrated database. poolSize must equal the
// MaxOpenConns configured on db.
func NewAdapter(db *sql.DB, poolSize int, acquireTimeout time.Duration, compiler *Compiler, reg *metrics.Registry) *Adapter {
	return &Adapter{
		db:       db,
		pool:     NewPool(db, poolSize, acquireTimeout, reg),
		compiler: compiler,
		metrics:  reg,
	}
}

// validateSchema checks that both tables exist.
func validateSchema(ctx context.Context, db *sql.DB) error {
	var tables int
	if err := db.QueryRowContext(ctx, querySchemaTables).Scan(&tables); err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if tables != 2 {
		return fmt.Errorf("expected events and event_tags tables, found %d of 2", tables)
	}
	return nil
}

// SaveEvent persists an event and its tag rows in one transaction.
// Returns storage.AlreadyExists, with nothing written, when the id is taken.
func (a *Adapter) SaveEvent(ctx context.Context, event *v1.Event) (status storage.SaveStatus, err error) {
	started := time.Now()
	defer func() {
		a.metrics.ObserveOperation("save", started, err)
		a.metrics.RecordSave(status, err)
	}()

	payload, err := codec.Encode(event)
	if err != nil {
		return 0, err
	}
	// Index rows come from the stored payload so they can never disagree with it.
	tags, err := codec.DecodeTags(payload)
	if err != nil {
		return 0, err
	}
	rows := tagRows(tags)

	err = a.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		var inserted []byte
		err = tx.QueryRowContext(ctx, querySaveEvent,
			event.ID[:],
			event.PubKey[:],
			event.CreatedAt,
			int64(event.Kind),
			event.Sig[:],
			payload,
		).Scan(&inserted)
		if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
			// ON CONFLICT DO NOTHING - event already exists (duplicate)
			status = storage.AlreadyExists
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}

		if err := bulkInsertTags(ctx, tx, event.ID, rows); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit: %w", err)
		}
		status = storage.Stored
		return nil
	})
	if err != nil {
		return 0, wrapErr("save", &event.ID, err)
	}

	slog.Debug("[Postgres] Saved event",
		"event_id", event.ID,
		"kind", event.Kind,
		"tag_rows", len(rows),
		"status", status)
	return status, nil
}

// DeleteEvents soft-deletes every visible event matching any filter.
func (a *Adapter) DeleteEvents(ctx context.Context, filters []v1.Filter) (deleted int64, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveOperation("delete", started, err) }()

	plan, err := a.compiler.CompileDelete(filters)
	if err != nil {
		return 0, err
	}
	if plan.Empty {
		return 0, nil
	}

	err = a.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, plan.SQL, plan.Args...)
		if err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, wrapErr("delete", nil, err)
	}

	slog.Debug("[Postgres] Soft-deleted events", "filters", len(filters), "deleted", deleted)
	return deleted, nil
}

// DeleteEvent soft-deletes one event. Deleting a missing or already deleted
// event is not an error.
func (a *Adapter) DeleteEvent(ctx context.Context, id v1.EventID) error {
	_, err := a.DeleteEvents(ctx, []v1.Filter{{IDs: []string{id.String()}}})
	return err
}

// EventByID fetches one event. Concurrent lookups of the same id share a
// single query; cancelling one caller does not fail the others.
func (a *Adapter) EventByID(ctx context.Context, id v1.EventID, includeDeleted bool) (event *v1.Event, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveOperation("fetch", started, err) }()

	// The shared lookup outlives any single caller: it runs detached from
	// the first caller's cancellation and is bounded by lookupTimeout. Each
	// caller still stops waiting when its own context ends.
	results := a.lookups.DoChan(lookupKey(id, includeDeleted), func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return a.eventByID(shared, id, includeDeleted)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*v1.Event), nil
	}
}

func (a *Adapter) eventByID(ctx context.Context, id v1.EventID, includeDeleted bool) (*v1.Event, error) {
	var payload []byte
	var deleted bool

	err := a.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, queryEventByID, id[:]).Scan(&payload, &deleted)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, wrapErr("fetch", &id, err)
	}
	if deleted && !includeDeleted {
		return nil, storage.ErrNotFound
	}

	evt, err := decodePayload(payload)
	if err != nil {
		return nil, wrapErr("fetch", &id, err)
	}
	return evt, nil
}

// CheckID reports whether an id is stored, soft-deleted or unknown.
func (a *Adapter) CheckID(ctx context.Context, id v1.EventID) (status storage.EventStatus, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveOperation("check", started, err) }()

	var deleted bool
	err = a.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, queryCheckID, id[:]).Scan(&deleted)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return storage.StatusNotExistent, nil
	case err != nil:
		return storage.StatusNotExistent, wrapErr("check", &id, err)
	case deleted:
		return storage.StatusDeleted, nil
	default:
		return storage.StatusSaved, nil
	}
}

// QueryEvents runs the compiled filters and decodes every row before
// returning. A row that fails to decode fails the whole query.
func (a *Adapter) QueryEvents(ctx context.Context, filters []v1.Filter, limit int) (events []*v1.Event, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveOperation("query", started, err) }()

	plan, err := a.compiler.CompileQuery(filters, limit)
	if err != nil {
		return nil, err
	}
	if plan.Empty {
		return []*v1.Event{}, nil
	}

	events = []*v1.Event{}
	err = a.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, plan.SQL, plan.Args...)
		if err != nil {
			return fmt.Errorf("failed to query events: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			event, err := scanEventRow(rows)
			if err != nil {
				return err
			}
			events = append(events, event)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("query", nil, err)
	}

	return events, nil
}

// CountEvents counts distinct visible events matching any filter.
func (a *Adapter) CountEvents(ctx context.Context, filters []v1.Filter) (count int64, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveOperation("count", started, err) }()

	plan, err := a.compiler.CompileCount(filters)
	if err != nil {
		return 0, err
	}
	if plan.Empty {
		return 0, nil
	}

	err = a.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, plan.SQL, plan.Args...).Scan(&count)
	})
	if err != nil {
		return 0, wrapErr("count", nil, err)
	}
	return count, nil
}

// Wipe is refused: this layer never hard-deletes.
func (a *Adapter) Wipe(context.Context) error {
	return storage.ErrNotSupported
}

// Ping checks database reachability through the bounded pool.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.pool.WithConn(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Pool exposes the bounded pool for the stats collector.
func (a *Adapter) Pool() *Pool {
	return a.pool
}

// DB returns the underlying *sql.DB.
func (a *Adapter) DB() *sql.DB {
	return a.db
}

// Close closes the database connection.
// Should be called during graceful shutdown.
func (a *Adapter) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	slog.Info("[Postgres] Adapter closed gracefully")
	return nil
}

// wrapErr attaches operation context. Pool exhaustion and caller
// cancellation pass through unwrapped so callers can match them directly.
func wrapErr(op string, id *v1.EventID, err error) error {
	if errors.Is(err, storage.ErrPoolExhausted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return storage.Wrap(op, id, err)
}
