package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/aevon-lab/relaystore/internal/core/metrics"
	"github.com/aevon-lab/relaystore/internal/core/storage"
)

// Pool bounds concurrent connection checkouts on top of *sql.DB.
//
// database/sql waits forever for a free connection once MaxOpenConns is
// reached. Pool puts a weighted semaphore of the same size in front of it so
// a checkout fails with storage.ErrPoolExhausted after acquireTimeout
// instead.
type Pool struct {
	db             *sql.DB
	sem            *semaphore.Weighted
	size           int
	acquireTimeout time.Duration
	acquired       atomic.Int64
	metrics        *metrics.Registry
}

// NewPool wraps db. size must match db's MaxOpenConns. A zero acquireTimeout
// fails immediately when every connection is checked out.
func NewPool(db *sql.DB, size int, acquireTimeout time.Duration, reg *metrics.Registry) *Pool {
	return &Pool{
		db:             db,
		sem:            semaphore.NewWeighted(int64(size)),
		size:           size,
		acquireTimeout: acquireTimeout,
		metrics:        reg,
	}
}

// WithConn checks out one connection, runs fn and returns the connection on
// every exit path.
func (p *Pool) WithConn(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	p.acquired.Add(1)
	defer func() {
		p.acquired.Add(-1)
		p.sem.Release(1)
	}()

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	return fn(ctx, conn)
}

func (p *Pool) acquire(ctx context.Context) error {
	if p.acquireTimeout <= 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.sem.TryAcquire(1) {
			return p.exhausted()
		}
		return nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	if err := p.sem.Acquire(acquireCtx, 1); err != nil {
		// Caller cancellation wins over our own timeout.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return p.exhausted()
		}
		return err
	}
	return nil
}

func (p *Pool) exhausted() error {
	p.metrics.RecordPoolExhausted()
	slog.Warn("[Pool] Connection acquire timed out",
		"size", p.size,
		"acquire_timeout", p.acquireTimeout)
	return storage.ErrPoolExhausted
}

// PoolStats implements metrics.StatsSource.
func (p *Pool) PoolStats() metrics.PoolStats {
	s := p.db.Stats()
	return metrics.PoolStats{
		MaxOpen:   s.MaxOpenConnections,
		Open:      s.OpenConnections,
		InUse:     s.InUse,
		Idle:      s.Idle,
		Acquired:  int(p.acquired.Load()),
		WaitCount: s.WaitCount,
	}
}
