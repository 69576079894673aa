package ingestion

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	"github.com/aevon-lab/relaystore/internal/core/storage"
)

const (
	maxImportLineBytes = 4 * 1024 * 1024

	// Pool exhaustion is transient; a save is retried this many times
	// with doubling backoff before the import gives up.
	poolRetryAttempts = 5
	poolRetryBackoff  = 50 * time.Millisecond
)

// ImportStats summarizes a bulk import run.
type ImportStats struct {
	Read       int64
	Stored     int64
	Duplicates int64
	Invalid    int64
	Duration   time.Duration
}

// Importer loads newline-delimited JSON events into an EventStore.
type Importer struct {
	store        storage.EventStore
	workerCount  int
	retryBackoff time.Duration
}

func NewImporter(store storage.EventStore, workerCount int) *Importer {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Importer{store: store, workerCount: workerCount, retryBackoff: poolRetryBackoff}
}

type importJob struct {
	line int64
	evt  *v1.Event
}

// Import reads one event per line from r and saves them concurrently.
// Lines that fail to parse or validate are counted and skipped. A save that
// hits pool exhaustion is retried with backoff. Any other storage error, or
// exhaustion that outlasts the retries, cancels the run and is returned
// alongside the partial stats.
func (im *Importer) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	started := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		stats    ImportStats
		firstErr error
		errOnce  sync.Once
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	jobs := make(chan importJob, im.workerCount*2)

	var wg sync.WaitGroup
	wg.Add(im.workerCount)
	for i := 0; i < im.workerCount; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					continue
				}
				status, err := im.save(ctx, job)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					slog.Error("[Import] Failed to save event", "line", job.line, "event_id", job.evt.ID, "error", err)
					fail(fmt.Errorf("line %d: %w", job.line, err))
					continue
				}
				if status == storage.AlreadyExists {
					atomic.AddInt64(&stats.Duplicates, 1)
				} else {
					atomic.AddInt64(&stats.Stored, 1)
				}
			}
		}()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLineBytes)

	var line int64
feed:
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		atomic.AddInt64(&stats.Read, 1)

		evt, err := parseImportLine(raw)
		if err != nil {
			slog.Warn("[Import] Skipping invalid line", "line", line, "error", err)
			atomic.AddInt64(&stats.Invalid, 1)
			continue
		}

		select {
		case jobs <- importJob{line: line, evt: evt}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := scanner.Err(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("read input: %w", err)
	}
	if firstErr == nil && ctx.Err() != nil {
		// Parent context cancelled; cancel() only runs on return or via fail.
		firstErr = ctx.Err()
	}

	stats.Duration = time.Since(started)
	slog.Info("[Import] Finished",
		"read", stats.Read,
		"stored", stats.Stored,
		"duplicates", stats.Duplicates,
		"invalid", stats.Invalid,
		"duration", stats.Duration)

	return stats, firstErr
}

// save calls SaveEvent, retrying while the store reports pool exhaustion.
func (im *Importer) save(ctx context.Context, job importJob) (storage.SaveStatus, error) {
	backoff := im.retryBackoff
	for attempt := 1; ; attempt++ {
		status, err := im.store.SaveEvent(ctx, job.evt)
		if !errors.Is(err, storage.ErrPoolExhausted) || attempt == poolRetryAttempts {
			return status, err
		}
		slog.Warn("[Import] Pool exhausted, retrying", "line", job.line, "attempt", attempt, "backoff", backoff)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
}

func parseImportLine(raw []byte) (*v1.Event, error) {
	var evt v1.Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		return nil, err
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return &evt, nil
}
