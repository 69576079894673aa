package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

// tagRow is one event_tags row minus the event id.
type tagRow struct {
	key      string
	value    string
	position int
}

// tagRows derives the index rows for a tag list. Only tags keyed by a single
// ASCII letter with a value are indexed; repeated keys are kept. Values with
// a NUL byte cannot be stored in a TEXT column and are left unindexed; the
// tag itself is still kept in the payload.
func tagRows(tags v1.Tags) []tagRow {
	var rows []tagRow
	for i, tag := range tags {
		if len(tag) < 2 || !isIndexableKey(tag[0]) || !isIndexableValue(tag[1]) {
			continue
		}
		rows = append(rows, tagRow{key: tag[0], value: tag[1], position: i})
	}
	return rows
}

func isIndexableKey(key string) bool {
	if len(key) != 1 {
		return false
	}
	c := key[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIndexableValue(value string) bool {
	return !strings.ContainsRune(value, 0)
}

// indexableValues drops values that can never be indexed. The input is
// returned as is when nothing needs dropping.
func indexableValues(values []string) []string {
	for i, v := range values {
		if isIndexableValue(v) {
			continue
		}
		kept := append([]string{}, values[:i]...)
		for _, rest := range values[i+1:] {
			if isIndexableValue(rest) {
				kept = append(kept, rest)
			}
		}
		return kept
	}
	return values
}

// bulkInsertTags streams rows into event_tags with a single COPY inside tx.
func bulkInsertTags(ctx context.Context, tx *sql.Tx, id v1.EventID, rows []tagRow) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, copyEventTags)
	if err != nil {
		return fmt.Errorf("failed to prepare tag copy: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, id[:], r.key, r.value, r.position); err != nil {
			return fmt.Errorf("failed to copy tag %q at position %d: %w", r.key, r.position, err)
		}
	}

	// An argument-less Exec flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to flush tag copy: %w", err)
	}
	return nil
}

var copyEventTags = pq.CopyIn("event_tags", "event_id", "tag", "tag_value", "position")
