package postgres

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	"github.com/aevon-lab/relaystore/internal/core/codec"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports a primary key conflict that slipped past
// ON CONFLICT, e.g. under a concurrent insert of the same id.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans a single payload column and decodes it.
// Compatible with both sql.Row (single) and sql.Rows (multiple).
func scanEventRow(row scanner) (*v1.Event, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}
	return decodePayload(payload)
}

func decodePayload(payload []byte) (*v1.Event, error) {
	evt, err := codec.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return evt, nil
}

// lookupKey is the singleflight key for an id lookup.
func lookupKey(id v1.EventID, includeDeleted bool) string {
	return id.String() + "/" + strconv.FormatBool(includeDeleted)
}
