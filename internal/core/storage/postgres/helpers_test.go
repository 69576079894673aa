package postgres

import (
	"bytes"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
	"github.com/aevon-lab/relaystore/internal/core/codec"
)

func fullID(b byte) []byte {
	return bytes.Repeat([]byte{b}, v1.IDSize)
}

func testEventID(b byte) v1.EventID {
	var id v1.EventID
	copy(id[:], fullID(b))
	return id
}

func testPubKey(b byte) v1.PublicKey {
	var pk v1.PublicKey
	copy(pk[:], fullID(b))
	return pk
}

// testEvent builds a kind 1 note with one non-indexable tag between two
// indexable ones.
func testEvent(seed byte, createdAt int64) *v1.Event {
	evt := &v1.Event{
		ID:        testEventID(seed),
		PubKey:    testPubKey(seed + 100),
		CreatedAt: createdAt,
		Kind:      1,
		Tags: v1.Tags{
			{"e", testEventID(seed + 1).String(), "wss://relay.example"},
			{"client", "relaystore"},
			{"t", "nostr"},
		},
		Content: "hello from relaystore",
	}
	copy(evt.Sig[:], bytes.Repeat([]byte{seed}, v1.SignatureSize))
	return evt
}

func mustEncode(t *testing.T, event *v1.Event) []byte {
	t.Helper()
	payload, err := codec.Encode(event)
	require.NoError(t, err)
	return payload
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	require.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("23505")))
	require.False(t, isUniqueViolation(nil))
}

func TestLookupKey(t *testing.T) {
	id := testEventID(1)
	require.NotEqual(t, lookupKey(id, true), lookupKey(id, false))
	require.Equal(t, lookupKey(id, false), lookupKey(id, false))
}
