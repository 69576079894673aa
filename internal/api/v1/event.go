package v1

import (
	"encoding/hex"
	"fmt"
)

const (
	// IDSize is the byte length of event ids and public keys.
	IDSize = 32
	// SignatureSize is the byte length of a Schnorr signature.
	SignatureSize = 64
)

// EventID is the sha256 identifier of an event. Encoded as lowercase hex in JSON.
type EventID [IDSize]byte

// PublicKey is the x-only public key of the event author.
type PublicKey [IDSize]byte

// Signature is the event signature. Stored verbatim, never re-validated here.
type Signature [SignatureSize]byte

// Kind classifies event semantics.
type Kind uint16

func (id EventID) String() string { return hex.EncodeToString(id[:]) }

// IsZero reports whether the id is unset.
func (id EventID) IsZero() bool { return id == EventID{} }

func (id EventID) MarshalText() ([]byte, error) { return marshalHex(id[:]) }

func (id *EventID) UnmarshalText(text []byte) error {
	return unmarshalHex(id[:], text, "id")
}

func (pk PublicKey) String() string { return hex.EncodeToString(pk[:]) }

// IsZero reports whether the key is unset.
func (pk PublicKey) IsZero() bool { return pk == PublicKey{} }

func (pk PublicKey) MarshalText() ([]byte, error) { return marshalHex(pk[:]) }

func (pk *PublicKey) UnmarshalText(text []byte) error {
	return unmarshalHex(pk[:], text, "pubkey")
}

func (s Signature) String() string { return hex.EncodeToString(s[:]) }

func (s Signature) MarshalText() ([]byte, error) { return marshalHex(s[:]) }

func (s *Signature) UnmarshalText(text []byte) error {
	return unmarshalHex(s[:], text, "sig")
}

// ParseEventID decodes a 64 character hex string.
func ParseEventID(s string) (EventID, error) {
	var id EventID
	err := id.UnmarshalText([]byte(s))
	return id, err
}

// ParsePublicKey decodes a 64 character hex string.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	err := pk.UnmarshalText([]byte(s))
	return pk, err
}

func marshalHex(b []byte) ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(b)))
	hex.Encode(out, b)
	return out, nil
}

func unmarshalHex(dst []byte, text []byte, field string) error {
	if len(text) != hex.EncodedLen(len(dst)) {
		return fmt.Errorf("%s must be %d hex characters, got %d", field, hex.EncodedLen(len(dst)), len(text))
	}
	if _, err := hex.Decode(dst, text); err != nil {
		return fmt.Errorf("%s is not valid hex: %w", field, err)
	}
	return nil
}

// Tag is one tag array, e.g. ["e", "<event id>", "<relay url>"].
type Tag []string

// Key returns the first element, or "" for an empty tag.
func (t Tag) Key() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns the second element, or "" when absent.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Tags is the ordered tag list of an event.
type Tags []Tag

// Event is the signed protocol record stored by relaystore.
//
// Events arrive here already validated (signature, proof of work) by the
// protocol layer. Once stored they are immutable.
type Event struct {
	ID        EventID   `json:"id"`
	PubKey    PublicKey `json:"pubkey"`
	CreatedAt int64     `json:"created_at"`
	Kind      Kind      `json:"kind"`
	Tags      Tags      `json:"tags"`
	Content   string    `json:"content"`
	Sig       Signature `json:"sig"`
}

// Validate checks the structural shape of the event.
// Cryptographic checks belong to the caller.
func (e *Event) Validate() error {
	if e.ID.IsZero() {
		return fmt.Errorf("id is required")
	}

	if e.PubKey.IsZero() {
		return fmt.Errorf("pubkey is required")
	}

	if e.CreatedAt < 0 {
		return fmt.Errorf("created_at must not be negative")
	}

	for i, tag := range e.Tags {
		if len(tag) == 0 {
			return fmt.Errorf("tag %d is empty", i)
		}
	}

	return nil
}
