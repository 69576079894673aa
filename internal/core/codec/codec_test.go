package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

func sampleEvent() *v1.Event {
	evt := &v1.Event{
		CreatedAt: 1700000000,
		Kind:      1,
		Tags: v1.Tags{
			{"e", "5c83da77af1dec6d7289834998ad7aafbd9e2191396d75ec3cc27f5a77226f36", "wss://relay.example"},
			{"p", "f7234bd4c1394dda46d09f35bd384dd30cc552ad5541990f98844fb06676e9ca"},
			{"t", "nostr"},
			{"client"},
		},
		Content: "gm ☀️",
	}
	for i := range evt.ID {
		evt.ID[i] = byte(i)
		evt.PubKey[i] = byte(255 - i)
	}
	for i := range evt.Sig {
		evt.Sig[i] = byte(i * 3)
	}
	return evt
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	evt := sampleEvent()

	payload, err := Encode(evt)
	require.NoError(t, err)
	require.Equal(t, Version, payload[0])
	require.Zero(t, payload[1]&flagSnappy, "small payloads stay uncompressed")

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, evt, decoded)
}

func TestDecode_EmptyTagsStayEmptyList(t *testing.T) {
	for _, tags := range []v1.Tags{nil, {}} {
		evt := sampleEvent()
		evt.Tags = tags

		payload, err := Encode(evt)
		require.NoError(t, err)

		decoded, err := Decode(payload)
		require.NoError(t, err)
		require.NotNil(t, decoded.Tags)
		require.Empty(t, decoded.Tags)

		out, err := json.Marshal(decoded)
		require.NoError(t, err)
		require.Contains(t, string(out), `"tags":[]`)
	}
}

func TestEncode_CompressesLargeBodies(t *testing.T) {
	evt := sampleEvent()
	evt.Content = strings.Repeat("long form article body ", 200)

	payload, err := Encode(evt)
	require.NoError(t, err)
	require.Equal(t, flagSnappy, payload[1]&flagSnappy)
	require.Less(t, len(payload), len(evt.Content))

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, evt.Content, decoded.Content)
	require.Equal(t, evt.Tags, decoded.Tags)
}

func TestEncode_NegativeCreatedAt(t *testing.T) {
	evt := sampleEvent()
	evt.CreatedAt = -42

	payload, err := Encode(evt)
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, int64(-42), decoded.CreatedAt)
}

func TestEncode_RejectsMalformedEvents(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*v1.Event) *v1.Event
	}{
		{
			name:   "nil event",
			mutate: func(*v1.Event) *v1.Event { return nil },
		},
		{
			name: "empty tag",
			mutate: func(e *v1.Event) *v1.Event {
				e.Tags = append(e.Tags, v1.Tag{})
				return e
			},
		},
		{
			name: "invalid utf8 content",
			mutate: func(e *v1.Event) *v1.Event {
				e.Content = string([]byte{0xff, 0xfe})
				return e
			},
		},
		{
			name: "invalid utf8 tag element",
			mutate: func(e *v1.Event) *v1.Event {
				e.Tags = v1.Tags{{"t", string([]byte{0xc3})}}
				return e
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode(tc.mutate(sampleEvent()))
			require.ErrorIs(t, err, ErrEncoding)
		})
	}
}

func TestDecode_RejectsCorruptPayloads(t *testing.T) {
	valid, err := Encode(sampleEvent())
	require.NoError(t, err)

	shortID := []byte{Version, 0}
	shortID = protowire.AppendTag(shortID, fieldID, protowire.BytesType)
	shortID = protowire.AppendBytes(shortID, []byte{1, 2, 3})

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "header only version", payload: []byte{Version}},
		{name: "unknown version", payload: append([]byte{9}, valid[1:]...)},
		{name: "unknown flags", payload: append([]byte{Version, 0x80}, valid[2:]...)},
		{name: "truncated", payload: valid[:len(valid)-5]},
		{name: "wrong id length", payload: shortID},
		{name: "bad snappy frame", payload: []byte{Version, flagSnappy, 0xff, 0xff, 0xff}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.payload)
			require.ErrorIs(t, err, ErrDecoding)
		})
	}
}

func TestDecode_SkipsUnknownFields(t *testing.T) {
	evt := sampleEvent()
	payload, err := Encode(evt)
	require.NoError(t, err)

	payload = protowire.AppendTag(payload, 42, protowire.VarintType)
	payload = protowire.AppendVarint(payload, 7)
	payload = protowire.AppendTag(payload, 43, protowire.BytesType)
	payload = protowire.AppendString(payload, "future field")

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, evt, decoded)

	tags, err := DecodeTags(payload)
	require.NoError(t, err)
	require.Equal(t, evt.Tags, tags)
}

func TestDecodeTags(t *testing.T) {
	evt := sampleEvent()
	payload, err := Encode(evt)
	require.NoError(t, err)

	tags, err := DecodeTags(payload)
	require.NoError(t, err)
	require.Equal(t, evt.Tags, tags)

	evt.Tags = nil
	payload, err = Encode(evt)
	require.NoError(t, err)

	tags, err = DecodeTags(payload)
	require.NoError(t, err)
	require.NotNil(t, tags)
	require.Empty(t, tags)

	_, err = DecodeTags([]byte{Version})
	require.ErrorIs(t, err, ErrDecoding)
}
