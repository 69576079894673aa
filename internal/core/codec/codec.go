// Package codec converts events to and from the opaque payload stored in the
// events table.
//
// Layout: a two byte header [version][flags] followed by a protobuf wire
// format body. The body is snappy-compressed when flags&flagSnappy is set.
//
//	1 id         bytes (32)
//	2 pubkey     bytes (32)
//	3 created_at zigzag varint
//	4 kind       varint
//	5 content    string
//	6 sig        bytes (64)
//	7 tag        message { 1 repeated string }
//
// Unknown fields are skipped on decode so newer writers stay readable.
package codec

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/golang/snappy"
	"google.golang.org/protobuf/encoding/protowire"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

const (
	// Version is the current payload format version.
	Version byte = 1

	flagSnappy byte = 1 << 0

	headerSize = 2

	// compressThreshold is the body size above which snappy is attempted.
	compressThreshold = 512
)

const (
	fieldID        protowire.Number = 1
	fieldPubKey    protowire.Number = 2
	fieldCreatedAt protowire.Number = 3
	fieldKind      protowire.Number = 4
	fieldContent   protowire.Number = 5
	fieldSig       protowire.Number = 6
	fieldTag       protowire.Number = 7

	fieldTagElement protowire.Number = 1
)

var (
	// ErrEncoding is returned for events that cannot be represented.
	ErrEncoding = errors.New("codec: encoding failed")
	// ErrDecoding is returned for payloads that are not valid encodings.
	ErrDecoding = errors.New("codec: decoding failed")
)

// Encode serializes an event into a payload.
func Encode(event *v1.Event) ([]byte, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: nil event", ErrEncoding)
	}
	if !utf8.ValidString(event.Content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrEncoding)
	}

	body := make([]byte, 0, 160+len(event.Content)+16*len(event.Tags))
	body = protowire.AppendTag(body, fieldID, protowire.BytesType)
	body = protowire.AppendBytes(body, event.ID[:])
	body = protowire.AppendTag(body, fieldPubKey, protowire.BytesType)
	body = protowire.AppendBytes(body, event.PubKey[:])
	body = protowire.AppendTag(body, fieldCreatedAt, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(event.CreatedAt))
	body = protowire.AppendTag(body, fieldKind, protowire.VarintType)
	body = protowire.AppendVarint(body, uint64(event.Kind))
	body = protowire.AppendTag(body, fieldContent, protowire.BytesType)
	body = protowire.AppendString(body, event.Content)
	body = protowire.AppendTag(body, fieldSig, protowire.BytesType)
	body = protowire.AppendBytes(body, event.Sig[:])

	for i, tag := range event.Tags {
		if len(tag) == 0 {
			return nil, fmt.Errorf("%w: tag %d is empty", ErrEncoding, i)
		}
		var msg []byte
		for j, elem := range tag {
			if !utf8.ValidString(elem) {
				return nil, fmt.Errorf("%w: tag %d element %d is not valid UTF-8", ErrEncoding, i, j)
			}
			msg = protowire.AppendTag(msg, fieldTagElement, protowire.BytesType)
			msg = protowire.AppendString(msg, elem)
		}
		body = protowire.AppendTag(body, fieldTag, protowire.BytesType)
		body = protowire.AppendBytes(body, msg)
	}

	flags := byte(0)
	if len(body) > compressThreshold {
		if compressed := snappy.Encode(nil, body); len(compressed) < len(body) {
			body = compressed
			flags |= flagSnappy
		}
	}

	out := make([]byte, 0, headerSize+len(body))
	out = append(out, Version, flags)
	return append(out, body...), nil
}

// Decode parses a payload produced by Encode.
func Decode(payload []byte) (*v1.Event, error) {
	body, err := openBody(payload)
	if err != nil {
		return nil, err
	}

	// Tags is never nil so an event without tags still marshals as "tags":[].
	event := v1.Event{Tags: v1.Tags{}}
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, wireError("tag", n)
		}
		body = body[n:]

		switch {
		case num == fieldID && typ == protowire.BytesType:
			n, err = consumeFixed(body, event.ID[:], "id")
		case num == fieldPubKey && typ == protowire.BytesType:
			n, err = consumeFixed(body, event.PubKey[:], "pubkey")
		case num == fieldSig && typ == protowire.BytesType:
			n, err = consumeFixed(body, event.Sig[:], "sig")
		case num == fieldCreatedAt && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(body)
			event.CreatedAt = protowire.DecodeZigZag(v)
		case num == fieldKind && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(body)
			if n >= 0 && v > 0xffff {
				return nil, fmt.Errorf("%w: kind %d out of range", ErrDecoding, v)
			}
			event.Kind = v1.Kind(v)
		case num == fieldContent && typ == protowire.BytesType:
			var v []byte
			v, n = protowire.ConsumeBytes(body)
			event.Content = string(v)
		case num == fieldTag && typ == protowire.BytesType:
			var tag v1.Tag
			tag, n, err = consumeTag(body)
			event.Tags = append(event.Tags, tag)
		default:
			n = protowire.ConsumeFieldValue(num, typ, body)
		}
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, wireError(fmt.Sprintf("field %d", num), n)
		}
		body = body[n:]
	}

	return &event, nil
}

// DecodeTags extracts only the tag list from a payload. Other fields are
// skipped without being materialized.
func DecodeTags(payload []byte) (v1.Tags, error) {
	body, err := openBody(payload)
	if err != nil {
		return nil, err
	}

	tags := v1.Tags{}
	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, wireError("tag", n)
		}
		body = body[n:]

		if num == fieldTag && typ == protowire.BytesType {
			var tag v1.Tag
			tag, n, err = consumeTag(body)
			if err != nil {
				return nil, err
			}
			tags = append(tags, tag)
		} else {
			n = protowire.ConsumeFieldValue(num, typ, body)
		}
		if n < 0 {
			return nil, wireError(fmt.Sprintf("field %d", num), n)
		}
		body = body[n:]
	}

	return tags, nil
}

func openBody(payload []byte) ([]byte, error) {
	if len(payload) < headerSize {
		return nil, fmt.Errorf("%w: payload of %d bytes has no header", ErrDecoding, len(payload))
	}
	if payload[0] != Version {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrDecoding, payload[0])
	}

	flags, body := payload[1], payload[headerSize:]
	if flags&^flagSnappy != 0 {
		return nil, fmt.Errorf("%w: unknown flags %#x", ErrDecoding, flags)
	}
	if flags&flagSnappy == 0 {
		return body, nil
	}

	decoded, err := snappy.Decode(nil, body)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %v", ErrDecoding, err)
	}
	return decoded, nil
}

func consumeFixed(b []byte, dst []byte, field string) (int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	if len(v) != len(dst) {
		return 0, fmt.Errorf("%w: %s has %d bytes, want %d", ErrDecoding, field, len(v), len(dst))
	}
	copy(dst, v)
	return n, nil
}

func consumeTag(b []byte) (v1.Tag, int, error) {
	msg, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, n, nil
	}

	tag := v1.Tag{}
	for len(msg) > 0 {
		num, typ, m := protowire.ConsumeTag(msg)
		if m < 0 {
			return nil, 0, wireError("tag element", m)
		}
		msg = msg[m:]

		if num == fieldTagElement && typ == protowire.BytesType {
			var v []byte
			v, m = protowire.ConsumeBytes(msg)
			if m >= 0 {
				tag = append(tag, string(v))
			}
		} else {
			m = protowire.ConsumeFieldValue(num, typ, msg)
		}
		if m < 0 {
			return nil, 0, wireError("tag element", m)
		}
		msg = msg[m:]
	}

	if len(tag) == 0 {
		return nil, 0, fmt.Errorf("%w: empty tag", ErrDecoding)
	}
	return tag, n, nil
}

func wireError(what string, n int) error {
	return fmt.Errorf("%w: %s: %v", ErrDecoding, what, protowire.ParseError(n))
}
