package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

func genTags() gopter.Gen {
	return gen.SliceOf(
		gen.SliceOf(gen.AnyString()).Map(func(rest []string) v1.Tag {
			return append(v1.Tag{"t"}, rest...)
		}),
	).Map(func(tags []v1.Tag) v1.Tags {
		// Decoded events always carry a non-nil tag list.
		return append(v1.Tags{}, tags...)
	})
}

// TestProperty_RoundTrip checks Decode(Encode(e)) == e for arbitrary events.
func TestProperty_RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decode inverts encode", prop.ForAll(
		func(idBytes []uint8, createdAt int64, kind uint16, content string, tags v1.Tags) bool {
			evt := &v1.Event{
				CreatedAt: createdAt,
				Kind:      v1.Kind(kind),
				Content:   content,
				Tags:      tags,
			}
			copy(evt.ID[:], idBytes)
			copy(evt.PubKey[:], idBytes)
			copy(evt.Sig[:], idBytes)

			payload, err := Encode(evt)
			if err != nil {
				return false
			}
			decoded, err := Decode(payload)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(evt, decoded)
		},
		gen.SliceOfN(32, gen.UInt8()),
		gen.Int64(),
		gen.UInt16(),
		gen.AnyString(),
		genTags(),
	))

	properties.Property("decoded event marshals to the same JSON", prop.ForAll(
		func(content string, tags v1.Tags) bool {
			evt := &v1.Event{Kind: 1, Content: content, Tags: tags}
			payload, err := Encode(evt)
			if err != nil {
				return false
			}
			decoded, err := Decode(payload)
			if err != nil {
				return false
			}
			want, err := json.Marshal(evt)
			if err != nil {
				return false
			}
			got, err := json.Marshal(decoded)
			return err == nil && bytes.Equal(want, got)
		},
		gen.AnyString(),
		genTags(),
	))

	properties.Property("tag projection matches full decode", prop.ForAll(
		func(content string, tags v1.Tags) bool {
			evt := &v1.Event{Content: content, Tags: tags}
			payload, err := Encode(evt)
			if err != nil {
				return false
			}
			projected, err := DecodeTags(payload)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(tags, projected)
		},
		gen.AnyString(),
		genTags(),
	))

	properties.TestingRun(t)
}

// TestProperty_TruncationNeverPanics checks every prefix of a valid payload
// either decodes (cut on a field boundary) or fails with ErrDecoding.
func TestProperty_TruncationNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("prefixes decode or fail cleanly", prop.ForAll(
		func(content string, cut int) bool {
			payload, err := Encode(&v1.Event{Content: content, Tags: v1.Tags{{"e", content}}})
			if err != nil {
				return false
			}
			if cut >= len(payload) {
				cut = len(payload) - 1
			}
			_, err = Decode(payload[:cut])
			return err == nil || errors.Is(err, ErrDecoding)
		},
		gen.AnyString(),
		gen.IntRange(0, 4096),
	))

	properties.TestingRun(t)
}
