package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

func TestTagRows(t *testing.T) {
	tests := []struct {
		name string
		tags v1.Tags
		want []tagRow
	}{
		{
			name: "no tags",
			tags: nil,
			want: nil,
		},
		{
			name: "single letter keys with values",
			tags: v1.Tags{{"e", "abc", "wss://relay"}, {"P", "def"}},
			want: []tagRow{
				{key: "e", value: "abc", position: 0},
				{key: "P", value: "def", position: 1},
			},
		},
		{
			name: "multi letter, digit and valueless keys are skipped",
			tags: v1.Tags{{"client", "x"}, {"1", "y"}, {"t"}, {"é", "z"}, {"t", "nostr"}},
			want: []tagRow{{key: "t", value: "nostr", position: 4}},
		},
		{
			name: "repeated keys are kept",
			tags: v1.Tags{{"p", "a"}, {"p", "b"}, {"p", "a"}},
			want: []tagRow{
				{key: "p", value: "a", position: 0},
				{key: "p", value: "b", position: 1},
				{key: "p", value: "a", position: 2},
			},
		},
		{
			name: "values with NUL are left unindexed",
			tags: v1.Tags{{"t", "a\x00b"}, {"t", "nostr"}},
			want: []tagRow{{key: "t", value: "nostr", position: 1}},
		},
		{
			name: "empty value is indexed",
			tags: v1.Tags{{"d", ""}},
			want: []tagRow{{key: "d", value: "", position: 0}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tagRows(tc.tags))
		})
	}
}

func TestIndexableValues(t *testing.T) {
	clean := []string{"a", "b"}
	require.Equal(t, clean, indexableValues(clean))
	require.Equal(t, []string{"b"}, indexableValues([]string{"\x00", "b", "c\x00"}))
	require.Empty(t, indexableValues([]string{"\x00"}))
}

func TestCopyEventTagsStatement(t *testing.T) {
	require.Equal(t, `COPY "event_tags" ("event_id", "tag", "tag_value", "position") FROM STDIN`, copyEventTags)
}
