package v1

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestFilter_UnmarshalNIP01(t *testing.T) {
	body := `{
		"ids": ["abcd"],
		"authors": ["` + strings.Repeat("01", 32) + `"],
		"kinds": [1, 7],
		"#e": ["x", "y"],
		"#p": [],
		"since": 10,
		"until": 20,
		"limit": 5,
		"search": "ignored"
	}`

	var f Filter
	if err := json.Unmarshal([]byte(body), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(f.IDs) != 1 || f.IDs[0] != "abcd" {
		t.Errorf("IDs = %v", f.IDs)
	}
	if len(f.Authors) != 1 || f.Authors[0] != testKey(1) {
		t.Errorf("Authors = %v", f.Authors)
	}
	if len(f.Kinds) != 2 || f.Kinds[1] != 7 {
		t.Errorf("Kinds = %v", f.Kinds)
	}
	if got := f.Tags["e"]; len(got) != 2 || got[0] != "x" {
		t.Errorf("Tags[e] = %v", got)
	}
	if got, ok := f.Tags["p"]; !ok || got == nil || len(got) != 0 {
		t.Errorf("Tags[p] should be an explicit empty set, got %v (present=%v)", got, ok)
	}
	if f.Since == nil || *f.Since != 10 || f.Until == nil || *f.Until != 20 {
		t.Errorf("Since/Until = %v/%v", f.Since, f.Until)
	}
	if f.Limit == nil || *f.Limit != 5 {
		t.Errorf("Limit = %v", f.Limit)
	}
	if f.IncludeDeleted {
		t.Error("IncludeDeleted must never come from JSON")
	}
}

func TestFilter_UnsetVersusEmpty(t *testing.T) {
	var unset Filter
	if err := json.Unmarshal([]byte(`{"kinds": null}`), &unset); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if unset.Kinds != nil {
		t.Errorf("null kinds should stay unset, got %v", unset.Kinds)
	}

	var empty Filter
	if err := json.Unmarshal([]byte(`{"kinds": []}`), &empty); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if empty.Kinds == nil || len(empty.Kinds) != 0 {
		t.Errorf("[] kinds should be an explicit empty set, got %v", empty.Kinds)
	}
}

func TestFilter_MarshalRoundTrip(t *testing.T) {
	since := int64(100)
	limit := 3
	f := Filter{
		IDs:   []string{"ff"},
		Kinds: []Kind{1},
		Tags:  map[string][]string{"t": {"nostr"}},
		Since: &since,
		Limit: &limit,
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"#t":["nostr"]`) {
		t.Errorf("tag key not written NIP-01 style: %s", data)
	}

	var back Filter
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Tags["t"][0] != "nostr" || *back.Since != 100 || *back.Limit != 3 {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if back.Authors != nil {
		t.Errorf("unset authors should stay nil, got %v", back.Authors)
	}
}

func TestFilter_Validate(t *testing.T) {
	negative := -1
	tests := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{name: "empty filter", filter: Filter{}},
		{name: "full id", filter: Filter{IDs: []string{strings.Repeat("a", 64)}}},
		{name: "odd prefix", filter: Filter{IDs: []string{"abc"}}},
		{name: "uppercase prefix", filter: Filter{IDs: []string{"ABC"}}, wantErr: true},
		{name: "too long prefix", filter: Filter{IDs: []string{strings.Repeat("a", 65)}}, wantErr: true},
		{name: "empty prefix", filter: Filter{IDs: []string{""}}, wantErr: true},
		{name: "empty tag key", filter: Filter{Tags: map[string][]string{"": {"x"}}}, wantErr: true},
		{name: "negative limit", filter: Filter{Limit: &negative}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilter_TagKeysSorted(t *testing.T) {
	f := Filter{Tags: map[string][]string{"p": nil, "e": nil, "t": nil}}
	keys := f.TagKeys()
	if strings.Join(keys, ",") != "e,p,t" {
		t.Errorf("TagKeys() = %v", keys)
	}
}
