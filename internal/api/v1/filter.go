package v1

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Filter selects events. All populated fields must match (AND). Within one
// field any listed value may match (OR). Multiple filters are OR-combined by
// the store.
//
// A nil slice means "no constraint". A non-nil empty slice is an explicit
// empty set and matches nothing.
type Filter struct {
	// IDs holds lowercase hex id prefixes, 1 to 64 characters.
	IDs     []string
	Authors []PublicKey
	Kinds   []Kind
	// Tags maps a tag key (without the leading '#') to its accepted values.
	Tags  map[string][]string
	Since *int64
	Until *int64
	Limit *int

	// IncludeDeleted lifts soft-delete exclusion. Maintenance paths only;
	// never populated from JSON.
	IncludeDeleted bool
}

// Validate rejects malformed filters. An empty set is not malformed.
func (f *Filter) Validate() error {
	for _, prefix := range f.IDs {
		if err := ValidateIDPrefix(prefix); err != nil {
			return err
		}
	}
	for key := range f.Tags {
		if key == "" {
			return fmt.Errorf("tag filter key must not be empty")
		}
	}
	if f.Limit != nil && *f.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

// ValidateIDPrefix checks that prefix is 1-64 lowercase hex characters.
func ValidateIDPrefix(prefix string) error {
	if prefix == "" || len(prefix) > hex.EncodedLen(IDSize) {
		return fmt.Errorf("id prefix %q must be 1-%d hex characters", prefix, hex.EncodedLen(IDSize))
	}
	for _, c := range prefix {
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') {
			return fmt.Errorf("id prefix %q is not lowercase hex", prefix)
		}
	}
	return nil
}

// TagKeys returns the tag keys in sorted order.
func (f *Filter) TagKeys() []string {
	keys := make([]string, 0, len(f.Tags))
	for k := range f.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnmarshalJSON reads the NIP-01 shape, collecting "#x" keys into Tags.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = Filter{}
	for key, value := range raw {
		var err error
		switch {
		case key == "ids":
			err = decodeSet(value, &f.IDs)
		case key == "authors":
			err = decodeSet(value, &f.Authors)
		case key == "kinds":
			err = decodeSet(value, &f.Kinds)
		case key == "since":
			err = json.Unmarshal(value, &f.Since)
		case key == "until":
			err = json.Unmarshal(value, &f.Until)
		case key == "limit":
			err = json.Unmarshal(value, &f.Limit)
		case strings.HasPrefix(key, "#"):
			var values []string
			if err = decodeSet(value, &values); err == nil && values != nil {
				if f.Tags == nil {
					f.Tags = make(map[string][]string)
				}
				f.Tags[strings.TrimPrefix(key, "#")] = values
			}
		default:
			// unknown keys are ignored, as relays do
		}
		if err != nil {
			return fmt.Errorf("filter field %q: %w", key, err)
		}
	}
	return nil
}

// decodeSet keeps the unset/empty distinction: null stays nil, [] becomes
// a non-nil empty slice.
func decodeSet[T any](data json.RawMessage, dst *[]T) error {
	if string(data) == "null" {
		return nil
	}
	out := []T{}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*dst = out
	return nil
}

// MarshalJSON writes the NIP-01 shape.
func (f Filter) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if f.IDs != nil {
		out["ids"] = f.IDs
	}
	if f.Authors != nil {
		out["authors"] = f.Authors
	}
	if f.Kinds != nil {
		out["kinds"] = f.Kinds
	}
	if f.Since != nil {
		out["since"] = *f.Since
	}
	if f.Until != nil {
		out["until"] = *f.Until
	}
	if f.Limit != nil {
		out["limit"] = *f.Limit
	}
	for key, values := range f.Tags {
		out["#"+key] = values
	}
	return json.Marshal(out)
}
