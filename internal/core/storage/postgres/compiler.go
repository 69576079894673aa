package postgres

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	v1 "github.com/aevon-lab/relaystore/internal/api/v1"
)

const (
	// DefaultQueryLimit applies when a request carries no limit.
	DefaultQueryLimit = 10000

	orderNewestFirst = "ORDER BY events.created_at DESC, events.id ASC"
	fullIDHexLen     = 2 * v1.IDSize
)

// Plan is one parameterised statement. Empty means the filters can match
// nothing and the database must not be touched.
type Plan struct {
	SQL   string
	Args  []any
	Empty bool
}

// Compiler turns filters into SQL. It holds no state between calls and is
// safe for concurrent use.
type Compiler struct {
	defaultLimit int
	maxLimit     int
}

// NewCompiler returns a compiler with the given request limits. Non-positive
// values fall back to DefaultQueryLimit.
func NewCompiler(defaultLimit, maxLimit int) *Compiler {
	if defaultLimit <= 0 {
		defaultLimit = DefaultQueryLimit
	}
	if maxLimit <= 0 {
		maxLimit = DefaultQueryLimit
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Compiler{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// EffectiveLimit maps a requested limit onto the configured bounds.
func (c *Compiler) EffectiveLimit(limit int) int {
	if limit <= 0 {
		return c.defaultLimit
	}
	if limit > c.maxLimit {
		return c.maxLimit
	}
	return limit
}

// CompileQuery builds a statement returning the payload column of matching
// events, newest first, at most limit rows.
func (c *Compiler) CompileQuery(filters []v1.Filter, limit int) (Plan, error) {
	b := &sqlBuilder{maxLimit: c.maxLimit}
	branches, err := b.branches(filters)
	if err != nil || len(branches) == 0 {
		return Plan{Empty: err == nil}, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT events.payload FROM events")
	if len(branches) == 1 && branches[0].limit == nil {
		sb.WriteString(branches[0].where)
	} else {
		sb.WriteString(" WHERE events.id IN (")
		sb.WriteString(joinBranches(branches))
		sb.WriteString(")")
	}
	sb.WriteString(" ")
	sb.WriteString(orderNewestFirst)
	sb.WriteString(" LIMIT ")
	sb.WriteString(b.bind(c.EffectiveLimit(limit)))

	return Plan{SQL: sb.String(), Args: b.args}, nil
}

// CompileCount builds a statement counting distinct matching events.
func (c *Compiler) CompileCount(filters []v1.Filter) (Plan, error) {
	b := &sqlBuilder{maxLimit: c.maxLimit}
	branches, err := b.branches(filters)
	if err != nil || len(branches) == 0 {
		return Plan{Empty: err == nil}, err
	}

	if len(branches) == 1 && branches[0].limit == nil {
		return Plan{SQL: "SELECT COUNT(*) FROM events" + branches[0].where, Args: b.args}, nil
	}
	return Plan{
		SQL:  "SELECT COUNT(*) FROM (" + joinBranches(branches) + ") AS matched",
		Args: b.args,
	}, nil
}

// CompileDelete builds a soft delete of every visible matching event.
// IncludeDeleted is ignored so repeated deletes affect no rows.
func (c *Compiler) CompileDelete(filters []v1.Filter) (Plan, error) {
	visible := make([]v1.Filter, len(filters))
	for i, f := range filters {
		f.IncludeDeleted = false
		visible[i] = f
	}

	b := &sqlBuilder{maxLimit: c.maxLimit}
	branches, err := b.branches(visible)
	if err != nil || len(branches) == 0 {
		return Plan{Empty: err == nil}, err
	}

	if len(branches) == 1 && branches[0].limit == nil {
		return Plan{SQL: "UPDATE events SET deleted = TRUE" + branches[0].where, Args: b.args}, nil
	}
	return Plan{
		SQL:  "UPDATE events SET deleted = TRUE WHERE events.id IN (" + joinBranches(branches) + ")",
		Args: b.args,
	}, nil
}

// branch is the id-selecting subquery of one filter.
type branch struct {
	// where is " WHERE ..." or "" when the filter has no predicate.
	where string
	limit *string
}

func (br branch) sql() string {
	s := "SELECT events.id FROM events" + br.where
	if br.limit != nil {
		return "(" + s + " " + orderNewestFirst + " LIMIT " + *br.limit + ")"
	}
	return s
}

func joinBranches(branches []branch) string {
	parts := make([]string, len(branches))
	for i, br := range branches {
		parts[i] = br.sql()
	}
	return strings.Join(parts, " UNION ")
}

// sqlBuilder numbers placeholders in the order values are bound.
type sqlBuilder struct {
	args     []any
	tagAlias int
	maxLimit int
}

func (b *sqlBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) branches(filters []v1.Filter) ([]branch, error) {
	out := make([]branch, 0, len(filters))
	for i := range filters {
		f := &filters[i]
		if !satisfiable(f) {
			continue
		}
		br, err := b.branch(f)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		out = append(out, br)
	}
	return out, nil
}

// satisfiable reports whether f can match at all. Explicit empty sets,
// tag keys that are never indexed, inverted time ranges and a zero limit
// cannot.
func satisfiable(f *v1.Filter) bool {
	if isEmptySet(f.IDs) || isEmptySet(f.Authors) || isEmptySet(f.Kinds) {
		return false
	}
	for key, values := range f.Tags {
		// Only single-letter keys are indexed, and a set holding only
		// unindexable values is as empty as [].
		if values != nil && (!isIndexableKey(key) || len(indexableValues(values)) == 0) {
			return false
		}
	}
	if f.Since != nil && f.Until != nil && *f.Since > *f.Until {
		return false
	}
	if f.Limit != nil && *f.Limit == 0 {
		return false
	}
	return true
}

func isEmptySet[T any](s []T) bool {
	return s != nil && len(s) == 0
}

func (b *sqlBuilder) branch(f *v1.Filter) (branch, error) {
	var conds []string

	if !f.IncludeDeleted {
		conds = append(conds, "events.deleted = FALSE")
	}

	if f.IDs != nil {
		cond, err := b.idCondition(f.IDs)
		if err != nil {
			return branch{}, err
		}
		conds = append(conds, cond)
	}

	if f.Authors != nil {
		keys := make(pq.ByteaArray, len(f.Authors))
		for i, pk := range f.Authors {
			keys[i] = append([]byte(nil), pk[:]...)
		}
		conds = append(conds, "events.pubkey = ANY("+b.bind(keys)+")")
	}

	if f.Kinds != nil {
		kinds := make(pq.Int64Array, len(f.Kinds))
		for i, k := range f.Kinds {
			kinds[i] = int64(k)
		}
		conds = append(conds, "events.kind = ANY("+b.bind(kinds)+")")
	}

	if f.Since != nil {
		conds = append(conds, "events.created_at >= "+b.bind(*f.Since))
	}
	if f.Until != nil {
		conds = append(conds, "events.created_at <= "+b.bind(*f.Until))
	}

	for _, key := range f.TagKeys() {
		values := f.Tags[key]
		if values == nil {
			continue
		}
		b.tagAlias++
		alias := "t" + strconv.Itoa(b.tagAlias)
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM event_tags %[1]s WHERE %[1]s.event_id = events.id AND %[1]s.tag = %[2]s AND %[1]s.tag_value = ANY(%[3]s))",
			alias, b.bind(key), b.bind(pq.StringArray(indexableValues(values))),
		))
	}

	br := branch{}
	if len(conds) > 0 {
		br.where = " WHERE " + strings.Join(conds, " AND ")
	}
	if f.Limit != nil && *f.Limit > 0 {
		limit := *f.Limit
		if limit > b.maxLimit {
			limit = b.maxLimit
		}
		placeholder := b.bind(limit)
		br.limit = &placeholder
	}
	return br, nil
}

// idCondition matches full ids with one ANY, even-length prefixes on the raw
// bytes and odd-length prefixes on the hex text.
func (b *sqlBuilder) idCondition(prefixes []string) (string, error) {
	var full pq.ByteaArray
	var partial []string

	for _, prefix := range prefixes {
		if err := v1.ValidateIDPrefix(prefix); err != nil {
			return "", err
		}
		if len(prefix) != fullIDHexLen {
			partial = append(partial, prefix)
			continue
		}
		raw, err := hex.DecodeString(prefix)
		if err != nil {
			return "", fmt.Errorf("id %q: %w", prefix, err)
		}
		full = append(full, raw)
	}

	var parts []string
	if len(full) > 0 {
		parts = append(parts, "events.id = ANY("+b.bind(full)+")")
	}
	for _, prefix := range partial {
		if len(prefix)%2 == 1 {
			parts = append(parts, "encode(events.id, 'hex') LIKE "+b.bind(prefix+"%"))
			continue
		}
		raw, err := hex.DecodeString(prefix)
		if err != nil {
			return "", fmt.Errorf("id prefix %q: %w", prefix, err)
		}
		parts = append(parts, fmt.Sprintf("substring(events.id from 1 for %d) = %s", len(raw), b.bind(raw)))
	}

	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", nil
}
