// Package query builds a per-request QuerySpec from raw query-string values.
// The four stages (filter, sort, projection, pagination) compose
// independently; an absent stage is a no-op. The spec is store-agnostic:
// translation to the document store happens in the repository layer.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medrex/clinical-api/pkg/errors"
)

// Op is a filter comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// DefaultSortField keeps pagination deterministic when the client does
	// not ask for an order.
	DefaultSortField = "created_at"
)

// reserved query keys never become filters.
var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var knownOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// Filter is one conjunctive predicate on a field.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

// SortKey orders results by one field.
type SortKey struct {
	Field string
	Desc  bool
}

// Spec is the derived filter/sort/projection/pagination for one request.
// It is built from scratch per request and never shared.
type Spec struct {
	Filters []Filter
	Sort    []SortKey
	Fields  []string
	Page    int
	Limit   int
}

// Offset is the number of documents to skip for the requested page.
func (s *Spec) Offset() int {
	return (s.Page - 1) * s.Limit
}

// Parse derives a Spec from raw query values. Unrecognized comparison
// operators are rejected rather than silently ignored.
func Parse(values url.Values) (*Spec, error) {
	spec := &Spec{
		Page:  1,
		Limit: DefaultLimit,
		Sort:  []SortKey{{Field: DefaultSortField, Desc: true}},
	}

	for key, vals := range values {
		if reserved[key] {
			continue
		}
		field, op, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			spec.Filters = append(spec.Filters, Filter{
				Field: field,
				Op:    op,
				Value: coerce(v),
			})
		}
	}

	if raw := values.Get("sort"); raw != "" {
		spec.Sort = parseSort(raw)
	}

	if raw := values.Get("fields"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			f = strings.TrimSpace(f)
			if f != "" {
				spec.Fields = append(spec.Fields, f)
			}
		}
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, errors.InvalidQuery(fmt.Sprintf("invalid page %q: must be an integer >= 1", raw))
		}
		spec.Page = page
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return nil, errors.InvalidQuery(fmt.Sprintf("invalid limit %q: must be an integer >= 1", raw))
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		spec.Limit = limit
	}

	return spec, nil
}

// parseKey splits the bracket convention, e.g. "age[gte]" -> ("age", gte).
// A bare key is an equality filter.
func parseKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if strings.ContainsAny(key, "]") {
			return "", "", errors.InvalidQuery(fmt.Sprintf("malformed filter key %q", key))
		}
		return key, OpEq, nil
	}
	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", errors.InvalidQuery(fmt.Sprintf("malformed filter key %q", key))
	}

	field := key[:open]
	opName := key[open+1 : len(key)-1]
	op, ok := knownOps[opName]
	if !ok {
		return "", "", errors.InvalidQuery(fmt.Sprintf("unsupported filter operator %q", opName))
	}
	return field, op, nil
}

func parseSort(raw string) []SortKey {
	parts := strings.Split(raw, ",")
	keys := make([]SortKey, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		desc := false
		if strings.HasPrefix(p, "-") {
			desc = true
			p = p[1:]
		}
		if p == "" {
			continue
		}
		keys = append(keys, SortKey{Field: p, Desc: desc})
	}
	if len(keys) == 0 {
		return []SortKey{{Field: DefaultSortField, Desc: true}}
	}
	return keys
}

// coerce turns a raw string value into the most specific comparable type.
// Numbers and timestamps must not compare as strings in the store.
func coerce(raw string) interface{} {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return raw
}
