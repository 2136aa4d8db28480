// Package memory provides thread-safe in-memory implementations of the
// repository interfaces for development and testing. List evaluates the same
// QuerySpec semantics the document store does: conjunctive filters, ordered
// sort keys with an id tiebreak, and offset/limit pagination.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/query"
	"github.com/medrex/clinical-api/internal/repository"
)

// collection is the shared storage core. Documents are kept as copies of the
// caller's structs; filtering and sorting work on their bson projections so
// field names match the store's.
type collection[T any] struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]*T
	getID func(*T) primitive.ObjectID
	setID func(*T, primitive.ObjectID)
}

func newCollection[T any](getID func(*T) primitive.ObjectID, setID func(*T, primitive.ObjectID)) *collection[T] {
	return &collection[T]{
		docs:  make(map[primitive.ObjectID]*T),
		getID: getID,
		setID: setID,
	}
}

func (c *collection[T]) insert(doc *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getID(doc).IsZero() {
		c.setID(doc, primitive.NewObjectID())
	}
	cp := *doc
	c.docs[c.getID(doc)] = &cp
}

func (c *collection[T]) get(id primitive.ObjectID) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (c *collection[T]) replace(doc *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.getID(doc)
	if _, ok := c.docs[id]; !ok {
		return repository.ErrNotFound
	}
	cp := *doc
	c.docs[id] = &cp
	return nil
}

func (c *collection[T]) remove(id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(c.docs, id)
	return nil
}

func (c *collection[T]) findByIDs(ids []primitive.ObjectID) []*T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		if doc, ok := c.docs[id]; ok {
			cp := *doc
			out = append(out, &cp)
		}
	}
	return out
}

func (c *collection[T]) list(spec *query.Spec) ([]*T, error) {
	c.mu.RLock()
	type entry struct {
		doc    *T
		fields bson.M
	}
	entries := make([]entry, 0, len(c.docs))
	for _, doc := range c.docs {
		fields, err := toDocument(doc)
		if err != nil {
			c.mu.RUnlock()
			return nil, err
		}
		if !matches(fields, spec.Filters) {
			continue
		}
		cp := *doc
		entries = append(entries, entry{doc: &cp, fields: fields})
	}
	c.mu.RUnlock()

	// Tiebreak on _id in the primary key's direction, mirroring the store
	// translation, so a sort and its negation are exact reverses.
	tiebreakDesc := len(spec.Sort) > 0 && spec.Sort[0].Desc
	sort.SliceStable(entries, func(i, j int) bool {
		for _, k := range spec.Sort {
			cmp, ok := compareValues(entries[i].fields[k.Field], entries[j].fields[k.Field])
			if !ok || cmp == 0 {
				continue
			}
			if k.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		if tiebreakDesc {
			return idHex(entries[i].fields) > idHex(entries[j].fields)
		}
		return idHex(entries[i].fields) < idHex(entries[j].fields)
	})

	start := spec.Offset()
	if start > len(entries) {
		start = len(entries)
	}
	end := start + spec.Limit
	if end > len(entries) {
		end = len(entries)
	}

	out := make([]*T, 0, end-start)
	for _, e := range entries[start:end] {
		doc, err := projectDoc(e.doc, e.fields, spec.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// protectedFields mirrors the store translation; these never leave the
// repository regardless of the requested projection.
var protectedFields = map[string]bool{"password_hash": true}

// projectDoc applies the field projection the same way the store does: the
// selected fields plus _id survive, everything else is zeroed out.
func projectDoc[T any](doc *T, raw bson.M, selected []string) (*T, error) {
	if len(selected) == 0 {
		stripped := false
		for f := range raw {
			if protectedFields[f] {
				delete(raw, f)
				stripped = true
			}
		}
		if !stripped {
			return doc, nil
		}
		return fromDocument[T](raw)
	}

	pruned := bson.M{"_id": raw["_id"]}
	for _, f := range selected {
		if protectedFields[f] {
			continue
		}
		if v, ok := raw[f]; ok {
			pruned[f] = v
		}
	}
	return fromDocument[T](pruned)
}

func fromDocument[T any](m bson.M) (*T, error) {
	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func toDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func idHex(fields bson.M) string {
	if id, ok := fields["_id"].(primitive.ObjectID); ok {
		return id.Hex()
	}
	return ""
}

func matches(fields bson.M, filters []query.Filter) bool {
	for _, f := range filters {
		cmp, ok := compareValues(fields[f.Field], f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case query.OpEq:
			if cmp != 0 {
				return false
			}
		case query.OpGt:
			if cmp <= 0 {
				return false
			}
		case query.OpGte:
			if cmp < 0 {
				return false
			}
		case query.OpLt:
			if cmp >= 0 {
				return false
			}
		case query.OpLte:
			if cmp > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues normalizes bson decoding artifacts (int32/int64/DateTime)
// and reports a, b ordering. Incomparable pairs report ok=false.
func compareValues(a, b interface{}) (int, bool) {
	if na, ok := asNumber(a); ok {
		nb, ok := asNumber(b)
		if !ok {
			return 0, false
		}
		switch {
		case na < nb:
			return -1, true
		case na > nb:
			return 1, true
		default:
			return 0, true
		}
	}
	if ta, ok := asTime(a); ok {
		tb, ok := asTime(b)
		if !ok {
			return 0, false
		}
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		default:
			return 0, true
		}
	}
	if sa, ok := asString(a); ok {
		sb, ok := asString(b)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

func asTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	default:
		return time.Time{}, false
	}
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case primitive.ObjectID:
		return s.Hex(), true
	default:
		return "", false
	}
}
