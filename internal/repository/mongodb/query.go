package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medrex/clinical-api/internal/query"
)

// protectedFields are excluded from every projection regardless of what the
// client asked for.
var protectedFields = []string{"password_hash"}

// filterDocument translates the spec's conjunctive filters into a bson
// filter. Multiple predicates on one field merge into a single operator
// document, e.g. {age: {$gte: 30, $lt: 50}}; an equality merged with a range
// becomes an explicit $eq so no conjunct is lost. Predicates that cannot
// share an operator document (a repeated operator on one field) land in an
// $and clause instead of overwriting each other.
func filterDocument(spec *query.Spec) bson.M {
	filter := bson.M{}
	var overflow []bson.M
	for _, f := range spec.Filters {
		op := "$" + string(f.Op)
		switch existing := filter[f.Field].(type) {
		case nil:
			if f.Op == query.OpEq {
				filter[f.Field] = f.Value
			} else {
				filter[f.Field] = bson.M{op: f.Value}
			}
		case bson.M:
			if _, taken := existing[op]; taken {
				overflow = append(overflow, bson.M{f.Field: bson.M{op: f.Value}})
				continue
			}
			existing[op] = f.Value
		default:
			// a bare equality already holds this field's slot
			if f.Op == query.OpEq {
				overflow = append(overflow, bson.M{f.Field: bson.M{op: f.Value}})
				continue
			}
			filter[f.Field] = bson.M{"$eq": existing, op: f.Value}
		}
	}
	if len(overflow) > 0 {
		clauses := append([]bson.M{filter}, overflow...)
		return bson.M{"$and": clauses}
	}
	return filter
}

// findOptions translates sort, projection, and pagination. A trailing _id
// key is always appended as a stable tiebreak so identical requests return
// identical pages. The tiebreak follows the primary key's direction, which
// makes a sort and its negation exact reverses of each other.
func findOptions(spec *query.Spec) *options.FindOptions {
	sort := bson.D{}
	sortedByID := false
	for _, k := range spec.Sort {
		dir := 1
		if k.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: k.Field, Value: dir})
		if k.Field == "_id" {
			sortedByID = true
		}
	}
	if !sortedByID {
		tiebreak := 1
		if len(spec.Sort) > 0 && spec.Sort[0].Desc {
			tiebreak = -1
		}
		sort = append(sort, bson.E{Key: "_id", Value: tiebreak})
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64(spec.Offset())).
		SetLimit(int64(spec.Limit))

	projection := bson.M{}
	if len(spec.Fields) > 0 {
		for _, f := range spec.Fields {
			if isProtected(f) {
				continue
			}
			projection[f] = 1
		}
	} else {
		for _, f := range protectedFields {
			projection[f] = 0
		}
	}
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}

	return opts
}

func isProtected(field string) bool {
	for _, p := range protectedFields {
		if p == field {
			return true
		}
	}
	return false
}
