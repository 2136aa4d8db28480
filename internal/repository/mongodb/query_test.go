package mongodb

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/medrex/clinical-api/internal/query"
)

func mustParse(t *testing.T, raw string) *query.Spec {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	spec, err := query.Parse(values)
	require.NoError(t, err)
	return spec
}

func TestFilterDocument(t *testing.T) {
	spec := mustParse(t, "age[gte]=30&age[lt]=50&gender=female")
	filter := filterDocument(spec)

	assert.Equal(t, "female", filter["gender"])
	ops, ok := filter["age"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, int64(30), ops["$gte"])
	assert.Equal(t, int64(50), ops["$lt"])
}

func TestFilterDocumentMergesEqualityWithRange(t *testing.T) {
	// Parse hands filters over in map order, so both arrival orders must
	// produce the same merged conjunction.
	tests := []struct {
		name    string
		filters []query.Filter
	}{
		{
			name: "equality first",
			filters: []query.Filter{
				{Field: "age", Op: query.OpEq, Value: int64(30)},
				{Field: "age", Op: query.OpGte, Value: int64(20)},
			},
		},
		{
			name: "range first",
			filters: []query.Filter{
				{Field: "age", Op: query.OpGte, Value: int64(20)},
				{Field: "age", Op: query.OpEq, Value: int64(30)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := filterDocument(&query.Spec{Filters: tt.filters})

			ops, ok := filter["age"].(bson.M)
			require.True(t, ok, "filter: %v", filter)
			assert.Equal(t, int64(30), ops["$eq"])
			assert.Equal(t, int64(20), ops["$gte"])
		})
	}
}

func TestFilterDocumentRepeatedPredicates(t *testing.T) {
	// A repeated operator cannot share one operator document; both
	// conjuncts must still apply.
	filter := filterDocument(&query.Spec{Filters: []query.Filter{
		{Field: "age", Op: query.OpGte, Value: int64(10)},
		{Field: "age", Op: query.OpGte, Value: int64(20)},
	}})

	clauses, ok := filter["$and"].([]bson.M)
	require.True(t, ok, "filter: %v", filter)
	require.Len(t, clauses, 2)
	assert.Equal(t, bson.M{"age": bson.M{"$gte": int64(10)}}, clauses[0])
	assert.Equal(t, bson.M{"age": bson.M{"$gte": int64(20)}}, clauses[1])

	filter = filterDocument(&query.Spec{Filters: []query.Filter{
		{Field: "age", Op: query.OpEq, Value: int64(30)},
		{Field: "age", Op: query.OpEq, Value: int64(40)},
	}})

	clauses, ok = filter["$and"].([]bson.M)
	require.True(t, ok, "filter: %v", filter)
	require.Len(t, clauses, 2)
	assert.Equal(t, bson.M{"age": int64(30)}, clauses[0])
	assert.Equal(t, bson.M{"age": bson.M{"$eq": int64(40)}}, clauses[1])
}

func TestFindOptionsAppendsIDTiebreak(t *testing.T) {
	// The tiebreak follows the primary direction so -age is the exact
	// reverse of age.
	spec := mustParse(t, "sort=-age")
	opts := findOptions(spec)

	sort, ok := opts.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 2)
	assert.Equal(t, bson.E{Key: "age", Value: -1}, sort[0])
	assert.Equal(t, bson.E{Key: "_id", Value: -1}, sort[1])

	spec = mustParse(t, "sort=age")
	opts = findOptions(spec)
	sort, ok = opts.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 2)
	assert.Equal(t, bson.E{Key: "age", Value: 1}, sort[0])
	assert.Equal(t, bson.E{Key: "_id", Value: 1}, sort[1])
}

func TestFindOptionsNoDoubleIDKey(t *testing.T) {
	spec := mustParse(t, "sort=-_id")
	opts := findOptions(spec)

	sort, ok := opts.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 1)
	assert.Equal(t, bson.E{Key: "_id", Value: -1}, sort[0])
}

func TestFindOptionsPagination(t *testing.T) {
	spec := mustParse(t, "page=3&limit=10")
	opts := findOptions(spec)

	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(20), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)
}

func TestFindOptionsProjectionExcludesProtected(t *testing.T) {
	// Explicit projection never includes the password hash.
	spec := mustParse(t, "fields=name,password_hash,email")
	opts := findOptions(spec)

	projection, ok := opts.Projection.(bson.M)
	require.True(t, ok)
	assert.Equal(t, 1, projection["name"])
	assert.Equal(t, 1, projection["email"])
	assert.NotContains(t, projection, "password_hash")

	// Default projection actively suppresses it.
	spec = mustParse(t, "")
	opts = findOptions(spec)
	projection, ok = opts.Projection.(bson.M)
	require.True(t, ok)
	assert.Equal(t, 0, projection["password_hash"])
}
