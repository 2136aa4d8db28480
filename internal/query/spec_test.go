package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	spec, err := Parse(url.Values{})
	require.NoError(t, err)

	assert.Empty(t, spec.Filters)
	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, DefaultLimit, spec.Limit)
	require.Len(t, spec.Sort, 1)
	assert.Equal(t, SortKey{Field: DefaultSortField, Desc: true}, spec.Sort[0])
	assert.Empty(t, spec.Fields)
	assert.Equal(t, 0, spec.Offset())
}

func TestParseFilters(t *testing.T) {
	values, err := url.ParseQuery("age[gte]=30&gender=female&risk_score[lt]=42.5")
	require.NoError(t, err)

	spec, err := Parse(values)
	require.NoError(t, err)
	require.Len(t, spec.Filters, 3)

	byField := map[string]Filter{}
	for _, f := range spec.Filters {
		byField[f.Field] = f
	}

	assert.Equal(t, Filter{Field: "age", Op: OpGte, Value: int64(30)}, byField["age"])
	assert.Equal(t, Filter{Field: "gender", Op: OpEq, Value: "female"}, byField["gender"])
	assert.Equal(t, Filter{Field: "risk_score", Op: OpLt, Value: 42.5}, byField["risk_score"])
}

func TestParseRepeatedKeyIsConjunctive(t *testing.T) {
	values, err := url.ParseQuery("age[gte]=30&age[lt]=50")
	require.NoError(t, err)

	spec, err := Parse(values)
	require.NoError(t, err)
	assert.Len(t, spec.Filters, 2)
	for _, f := range spec.Filters {
		assert.Equal(t, "age", f.Field)
	}
}

func TestParseRejectsUnknownOperator(t *testing.T) {
	for _, raw := range []string{"age[ne]=30", "age[in]=1", "age[regex]=x"} {
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)

		_, err = Parse(values)
		assert.Error(t, err, "query %q should be rejected", raw)
	}
}

func TestParseRejectsMalformedKey(t *testing.T) {
	values := url.Values{"[gte]": {"30"}}
	_, err := Parse(values)
	assert.Error(t, err)
}

func TestParseSort(t *testing.T) {
	values, _ := url.ParseQuery("sort=-age,name")
	spec, err := Parse(values)
	require.NoError(t, err)

	require.Len(t, spec.Sort, 2)
	assert.Equal(t, SortKey{Field: "age", Desc: true}, spec.Sort[0])
	assert.Equal(t, SortKey{Field: "name", Desc: false}, spec.Sort[1])
}

func TestParseFields(t *testing.T) {
	values, _ := url.ParseQuery("fields=name,age, gender")
	spec, err := Parse(values)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "gender"}, spec.Fields)
}

func TestParsePagination(t *testing.T) {
	values, _ := url.ParseQuery("page=3&limit=10")
	spec, err := Parse(values)
	require.NoError(t, err)
	assert.Equal(t, 3, spec.Page)
	assert.Equal(t, 10, spec.Limit)
	assert.Equal(t, 20, spec.Offset())
}

func TestParseLimitCapped(t *testing.T) {
	values, _ := url.ParseQuery("limit=5000")
	spec, err := Parse(values)
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, spec.Limit)
}

func TestParseRejectsBadPagination(t *testing.T) {
	for _, raw := range []string{"page=0", "page=-1", "page=abc", "limit=0", "limit=x"} {
		values, _ := url.ParseQuery(raw)
		_, err := Parse(values)
		assert.Error(t, err, "query %q should be rejected", raw)
	}
}

func TestCoerceValues(t *testing.T) {
	values, _ := url.ParseQuery("date[gte]=2024-01-02T00:00:00Z&day=2024-01-02&note=hello&n=7")
	spec, err := Parse(values)
	require.NoError(t, err)

	byField := map[string]interface{}{}
	for _, f := range spec.Filters {
		byField[f.Field] = f.Value
	}

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), byField["date"])
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), byField["day"])
	assert.Equal(t, "hello", byField["note"])
	assert.Equal(t, int64(7), byField["n"])
}

func TestReservedKeysAreNotFilters(t *testing.T) {
	values, _ := url.ParseQuery("page=2&sort=-age&limit=5&fields=name&age[gte]=30")
	spec, err := Parse(values)
	require.NoError(t, err)
	require.Len(t, spec.Filters, 1)
	assert.Equal(t, "age", spec.Filters[0].Field)
}
