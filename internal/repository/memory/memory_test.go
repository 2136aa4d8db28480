package memory

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/query"
)

func seedPatients(t *testing.T, repo *PatientRepository, n int) []*model.Patient {
	t.Helper()
	ctx := context.Background()
	owner := primitive.NewObjectID()
	genders := []string{model.GenderMale, model.GenderFemale, model.GenderOther}

	patients := make([]*model.Patient, 0, n)
	for i := 0; i < n; i++ {
		p := &model.Patient{
			Name:      fmt.Sprintf("Patient %02d", i),
			Age:       20 + (i*7)%50,
			Gender:    genders[i%3],
			CreatedBy: owner,
		}
		// Distinct creation times keep the default sort meaningful.
		p.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, p))
		patients = append(patients, p)
	}
	return patients
}

func listWith(t *testing.T, repo *PatientRepository, raw string) []*model.Patient {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	spec, err := query.Parse(values)
	require.NoError(t, err)
	out, err := repo.List(context.Background(), spec)
	require.NoError(t, err)
	return out
}

func TestFilteredListIsConjunctiveSubset(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 30)

	all := listWith(t, repo, "limit=100")
	filtered := listWith(t, repo, "age[gte]=30&age[lt]=60&gender=female&limit=100")

	assert.Less(t, len(filtered), len(all))
	ids := make(map[primitive.ObjectID]bool)
	for _, p := range all {
		ids[p.ID] = true
	}
	for _, p := range filtered {
		assert.True(t, ids[p.ID], "filtered result must come from the full set")
		assert.GreaterOrEqual(t, p.Age, 30)
		assert.Less(t, p.Age, 60)
		assert.Equal(t, model.GenderFemale, p.Gender)
	}
}

func TestPagesPartitionTheResultSet(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 23)

	full := listWith(t, repo, "sort=-age&limit=100")

	var concatenated []*model.Patient
	for page := 1; ; page++ {
		p := listWith(t, repo, fmt.Sprintf("sort=-age&page=%d&limit=5", page))
		if len(p) == 0 {
			break
		}
		concatenated = append(concatenated, p...)
	}

	require.Len(t, concatenated, len(full))
	seen := make(map[primitive.ObjectID]bool)
	for i, p := range concatenated {
		assert.False(t, seen[p.ID], "pages must not overlap")
		seen[p.ID] = true
		assert.Equal(t, full[i].ID, p.ID, "concatenated pages must equal the full sorted set")
	}
}

func TestPageBeyondLastIsEmptyNotError(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 5)

	out := listWith(t, repo, "page=99&limit=10")
	assert.Empty(t, out)
}

func TestSortReversal(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 20)

	asc := listWith(t, repo, "sort=age&limit=100")
	desc := listWith(t, repo, "sort=-age&limit=100")

	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID, "descending order must be the exact reverse")
	}
}

func TestIdenticalRequestsReturnIdenticalPages(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 17)

	first := listWith(t, repo, "age[gte]=25&sort=-age&page=2&limit=4")
	second := listWith(t, repo, "age[gte]=25&sort=-age&page=2&limit=4")

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestDefaultSortIsCreationTimeDescending(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 10)

	out := listWith(t, repo, "")
	require.NotEmpty(t, out)
	for i := 0; i < len(out)-1; i++ {
		assert.False(t, out[i].CreatedAt.Before(out[i+1].CreatedAt))
	}
}

func TestDeleteTwiceSecondNotFound(t *testing.T) {
	repo := NewPatientRepository()
	patients := seedPatients(t, repo, 3)

	ctx := context.Background()
	require.NoError(t, repo.Delete(ctx, patients[0].ID))
	err := repo.Delete(ctx, patients[0].ID)
	assert.Error(t, err)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.User{Name: "a", Email: "a@x.com"}))
	err := repo.Create(ctx, &model.User{Name: "b", Email: "a@x.com"})
	assert.Error(t, err)
}

func TestFieldsProjectionZeroesUnselected(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 5)

	projected := listWith(t, repo, "fields=name,age&limit=100")
	require.Len(t, projected, 5)
	for _, p := range projected {
		assert.False(t, p.ID.IsZero(), "id always survives projection")
		assert.NotEmpty(t, p.Name)
		assert.NotZero(t, p.Age)
		assert.Empty(t, p.Gender)
		assert.True(t, p.CreatedBy.IsZero())
		assert.True(t, p.CreatedAt.IsZero())
	}
}

func TestNoProjectionReturnsFullDocuments(t *testing.T) {
	repo := NewPatientRepository()
	seedPatients(t, repo, 3)

	full := listWith(t, repo, "limit=100")
	require.Len(t, full, 3)
	for _, p := range full {
		assert.NotEmpty(t, p.Gender)
		assert.False(t, p.CreatedBy.IsZero())
		assert.False(t, p.CreatedAt.IsZero())
	}
}
