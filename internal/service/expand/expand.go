// Package expand batches reference lookups for read paths. Controllers call
// it after the base fetch so one query resolves every referenced patient and
// doctor instead of one lookup per row.
package expand

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/repository"
)

type Expander struct {
	patients repository.PatientRepository
	users    repository.UserRepository
}

func New(patients repository.PatientRepository, users repository.UserRepository) *Expander {
	return &Expander{patients: patients, users: users}
}

// PatientRefs resolves the given ids to projected patient references.
func (e *Expander) PatientRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.PatientRef, error) {
	ids = dedupe(ids)
	patients, err := e.patients.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error expanding patient refs: %w", err)
	}

	refs := make(map[primitive.ObjectID]*model.PatientRef, len(patients))
	for _, p := range patients {
		refs[p.ID] = &model.PatientRef{
			ID:     p.ID.Hex(),
			Name:   p.Name,
			Age:    p.Age,
			Gender: p.Gender,
		}
	}
	return refs, nil
}

// DoctorRefs resolves the given ids to projected identity references.
func (e *Expander) DoctorRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.UserRef, error) {
	ids = dedupe(ids)
	users, err := e.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error expanding doctor refs: %w", err)
	}

	refs := make(map[primitive.ObjectID]*model.UserRef, len(users))
	for _, u := range users {
		refs[u.ID] = &model.UserRef{
			ID:     u.ID.Hex(),
			Name:   u.Name,
			Role:   u.Role,
			Avatar: u.Avatar,
		}
	}
	return refs, nil
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
