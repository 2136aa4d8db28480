package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/repository"
	"github.com/medrex/clinical-api/pkg/auth"
	apperrors "github.com/medrex/clinical-api/pkg/errors"
)

type fakeUserRepo struct {
	byID    map[primitive.ObjectID]*model.User
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    make(map[primitive.ObjectID]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Get(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]*model.User, error) {
	var out []*model.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	return NewService(repo, jwtSvc), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &model.RegisterRequest{
		Name:     "Dr. Smith",
		Email:    "a@x.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleDoctor, resp.User.Role)

	login, err := svc.Login(ctx, &model.LoginRequest{Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := &model.RegisterRequest{Name: "Dr. Smith", Email: "a@x.com", Password: "secret123"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *model.RegisterRequest
	}{
		{"missing name", &model.RegisterRequest{Email: "a@x.com", Password: "secret123"}},
		{"bad email", &model.RegisterRequest{Name: "n", Email: "nope", Password: "secret123"}},
		{"short password", &model.RegisterRequest{Name: "n", Email: "a@x.com", Password: "short"}},
		{"bad role", &model.RegisterRequest{Name: "n", Email: "a@x.com", Password: "secret123", Role: "patient"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrValidation, appErr.Code)
			assert.NotEmpty(t, appErr.Fields)
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.RegisterRequest{Name: "n", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &model.LoginRequest{Email: "a@x.com", Password: "wrong-one"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)

	// Unknown user yields the same class of error.
	_, err = svc.Login(ctx, &model.LoginRequest{Email: "nobody@x.com", Password: "secret123"})
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestValidateToken(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, &model.RegisterRequest{Name: "n", Email: "a@x.com", Password: "secret123"})
	require.NoError(t, err)

	user, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	// Tampered token.
	_, err = svc.ValidateToken(ctx, resp.Token+"x")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)

	// Valid token for a deleted identity.
	delete(repo.byID, resp.User.ID)
	_, err = svc.ValidateToken(ctx, resp.Token)
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}

func TestValidateExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	expired := auth.NewJWTService("test-secret", -time.Minute)
	svc := NewService(repo, expired)

	user := &model.User{Name: "n", Email: "a@x.com", Role: model.RoleDoctor}
	require.NoError(t, repo.Create(context.Background(), user))

	token, err := expired.Generate(user.ID.Hex(), user.Email, user.Role)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnauthorized, appErr.Code)
}
