package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/medrex/clinical-api/internal/model"
	"github.com/medrex/clinical-api/internal/repository"
	"github.com/medrex/clinical-api/pkg/auth"
	apperrors "github.com/medrex/clinical-api/pkg/errors"
	"github.com/medrex/clinical-api/pkg/security"
	"github.com/medrex/clinical-api/pkg/validator"
)

const bcryptCost = 12

type Service struct {
	userRepo  repository.UserRepository
	jwtSvc    auth.TokenService
	hasher    security.PasswordHasher
	validator *validator.Validator
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.TokenService) *Service {
	return &Service{
		userRepo:  userRepo,
		jwtSvc:    jwtSvc,
		hasher:    security.NewBcryptHasher(bcryptCost),
		validator: validator.New(),
	}
}

// Register creates an identity and mints its first session token. Duplicate
// emails surface as a conflict via the store's unique index.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordLength) {
			return nil, apperrors.Validation("password too short", apperrors.FieldError{
				Field:  "password",
				Reason: fmt.Sprintf("must be at least %d characters", security.MinPasswordLen),
			})
		}
		return nil, apperrors.Internal(err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleDoctor
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.Internal(err)
	}

	return s.issueToken(user)
}

// Login verifies credentials and mints a session token. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("incorrect email or password", nil)
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("incorrect email or password", nil)
	}

	return s.issueToken(user)
}

// ValidateToken verifies the signed token and resolves it to a live
// identity. A valid token whose subject no longer exists is unauthorized.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtSvc.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token", err)
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token subject", err)
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("the identity belonging to this token no longer exists", nil)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

// GetUser returns the identity by id for the /auth/me path.
func (s *Service) GetUser(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *Service) issueToken(user *model.User) (*model.TokenResponse, error) {
	token, err := s.jwtSvc.Generate(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.TokenResponse{Token: token, User: user}, nil
}

// TokenExpiry exposes the configured token lifetime for cookie issuance.
func (s *Service) TokenExpiry() time.Duration {
	return s.jwtSvc.Expiry()
}
