package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
	"github.com/homecare/visit-api/pkg/auth"
	apperrors "github.com/homecare/visit-api/pkg/errors"
	"github.com/homecare/visit-api/pkg/security"
)

const (
	errInvalidCredentials = "invalid credentials"
	errInactiveAccount    = "account is not active"
)

type Service struct {
	tx     repository.Transactor
	users  repository.UserRepository
	tokens *auth.TokenManager
	hasher security.PasswordHasher
	now    func() time.Time
}

func NewService(tx repository.Transactor, users repository.UserRepository, tokens *auth.TokenManager, hasher security.PasswordHasher) *Service {
	return &Service{
		tx:     tx,
		users:  users,
		tokens: tokens,
		hasher: hasher,
		now:    time.Now,
	}
}

// Login accepts a username or phone number with a password.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier())
	if identifier == "" || req.Password == "" {
		return nil, apperrors.NewBadRequest("username or phone and password are required")
	}

	user, err := s.users.GetByLogin(ctx, identifier)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewUnauthorized(errInvalidCredentials, nil)
	}
	if err != nil {
		return nil, apperrors.Wrap("load user", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.NewUnauthorized(errInvalidCredentials, nil)
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbidden(errInactiveAccount)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, apperrors.Wrap("record login", err)
	}
	user.LastLogin = &now

	access, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	return &model.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

// Refresh issues a new access token for a valid refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid refresh token", err)
	}
	user, err := s.userFromClaims(ctx, claims)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return &model.TokenResponse{AccessToken: access}, nil
}

// Authenticate resolves a bearer access token to an active user.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token", err)
	}
	return s.userFromClaims(ctx, claims)
}

func (s *Service) userFromClaims(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token subject", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if apperrors.IsNotFound(err) {
		return nil, apperrors.NewUnauthorized("user no longer exists", err)
	}
	if err != nil {
		return nil, apperrors.Wrap("load user", err)
	}
	if !user.IsActive() {
		return nil, apperrors.NewForbidden(errInactiveAccount)
	}
	return user, nil
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("load user", err)
	}

	profile := &model.Profile{User: user}
	switch user.Role {
	case model.RoleRecorder:
		profile.Recorder, err = s.users.GetRecorderByUserID(ctx, userID)
	case model.RoleDoctor:
		profile.Doctor, err = s.users.GetDoctorByUserID(ctx, userID)
	}
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.Wrap("load profile", err)
	}
	return profile, nil
}

// CreateUser registers an account. Recorders also get a field staff
// profile; an empty employee id is derived from the user id.
func (s *Service) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown role %q", req.Role), nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	var policy *security.PolicyError
	if errors.As(err, &policy) {
		return nil, apperrors.NewValidation(policy.Reason, err)
	}
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	now := s.now()
	user := &model.User{
		Username:     req.Username,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Name:         req.Name,
		Status:       model.UserStatusActive,
	}
	user.Touch(now)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, login := range []string{req.Username, req.Phone} {
			_, err := s.users.GetByLogin(ctx, login)
			if err == nil {
				return apperrors.NewConflict(fmt.Sprintf("%s is already registered", login), nil)
			}
			if !apperrors.IsNotFound(err) {
				return err
			}
		}

		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		if user.Role != model.RoleRecorder {
			return nil
		}

		employeeID := req.EmployeeID
		if employeeID == "" {
			employeeID = "R" + strings.ToUpper(user.ID.String()[:8])
		}
		return s.users.CreateRecorder(ctx, &model.Recorder{
			ID:         uuid.New(),
			UserID:     user.ID,
			EmployeeID: employeeID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, apperrors.Wrap("create user", err)
	}
	return user, nil
}
