package service

import (
	"context"
	"strings"

	"inkpost/internal/auth"
	"inkpost/internal/models"
	"inkpost/internal/repository"
	"inkpost/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService registers users, checks credentials and revokes tokens.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	denylist *auth.Denylist
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, denylist *auth.Denylist) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		denylist: denylist,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := validation.NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email and password are required")
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing, err = s.userRepo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleMember,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.issue(user)
}

// Logout revokes the token identified by claims until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.JTI == "" {
		return models.NewUnauthorizedError("Invalid token")
	}
	if err := s.denylist.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
