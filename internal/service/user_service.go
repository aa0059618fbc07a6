package service

import (
	"context"
	"strings"

	"inkpost/internal/models"
	"inkpost/internal/repository"
	"inkpost/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries per-field presence: a nil field is left untouched.
type UpdateProfileInput struct {
	UserID   string
	Username *string
	Email    *string
	Password *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if username != user.Username {
			existing, err := s.userRepo.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, models.NewConflictError("Username already taken")
			}
			user.Username = username
		}
	}

	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, models.NewConflictError("Email already in use")
			}
			user.Email = email
		}
	}

	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &models.ProfileView{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}
