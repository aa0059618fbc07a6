package service

import (
	"context"
	"testing"

	"inkpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func profileRepo(user *models.User) *userRepoStub {
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
		if id != user.ID {
			return nil, models.NewNotFoundError("User")
		}
		return user, nil
	}
	return repo
}

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	t.Parallel()

	empty := ""
	weak := "short"
	badName := "-bad-"

	tests := []struct {
		name string
		in   UpdateProfileInput
	}{
		{"empty username", UpdateProfileInput{Username: &empty}},
		{"invalid username", UpdateProfileInput{Username: &badName}},
		{"empty email", UpdateProfileInput{Email: &empty}},
		{"weak password", UpdateProfileInput{Password: &weak}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewUserService(profileRepo(&models.User{ID: "u1", Username: "alice", Email: "a@x.io"}))
			tt.in.UserID = "u1"
			_, err := svc.UpdateProfile(context.Background(), tt.in)
			assertValidationError(t, err)
		})
	}
}

func TestUserService_UpdateProfile_Conflict(t *testing.T) {
	t.Parallel()

	repo := profileRepo(&models.User{ID: "u1", Username: "alice", Email: "a@x.io"})
	repo.getByUsernameFn = func(_ context.Context, name string) (*models.User, error) {
		return &models.User{ID: "u2", Username: name}, nil
	}
	repo.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		return &models.User{ID: "u2", Email: email}, nil
	}
	svc := NewUserService(repo)

	name := "bob"
	_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: "u1", Username: &name})
	assertCode(t, err, models.CodeConflict)

	email := "b@x.io"
	_, err = svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: "u1", Email: &email})
	assertCode(t, err, models.CodeConflict)
}

func TestUserService_UpdateProfile_Success(t *testing.T) {
	t.Parallel()

	user := &models.User{ID: "u1", Username: "alice", Email: "a@x.io", Password: "old"}
	var saved *models.User
	repo := profileRepo(user)
	repo.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}
	svc := NewUserService(repo)

	email := "  Alice@Example.COM "
	password := "N3w-Passw0rd!x"
	view, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID: "u1", Email: &email, Password: &password,
	})
	require.NoError(t, err)

	assert.Equal(t, &models.ProfileView{ID: "u1", Username: "alice", Email: "alice@example.com"}, view)
	require.NotNil(t, saved)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte(password)))
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewUserService(profileRepo(&models.User{ID: "u1"}))
	_, err := svc.GetProfile(context.Background(), "u2")
	assertCode(t, err, models.CodeNotFound)
}
