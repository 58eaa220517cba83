package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"checkout-service/internal/auth"
	"checkout-service/internal/domain"
	"checkout-service/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() (*AuthService, *mocks.MockUserRepository) {
	users := new(mocks.MockUserRepository)
	s := NewAuthService(users, auth.NewTokenManager("test-secret", time.Hour))
	s.hashCost = bcrypt.MinCost
	return s, users
}

func hashedUser(t *testing.T, id uint64, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: id, Email: email, PasswordHash: string(hash), FirstName: "Ada", LastName: "Lovelace"}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMocks    func(*mocks.MockUserRepository)
		expectedError error
	}{
		{
			name:  "new user",
			input: RegisterInput{Email: " Ada@Example.com ", Password: "secret", FirstName: "Ada", LastName: "Lovelace"},
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, nil)
				users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
					return u.Email == "ada@example.com" &&
						bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")) == nil
				})).Return(nil)
			},
		},
		{
			name:          "missing fields",
			input:         RegisterInput{Email: "ada@example.com"},
			setupMocks:    func(*mocks.MockUserRepository) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:  "email taken",
			input: RegisterInput{Email: "ada@example.com", Password: "secret", FirstName: "Ada", LastName: "Lovelace"},
			setupMocks: func(users *mocks.MockUserRepository) {
				users.On("FindByEmail", mock.Anything, "ada@example.com").Return(&domain.User{ID: 1}, nil)
			},
			expectedError: domain.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, users := newAuthService()
			tt.setupMocks(users)

			u, err := service.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "ada@example.com", u.Email)
				assert.NotEqual(t, "secret", u.PasswordHash)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoginAndAuthenticate(t *testing.T) {
	service, users := newAuthService()
	user := hashedUser(t, TestUserID, "ada@example.com", "secret")
	user.IsAdmin = true
	users.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
	users.On("FindByID", mock.Anything, TestUserID).Return(user, nil)

	ctx := context.Background()

	res, err := service.Login(ctx, "ADA@example.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	id, err := service.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, TestUserID, id.UserID)
	assert.True(t, id.IsAdmin)

	_, err = service.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, domain.ErrBadCredentials)

	_, err = service.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_AuthenticateReadsStoredUser(t *testing.T) {
	ctx := context.Background()

	t.Run("demoted admin loses admin access", func(t *testing.T) {
		service, users := newAuthService()
		token, _, err := service.tokens.Issue(TestUserID, true)
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, TestUserID).Return(&domain.User{ID: TestUserID, IsAdmin: false}, nil)

		id, err := service.Authenticate(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, TestUserID, id.UserID)
		assert.False(t, id.IsAdmin)
	})

	t.Run("deleted user is rejected", func(t *testing.T) {
		service, users := newAuthService()
		token, _, err := service.tokens.Issue(TestUserID, false)
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, TestUserID).Return(nil, nil)

		_, err = service.Authenticate(ctx, token)

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("storage failure is not an auth failure", func(t *testing.T) {
		service, users := newAuthService()
		token, _, err := service.tokens.Issue(TestUserID, false)
		require.NoError(t, err)
		users.On("FindByID", mock.Anything, TestUserID).Return(nil, errors.New("db down"))

		_, err = service.Authenticate(ctx, token)

		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.NotErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	t.Run("email already used by someone else", func(t *testing.T) {
		service, users := newAuthService()
		users.On("FindByID", mock.Anything, TestUserID).Return(hashedUser(t, TestUserID, "ada@example.com", "secret"), nil)
		users.On("FindByEmail", mock.Anything, "grace@example.com").Return(&domain.User{ID: 99}, nil)

		email := "grace@example.com"
		_, err := service.UpdateProfile(context.Background(), TestUserID, ProfilePatch{Email: &email})

		assert.ErrorIs(t, err, domain.ErrEmailTaken)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("names and password", func(t *testing.T) {
		service, users := newAuthService()
		users.On("FindByID", mock.Anything, TestUserID).Return(hashedUser(t, TestUserID, "ada@example.com", "secret"), nil)
		users.On("Update", mock.Anything, mock.Anything).Return(nil)

		first, password := " Augusta ", "new-secret"
		u, err := service.UpdateProfile(context.Background(), TestUserID, ProfilePatch{FirstName: &first, Password: &password})

		require.NoError(t, err)
		assert.Equal(t, "Augusta", u.FirstName)
		assert.Equal(t, "Lovelace", u.LastName)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-secret")))
	})

	t.Run("unknown user", func(t *testing.T) {
		service, users := newAuthService()
		users.On("FindByID", mock.Anything, TestUserID).Return(nil, nil)

		_, err := service.UpdateProfile(context.Background(), TestUserID, ProfilePatch{})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestAuthService_AdminOperations(t *testing.T) {
	service, users := newAuthService()
	users.On("FindByID", mock.Anything, TestUserID).Return(&domain.User{ID: TestUserID}, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool { return u.IsAdmin })).Return(nil)
	users.On("Delete", mock.Anything, TestUserID).Return(true, nil)
	users.On("Delete", mock.Anything, uint64(404)).Return(false, nil)

	ctx := context.Background()

	u, err := service.SetAdmin(ctx, TestUserID, true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	assert.NoError(t, service.DeleteUser(ctx, TestUserID))
	assert.ErrorIs(t, service.DeleteUser(ctx, 404), domain.ErrUserNotFound)
	users.AssertExpectations(t)
}
