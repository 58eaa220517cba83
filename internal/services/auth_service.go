package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"checkout-service/internal/auth"
	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfilePatch holds a partial profile update; nil fields keep their value.
type ProfilePatch struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	hashCost int
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens, hashCost: bcrypt.DefaultCost}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: all fields required", domain.ErrInvalidInput)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.StorageError("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, domain.StorageError("create user", err)
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields required", domain.ErrInvalidInput)
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.StorageError("find user", err)
	}
	if u == nil {
		return nil, domain.ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrBadCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	token, exp, err := s.tokens.Issue(u.ID, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate resolves a bearer token into the caller's identity. The admin
// flag comes from the stored user, not the token claims.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	u, err := s.users.FindByID(ctx, id.UserID)
	if err != nil {
		return auth.Identity{}, domain.StorageError("find user", err)
	}
	if u == nil {
		return auth.Identity{}, fmt.Errorf("%w: user %d no longer exists", domain.ErrUnauthorized, id.UserID)
	}
	return auth.Identity{UserID: u.ID, IsAdmin: u.IsAdmin}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint64) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.StorageError("find user", err)
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, patch ProfilePatch) (*domain.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", domain.ErrInvalidInput)
		}
		if email != u.Email {
			other, err := s.users.FindByEmail(ctx, email)
			if err != nil {
				return nil, domain.StorageError("find user", err)
			}
			if other != nil {
				return nil, domain.ErrEmailTaken
			}
		}
		u.Email = email
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", domain.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if patch.FirstName != nil {
		u.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		u.LastName = strings.TrimSpace(*patch.LastName)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, domain.StorageError("update user", err)
	}
	return u, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, userID uint64) error {
	ok, err := s.users.Delete(ctx, userID)
	if err != nil {
		return domain.StorageError("delete user", err)
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.StorageError("list users", err)
	}
	return users, nil
}

func (s *AuthService) SetAdmin(ctx context.Context, userID uint64, isAdmin bool) (*domain.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.IsAdmin = isAdmin
	if err := s.users.Update(ctx, u); err != nil {
		return nil, domain.StorageError("update user", err)
	}
	return u, nil
}
