package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/tasktrack/apiserver/internal/auth"
	"github.com/tasktrack/apiserver/internal/domain"
	"github.com/tasktrack/apiserver/internal/repository"
	apperrors "github.com/tasktrack/apiserver/pkg/errors"
	"github.com/tasktrack/apiserver/pkg/validator"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Credential failures share one message so a response never reveals whether
// the username exists.
const badCredentialsMsg = "incorrect username or password"

// UserService implements registration, login, token resolution, and profile
// management.
type UserService struct {
	users  repository.UserRepository
	codec  *auth.TokenCodec
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, codec *auth.TokenCodec, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		codec:  codec,
		logger: logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email    string `validate:"required,email"`
	Username string `validate:"required,min=3,max=50"`
	Password string `validate:"required,min=8"`
}

// UpdateProfileInput holds the parameters for a partial profile update. Nil
// fields are left unchanged.
type UpdateProfileInput struct {
	Email    *string `validate:"omitempty,email"`
	Username *string `validate:"omitempty,min=3,max=50"`
	Password *string `validate:"omitempty,min=8"`
}

// Register creates a new account with a bcrypt-hashed password. Duplicate
// usernames and emails are rejected with a conflict error; the unique indexes
// back this up under concurrent registration.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if err := s.checkAvailable(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		IsSuperuser:  false,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates a user and returns a signed access token. Unknown
// usernames and wrong passwords produce the same error; inactive accounts
// cannot log in.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	if username == "" || password == "" {
		return nil, apperrors.Unauthorized(badCredentialsMsg)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Unauthorized(badCredentialsMsg)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(badCredentialsMsg)
	}

	if !user.IsActive {
		return nil, apperrors.Unauthorized("inactive user")
	}

	accessToken, err := s.codec.Encode(user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return &domain.Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}

// Resolve verifies an access token and returns the live account it names.
// Token failures and unknown subjects are unauthorized; a deactivated account
// with a valid token is forbidden.
func (s *UserService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	username, err := s.codec.Decode(token)
	if err != nil {
		return nil, apperrors.Unauthorized("could not validate credentials")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("could not validate credentials")
		}
		return nil, fmt.Errorf("resolve user %q: %w", username, err)
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("inactive user")
	}

	return user, nil
}

// GetProfile retrieves a user by their ID.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update to the user's own account. Changing
// the password rehashes it; changing username or email re-checks uniqueness.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*domain.User, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.Username != nil && *input.Username != user.Username {
		if _, err := s.users.FindByUsername(ctx, *input.Username); err == nil {
			return nil, apperrors.AlreadyExists("user", "username", *input.Username)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("check username availability: %w", err)
		}
		user.Username = *input.Username
	}

	if input.Email != nil && *input.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, *input.Email); err == nil {
			return nil, apperrors.AlreadyExists("user", "email", *input.Email)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("check email availability: %w", err)
		}
		user.Email = *input.Email
	}

	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash new password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "user profile updated",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// checkAvailable reports a conflict when the username or email is taken.
// Username is checked first so the error names the first offending field.
func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return apperrors.AlreadyExists("user", "username", username)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("check username availability: %w", err)
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return apperrors.AlreadyExists("user", "email", email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("check email availability: %w", err)
	}

	return nil
}
